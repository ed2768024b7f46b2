package object

import (
	"sort"

	kerr "github.com/kotuku-run/parasol/core/errors"
)

// GetFunc/SetFunc back a single field's dispatch entry.
type GetFunc func(obj any) (Variant, error)
type SetFunc func(obj any, value Variant) error

// FieldEntry describes one entry in a Class's field dictionary.
type FieldEntry struct {
	Name string
	Hash uint32
	Get  GetFunc
	Set  SetFunc
	Flags FieldFlags
}

type FieldFlags uint32

const (
	FieldReadable FieldFlags = 1 << iota
	FieldWritable
	FieldVirtual
)

// ActionFunc implements one of the ~60 universal action IDs (spec
// §4.3): Init, Free, Activate, SaveToObject, etc. Negative IDs are
// reserved for class-specific methods, matching the original's
// convention (e.g. svg.h's Render = -1).
type ActionFunc func(obj any, args any) error

// ActionEntry binds an action ID to its implementation for one class.
type ActionEntry struct {
	ID   int32
	Name string
	Fn   ActionFunc
}

// MethodEntry is a class-specific, named, negative-ID action.
type MethodEntry struct {
	ID   int32
	Name string
	Hash uint32
	Fn   ActionFunc
}

// Class is the runtime descriptor shared by every instance of a kind of
// object: its field and method dictionaries, sorted by hash for
// binary-search lookup as the original class tables were laid out for
// fast dispatch, and its action table, a map keyed by action ID.
type Class struct {
	Name       string
	ClassID    uint32
	BaseClass  *Class
	Size       int
	fields     []FieldEntry
	actions    map[int32]ActionEntry
	methods    []MethodEntry
	New        func() any
}

// NewClass constructs an (initially empty) class descriptor. Use
// AddField/AddAction/AddMethod to populate it, then Finalize to sort the
// dictionaries for lookup.
func NewClass(name string, classID uint32, newFn func() any) *Class {
	return &Class{
		Name:    name,
		ClassID: classID,
		actions: make(map[int32]ActionEntry),
		New:     newFn,
	}
}

func (c *Class) AddField(name string, flags FieldFlags, get GetFunc, set SetFunc) {
	c.fields = append(c.fields, FieldEntry{Name: name, Hash: hashName(name), Get: get, Set: set, Flags: flags})
}

func (c *Class) AddAction(id int32, name string, fn ActionFunc) {
	c.actions[id] = ActionEntry{ID: id, Name: name, Fn: fn}
}

func (c *Class) AddMethod(id int32, name string, fn ActionFunc) {
	c.methods = append(c.methods, MethodEntry{ID: id, Name: name, Hash: hashName(name), Fn: fn})
}

// Finalize sorts the field and method dictionaries by hash so Lookup can
// binary-search them, matching the original's pre-sorted class tables.
func (c *Class) Finalize() {
	sort.Slice(c.fields, func(i, j int) bool { return c.fields[i].Hash < c.fields[j].Hash })
	sort.Slice(c.methods, func(i, j int) bool { return c.methods[i].Hash < c.methods[j].Hash })
}

// FieldByName resolves a field by case-insensitive name, walking up the
// base-class chain if not found locally.
func (c *Class) FieldByName(name string) (*FieldEntry, error) {
	h := hashName(name)
	for cls := c; cls != nil; cls = cls.BaseClass {
		lo, hi := 0, len(cls.fields)
		for lo < hi {
			mid := (lo + hi) / 2
			if cls.fields[mid].Hash < h {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if lo < len(cls.fields) && cls.fields[lo].Hash == h {
			return &cls.fields[lo], nil
		}
	}
	return nil, kerr.New(kerr.NoFieldAccess)
}

// Action resolves a universal action by ID, walking the base-class chain.
func (c *Class) Action(id int32) (*ActionEntry, error) {
	for cls := c; cls != nil; cls = cls.BaseClass {
		if a, ok := cls.actions[id]; ok {
			return &a, nil
		}
	}
	return nil, kerr.New(kerr.NoAction)
}

// MethodByName resolves a class-specific method by case-insensitive name.
func (c *Class) MethodByName(name string) (*MethodEntry, error) {
	h := hashName(name)
	for cls := c; cls != nil; cls = cls.BaseClass {
		lo, hi := 0, len(cls.methods)
		for lo < hi {
			mid := (lo + hi) / 2
			if cls.methods[mid].Hash < h {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if lo < len(cls.methods) && cls.methods[lo].Hash == h {
			return &cls.methods[lo], nil
		}
	}
	return nil, kerr.New(kerr.NoAction)
}
