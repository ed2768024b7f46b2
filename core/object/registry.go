package object

import (
	"sync"
	"sync/atomic"

	kerr "github.com/kotuku-run/parasol/core/errors"
	"github.com/kotuku-run/parasol/core/memory"
)

// Registry is the process-wide class table and live-object index.
// Classes are added with RegisterClass, typically from a core/module
// Entry's OnLoad hook.
// It holds a reference to the process's memory.Ledger so that freeing
// an object also releases the ledger records it owns (spec §4.3
// ownership/cleanup).
type Registry struct {
	mu      sync.RWMutex
	classes map[uint32]*Class
	byName  map[string]*Class
	objects map[uint32]*Instance
	nextID  uint32
	ledger  *memory.Ledger
}

// NewRegistry creates an object registry backed by ledger, the memory
// ledger whose records FreeResource releases on an object's behalf. A
// nil ledger is accepted for callers that never allocate tagged memory.
func NewRegistry(ledger *memory.Ledger) *Registry {
	return &Registry{
		classes: make(map[uint32]*Class),
		byName:  make(map[string]*Class),
		objects: make(map[uint32]*Instance),
		ledger:  ledger,
	}
}

// RegisterClass adds a finalised Class to the registry.
func (r *Registry) RegisterClass(c *Class) {
	c.Finalize()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.classes[c.ClassID] = c
	r.byName[c.Name] = c
}

func (r *Registry) ClassByName(name string) (*Class, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byName[name]
	if !ok {
		return nil, kerr.New(kerr.NoMatchingObject)
	}
	return c, nil
}

func (r *Registry) ClassByID(id uint32) (*Class, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.classes[id]
	if !ok {
		return nil, kerr.New(kerr.NoMatchingObject)
	}
	return c, nil
}

// Instance pairs a live object's Header with its class-specific payload
// (the "child private" data the original stored immediately after the
// header in the same allocation).
type Instance struct {
	Header  Header
	Payload any
}

// NewObject allocates an uninitialised instance of the named class and
// registers it in the live-object index, returning it unInitialised
// (spec: construction and Init are separate steps — a caller may set
// fields between the two, exactly as NewObject()/InitObject() do in the
// original API).
func (r *Registry) NewObject(className string, ownerID uint32) (*Instance, error) {
	class, err := r.ClassByName(className)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.mu.Unlock()

	inst := &Instance{
		Header: Header{
			ClassRef: class,
			UniqueID: id,
			OwnerID:  ownerID,
			ClassID:  class.ClassID,
		},
	}
	if class.New != nil {
		inst.Payload = class.New()
	}

	r.mu.Lock()
	r.objects[id] = inst
	r.mu.Unlock()

	return inst, nil
}

// Init runs the class's Init action (universal action ID ActInit),
// marking the object initialised on success. Calling Init twice is a
// no-op error (FieldTypeMismatch-class guard in the original; here
// surfaced directly).
func (r *Registry) Init(inst *Instance) error {
	if inst.Header.Flags&FlagInitialised != 0 {
		return kerr.New(kerr.DoubleInit)
	}
	a, err := inst.Header.ClassRef.Action(ActInit)
	if err == nil && a.Fn != nil {
		if err := inst.Header.actionDepthGuard(func() error { return a.Fn(inst.Payload, nil) }); err != nil {
			return err
		}
	}
	inst.Header.Flags |= FlagInitialised
	return nil
}

// Action dispatches a universal action by ID against an initialised
// instance.
func (r *Registry) Action(inst *Instance, actionID int32, args any) error {
	if inst.Header.Flags&FlagInitialised == 0 {
		return kerr.New(kerr.NotInitialised)
	}
	a, err := inst.Header.ClassRef.Action(actionID)
	if err != nil {
		return err
	}
	if a.Fn == nil {
		return nil
	}
	return inst.Header.actionDepthGuard(func() error { return a.Fn(inst.Payload, args) })
}

// CallMethod dispatches a class-specific method by name.
func (r *Registry) CallMethod(inst *Instance, name string, args any) error {
	m, err := inst.Header.ClassRef.MethodByName(name)
	if err != nil {
		return err
	}
	if m.Fn == nil {
		return nil
	}
	return inst.Header.actionDepthGuard(func() error { return m.Fn(inst.Payload, args) })
}

// FreeResource runs the class's Free action (if any), cascades to every
// object this one owns, releases the object's own ledger records, and
// removes the object from the live index. Freeing an already-freed or
// still-locked object fails outright. An
// object still inside a dispatched action (actionDepth > 0 — e.g. Free
// called re-entrantly from within its own Init) has its destruction
// deferred until that action unwinds, rather than tearing the object
// down out from under its own call stack.
func (r *Registry) FreeResource(inst *Instance) error {
	if inst.Header.Flags&FlagFree != 0 {
		return kerr.New(kerr.DoubleInit)
	}
	if inst.Header.IsLocked() {
		return kerr.New(kerr.LockFailed)
	}

	if atomic.LoadInt32(&inst.Header.actionDepth) > 0 {
		inst.Header.Flags |= FlagFreePending
		inst.Header.waitersMu.Lock()
		inst.Header.freeReady = func() { r.finishFree(inst) }
		inst.Header.waitersMu.Unlock()
		return nil
	}

	return r.finishFree(inst)
}

// finishFree performs the actual teardown: the class Free action, the
// owner-graph cascade, the ledger release, and removal from the live
// index. Called either directly from FreeResource or, for a deferred
// free, once actionDepth returns to zero.
func (r *Registry) finishFree(inst *Instance) error {
	if a, err := inst.Header.ClassRef.Action(ActFree); err == nil && a.Fn != nil {
		if err := a.Fn(inst.Payload, nil); err != nil {
			return err
		}
	}

	r.mu.RLock()
	var owned []*Instance
	for _, o := range r.objects {
		if o.Header.OwnerID == inst.Header.UniqueID && o.Header.Flags&FlagFree == 0 {
			owned = append(owned, o)
		}
	}
	r.mu.RUnlock()

	for _, o := range owned {
		if err := r.FreeResource(o); err != nil {
			return err
		}
	}

	if r.ledger != nil {
		if _, err := r.ledger.FreeOwned(int32(inst.Header.UniqueID)); err != nil {
			return err
		}
	}

	inst.Header.Flags = (inst.Header.Flags &^ FlagFreePending) | FlagFree
	r.mu.Lock()
	delete(r.objects, inst.Header.UniqueID)
	r.mu.Unlock()
	return nil
}

// ByID looks up a live instance by its unique ID, for Backstage and
// cross-object messaging.
func (r *Registry) ByID(id uint32) (*Instance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.objects[id]
	if !ok {
		return nil, kerr.New(kerr.NoMatchingObject)
	}
	return inst, nil
}

// Count reports the number of live objects, for diagnostics.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.objects)
}

// ObjectSummary is a read-only snapshot of one live object, shaped for
// the backstage inspection endpoint rather than for runtime dispatch.
type ObjectSummary struct {
	ID        uint32
	OwnerID   uint32
	ClassID   uint32
	ClassName string
	Locked    bool
}

// Snapshot lists every live object, for Backstage's object listing route.
func (r *Registry) Snapshot() []ObjectSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ObjectSummary, 0, len(r.objects))
	for _, inst := range r.objects {
		name := ""
		if inst.Header.ClassRef != nil {
			name = inst.Header.ClassRef.Name
		}
		out = append(out, ObjectSummary{
			ID:        inst.Header.UniqueID,
			OwnerID:   inst.Header.OwnerID,
			ClassID:   inst.Header.ClassID,
			ClassName: name,
			Locked:    inst.Header.IsLocked(),
		})
	}
	return out
}

// Universal action IDs, a small representative subset of the ~60 the
// spec describes; negative IDs are reserved for class-specific methods.
const (
	ActInit int32 = iota + 1
	ActFree
	ActActivate
	ActDeactivate
	ActSaveToObject
	ActRead
	ActWrite
	ActSeek
)
