package object

import kerr "github.com/kotuku-run/parasol/core/errors"

// VariantKind tags the dynamic type carried by a Variant, mirroring the
// field-type tags (FD_STRING, FD_LONG, FD_DOUBLE, FD_POINTER, ...) the
// original field dictionary used to decide how to marshal a value.
type VariantKind int

const (
	KindNone VariantKind = iota
	KindString
	KindInt64
	KindFloat64
	KindBool
	KindObject
	KindBytes
)

// Variant is a dynamically-typed field value, used at the GetField/
// SetField boundary where the static Go type of a field isn't known to
// the caller (e.g. Backstage's HTTP introspection, or generic property
// copy during object cloning).
type Variant struct {
	Kind   VariantKind
	Str    string
	Int    int64
	Float  float64
	Bool   bool
	Obj    any
	Bytes  []byte
}

func VString(s string) Variant  { return Variant{Kind: KindString, Str: s} }
func VInt(i int64) Variant      { return Variant{Kind: KindInt64, Int: i} }
func VFloat(f float64) Variant  { return Variant{Kind: KindFloat64, Float: f} }
func VBool(b bool) Variant      { return Variant{Kind: KindBool, Bool: b} }
func VObject(o any) Variant     { return Variant{Kind: KindObject, Obj: o} }
func VBytes(b []byte) Variant   { return Variant{Kind: KindBytes, Bytes: b} }

// GetField resolves and invokes the named field's getter.
func GetField(obj any, class *Class, name string) (Variant, error) {
	f, err := class.FieldByName(name)
	if err != nil {
		return Variant{}, err
	}
	if f.Flags&FieldReadable == 0 || f.Get == nil {
		return Variant{}, kerr.New(kerr.NoFieldAccess)
	}
	return f.Get(obj)
}

// SetField resolves and invokes the named field's setter.
func SetField(obj any, class *Class, name string, value Variant) error {
	f, err := class.FieldByName(name)
	if err != nil {
		return err
	}
	if f.Flags&FieldWritable == 0 || f.Set == nil {
		return kerr.New(kerr.NoFieldAccess)
	}
	return f.Set(obj, value)
}
