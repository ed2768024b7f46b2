package xpath

import (
	"fmt"
	"strconv"
	"time"

	"github.com/kotuku-run/parasol/xpath/xmldoc"
)

// ValueKind tags the dynamic type a Value holds, matching the spec's
// typed value model (NodeSet/String/Number/Boolean/Date/Time/DateTime).
type ValueKind int

const (
	KindNodeSet ValueKind = iota
	KindString
	KindNumber
	KindBoolean
	KindDate
	KindTime
	KindDateTime
)

// Value is the result of evaluating any XPath (sub-)expression. NodeSet
// carries parallel projections of the same result (elements in Nodes and
// their string values in Strings) so a caller can pick whichever view
// their output format needs without re-walking the match set. Attrs is
// part of the type, but the evaluator never fills it: the attribute axis
// selects no nodes.
type Value struct {
	Kind ValueKind

	Nodes    []*xmldoc.Element
	Attrs    []*xmldoc.Attr
	Strings  []string // string-value projection parallel to Nodes/Attrs

	Str  string
	Num  float64
	Bool bool
	Time time.Time
}

func NodeSetValue(nodes []*xmldoc.Element) Value {
	strs := make([]string, len(nodes))
	for i, n := range nodes {
		strs[i] = n.StringValue()
	}
	return Value{Kind: KindNodeSet, Nodes: nodes, Strings: strs}
}

func StringValue(s string) Value   { return Value{Kind: KindString, Str: s} }
func NumberValue(n float64) Value  { return Value{Kind: KindNumber, Num: n} }
func BooleanValue(b bool) Value    { return Value{Kind: KindBoolean, Bool: b} }
func DateTimeValue(t time.Time) Value { return Value{Kind: KindDateTime, Time: t} }

// AsString converts v to its XPath string value, per the standard
// type-coercion rules (a node-set's string value is its first node's;
// a number formats without a trailing ".0" when it's integral).
func (v Value) AsString() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		if v.Num == float64(int64(v.Num)) {
			return strconv.FormatInt(int64(v.Num), 10)
		}
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case KindBoolean:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindDate:
		return v.Time.Format("2006-01-02")
	case KindTime:
		return v.Time.Format("15:04:05")
	case KindDateTime:
		return v.Time.Format(time.RFC3339)
	case KindNodeSet:
		if len(v.Strings) > 0 {
			return v.Strings[0]
		}
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// AsNumber converts v to its XPath numeric value; unparsable strings
// yield NaN, matching XPath's number() semantics.
func (v Value) AsNumber() float64 {
	switch v.Kind {
	case KindNumber:
		return v.Num
	case KindBoolean:
		if v.Bool {
			return 1
		}
		return 0
	default:
		n, err := strconv.ParseFloat(v.AsString(), 64)
		if err != nil {
			return nan()
		}
		return n
	}
}

// AsBool converts v to its XPath effective boolean value.
func (v Value) AsBool() bool {
	switch v.Kind {
	case KindBoolean:
		return v.Bool
	case KindNumber:
		return v.Num != 0
	case KindNodeSet:
		return len(v.Nodes) > 0 || len(v.Attrs) > 0
	default:
		return v.AsString() != ""
	}
}

func nan() float64 {
	var zero float64
	return zero / zero
}
