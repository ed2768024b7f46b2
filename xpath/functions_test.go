package xpath

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/kotuku-run/parasol/xpath/xmldoc"
)

func evalExpr(t *testing.T, expr string, ctx *xmldoc.Element) Value {
	t.Helper()
	node, err := Compile(expr)
	require.NoError(t, err)
	v, err := Evaluate(node, ctx)
	require.NoError(t, err)
	return v
}

func TestFunctionConcatAndContains(t *testing.T) {
	doc, _ := xmldoc.Parse(strings.NewReader(`<root/>`))
	v := evalExpr(t, `concat("foo", "bar")`, doc)
	require.Equal(t, "foobar", v.AsString())

	v = evalExpr(t, `contains("foobar", "oob")`, doc)
	require.True(t, v.AsBool())
}

func TestFunctionSubstringAndLength(t *testing.T) {
	doc, _ := xmldoc.Parse(strings.NewReader(`<root/>`))
	v := evalExpr(t, `substring("hello world", 7)`, doc)
	require.Equal(t, "world", v.AsString())

	v = evalExpr(t, `substring("hello world", 1, 5)`, doc)
	require.Equal(t, "hello", v.AsString())

	v = evalExpr(t, `string-length("hello")`, doc)
	require.Equal(t, float64(5), v.AsNumber())
}

func TestFunctionNormalizeSpaceAndCase(t *testing.T) {
	doc, _ := xmldoc.Parse(strings.NewReader(`<root/>`))
	v := evalExpr(t, `normalize-space("  a   b  ")`, doc)
	require.Equal(t, "a b", v.AsString())

	v = evalExpr(t, `upper-case("abc")`, doc)
	require.Equal(t, "ABC", v.AsString())
}

func TestFunctionMatchesAndReplace(t *testing.T) {
	doc, _ := xmldoc.Parse(strings.NewReader(`<root/>`))
	v := evalExpr(t, `matches("2026-07-30", "[0-9]{4}-[0-9]{2}-[0-9]{2}")`, doc)
	require.True(t, v.AsBool())

	v = evalExpr(t, `replace("hello", "l+", "L")`, doc)
	require.Equal(t, "heLo", v.AsString())
}

func TestFunctionTokenize(t *testing.T) {
	doc, _ := xmldoc.Parse(strings.NewReader(`<root/>`))
	v := evalExpr(t, `tokenize("a,b,,c", ",")`, doc)
	require.Equal(t, []string{"a", "b", "", "c"}, v.Strings)
}

func TestFunctionCountPositionLast(t *testing.T) {
	doc, err := xmldoc.Parse(strings.NewReader(`<root><a/><a/><a/></root>`))
	require.NoError(t, err)
	v := evalExpr(t, `count(a)`, doc)
	require.Equal(t, float64(3), v.AsNumber())
}

func TestFunctionFloorCeilingRound(t *testing.T) {
	doc, _ := xmldoc.Parse(strings.NewReader(`<root/>`))
	require.Equal(t, float64(2), evalExpr(t, `floor(2.7)`, doc).AsNumber())
	require.Equal(t, float64(3), evalExpr(t, `ceiling(2.1)`, doc).AsNumber())
	require.Equal(t, float64(3), evalExpr(t, `round(2.5)`, doc).AsNumber())
}
