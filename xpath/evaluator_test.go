package xpath

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/kotuku-run/parasol/xpath/xmldoc"
)

func parseDoc(t *testing.T, src string) *xmldoc.Element {
	t.Helper()
	doc, err := xmldoc.Parse(strings.NewReader(src))
	require.NoError(t, err)
	return doc
}

func TestEvaluateChildStep(t *testing.T) {
	doc := parseDoc(t, `<root><a>1</a><b>2</b></root>`)
	node, err := Compile("a")
	require.NoError(t, err)
	v, err := Evaluate(node, doc)
	require.NoError(t, err)
	require.Len(t, v.Nodes, 1)
	require.Equal(t, "1", v.Nodes[0].StringValue())
}

func TestEvaluateDescendant(t *testing.T) {
	doc := parseDoc(t, `<root><x><a/></x><a/></root>`)
	node, err := Compile("//a")
	require.NoError(t, err)
	v, err := Evaluate(node, doc)
	require.NoError(t, err)
	require.Len(t, v.Nodes, 2)
}

func TestEvaluatePredicatePosition(t *testing.T) {
	doc := parseDoc(t, `<root><a>1</a><a>2</a><a>3</a></root>`)
	node, err := Compile("a[2]")
	require.NoError(t, err)
	v, err := Evaluate(node, doc)
	require.NoError(t, err)
	require.Len(t, v.Nodes, 1)
	require.Equal(t, "2", v.Nodes[0].StringValue())
}

func TestEvaluateWildcard(t *testing.T) {
	doc := parseDoc(t, `<root><a id="x"/><b id="y"/></root>`)
	node, err := Compile("*")
	require.NoError(t, err)
	v, err := Evaluate(node, doc)
	require.NoError(t, err)
	require.Len(t, v.Nodes, 2)
}

func TestEvaluateBooleanExpression(t *testing.T) {
	doc := parseDoc(t, `<root><a>1</a></root>`)
	node, err := Compile("count(a) = 1")
	require.NoError(t, err)
	v, err := Evaluate(node, doc)
	require.NoError(t, err)
	require.True(t, v.AsBool())
}

func TestEvaluateArithmetic(t *testing.T) {
	node, err := Compile("(2 + 3) * 4")
	require.NoError(t, err)
	v, err := Evaluate(node, &xmldoc.Element{})
	require.NoError(t, err)
	require.Equal(t, float64(20), v.AsNumber())
}
