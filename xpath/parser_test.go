package xpath

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompileSimplePath(t *testing.T) {
	node, err := Compile("/root/a")
	require.NoError(t, err)
	require.Equal(t, NodePath, node.Type)
	require.Len(t, node.Children, 3) // root + "root" step + "a" step
}

func TestCompileAxisStep(t *testing.T) {
	node, err := Compile("/root/child::a")
	require.NoError(t, err)
	step := node.child(2)
	require.Equal(t, NodeStep, step.Type)
	require.Equal(t, AxisChild, step.Axis)
}

func TestCompileDescendantStep(t *testing.T) {
	node, err := Compile("//a")
	require.NoError(t, err)
	step := node.child(1)
	require.Equal(t, AxisDescendantOrSelf, step.Axis)
}

func TestCompilePredicate(t *testing.T) {
	node, err := Compile("/root/a[1]")
	require.NoError(t, err)
	step := node.child(2)
	require.Len(t, step.Children, 2) // name test + predicate
	require.Equal(t, NodePredicate, step.child(1).Type)
}

func TestCompileFunctionCall(t *testing.T) {
	node, err := Compile("count(/root/a)")
	require.NoError(t, err)
	require.Equal(t, NodeFunctionCall, node.Type)
	require.Equal(t, "count", node.Value)
	require.Len(t, node.Children, 1)
}

func TestCompileBinaryPrecedence(t *testing.T) {
	node, err := Compile("1 + 2 * 3")
	require.NoError(t, err)
	require.Equal(t, NodeBinaryOp, node.Type)
	require.Equal(t, "+", node.Value)
	require.Equal(t, "*", node.child(1).Value)
}

func TestCompileAttributeStep(t *testing.T) {
	node, err := Compile("/root/a/@id")
	require.NoError(t, err)
	step := node.child(3)
	require.Equal(t, AxisAttribute, step.Axis)
}

func TestCompileRejectsGarbage(t *testing.T) {
	_, err := Compile("/root/[")
	require.Error(t, err)
}
