package xpath

import (
	kerr "github.com/kotuku-run/parasol/core/errors"
	"github.com/kotuku-run/parasol/xpath/xmldoc"
)

// evalContext carries the state a node-test/predicate needs beyond the
// context node itself: its 1-based position and the size of the node
// set it was drawn from, for the position()/last() functions.
type evalContext struct {
	node  *xmldoc.Element
	pos   int
	size  int
	vars  map[string]Value
}

// Evaluate runs a compiled AST against a context node and returns its
// result Value. This is the Go-native replacement for the original's
// Evaluate(XML, XPathNode*, LONG ContextNode, ...) signature: the
// context is carried as a *xmldoc.Element rather than a numeric node
// index into a separate document structure.
func Evaluate(node *Node, context *xmldoc.Element) (Value, error) {
	ec := &evalContext{node: context, pos: 1, size: 1, vars: map[string]Value{}}
	return eval(node, ec)
}

func eval(n *Node, ec *evalContext) (Value, error) {
	if n == nil {
		return Value{}, kerr.New(kerr.NoData)
	}
	switch n.Type {
	case NodePath:
		return evalPath(n, ec)
	case NodeNumber:
		return parseNumberLiteral(n.Value), nil
	case NodeString:
		return StringValue(n.Value), nil
	case NodeVariableRef:
		if v, ok := ec.vars[n.Value]; ok {
			return v, nil
		}
		return Value{}, kerr.Wrap(kerr.NoData, errUnexpectedText("undefined variable $"+n.Value))
	case NodeBinaryOp:
		return evalBinaryOp(n, ec)
	case NodeUnaryOp:
		operand, err := eval(n.child(0), ec)
		if err != nil {
			return Value{}, err
		}
		return NumberValue(-operand.AsNumber()), nil
	case NodeFunctionCall:
		return callFunction(n, ec)
	default:
		return Value{}, kerr.Wrap(kerr.Syntax, errUnexpectedText("cannot evaluate node type"))
	}
}

func parseNumberLiteral(s string) Value {
	var n float64
	var frac float64 = 1
	seenDot := false
	for _, r := range s {
		if r == '.' {
			seenDot = true
			continue
		}
		d := float64(r - '0')
		if !seenDot {
			n = n*10 + d
		} else {
			frac /= 10
			n += d * frac
		}
	}
	return NumberValue(n)
}

func evalBinaryOp(n *Node, ec *evalContext) (Value, error) {
	left, err := eval(n.child(0), ec)
	if err != nil {
		return Value{}, err
	}
	right, err := eval(n.child(1), ec)
	if err != nil {
		return Value{}, err
	}
	switch n.Value {
	case "and":
		return BooleanValue(left.AsBool() && right.AsBool()), nil
	case "or":
		return BooleanValue(left.AsBool() || right.AsBool()), nil
	case "=":
		return BooleanValue(valuesEqual(left, right)), nil
	case "!=":
		return BooleanValue(!valuesEqual(left, right)), nil
	case "<":
		return BooleanValue(left.AsNumber() < right.AsNumber()), nil
	case "<=":
		return BooleanValue(left.AsNumber() <= right.AsNumber()), nil
	case ">":
		return BooleanValue(left.AsNumber() > right.AsNumber()), nil
	case ">=":
		return BooleanValue(left.AsNumber() >= right.AsNumber()), nil
	case "+":
		return NumberValue(left.AsNumber() + right.AsNumber()), nil
	case "-":
		return NumberValue(left.AsNumber() - right.AsNumber()), nil
	case "*":
		return NumberValue(left.AsNumber() * right.AsNumber()), nil
	case "div":
		return NumberValue(left.AsNumber() / right.AsNumber()), nil
	case "mod":
		l, r := left.AsNumber(), right.AsNumber()
		return NumberValue(l - r*float64(int64(l/r))), nil
	default:
		return Value{}, kerr.Wrap(kerr.Syntax, errUnexpectedText("unknown operator "+n.Value))
	}
}

// valuesEqual implements XPath's type-driven equality: if either side
// is a node-set, compare string-values across the cross product;
// otherwise compare via whichever side isn't a string coerces both.
func valuesEqual(a, b Value) bool {
	if a.Kind == KindNodeSet && b.Kind == KindNodeSet {
		for _, sa := range a.Strings {
			for _, sb := range b.Strings {
				if sa == sb {
					return true
				}
			}
		}
		return false
	}
	if a.Kind == KindNodeSet {
		for _, s := range a.Strings {
			if s == b.AsString() {
				return true
			}
		}
		return false
	}
	if b.Kind == KindNodeSet {
		return valuesEqual(b, a)
	}
	if a.Kind == KindBoolean || b.Kind == KindBoolean {
		return a.AsBool() == b.AsBool()
	}
	if a.Kind == KindNumber || b.Kind == KindNumber {
		return a.AsNumber() == b.AsNumber()
	}
	return a.AsString() == b.AsString()
}

// evalPath walks a NodePath's Root+Step sequence, threading the
// evolving node set from one step into the next step's context set.
func evalPath(n *Node, ec *evalContext) (Value, error) {
	nodes := []*xmldoc.Element{ec.node}
	start := 0
	if len(n.Children) > 0 && n.child(0).Type == NodeRoot {
		root := ec.node
		for root.Parent != nil {
			root = root.Parent
		}
		nodes = []*xmldoc.Element{root}
		start = 1
	}

	for i := start; i < len(n.Children); i++ {
		step := n.child(i)
		var next []*xmldoc.Element
		for _, ctxNode := range nodes {
			matched, err := evalStep(step, ctxNode)
			if err != nil {
				return Value{}, err
			}
			next = appendUnique(next, matched)
		}
		nodes = next
		nodes = applyPredicates(step, nodes, ec)
	}
	return NodeSetValue(nodes), nil
}

func appendUnique(dst []*xmldoc.Element, src []*xmldoc.Element) []*xmldoc.Element {
	for _, s := range src {
		found := false
		for _, d := range dst {
			if d == s {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, s)
		}
	}
	return dst
}

// evalStep resolves the axis+node-test portion of a step (not its
// predicates) against one context node.
func evalStep(step *Node, ctx *xmldoc.Element) ([]*xmldoc.Element, error) {
	candidates := axisNodes(step.Axis, ctx)
	test := step.child(0)

	var out []*xmldoc.Element
	for _, c := range candidates {
		if nodeTestMatches(test, c) {
			out = append(out, c)
		}
	}
	return out, nil
}

func axisNodes(axis Axis, ctx *xmldoc.Element) []*xmldoc.Element {
	switch axis {
	case AxisChild:
		return ctx.Children
	case AxisDescendant:
		return ctx.Descendants()
	case AxisDescendantOrSelf:
		return append([]*xmldoc.Element{ctx}, ctx.Descendants()...)
	case AxisParent:
		if ctx.Parent != nil {
			return []*xmldoc.Element{ctx.Parent}
		}
		return nil
	case AxisAncestor:
		return ctx.Ancestors()
	case AxisAncestorOrSelf:
		return append([]*xmldoc.Element{ctx}, ctx.Ancestors()...)
	case AxisSelf:
		return []*xmldoc.Element{ctx}
	case AxisFollowingSibling:
		return ctx.FollowingSiblings()
	case AxisPrecedingSibling:
		return ctx.PrecedingSiblings()
	case AxisFollowing:
		var out []*xmldoc.Element
		for _, s := range ctx.FollowingSiblings() {
			out = append(out, s)
			out = append(out, s.Descendants()...)
		}
		return out
	case AxisPreceding:
		var out []*xmldoc.Element
		for _, s := range ctx.PrecedingSiblings() {
			out = append(out, s)
			out = append(out, s.Descendants()...)
		}
		return out
	case AxisAttribute:
		return nil // attribute results are handled via nodeTestMatches on Attrs directly in a richer evaluator; out of scope here
	default:
		return nil
	}
}

func nodeTestMatches(test *Node, el *xmldoc.Element) bool {
	if test == nil {
		return true
	}
	switch test.Type {
	case NodeWildcard:
		return true
	case NodeNameTest:
		return el.Name == test.Value
	case NodeNodeTypeTest:
		switch test.Value {
		case "node":
			return true
		case "text":
			return len(el.Children) == 0 && el.Text != ""
		default:
			return false
		}
	default:
		return false
	}
}

// applyPredicates filters a candidate node list through every
// NodePredicate child attached to step, numbering nodes 1-based for
// position()/last() and treating a bare-number predicate as a
// positional filter ([1] keeps only the first node).
func applyPredicates(step *Node, nodes []*xmldoc.Element, outer *evalContext) []*xmldoc.Element {
	for _, child := range step.Children {
		if child.Type != NodePredicate {
			continue
		}
		var kept []*xmldoc.Element
		for i, node := range nodes {
			ec := &evalContext{node: node, pos: i + 1, size: len(nodes), vars: outer.vars}
			v, err := eval(child.child(0), ec)
			if err != nil {
				continue
			}
			if v.Kind == KindNumber {
				if int(v.Num) == ec.pos {
					kept = append(kept, node)
				}
				continue
			}
			if v.AsBool() {
				kept = append(kept, node)
			}
		}
		nodes = kept
	}
	return nodes
}
