package xpath

import (
	"strconv"

	kerr "github.com/kotuku-run/parasol/core/errors"
)

// axisNames maps the textual axis specifier (before "::") to its Axis.
var axisNames = map[string]Axis{
	"child":              AxisChild,
	"descendant":         AxisDescendant,
	"descendant-or-self": AxisDescendantOrSelf,
	"parent":             AxisParent,
	"ancestor":           AxisAncestor,
	"ancestor-or-self":   AxisAncestorOrSelf,
	"attribute":          AxisAttribute,
	"self":               AxisSelf,
	"following-sibling":  AxisFollowingSibling,
	"preceding-sibling":  AxisPrecedingSibling,
	"following":          AxisFollowing,
	"preceding":          AxisPreceding,
}

// binding power table for the binary-operator Pratt parser, lowest
// first (loosest binds last): or < and < equality < relational <
// additive < multiplicative.
var precedence = map[string]int{
	"or": 1, "and": 2,
	"=": 3, "!=": 3,
	"<": 4, "<=": 4, ">": 4, ">=": 4,
	"+": 5, "-": 5,
	"*": 6, "div": 6, "mod": 6,
}

// parser implements a standard Pratt (precedence-climbing) expression
// parser over the path-step recursive-descent grammar, the same
// division of labour XPath implementations conventionally use: paths
// and predicates are handled by dedicated recursive functions, while
// the boolean/arithmetic expression grammar inside predicates and
// function arguments is handled by a single precedence-climbing loop.
type parser struct {
	lex *lexer
	cur token
}

// Compile parses an XPath expression into its AST, the Go-native
// replacement for the original's Compile(XML, Query, *XPathNode**)
// out-parameter signature.
func Compile(expr string) (*Node, error) {
	p := &parser{lex: newLexer(expr)}
	p.advance()
	node, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if p.cur.kind != tokEOF {
		return nil, kerr.Wrap(kerr.Syntax, errUnexpected(p.cur))
	}
	return node, nil
}

func (p *parser) advance() { p.cur = p.lex.next() }

func (p *parser) parseExpr(minPrec int) (*Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	// A '*' after an operand is multiplication, not a wildcard.
	for p.cur.kind == tokOperator || p.cur.kind == tokWildcard {
		prec, ok := precedence[p.cur.text]
		if !ok || prec < minPrec {
			break
		}
		op := p.cur.text
		p.advance()
		right, err := p.parseExpr(prec + 1)
		if err != nil {
			return nil, err
		}
		left = newNode(NodeBinaryOp, op, left, right)
	}
	return left, nil
}

func (p *parser) parseUnary() (*Node, error) {
	if p.cur.kind == tokOperator && p.cur.text == "-" {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return newNode(NodeUnaryOp, "-", operand), nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (*Node, error) {
	switch p.cur.kind {
	case tokNumber:
		n := newNode(NodeNumber, p.cur.text)
		p.advance()
		return n, nil
	case tokString:
		n := newNode(NodeString, p.cur.text)
		p.advance()
		return n, nil
	case tokDollar:
		p.advance()
		if p.cur.kind != tokName {
			return nil, kerr.Wrap(kerr.Syntax, errUnexpected(p.cur))
		}
		n := newNode(NodeVariableRef, p.cur.text)
		p.advance()
		return n, nil
	case tokLParen:
		p.advance()
		inner, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if p.cur.kind != tokRParen {
			return nil, kerr.Wrap(kerr.Syntax, errUnexpected(p.cur))
		}
		p.advance()
		return inner, nil
	case tokName:
		// Function call: Name(args...)
		if p.lookaheadIsCall() {
			return p.parseFunctionCall()
		}
		return p.parseLocationPath()
	case tokSlash, tokDoubleSlash, tokDot, tokDotDot, tokAt, tokWildcard:
		return p.parseLocationPath()
	default:
		return nil, kerr.Wrap(kerr.Syntax, errUnexpected(p.cur))
	}
}

// lookaheadIsCall peeks past the current name token to see if it's
// immediately followed by '(' (a function call rather than a step's
// node test); it does so on a throwaway lexer copy so the real parser
// position is unaffected until the caller commits to one branch.
func (p *parser) lookaheadIsCall() bool {
	save := *p.lex
	next := p.lex.next()
	*p.lex = save
	return next.kind == tokLParen
}

func (p *parser) parseFunctionCall() (*Node, error) {
	name := p.cur.text
	p.advance() // name
	p.advance() // (
	call := newNode(NodeFunctionCall, name)
	for p.cur.kind != tokRParen {
		arg, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		call.addChild(arg)
		if p.cur.kind == tokComma {
			p.advance()
			continue
		}
		break
	}
	if p.cur.kind != tokRParen {
		return nil, kerr.Wrap(kerr.Syntax, errUnexpected(p.cur))
	}
	p.advance()
	return call, nil
}

// parseLocationPath parses a full '/'-or-'//'-separated step sequence,
// producing a NodePath wrapping one NodeStep per path segment.
func (p *parser) parseLocationPath() (*Node, error) {
	path := newNode(NodePath, "")

	if p.cur.kind == tokSlash {
		path.addChild(newNode(NodeRoot, "/"))
		p.advance()
		if p.cur.kind == tokEOF || p.cur.kind == tokRParen || p.cur.kind == tokRBracket {
			return path, nil
		}
	} else if p.cur.kind == tokDoubleSlash {
		path.addChild(newNode(NodeRoot, "//"))
		step, err := p.parseStep()
		if err != nil {
			return nil, err
		}
		step.Axis = AxisDescendantOrSelf
		path.addChild(step)
		return p.continuePath(path)
	}

	step, err := p.parseStep()
	if err != nil {
		return nil, err
	}
	path.addChild(step)
	return p.continuePath(path)
}

func (p *parser) continuePath(path *Node) (*Node, error) {
	for p.cur.kind == tokSlash || p.cur.kind == tokDoubleSlash {
		descendant := p.cur.kind == tokDoubleSlash
		p.advance()
		step, err := p.parseStep()
		if err != nil {
			return nil, err
		}
		if descendant {
			step.Axis = AxisDescendantOrSelf
		}
		path.addChild(step)
	}
	return path, nil
}

func (p *parser) parseStep() (*Node, error) {
	step := newNode(NodeStep, "")

	switch p.cur.kind {
	case tokDot:
		p.advance()
		step.Axis = AxisSelf
		step.addChild(newNode(NodeNodeTypeTest, "node"))
		return p.parsePredicates(step)
	case tokDotDot:
		p.advance()
		step.Axis = AxisParent
		step.addChild(newNode(NodeNodeTypeTest, "node"))
		return p.parsePredicates(step)
	case tokAt:
		p.advance()
		step.Axis = AxisAttribute
	case tokName:
		// axis::name or name
		save := *p.lex
		savedCur := p.cur
		nameText := p.cur.text
		p.advance()
		if p.cur.kind == tokColonColon {
			if axis, ok := axisNames[nameText]; ok {
				step.Axis = axis
				p.advance()
			} else {
				return nil, kerr.Wrap(kerr.Syntax, errUnexpectedText("unknown axis "+nameText))
			}
		} else {
			*p.lex = save
			p.cur = savedCur
			step.Axis = AxisChild
		}
	default:
		step.Axis = AxisChild
	}

	test, err := p.parseNodeTest()
	if err != nil {
		return nil, err
	}
	step.addChild(test)
	return p.parsePredicates(step)
}

func (p *parser) parseNodeTest() (*Node, error) {
	switch p.cur.kind {
	case tokWildcard:
		p.advance()
		return newNode(NodeWildcard, "*"), nil
	case tokName:
		name := p.cur.text
		p.advance()
		if name == "node" || name == "text" || name == "comment" {
			if p.cur.kind == tokLParen {
				p.advance()
				if p.cur.kind == tokRParen {
					p.advance()
				}
				return newNode(NodeNodeTypeTest, name), nil
			}
		}
		return newNode(NodeNameTest, name), nil
	default:
		return nil, kerr.Wrap(kerr.Syntax, errUnexpected(p.cur))
	}
}

func (p *parser) parsePredicates(step *Node) (*Node, error) {
	for p.cur.kind == tokLBracket {
		p.advance()
		pred, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if p.cur.kind != tokRBracket {
			return nil, kerr.Wrap(kerr.Syntax, errUnexpected(p.cur))
		}
		p.advance()
		step.addChild(newNode(NodePredicate, "", pred))
	}
	return step, nil
}

func errUnexpected(t token) error { return errUnexpectedText("unexpected token " + strconv.Quote(t.text)) }

type syntaxErr struct{ msg string }

func (e syntaxErr) Error() string { return e.msg }

func errUnexpectedText(msg string) error { return syntaxErr{msg} }
