package xpath

import (
	"regexp"
	"strings"

	kerr "github.com/kotuku-run/parasol/core/errors"
)

// callFunction dispatches a NodeFunctionCall node to its implementation,
// evaluating arguments against the same context the call itself runs
// under (XPath functions never alter position()/last() for their
// arguments).
func callFunction(n *Node, ec *evalContext) (Value, error) {
	fn, ok := functionTable[n.Value]
	if !ok {
		return Value{}, kerr.Wrap(kerr.NoAction, errUnexpectedText("unknown function "+n.Value))
	}
	args := make([]*Node, len(n.Children))
	copy(args, n.Children)
	return fn(args, ec)
}

type xpathFunc func(args []*Node, ec *evalContext) (Value, error)

var functionTable map[string]xpathFunc

func init() {
	functionTable = map[string]xpathFunc{
		"position":    fnPosition,
		"last":        fnLast,
		"count":       fnCount,
		"not":         fnNot,
		"true":        fnTrue,
		"false":       fnFalse,
		"boolean":     fnBoolean,
		"string":      fnString,
		"number":      fnNumber,
		"concat":      fnConcat,
		"contains":    fnContains,
		"starts-with": fnStartsWith,
		"ends-with":   fnEndsWith,
		"substring":   fnSubstring,
		"string-length": fnStringLength,
		"normalize-space": fnNormalizeSpace,
		"translate":   fnTranslate,
		"upper-case":  fnUpperCase,
		"lower-case":  fnLowerCase,
		"matches":     fnMatches,
		"replace":     fnReplace,
		"tokenize":    fnTokenize,
		"sum":         fnSum,
		"floor":       fnFloor,
		"ceiling":     fnCeiling,
		"round":       fnRound,
	}
}

func argValue(args []*Node, i int, ec *evalContext) (Value, error) {
	if i >= len(args) {
		return Value{}, kerr.New(kerr.Args)
	}
	return eval(args[i], ec)
}

func argString(args []*Node, i int, ec *evalContext, fallback string) (string, error) {
	if i >= len(args) {
		return fallback, nil
	}
	v, err := eval(args[i], ec)
	if err != nil {
		return "", err
	}
	return v.AsString(), nil
}

func fnPosition(args []*Node, ec *evalContext) (Value, error) { return NumberValue(float64(ec.pos)), nil }
func fnLast(args []*Node, ec *evalContext) (Value, error)     { return NumberValue(float64(ec.size)), nil }

func fnCount(args []*Node, ec *evalContext) (Value, error) {
	v, err := argValue(args, 0, ec)
	if err != nil {
		return Value{}, err
	}
	return NumberValue(float64(len(v.Nodes))), nil
}

func fnNot(args []*Node, ec *evalContext) (Value, error) {
	v, err := argValue(args, 0, ec)
	if err != nil {
		return Value{}, err
	}
	return BooleanValue(!v.AsBool()), nil
}

func fnTrue(args []*Node, ec *evalContext) (Value, error)  { return BooleanValue(true), nil }
func fnFalse(args []*Node, ec *evalContext) (Value, error) { return BooleanValue(false), nil }

func fnBoolean(args []*Node, ec *evalContext) (Value, error) {
	v, err := argValue(args, 0, ec)
	if err != nil {
		return Value{}, err
	}
	return BooleanValue(v.AsBool()), nil
}

func fnString(args []*Node, ec *evalContext) (Value, error) {
	if len(args) == 0 {
		return StringValue(ec.node.StringValue()), nil
	}
	v, err := argValue(args, 0, ec)
	if err != nil {
		return Value{}, err
	}
	return StringValue(v.AsString()), nil
}

func fnNumber(args []*Node, ec *evalContext) (Value, error) {
	v, err := argValue(args, 0, ec)
	if err != nil {
		return Value{}, err
	}
	return NumberValue(v.AsNumber()), nil
}

func fnConcat(args []*Node, ec *evalContext) (Value, error) {
	var b strings.Builder
	for i := range args {
		s, err := argString(args, i, ec, "")
		if err != nil {
			return Value{}, err
		}
		b.WriteString(s)
	}
	return StringValue(b.String()), nil
}

func fnContains(args []*Node, ec *evalContext) (Value, error) {
	a, err := argString(args, 0, ec, "")
	if err != nil {
		return Value{}, err
	}
	b, err := argString(args, 1, ec, "")
	if err != nil {
		return Value{}, err
	}
	return BooleanValue(strings.Contains(a, b)), nil
}

func fnStartsWith(args []*Node, ec *evalContext) (Value, error) {
	a, err := argString(args, 0, ec, "")
	if err != nil {
		return Value{}, err
	}
	b, err := argString(args, 1, ec, "")
	if err != nil {
		return Value{}, err
	}
	return BooleanValue(strings.HasPrefix(a, b)), nil
}

func fnEndsWith(args []*Node, ec *evalContext) (Value, error) {
	a, err := argString(args, 0, ec, "")
	if err != nil {
		return Value{}, err
	}
	b, err := argString(args, 1, ec, "")
	if err != nil {
		return Value{}, err
	}
	return BooleanValue(strings.HasSuffix(a, b)), nil
}

func fnSubstring(args []*Node, ec *evalContext) (Value, error) {
	s, err := argString(args, 0, ec, "")
	if err != nil {
		return Value{}, err
	}
	startV, err := argValue(args, 1, ec)
	if err != nil {
		return Value{}, err
	}
	runes := []rune(s)
	start := int(startV.AsNumber()) - 1
	length := len(runes) - start
	if len(args) > 2 {
		lenV, err := argValue(args, 2, ec)
		if err != nil {
			return Value{}, err
		}
		length = int(lenV.AsNumber())
	}
	if start < 0 {
		length += start
		start = 0
	}
	if start > len(runes) {
		return StringValue(""), nil
	}
	end := start + length
	if end > len(runes) {
		end = len(runes)
	}
	if end < start {
		return StringValue(""), nil
	}
	return StringValue(string(runes[start:end])), nil
}

func fnStringLength(args []*Node, ec *evalContext) (Value, error) {
	s, err := argString(args, 0, ec, ec.node.StringValue())
	if err != nil {
		return Value{}, err
	}
	return NumberValue(float64(len([]rune(s)))), nil
}

func fnNormalizeSpace(args []*Node, ec *evalContext) (Value, error) {
	s, err := argString(args, 0, ec, ec.node.StringValue())
	if err != nil {
		return Value{}, err
	}
	return StringValue(strings.Join(strings.Fields(s), " ")), nil
}

func fnTranslate(args []*Node, ec *evalContext) (Value, error) {
	s, err := argString(args, 0, ec, "")
	if err != nil {
		return Value{}, err
	}
	from, err := argString(args, 1, ec, "")
	if err != nil {
		return Value{}, err
	}
	to, err := argString(args, 2, ec, "")
	if err != nil {
		return Value{}, err
	}
	fromRunes := []rune(from)
	toRunes := []rune(to)
	var b strings.Builder
	for _, r := range s {
		idx := -1
		for i, f := range fromRunes {
			if f == r {
				idx = i
				break
			}
		}
		if idx < 0 {
			b.WriteRune(r)
		} else if idx < len(toRunes) {
			b.WriteRune(toRunes[idx])
		}
	}
	return StringValue(b.String()), nil
}

func fnUpperCase(args []*Node, ec *evalContext) (Value, error) {
	s, err := argString(args, 0, ec, "")
	if err != nil {
		return Value{}, err
	}
	return StringValue(strings.ToUpper(s)), nil
}

func fnLowerCase(args []*Node, ec *evalContext) (Value, error) {
	s, err := argString(args, 0, ec, "")
	if err != nil {
		return Value{}, err
	}
	return StringValue(strings.ToLower(s)), nil
}

func fnMatches(args []*Node, ec *evalContext) (Value, error) {
	s, err := argString(args, 0, ec, "")
	if err != nil {
		return Value{}, err
	}
	pattern, err := argString(args, 1, ec, "")
	if err != nil {
		return Value{}, err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Value{}, kerr.Wrap(kerr.Syntax, err)
	}
	return BooleanValue(re.MatchString(s)), nil
}

func fnReplace(args []*Node, ec *evalContext) (Value, error) {
	s, err := argString(args, 0, ec, "")
	if err != nil {
		return Value{}, err
	}
	pattern, err := argString(args, 1, ec, "")
	if err != nil {
		return Value{}, err
	}
	replacement, err := argString(args, 2, ec, "")
	if err != nil {
		return Value{}, err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Value{}, kerr.Wrap(kerr.Syntax, err)
	}
	return StringValue(re.ReplaceAllString(s, translateBackrefs(replacement))), nil
}

// translateBackrefs rewrites XPath's $1-style backreferences into Go's
// regexp ${1} form so ReplaceAllString resolves them correctly even
// when a literal digit follows the reference.
func translateBackrefs(repl string) string {
	var b strings.Builder
	for i := 0; i < len(repl); i++ {
		if repl[i] == '$' && i+1 < len(repl) && repl[i+1] >= '0' && repl[i+1] <= '9' {
			j := i + 1
			for j < len(repl) && repl[j] >= '0' && repl[j] <= '9' {
				j++
			}
			b.WriteString("${" + repl[i+1:j] + "}")
			i = j - 1
			continue
		}
		b.WriteByte(repl[i])
	}
	return b.String()
}

func fnTokenize(args []*Node, ec *evalContext) (Value, error) {
	s, err := argString(args, 0, ec, "")
	if err != nil {
		return Value{}, err
	}
	pattern, err := argString(args, 1, ec, `\s+`)
	if err != nil {
		return Value{}, err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Value{}, kerr.Wrap(kerr.Syntax, err)
	}
	parts := re.Split(s, -1)
	v := Value{Kind: KindNodeSet, Strings: parts}
	return v, nil
}

func fnSum(args []*Node, ec *evalContext) (Value, error) {
	v, err := argValue(args, 0, ec)
	if err != nil {
		return Value{}, err
	}
	var total float64
	for _, s := range v.Strings {
		total += StringValue(s).AsNumber()
	}
	return NumberValue(total), nil
}

func fnFloor(args []*Node, ec *evalContext) (Value, error) {
	v, err := argValue(args, 0, ec)
	if err != nil {
		return Value{}, err
	}
	n := v.AsNumber()
	i := float64(int64(n))
	if n < 0 && i != n {
		i--
	}
	return NumberValue(i), nil
}

func fnCeiling(args []*Node, ec *evalContext) (Value, error) {
	v, err := argValue(args, 0, ec)
	if err != nil {
		return Value{}, err
	}
	n := v.AsNumber()
	i := float64(int64(n))
	if n > 0 && i != n {
		i++
	}
	return NumberValue(i), nil
}

func fnRound(args []*Node, ec *evalContext) (Value, error) {
	v, err := argValue(args, 0, ec)
	if err != nil {
		return Value{}, err
	}
	n := v.AsNumber()
	return NumberValue(float64(int64(n + 0.5))), nil
}
