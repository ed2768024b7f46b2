package xpath

import (
	"errors"

	kerr "github.com/kotuku-run/parasol/core/errors"
	"github.com/kotuku-run/parasol/xpath/xmldoc"
)

// QueryCallback is invoked once per matched node in document order. It
// returns an error to stop iteration early; returning kerr.Terminate
// stops the walk without propagating an error out of Query, matching
// the original's FUNCTION-pointer callback whose ERR_Terminate return
// value ends a Query() walk early without signalling failure.
type QueryCallback func(node *xmldoc.Element) error

// Query evaluates a compiled location path against context and invokes
// callback for every matching node, in document order, stopping as
// soon as either the node set is exhausted or callback signals
// termination.
func Query(node *Node, context *xmldoc.Element, callback QueryCallback) error {
	var nodes []*xmldoc.Element
	if node.Type != NodePath {
		v, err := Evaluate(node, context)
		if err != nil {
			return err
		}
		nodes = v.Nodes
	} else {
		ec := &evalContext{node: context, pos: 1, size: 1, vars: map[string]Value{}}
		v, err := evalPath(node, ec)
		if err != nil {
			return err
		}
		nodes = v.Nodes
	}

	for _, n := range nodes {
		if err := callback(n); err != nil {
			if errors.Is(err, errTerminate) {
				return nil
			}
			return err
		}
	}
	return nil
}

var errTerminate = kerr.New(kerr.Terminate)
