package xpath

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	kerr "github.com/kotuku-run/parasol/core/errors"
	"github.com/kotuku-run/parasol/xpath/xmldoc"
)

func TestQueryVisitsAllMatches(t *testing.T) {
	doc, err := xmldoc.Parse(strings.NewReader(`<root><a>1</a><a>2</a><a>3</a></root>`))
	require.NoError(t, err)

	node, err := Compile("a")
	require.NoError(t, err)

	var seen []string
	err = Query(node, doc, func(el *xmldoc.Element) error {
		seen = append(seen, el.StringValue())
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2", "3"}, seen)
}

func TestQueryTerminatesEarly(t *testing.T) {
	doc, err := xmldoc.Parse(strings.NewReader(`<root><a>1</a><a>2</a><a>3</a></root>`))
	require.NoError(t, err)

	node, err := Compile("a")
	require.NoError(t, err)

	var seen []string
	err = Query(node, doc, func(el *xmldoc.Element) error {
		seen = append(seen, el.StringValue())
		if el.StringValue() == "2" {
			return kerr.New(kerr.Terminate)
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2"}, seen)
}

func TestQueryPropagatesCallbackError(t *testing.T) {
	doc, err := xmldoc.Parse(strings.NewReader(`<root><a>1</a></root>`))
	require.NoError(t, err)

	node, err := Compile("a")
	require.NoError(t, err)

	boom := kerr.New(kerr.Failed)
	err = Query(node, doc, func(el *xmldoc.Element) error { return boom })
	require.Error(t, err)
}
