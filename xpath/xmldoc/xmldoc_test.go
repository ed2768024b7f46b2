package xmldoc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAndNavigate(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<root><a id="1">hello</a><b>world</b></root>`))
	require.NoError(t, err)
	require.Equal(t, "root", doc.Name)
	require.Len(t, doc.Children, 2)

	a := doc.Children[0]
	require.Equal(t, "a", a.Name)
	attr, ok := a.Attr("id")
	require.True(t, ok)
	require.Equal(t, "1", attr.Value)

	require.Equal(t, "helloworld", doc.StringValue())
	require.Equal(t, doc, a.Parent)

	require.Equal(t, []*Element{doc.Children[1]}, a.FollowingSiblings())
	require.Empty(t, a.PrecedingSiblings())
}

func TestDescendants(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<root><a><b/></a></root>`))
	require.NoError(t, err)
	desc := doc.Descendants()
	require.Len(t, desc, 2)
}
