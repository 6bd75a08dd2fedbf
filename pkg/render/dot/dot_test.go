package dot

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/svz/pkg/cstruct"
	"github.com/matzehuels/svz/pkg/depgraph"
	svzerrors "github.com/matzehuels/svz/pkg/errors"
	"github.com/matzehuels/svz/pkg/parser"
)

func buildGraph(t *testing.T, src string) *depgraph.Graph {
	t.Helper()
	g, _ := depgraph.Build(parser.Parse(src).Structures)
	return g
}

func TestToDOTExact(t *testing.T) {
	g := buildGraph(t, `
struct ll_node { int value; ll_node *next; };
struct list { size_t size; ll_node *head; };`)

	got, err := ToDOT(g, Options{})
	require.NoError(t, err)

	want := "digraph svz {\n" +
		`ll_node [label=<<B>struct ll_node</B><BR ALIGN="LEFT"/><FONT COLOR="purple">int</FONT>        value<BR ALIGN="LEFT"/><FONT COLOR="purple">ll_node</FONT>    next<BR ALIGN="LEFT"/>>]` + "\n" +
		`list [label=<<B>struct list</B><BR ALIGN="LEFT"/><FONT COLOR="purple">size_t</FONT>     size<BR ALIGN="LEFT"/><FONT COLOR="purple">ll_node</FONT>    head<BR ALIGN="LEFT"/>>]` + "\n" +
		"ll_node -> ll_node;\n" +
		"list -> ll_node;\n" +
		"}"
	assert.Equal(t, want, got)
}

func TestToDOTEmptyGraph(t *testing.T) {
	got, err := ToDOT(depgraph.New(), Options{})
	require.NoError(t, err)
	assert.Equal(t, "digraph svz {\n}", got)
}

func TestNodeNoFields(t *testing.T) {
	got, err := Node(cstruct.New("empty"), Options{})
	require.NoError(t, err)
	assert.Equal(t, `empty [label=<<B>struct empty</B><BR ALIGN="LEFT"/>>]`, got)
}

func TestNodeOptions(t *testing.T) {
	s := cstruct.New("S")
	s.AddField(cstruct.Field{TypeName: "T", Name: "f"})

	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"default", Options{}, `S [label=<<B>struct S</B><BR ALIGN="LEFT"/><FONT COLOR="purple">T</FONT>    f<BR ALIGN="LEFT"/>>]`},
		{"accent", Options{AccentColor: "#7b2cbf"}, `S [label=<<B>struct S</B><BR ALIGN="LEFT"/><FONT COLOR="#7b2cbf">T</FONT>    f<BR ALIGN="LEFT"/>>]`},
		{"no color", Options{NoColor: true}, `S [label=<<B>struct S</B><BR ALIGN="LEFT"/>T    f<BR ALIGN="LEFT"/>>]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Node(s, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNodeAnonymous(t *testing.T) {
	_, err := Node(cstruct.New(""), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingName))
	assert.True(t, svzerrors.Is(err, svzerrors.ErrCodeMissingIdentity))

	_, err = Node(nil, Options{})
	assert.True(t, errors.Is(err, ErrMissingName))
}

func TestNodeEscapesLabelText(t *testing.T) {
	s := cstruct.New("S")
	s.AddField(cstruct.Field{TypeName: "a<b>", Name: "x&y"})

	got, err := Node(s, Options{NoColor: true})
	require.NoError(t, err)
	assert.Contains(t, got, "a&lt;b&gt;")
	assert.Contains(t, got, "x&amp;y")
	assertBalanced(t, got)
}

func TestNodeQuotesUnusualIDs(t *testing.T) {
	tests := map[string]string{
		"plain_name": "plain_name",
		"node":       `"node"`,
		"Graph":      `"Graph"`,
		"weird-name": `"weird-name"`,
		`q"uote`:     `"q\"uote"`,
	}
	for name, want := range tests {
		assert.Equal(t, want, nodeID(name), name)
	}
}

func TestToDOTInvalidColor(t *testing.T) {
	_, err := ToDOT(depgraph.New(), Options{AccentColor: `red" onload="x`})
	assert.True(t, svzerrors.Is(err, svzerrors.ErrCodeInvalidColor))

	_, err = ToDOT(depgraph.New(), Options{AccentColor: `red" onload="x`, NoColor: true})
	assert.NoError(t, err)
}

func TestToDOTDeterministic(t *testing.T) {
	g := buildGraph(t, `
struct a { b x; c y; a self; };
struct b { c z; };
struct c { a back; };`)

	first, err := ToDOT(g, Options{})
	require.NoError(t, err)
	for range 10 {
		again, err := ToDOT(g, Options{})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestToDOTShape(t *testing.T) {
	g := buildGraph(t, `
typedef struct tree { tree *left; tree *right; value_t v; } tree_t;
struct value_t { char buf[16]; unsigned long len; };
struct forest { tree **trees; };`)

	got, err := ToDOT(g, Options{})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got, "digraph svz {\n"))
	assert.True(t, strings.HasSuffix(got, "}"))
	assertBalanced(t, got)
	assert.Contains(t, got, "tree -> tree;\n")
	assert.Contains(t, got, "tree -> value_t;\n")
	assert.Contains(t, got, "forest -> tree;\n")
}

func TestWriteDOT(t *testing.T) {
	g := buildGraph(t, "struct S { S next; }")

	var buf bytes.Buffer
	require.NoError(t, WriteDOT(&buf, g, Options{}))

	s, err := ToDOT(g, Options{})
	require.NoError(t, err)
	assert.Equal(t, s, buf.String())
}

// assertBalanced checks that every node label opens and closes its
// HTML-like markup.
func assertBalanced(t *testing.T, dot string) {
	t.Helper()
	for _, line := range strings.Split(dot, "\n") {
		if !strings.Contains(line, "[label=<") {
			continue
		}
		assert.True(t, strings.HasSuffix(line, ">]"), line)
		assert.Equal(t, strings.Count(line, "<B>"), strings.Count(line, "</B>"), line)
		assert.Equal(t, strings.Count(line, "<FONT"), strings.Count(line, "</FONT>"), line)

		depth := 0
		for _, r := range line {
			switch r {
			case '<':
				depth++
			case '>':
				depth--
			}
			require.GreaterOrEqual(t, depth, 0, line)
		}
		assert.Zero(t, depth, line)
	}
}
