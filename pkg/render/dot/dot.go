package dot

import (
	"errors"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"

	"github.com/matzehuels/svz/pkg/cstruct"
	"github.com/matzehuels/svz/pkg/depgraph"
	svzerrors "github.com/matzehuels/svz/pkg/errors"
)

// DefaultAccentColor is the color of field type names when none is set.
const DefaultAccentColor = "purple"

// GraphName is the identifier of the emitted digraph.
const GraphName = "svz"

// ErrMissingName is wrapped by the error [Node] returns for an anonymous
// structure, which has no identifier to use as a node ID.
var ErrMissingName = errors.New("structure has no name")

const lineBreak = `<BR ALIGN="LEFT"/>`

var plainIDRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Options configures DOT generation.
type Options struct {
	// AccentColor colors field type names. Empty means DefaultAccentColor.
	AccentColor string
	// NoColor leaves type names uncolored.
	NoColor bool
}

// Validate checks that the accent color can be embedded in a label.
func (o Options) Validate() error {
	if o.NoColor || o.AccentColor == "" {
		return nil
	}
	return svzerrors.ValidateColor(o.AccentColor)
}

func (o Options) accent() string {
	if o.AccentColor == "" {
		return DefaultAccentColor
	}
	return o.AccentColor
}

// ToDOT converts a dependency graph to Graphviz DOT source.
// The result can be rendered with [RenderSVG], [RenderPNG] or [RenderPDF].
func ToDOT(g *depgraph.Graph, opts Options) (string, error) {
	var buf strings.Builder
	if err := WriteDOT(&buf, g, opts); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteDOT writes the DOT source for g to w.
func WriteDOT(w io.Writer, g *depgraph.Graph, opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	var buf strings.Builder
	fmt.Fprintf(&buf, "digraph %s {\n", GraphName)
	for _, s := range g.Nodes() {
		line, err := Node(s, opts)
		if err != nil {
			return err
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "%s -> %s;\n", nodeID(e.From), nodeID(e.To))
	}
	buf.WriteByte('}')

	_, err := io.WriteString(w, buf.String())
	return err
}

// Node renders the node definition line for one structure, without a
// trailing newline. Anonymous structures are rejected with a
// MISSING_IDENTITY error.
func Node(s *cstruct.Structure, opts Options) (string, error) {
	if s == nil || s.Anonymous() {
		return "", svzerrors.Wrap(svzerrors.ErrCodeMissingIdentity, ErrMissingName, "cannot render anonymous structure")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s [label=<<B>struct %s</B>", nodeID(s.Name()), html.EscapeString(s.Name()))

	padding := s.Padding()
	for _, f := range s.Fields() {
		gap := padding - len(f.TypeName)
		if gap < 0 {
			panic(fmt.Sprintf("dot: padding %d of struct %s is shorter than type %q", padding, s.Name(), f.TypeName))
		}

		b.WriteString(lineBreak)
		typeName := html.EscapeString(f.TypeName)
		if opts.NoColor {
			b.WriteString(typeName)
		} else {
			fmt.Fprintf(&b, `<FONT COLOR="%s">%s</FONT>`, opts.accent(), typeName)
		}
		b.WriteString(strings.Repeat(" ", gap))
		b.WriteString(html.EscapeString(f.Name))
	}

	b.WriteString(lineBreak)
	b.WriteString(">]")
	return b.String(), nil
}

// DOT keywords are case-insensitive and cannot be used as bare node IDs.
var keywords = map[string]bool{
	"node": true, "edge": true, "graph": true, "digraph": true, "subgraph": true, "strict": true,
}

// nodeID returns name unchanged when it is a plain DOT identifier and as a
// quoted string otherwise.
func nodeID(name string) string {
	if plainIDRe.MatchString(name) && !keywords[strings.ToLower(name)] {
		return name
	}
	return `"` + strings.ReplaceAll(strings.ReplaceAll(name, `\`, `\\`), `"`, `\"`) + `"`
}
