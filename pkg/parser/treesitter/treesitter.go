// Package treesitter provides a [parser.Extractor] backed by the tree-sitter
// C grammar.
//
// It sees the same structures as the tolerant scanner on well-formed input
// and applies the same field normalisation (pointers dropped, arrays marked
// with "[]", struct/union/enum qualifiers dropped), but it understands the
// full declaration syntax: declarator lists, bitfields and nested braces do
// not truncate a structure. Declarators it cannot map to a single named
// field, such as function pointers, are reported as [parser.SkipFields].
package treesitter

import (
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"

	"github.com/matzehuels/svz/pkg/cstruct"
	"github.com/matzehuels/svz/pkg/parser"
)

// Name is the extractor name used in options and cache keys.
const Name = "treesitter"

var parserPool = sync.Pool{
	New: func() any {
		p := sitter.NewParser()
		p.SetLanguage(c.GetLanguage())
		return p
	},
}

type extractor struct{}

// New returns the tree-sitter extractor.
func New() parser.Extractor { return extractor{} }

func (extractor) Name() string { return Name }

func (extractor) Extract(src string) parser.Result {
	content := []byte(src)

	p := parserPool.Get().(*sitter.Parser)
	defer parserPool.Put(p)

	tree := p.Parse(nil, content)
	if tree == nil {
		return parser.Result{}
	}
	defer tree.Close()

	w := walker{content: content}
	w.walk(tree.RootNode())
	return w.res
}

type walker struct {
	content []byte
	res     parser.Result
}

func (w *walker) walk(n *sitter.Node) {
	if n == nil {
		return
	}
	if n.Type() == "struct_specifier" {
		if body := n.ChildByFieldName("body"); body != nil {
			w.structure(n, body)
			return
		}
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		w.walk(n.Child(i))
	}
}

func (w *walker) structure(n, body *sitter.Node) {
	name := ""
	if id := n.ChildByFieldName("name"); id != nil {
		name = w.text(id)
	}
	st := cstruct.New(name)

	if body.HasError() {
		w.skip(body, "syntax error in field block", name)
	}

	for i := 0; i < int(body.NamedChildCount()); i++ {
		decl := body.NamedChild(i)
		if decl.Type() != "field_declaration" {
			continue
		}
		typeName, ok := w.typeName(decl.ChildByFieldName("type"))
		if !ok {
			w.skip(decl, "unsupported field type", name)
			continue
		}
		for j := 0; j < int(decl.NamedChildCount()); j++ {
			d := decl.NamedChild(j)
			if !isDeclarator(d.Type()) {
				continue
			}
			fieldName, array, ok := w.declarator(d)
			if !ok {
				w.skip(d, "unsupported declarator", name)
				continue
			}
			f := cstruct.Field{TypeName: typeName, Name: fieldName}
			if array {
				f.TypeName += "[]"
			}
			st.AddField(f)
		}
	}

	w.res.Structures = append(w.res.Structures, st)
}

// typeName returns the dependency-relevant name of a field type node.
func (w *walker) typeName(n *sitter.Node) (string, bool) {
	if n == nil {
		return "", false
	}
	switch n.Type() {
	case "struct_specifier", "union_specifier", "enum_specifier":
		id := n.ChildByFieldName("name")
		if id == nil {
			return "", false
		}
		return w.text(id), true
	case "primitive_type", "type_identifier", "sized_type_specifier":
		return strings.Join(strings.Fields(w.text(n)), " "), true
	default:
		return "", false
	}
}

// declarator unwraps pointer and array declarators down to the field name.
func (w *walker) declarator(n *sitter.Node) (name string, array, ok bool) {
	for n != nil {
		switch n.Type() {
		case "field_identifier":
			return w.text(n), array, true
		case "pointer_declarator":
			n = n.ChildByFieldName("declarator")
		case "array_declarator":
			array = true
			n = n.ChildByFieldName("declarator")
		default:
			return "", false, false
		}
	}
	return "", false, false
}

func isDeclarator(typ string) bool {
	switch typ {
	case "field_identifier", "pointer_declarator", "array_declarator",
		"function_declarator", "parenthesized_declarator":
		return true
	}
	return false
}

func (w *walker) skip(n *sitter.Node, reason, structure string) {
	pt := n.StartPoint()
	w.res.Skipped = append(w.res.Skipped, parser.Skip{
		Kind: parser.SkipFields,
		Pos: parser.Pos{
			Offset: int(n.StartByte()),
			Line:   int(pt.Row) + 1,
			Column: int(pt.Column) + 1,
		},
		Reason:    reason,
		Structure: structure,
	})
}

func (w *walker) text(n *sitter.Node) string {
	return string(w.content[n.StartByte():n.EndByte()])
}
