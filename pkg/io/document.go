package io

import (
	"fmt"

	"github.com/matzehuels/svz/pkg/cstruct"
	"github.com/matzehuels/svz/pkg/depgraph"
	svzerrors "github.com/matzehuels/svz/pkg/errors"
	"github.com/matzehuels/svz/pkg/parser"
)

// Version is the document format version written by this package.
const Version = 1

// Document is the serialized form of a parse result.
type Document struct {
	Version    int         `json:"version" yaml:"version" msgpack:"version"`
	Parser     string      `json:"parser,omitempty" yaml:"parser,omitempty" msgpack:"parser,omitempty"`
	Structures []Structure `json:"structures" yaml:"structures" msgpack:"structures"`
	Edges      []Edge      `json:"edges,omitempty" yaml:"edges,omitempty" msgpack:"edges,omitempty"`
	Skipped    []Skip      `json:"skipped,omitempty" yaml:"skipped,omitempty" msgpack:"skipped,omitempty"`
}

// Structure is one struct declaration. An empty name marks an anonymous
// structure.
type Structure struct {
	Name    string  `json:"name" yaml:"name" msgpack:"name"`
	Padding int     `json:"padding,omitempty" yaml:"padding,omitempty" msgpack:"padding,omitempty"`
	Fields  []Field `json:"fields" yaml:"fields" msgpack:"fields"`
}

// Field is one structure member.
type Field struct {
	Type string `json:"type" yaml:"type" msgpack:"type"`
	Name string `json:"name" yaml:"name" msgpack:"name"`
}

// Edge is a dependency between two named structures.
type Edge struct {
	From string `json:"from" yaml:"from" msgpack:"from"`
	To   string `json:"to" yaml:"to" msgpack:"to"`
}

// Skip is a fragment the parser could not interpret.
type Skip struct {
	Kind      string `json:"kind" yaml:"kind" msgpack:"kind"`
	Source    string `json:"source,omitempty" yaml:"source,omitempty" msgpack:"source,omitempty"`
	Line      int    `json:"line" yaml:"line" msgpack:"line"`
	Column    int    `json:"column" yaml:"column" msgpack:"column"`
	Offset    int    `json:"offset" yaml:"offset" msgpack:"offset"`
	Structure string `json:"structure,omitempty" yaml:"structure,omitempty" msgpack:"structure,omitempty"`
	Reason    string `json:"reason" yaml:"reason" msgpack:"reason"`
}

// FromResult converts a parse result into a document. When g is non-nil its
// edges are included.
func FromResult(res parser.Result, g *depgraph.Graph) Document {
	doc := Document{
		Version:    Version,
		Structures: make([]Structure, len(res.Structures)),
	}
	for i, s := range res.Structures {
		doc.Structures[i] = fromStructure(s)
	}
	for _, sk := range res.Skipped {
		doc.Skipped = append(doc.Skipped, Skip{
			Kind:      sk.Kind.String(),
			Source:    sk.Source,
			Line:      sk.Pos.Line,
			Column:    sk.Pos.Column,
			Offset:    sk.Pos.Offset,
			Structure: sk.Structure,
			Reason:    sk.Reason,
		})
	}
	if g != nil {
		for _, e := range g.Edges() {
			doc.Edges = append(doc.Edges, Edge{From: e.From, To: e.To})
		}
	}
	return doc
}

func fromStructure(s *cstruct.Structure) Structure {
	out := Structure{Name: s.Name(), Padding: s.Padding(), Fields: make([]Field, 0, s.FieldCount())}
	for _, f := range s.Fields() {
		out.Fields = append(out.Fields, Field{Type: f.TypeName, Name: f.Name})
	}
	return out
}

// Result converts the document back into a parse result. Padding is
// recomputed from the field types.
func (d Document) Result() parser.Result {
	res := parser.Result{Structures: make([]*cstruct.Structure, len(d.Structures))}
	for i, s := range d.Structures {
		st := cstruct.New(s.Name)
		for _, f := range s.Fields {
			st.AddField(cstruct.Field{TypeName: f.Type, Name: f.Name})
		}
		res.Structures[i] = st
	}
	for _, sk := range d.Skipped {
		kind := parser.SkipDeclaration
		if sk.Kind == parser.SkipFields.String() {
			kind = parser.SkipFields
		}
		res.Skipped = append(res.Skipped, parser.Skip{
			Kind:      kind,
			Pos:       parser.Pos{Offset: sk.Offset, Line: sk.Line, Column: sk.Column},
			Reason:    sk.Reason,
			Structure: sk.Structure,
			Source:    sk.Source,
		})
	}
	return res
}

// Validate checks that the document can be turned into structures.
func (d Document) Validate() error {
	if d.Version > Version {
		return svzerrors.New(svzerrors.ErrCodeUnsupported, "document version %d is newer than supported version %d", d.Version, Version)
	}
	for i, s := range d.Structures {
		for j, f := range s.Fields {
			if f.Type == "" || f.Name == "" {
				return svzerrors.New(svzerrors.ErrCodeInvalidInput, "structure %s: field %d: type and name are required", label(s.Name, i), j)
			}
		}
	}
	return nil
}

func label(name string, i int) string {
	if name == "" {
		return fmt.Sprintf("#%d (anonymous)", i)
	}
	return name
}
