// Package cstruct holds the data model shared by the parser, the dependency
// graph and the renderers: a [Field] is a (type name, field name) pair and a
// [Structure] is an optionally named, ordered list of fields.
//
// A Structure derives its display padding from the fields it holds. The
// padding is the column width reserved between a field's type and its name
// when a structure is rendered:
//
//	padding = max(BasePadding, len(longest type name) + BasePadding)
//
// The value is maintained by [Structure.AddField] and cannot be set directly,
// so renderers can always rely on Padding() - len(type) being non-negative.
package cstruct

import "slices"

// BasePadding is the minimum gap, in characters, between a field's type and
// its name.
const BasePadding = 4

// Field is a single member of a structure. Fields are plain values:
// two fields with the same type and name are interchangeable.
type Field struct {
	TypeName string // Type as written, with pointer notation stripped ("node", "char[]")
	Name     string // Member name
}

// Structure is the parsed representation of one C struct declaration.
//
// The zero value is an anonymous structure with no fields and is ready to use.
// Structure is not safe for concurrent mutation.
type Structure struct {
	name    string
	fields  []Field
	padding int
}

// New creates a structure with the given name. An empty name creates an
// anonymous structure, which is valid to parse but cannot become a graph node.
func New(name string) *Structure {
	return &Structure{name: name, padding: BasePadding}
}

// AddField appends f and grows the display padding so that it is at least
// len(f.TypeName) + BasePadding.
func (s *Structure) AddField(f Field) {
	s.padding = max(s.Padding(), len(f.TypeName)+BasePadding)
	s.fields = append(s.fields, f)
}

// Name returns the structure name, or "" for an anonymous structure.
func (s *Structure) Name() string { return s.name }

// Anonymous reports whether the structure has no name.
func (s *Structure) Anonymous() bool { return s.name == "" }

// Fields returns a copy of the fields in declaration order.
func (s *Structure) Fields() []Field { return slices.Clone(s.fields) }

// FieldCount returns the number of fields.
func (s *Structure) FieldCount() int { return len(s.fields) }

// Padding returns the display padding. It is never below BasePadding.
func (s *Structure) Padding() int { return max(s.padding, BasePadding) }

// References reports whether any field has the given type name.
func (s *Structure) References(typeName string) bool {
	return slices.ContainsFunc(s.fields, func(f Field) bool { return f.TypeName == typeName })
}

// Equal reports whether s and o have the same name and fields in the same order.
func (s *Structure) Equal(o *Structure) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.name == o.name && slices.Equal(s.fields, o.fields)
}

// Clone returns a deep copy of s.
func (s *Structure) Clone() *Structure {
	return &Structure{
		name:    s.name,
		fields:  slices.Clone(s.fields),
		padding: s.padding,
	}
}
