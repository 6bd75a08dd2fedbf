package parser

import (
	"fmt"

	"github.com/matzehuels/svz/pkg/cstruct"
)

// SkipKind classifies what part of the input a [Skip] dropped.
type SkipKind int

const (
	// SkipDeclaration means a whole typedef/struct declaration was dropped.
	// This includes keyword occurrences that are not definitions at all,
	// such as forward declarations or `struct node *` parameter types.
	SkipDeclaration SkipKind = iota
	// SkipFields means a structure was kept but field extraction stopped
	// early, so it may be missing trailing fields.
	SkipFields
)

// String returns "declaration" or "fields".
func (k SkipKind) String() string {
	switch k {
	case SkipDeclaration:
		return "declaration"
	case SkipFields:
		return "fields"
	default:
		return fmt.Sprintf("SkipKind(%d)", int(k))
	}
}

// Pos is a location in the source text. Offset is 0-based in bytes,
// Line and Column are 1-based.
type Pos struct {
	Offset int
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Skip records input that the parser could not interpret and left out of
// the result. Skips are diagnostics only; they never fail a parse.
type Skip struct {
	Kind      SkipKind
	Pos       Pos
	Reason    string
	Structure string // name of the affected structure (SkipFields only)
	Source    string // set by callers that merge results from several inputs
}

func (s Skip) String() string {
	loc := s.Pos.String()
	if s.Source != "" {
		loc = s.Source + ":" + loc
	}
	if s.Structure != "" {
		return fmt.Sprintf("%s: %s skipped in struct %s: %s", loc, s.Kind, s.Structure, s.Reason)
	}
	return fmt.Sprintf("%s: %s skipped: %s", loc, s.Kind, s.Reason)
}

// Result is the outcome of parsing one input: every structure that could be
// extracted, in source order, and every fragment that was skipped.
type Result struct {
	Structures []*cstruct.Structure
	Skipped    []Skip
}

// Append adds the structures and skips of o to r, tagging o's skips with
// source when they are not tagged yet.
func (r *Result) Append(o Result, source string) {
	r.Structures = append(r.Structures, o.Structures...)
	for _, s := range o.Skipped {
		if s.Source == "" {
			s.Source = source
		}
		r.Skipped = append(r.Skipped, s)
	}
}

// SkippedCount returns the number of skips of the given kind.
func (r Result) SkippedCount(kind SkipKind) int {
	n := 0
	for _, s := range r.Skipped {
		if s.Kind == kind {
			n++
		}
	}
	return n
}

// Extractor turns raw source text into structures. Implementations must be
// safe to call repeatedly and keep no state between calls.
type Extractor interface {
	// Name identifies the extractor ("tolerant", "treesitter").
	Name() string
	// Extract parses src. It never fails; anything it cannot interpret is
	// reported in Result.Skipped.
	Extract(src string) Result
}
