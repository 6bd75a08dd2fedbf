// Package parser extracts struct declarations from C source text.
//
// The default extractor is deliberately tolerant: it scans the input for the
// next `typedef` or `struct` keyword, tries to read one declaration from
// there, and on failure records a [Skip] and resumes scanning after the
// failure point. Anything that is not a struct definition is ignored, so a
// parse never fails and never loops.
//
// Accepted shapes:
//
//	struct name { type field; ... }
//	typedef struct name { type field; ... } alias;
//	struct { ... }                       (anonymous)
//
// Field types keep their identifier, drop pointer notation and mark arrays
// with a literal "[]" suffix:
//
//	char **** buffer;   -> {char, buffer}
//	char[] buffer;      -> {char[], buffer}
//	char buf[16];       -> {char[], buf}
//	struct node *next;  -> {node, next}
//	int x, *y;          -> {int, x}, {int, y}
//
// Block bodies end at the first `}`; nested definitions are not supported.
package parser

import (
	"regexp"
	"strings"

	"github.com/matzehuels/svz/pkg/cstruct"
)

// NameTolerant is the name of the extractor returned by [New].
const NameTolerant = "tolerant"

var keywordRe = regexp.MustCompile(`\b(typedef|struct)\b`)

// Words that combine with the following word into one type name,
// as in "unsigned long int".
var sizedWords = map[string]bool{
	"unsigned": true, "signed": true, "short": true, "long": true,
	"int": true, "char": true, "double": true,
}

// Stop sets for identifiers. Names additionally stop at '{' at the
// declaration level and never at '*' inside a field.
const (
	space     = " \t\n\r\v\f"
	typeStop  = space + ";*[,()"
	fieldStop = space + ";[,()"
)

// Qualifiers that carry no dependency information and are dropped.
var cvQualifiers = map[string]bool{
	"const": true, "volatile": true, "restrict": true,
}

type tolerant struct{}

// New returns the tolerant keyword-scanning extractor.
func New() Extractor { return tolerant{} }

func (tolerant) Name() string { return NameTolerant }

func (tolerant) Extract(src string) Result { return Parse(src) }

// Parse extracts every struct declaration it can find in src, in source
// order. Input without any `typedef`/`struct` keyword yields an empty Result.
func Parse(src string) Result {
	text := blankNonCode(src)
	lines := newLineIndex(text)

	var res Result
	pos := 0
	for pos < len(text) {
		loc := keywordRe.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start := pos + loc[0]

		c := &cursor{src: text, pos: start}
		st, truncated, err := c.declaration()
		if err != nil {
			res.Skipped = append(res.Skipped, Skip{
				Kind:   SkipDeclaration,
				Pos:    lines.pos(err.offset),
				Reason: err.reason,
			})
			pos = max(err.offset, start+1)
			continue
		}
		if truncated != nil {
			res.Skipped = append(res.Skipped, Skip{
				Kind:      SkipFields,
				Pos:       lines.pos(truncated.offset),
				Reason:    truncated.reason,
				Structure: st.Name(),
			})
		}
		res.Structures = append(res.Structures, st)
		pos = c.pos
	}
	return res
}

// =============================================================================
// Declarations
// =============================================================================

type syntaxError struct {
	offset int
	reason string
}

type cursor struct {
	src string
	pos int
}

func (c *cursor) fail(reason string) *syntaxError {
	return &syntaxError{offset: c.pos, reason: reason}
}

// declaration reads one struct declaration starting at a keyword. On success
// the cursor sits right after the closing brace; a trailing typedef alias is
// left for the next scan, which ignores it. truncated is non-nil when field
// extraction stopped before the end of the block.
func (c *cursor) declaration() (st *cstruct.Structure, truncated, err *syntaxError) {
	if c.keyword("typedef") {
		c.skipSpace()
	}
	if c.keyword("struct") {
		c.skipSpace()
	}

	nameAt := c.pos
	name := c.ident(space + ";{")
	switch name {
	case "enum", "union":
		return nil, nil, &syntaxError{offset: nameAt, reason: name + " declaration"}
	}
	c.skipSpace()

	if !c.consume('{') {
		return nil, nil, c.fail("expected '{'")
	}
	bodyStart := c.pos
	end := strings.IndexByte(c.src[bodyStart:], '}')
	if end < 0 {
		return nil, nil, c.fail("unterminated field block")
	}
	bodyEnd := bodyStart + end

	st = cstruct.New(name)
	body := &cursor{src: c.src[:bodyEnd], pos: bodyStart}
	for {
		body.skipSpace()
		if body.eof() {
			break
		}
		at := body.pos
		fs, ferr := body.fields()
		if ferr == nil {
			body.skipSpace()
			if !body.consume(';') {
				ferr = body.fail("expected ';'")
			}
		}
		if ferr != nil {
			truncated = &syntaxError{offset: at, reason: ferr.reason}
			break
		}
		for _, f := range fs {
			st.AddField(f)
		}
	}

	c.pos = bodyEnd + 1
	return st, truncated, nil
}

// fields reads `type name[, name...]` without the terminating ';'. Each
// declarator carries its own pointer and array notation.
func (c *cursor) fields() ([]cstruct.Field, *syntaxError) {
	for _, q := range []string{"enum", "union", "struct"} {
		if c.keyword(q) {
			if !c.skipSpace() {
				return nil, c.fail("expected space after " + q)
			}
			break
		}
	}

	typeName, err := c.typeIdent()
	if err != nil {
		return nil, err
	}

	var out []cstruct.Field
	for {
		array, err := c.declarator()
		if err != nil {
			return nil, err
		}
		name := c.ident(fieldStop)
		if name == "" {
			return nil, c.fail("expected field name")
		}
		if c.peek() == '[' {
			if _, err := c.brackets(); err != nil {
				return nil, err
			}
			array = true
		}

		f := cstruct.Field{TypeName: typeName, Name: name}
		if array {
			f.TypeName += "[]"
		}
		out = append(out, f)

		c.skipSpace()
		if !c.consume(',') {
			return out, nil
		}
	}
}

// typeIdent reads the type identifier of a field. Leading cv-qualifiers are
// skipped and sized builtin types are joined ("unsigned long").
func (c *cursor) typeIdent() (string, *syntaxError) {
	for {
		save := c.pos
		word := c.ident(typeStop)
		if word == "" {
			return "", c.fail("expected type")
		}
		if !cvQualifiers[word] {
			c.pos = save
			break
		}
		c.skipSpace()
	}

	typeName := c.ident(typeStop)
	if !sizedWords[typeName] {
		return typeName, nil
	}
	for {
		save := c.pos
		c.skipSpace()
		next := c.ident(typeStop)
		if !sizedWords[next] {
			c.pos = save
			return typeName, nil
		}
		typeName += " " + next
	}
}

// declarator consumes the pointer and array notation between a type and a
// field name: any mix of '*', whitespace, cv-qualifiers and `[...]` groups.
// It reports whether an array suffix was seen.
func (c *cursor) declarator() (array bool, err *syntaxError) {
	for !c.eof() {
		switch ch := c.peek(); {
		case ch == '*' || isSpace(ch):
			c.pos++
		case ch == '[':
			if _, err := c.brackets(); err != nil {
				return false, err
			}
			array = true
		default:
			save := c.pos
			if word := c.ident(typeStop); cvQualifiers[word] {
				continue
			}
			c.pos = save
			return array, nil
		}
	}
	return array, nil
}

// brackets consumes consecutive `[...]` groups. Their contents are discarded.
func (c *cursor) brackets() (bool, *syntaxError) {
	seen := false
	for c.peek() == '[' {
		end := strings.IndexByte(c.src[c.pos:], ']')
		if end < 0 {
			return false, c.fail("unterminated array suffix")
		}
		c.pos += end + 1
		seen = true
	}
	return seen, nil
}

// =============================================================================
// Scanning primitives
// =============================================================================

func (c *cursor) eof() bool { return c.pos >= len(c.src) }

func (c *cursor) peek() byte {
	if c.eof() {
		return 0
	}
	return c.src[c.pos]
}

func (c *cursor) consume(b byte) bool {
	if c.eof() || c.src[c.pos] != b {
		return false
	}
	c.pos++
	return true
}

// skipSpace consumes whitespace and reports whether there was any.
func (c *cursor) skipSpace() bool {
	start := c.pos
	for !c.eof() && isSpace(c.src[c.pos]) {
		c.pos++
	}
	return c.pos > start
}

// keyword consumes kw when it appears at the cursor as a whole word.
func (c *cursor) keyword(kw string) bool {
	if !strings.HasPrefix(c.src[c.pos:], kw) {
		return false
	}
	end := c.pos + len(kw)
	if end < len(c.src) && isWord(c.src[end]) {
		return false
	}
	c.pos = end
	return true
}

// ident consumes a maximal run of bytes not in stop.
func (c *cursor) ident(stop string) string {
	start := c.pos
	for !c.eof() && strings.IndexByte(stop, c.src[c.pos]) < 0 {
		c.pos++
	}
	return c.src[start:c.pos]
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func isWord(b byte) bool {
	return b == '_' || b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}
