package parser

import "sort"

// blankNonCode replaces comments, literals and preprocessor lines with
// spaces so the scanner never sees keywords or braces inside them. Newlines
// are kept, so offsets and line numbers still refer to the original text.
func blankNonCode(src string) string {
	b := []byte(src)
	blank := func(from, to int) {
		for i := from; i < to; i++ {
			if b[i] != '\n' {
				b[i] = ' '
			}
		}
	}

	for i := 0; i < len(b); {
		switch {
		case b[i] == '/' && i+1 < len(b) && b[i+1] == '/':
			end := i
			for end < len(b) && b[end] != '\n' {
				end++
			}
			blank(i, end)
			i = end
		case b[i] == '/' && i+1 < len(b) && b[i+1] == '*':
			end := i + 2
			for end < len(b) && !(b[end] == '*' && end+1 < len(b) && b[end+1] == '/') {
				end++
			}
			end = min(end+2, len(b))
			blank(i, end)
			i = end
		case b[i] == '#' && atLineStart(b, i):
			end := i
			for end < len(b) && (b[end] != '\n' || b[end-1] == '\\') {
				end++
			}
			blank(i, end)
			i = end
		case b[i] == '"' || b[i] == '\'':
			end := skipLiteral(b, i)
			blank(i, end)
			i = end
		default:
			i++
		}
	}
	return string(b)
}

func atLineStart(b []byte, i int) bool {
	for j := i - 1; j >= 0; j-- {
		switch b[j] {
		case '\n':
			return true
		case ' ', '\t':
		default:
			return false
		}
	}
	return true
}

// skipLiteral returns the index after the string or char literal opened at i.
// Literals end at the matching quote or at the end of the line.
func skipLiteral(b []byte, i int) int {
	quote := b[i]
	for j := i + 1; j < len(b); j++ {
		switch b[j] {
		case '\\':
			j++
		case quote:
			return j + 1
		case '\n':
			return j
		}
	}
	return len(b)
}

// lineIndex maps byte offsets to 1-based line and column numbers.
type lineIndex []int

func newLineIndex(src string) lineIndex {
	idx := lineIndex{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			idx = append(idx, i+1)
		}
	}
	return idx
}

func (li lineIndex) pos(offset int) Pos {
	line := sort.Search(len(li), func(i int) bool { return li[i] > offset }) - 1
	return Pos{Offset: offset, Line: line + 1, Column: offset - li[line] + 1}
}
