package errors

import "regexp"

var (
	namedColorRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9]{0,31}$`)
	hexColorRe   = regexp.MustCompile(`^#(?:[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
)

// ValidateColor checks that c is safe to embed in a Graphviz HTML-like
// label: either an X11/SVG color name ("purple", "grey40") or an RGB(A) hex
// value ("#7b2cbf"). Anything else is rejected with ErrCodeInvalidColor
// rather than escaped, since it would never name a usable color.
func ValidateColor(c string) error {
	if c == "" {
		return New(ErrCodeInvalidColor, "color cannot be empty")
	}
	if !namedColorRe.MatchString(c) && !hexColorRe.MatchString(c) {
		return New(ErrCodeInvalidColor, "invalid color %q: use a color name or #RRGGBB", c)
	}
	return nil
}
