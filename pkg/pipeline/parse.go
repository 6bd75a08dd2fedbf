package pipeline

import (
	"context"
	"slices"
	"strings"

	svzerrors "github.com/matzehuels/svz/pkg/errors"
	"github.com/matzehuels/svz/pkg/parser"
	"github.com/matzehuels/svz/pkg/parser/treesitter"
)

// extractors maps extractor names to constructors.
var extractors = map[string]func() parser.Extractor{
	parser.NameTolerant: parser.New,
	treesitter.Name:     treesitter.New,
}

// Extractor returns the extractor registered under name.
func Extractor(name string) (parser.Extractor, error) {
	newExtractor, ok := extractors[name]
	if !ok {
		return nil, svzerrors.New(svzerrors.ErrCodeInvalidParser,
			"unknown parser: %q (must be one of: %s)", name, strings.Join(Parsers(), ", "))
	}
	return newExtractor(), nil
}

// Parsers returns the registered extractor names, sorted.
func Parsers() []string {
	names := make([]string, 0, len(extractors))
	for name := range extractors {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Parse extracts structures from every source without caching. Results are
// concatenated in source order and skips are tagged with the source name.
func Parse(ctx context.Context, ex parser.Extractor, sources []Source) (parser.Result, error) {
	var res parser.Result
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return parser.Result{}, err
		}
		res.Append(ex.Extract(src.Text), src.Name)
	}
	return res, nil
}
