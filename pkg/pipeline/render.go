package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/matzehuels/svz/pkg/depgraph"
	svzerrors "github.com/matzehuels/svz/pkg/errors"
	svzio "github.com/matzehuels/svz/pkg/io"
	"github.com/matzehuels/svz/pkg/parser"
	"github.com/matzehuels/svz/pkg/render"
	"github.com/matzehuels/svz/pkg/render/dot"
)

// isRaster reports whether format goes through Graphviz layout. Only these
// formats are worth caching.
func isRaster(format string) bool {
	switch format {
	case FormatSVG, FormatPNG, FormatPDF:
		return true
	}
	return false
}

// Render generates output artifacts in the requested formats without
// caching. dotText must be the DOT source of g.
func Render(ctx context.Context, dotText string, g *depgraph.Graph, parsed parser.Result, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := RenderFormat(ctx, format, dotText, g, parsed, opts)
		if err != nil {
			return nil, err
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// RenderFormat produces a single artifact.
func RenderFormat(ctx context.Context, format, dotText string, g *depgraph.Graph, parsed parser.Result, opts Options) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatDOT:
		return []byte(dotText), nil
	case FormatSVG:
		data, err = dot.RenderSVG(ctx, dotText)
	case FormatPNG:
		data, err = renderPNG(ctx, dotText, opts.Scale)
	case FormatPDF:
		data, err = dot.RenderPDF(ctx, dotText)
	case FormatJSON:
		var buf bytes.Buffer
		err = svzio.WriteJSON(svzio.FromResult(parsed, g), &buf)
		data = buf.Bytes()
	case FormatYAML:
		var buf bytes.Buffer
		err = svzio.WriteYAML(svzio.FromResult(parsed, g), &buf)
		data = buf.Bytes()
	default:
		return nil, ValidateFormat(format)
	}
	if err != nil {
		return nil, svzerrors.Wrap(svzerrors.ErrCodeUnavailable, err, "render %s", format)
	}
	return data, nil
}

func renderPNG(ctx context.Context, dotText string, scale float64) ([]byte, error) {
	if scale == 0 || scale == DefaultScale {
		return dot.RenderPNG(ctx, dotText)
	}
	svg, err := dot.RenderSVG(ctx, dotText)
	if err != nil {
		return nil, err
	}
	png, err := render.ToPNG(ctx, svg, scale)
	if err != nil {
		return nil, fmt.Errorf("scale png: %w", err)
	}
	return png, nil
}
