// Package render provides output conversion shared by the svz renderers.
//
// # Overview
//
// The [dot] subpackage turns a structure dependency graph into Graphviz DOT
// source and lays it out as SVG or PNG in-process. This package holds the
// format conversion that needs an external tool:
//
//	svg, err := dot.RenderSVG(ctx, src)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
//
// [ToPDF] and [ToPNG] run rsvg-convert (from librsvg). [Available] reports
// whether it is installed so callers can fail before doing any work.
//
// [dot]: github.com/matzehuels/svz/pkg/render/dot
package render
