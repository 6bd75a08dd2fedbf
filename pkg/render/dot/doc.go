// Package dot renders a structure dependency graph as Graphviz DOT.
//
// # Overview
//
// Each structure becomes one node whose HTML-like label lists the struct
// name in bold followed by one left-aligned line per field. The field type
// is shown in the accent color and padded with spaces so that field names
// line up:
//
//	digraph svz {
//	list [label=<<B>struct list</B><BR ALIGN="LEFT"/><FONT COLOR="purple">node</FONT>    head<BR ALIGN="LEFT"/>>]
//	list -> node;
//	}
//
// All node lines come first, in graph insertion order, followed by one edge
// line per dependency. The output never ends with a newline after the
// closing brace, and the same graph always renders to the same bytes.
//
// # Usage
//
//	dot, err := dot.ToDOT(g, dot.Options{})
//	svg, err := dot.RenderSVG(ctx, dot)
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG and
// PNG rendering. PDF conversion requires librsvg (rsvg-convert).
package dot
