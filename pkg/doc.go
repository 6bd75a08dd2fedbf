// Package pkg provides the core libraries for svz struct dependency graphs.
//
// # Overview
//
// svz reads C source, extracts struct declarations and draws which structures
// contain fields of which other structure types. The pkg directory is
// organized into four areas:
//
//  1. Domain model - [cstruct], [parser], [depgraph]
//  2. Output - [render/dot], [render], [io]
//  3. Orchestration - [pipeline], [cache], [observability]
//  4. Stores - [store/neo4j]
//
// # Architecture
//
// The data flow through svz:
//
//	C source text
//	     ↓
//	[parser] package (tolerant scanner or tree-sitter)
//	     ↓
//	[cstruct] structures, in source order
//	     ↓
//	[depgraph] package (nodes keyed by name, field-type edges)
//	     ↓
//	[render/dot] package (Graphviz DOT, optionally laid out)
//	     ↓
//	DOT/SVG/PNG/PDF/JSON/YAML output
//
// # Quick Start
//
// Turn a header into DOT without any caching:
//
//	out, err := pipeline.Generate(src, dot.Options{})
//
// Run the full pipeline with a file cache, as the CLI does:
//
//	c, _ := cache.NewFileCache(dir)
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Execute(ctx, []pipeline.Source{{Name: "list.h", Text: src}},
//	    pipeline.Options{Formats: []string{"dot", "svg"}})
//
// # Main Packages
//
// [cstruct] - The Structure and Field model. A structure owns its fields and
// the padding used to align field names in labels.
//
// [parser] - The tolerant struct scanner and the [parser.Extractor] interface.
// Malformed declarations are reported as skips instead of failing the parse.
// [parser/treesitter] implements the same interface over the tree-sitter C
// grammar.
//
// [depgraph] - Directed graph of structures keyed by name. Edges follow field
// types; cycles and self-loops are allowed.
//
// [render/dot] - DOT emission with HTML-like labels, plus in-process layout
// through Graphviz. [render] converts SVG to PDF and scaled PNG.
//
// [io] - The model document (JSON, YAML, msgpack) shared by the CLI, the
// cache and the HTTP API.
//
// [pipeline] - parse → build → render, used by the CLI and the server so both
// behave the same. Runner adds caching, hooks and spans.
//
// [cache] - File, Redis and null caches behind one interface, with keyers
// that scope keys per deployment.
//
// [store/neo4j] - Batched export of a graph into Neo4j.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/parser/...             # Specific package
//	go test -run Example ./pkg/...       # Examples only
//
// [cstruct]: https://pkg.go.dev/github.com/matzehuels/svz/pkg/cstruct
// [parser]: https://pkg.go.dev/github.com/matzehuels/svz/pkg/parser
// [parser/treesitter]: https://pkg.go.dev/github.com/matzehuels/svz/pkg/parser/treesitter
// [parser.Extractor]: https://pkg.go.dev/github.com/matzehuels/svz/pkg/parser#Extractor
// [depgraph]: https://pkg.go.dev/github.com/matzehuels/svz/pkg/depgraph
// [render/dot]: https://pkg.go.dev/github.com/matzehuels/svz/pkg/render/dot
// [render]: https://pkg.go.dev/github.com/matzehuels/svz/pkg/render
// [io]: https://pkg.go.dev/github.com/matzehuels/svz/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/svz/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/svz/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/svz/pkg/observability
// [store/neo4j]: https://pkg.go.dev/github.com/matzehuels/svz/pkg/store/neo4j
package pkg
