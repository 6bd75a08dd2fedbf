// Package depgraph builds the dependency graph between parsed C structures.
//
// # Overview
//
// Every named [cstruct.Structure] becomes a node. An edge A -> B exists when
// A declares at least one field whose type name is exactly B's name. Self
// references (a linked-list node pointing at its own type) produce a
// self-loop, and there is never more than one edge per ordered pair no
// matter how many fields share the type.
//
// # Basic Usage
//
// [Build] derives the complete graph from parsed structures in one pass:
//
//	res := parser.Parse(src)
//	g, report := depgraph.Build(res.Structures)
//
// Anonymous structures cannot be nodes and are counted in [Report].
// When two structures share a name the first definition wins and the name
// is listed in [Report.Duplicates].
//
// The lower level [Graph.AddNode] and [Graph.AddEdge] primitives are
// idempotent and never drop existing edges, so graphs can also be built
// incrementally.
//
// # Ordering
//
// [Graph.Nodes] and [Graph.Edges] return insertion order. Build inserts
// nodes in parse order and edges in (source, target) parse order, which
// makes rendered output deterministic for a given input.
//
// # Concurrency
//
// Graph instances are not safe for concurrent mutation. A fully built graph
// can be read from multiple goroutines.
package depgraph
