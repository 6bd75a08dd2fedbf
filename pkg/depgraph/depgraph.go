package depgraph

import (
	"errors"

	"github.com/matzehuels/svz/pkg/cstruct"
)

var (
	// ErrAnonymousStructure is returned by [Graph.AddNode] and [Graph.AddEdge]
	// when a structure has no name. Anonymous structures have no identity and
	// cannot be referenced by field types.
	ErrAnonymousStructure = errors.New("anonymous structure cannot be a graph node")

	// ErrInvalidEdgeEndpoint is returned by [Graph.Validate] when an edge
	// references a node that doesn't exist. This indicates graph corruption.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")

	// ErrDuplicateEdge is returned by [Graph.Validate] when the same ordered
	// pair appears twice in the edge list.
	ErrDuplicateEdge = errors.New("duplicate edge")
)

// Edge is a directed dependency: the structure named From has a field of
// type To.
type Edge struct {
	From string
	To   string
}

// Graph is a directed graph of structures keyed by name. Cycles and
// self-loops are allowed.
//
// The zero value is not usable - use New to create a valid Graph.
type Graph struct {
	nodes    map[string]*cstruct.Structure
	order    []string
	edges    []Edge
	edgeSet  map[Edge]struct{}
	outgoing map[string][]string // name -> referenced structure names
	incoming map[string][]string // name -> referencing structure names
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*cstruct.Structure),
		edgeSet:  make(map[Edge]struct{}),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
}

// AddNode registers a copy of s under its name if no node with that name
// exists yet. Adding a name that is already present is a no-op: the stored
// structure and its edges are left untouched.
func (g *Graph) AddNode(s *cstruct.Structure) error {
	if s == nil || s.Anonymous() {
		return ErrAnonymousStructure
	}
	g.addNode(s)
	return nil
}

func (g *Graph) addNode(s *cstruct.Structure) bool {
	if _, ok := g.nodes[s.Name()]; ok {
		return false
	}
	g.nodes[s.Name()] = s.Clone()
	g.order = append(g.order, s.Name())
	return true
}

// AddEdge registers both endpoints (as [Graph.AddNode] does) and adds the
// edge from -> to unless it already exists.
func (g *Graph) AddEdge(from, to *cstruct.Structure) error {
	if from == nil || from.Anonymous() || to == nil || to.Anonymous() {
		return ErrAnonymousStructure
	}
	g.addNode(from)
	g.addNode(to)
	g.addEdge(from.Name(), to.Name())
	return nil
}

func (g *Graph) addEdge(from, to string) {
	e := Edge{From: from, To: to}
	if _, ok := g.edgeSet[e]; ok {
		return
	}
	g.edgeSet[e] = struct{}{}
	g.edges = append(g.edges, e)
	g.outgoing[from] = append(g.outgoing[from], to)
	g.incoming[to] = append(g.incoming[to], from)
}

// Node returns the structure with the given name and true, or nil and false
// if not found. The returned structure is owned by the graph and must not be
// modified.
func (g *Graph) Node(name string) (*cstruct.Structure, bool) {
	s, ok := g.nodes[name]
	return s, ok
}

// Nodes returns all structures in insertion order.
func (g *Graph) Nodes() []*cstruct.Structure {
	nodes := make([]*cstruct.Structure, len(g.order))
	for i, name := range g.order {
		nodes[i] = g.nodes[name]
	}
	return nodes
}

// Names returns all node names in insertion order.
func (g *Graph) Names() []string {
	names := make([]string, len(g.order))
	copy(names, g.order)
	return names
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, len(g.edges))
	copy(edges, g.edges)
	return edges
}

// HasEdge reports whether the edge from -> to exists.
func (g *Graph) HasEdge(from, to string) bool {
	_, ok := g.edgeSet[Edge{From: from, To: to}]
	return ok
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.order) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Children returns the names of structures that name references, in edge
// insertion order. The returned slice should not be modified.
func (g *Graph) Children(name string) []string { return g.outgoing[name] }

// Parents returns the names of structures that reference name, in edge
// insertion order. The returned slice should not be modified.
func (g *Graph) Parents(name string) []string { return g.incoming[name] }

// Sources returns structures that no other structure references, in
// insertion order. A structure that only references itself is a source.
func (g *Graph) Sources() []*cstruct.Structure {
	var out []*cstruct.Structure
	for _, name := range g.order {
		if !hasOther(g.incoming[name], name) {
			out = append(out, g.nodes[name])
		}
	}
	return out
}

// Sinks returns structures that reference no other structure, in insertion
// order. A structure that only references itself is a sink.
func (g *Graph) Sinks() []*cstruct.Structure {
	var out []*cstruct.Structure
	for _, name := range g.order {
		if !hasOther(g.outgoing[name], name) {
			out = append(out, g.nodes[name])
		}
	}
	return out
}

func hasOther(names []string, self string) bool {
	for _, n := range names {
		if n != self {
			return true
		}
	}
	return false
}

// SelfLoops returns the names of structures that reference their own type.
func (g *Graph) SelfLoops() []string {
	var out []string
	for _, name := range g.order {
		if g.HasEdge(name, name) {
			out = append(out, name)
		}
	}
	return out
}

// HasCycle reports whether the graph contains a directed cycle, including
// self-loops. Recursive data structures always do.
func (g *Graph) HasCycle() bool {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(g.nodes))
	var hasCycle bool

	var dfs func(name string)
	dfs = func(name string) {
		color[name] = gray
		for _, child := range g.outgoing[name] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
			}
			if hasCycle {
				return
			}
		}
		color[name] = black
	}

	for _, name := range g.order {
		if color[name] == white {
			dfs(name)
			if hasCycle {
				return true
			}
		}
	}
	return false
}

// Validate checks graph integrity and returns nil if valid. It verifies
// that every edge endpoint is a node and that no ordered pair appears twice.
func (g *Graph) Validate() error {
	seen := make(map[Edge]struct{}, len(g.edges))
	for _, e := range g.edges {
		if _, ok := g.nodes[e.From]; !ok {
			return ErrInvalidEdgeEndpoint
		}
		if _, ok := g.nodes[e.To]; !ok {
			return ErrInvalidEdgeEndpoint
		}
		if _, dup := seen[e]; dup {
			return ErrDuplicateEdge
		}
		seen[e] = struct{}{}
	}
	return nil
}
