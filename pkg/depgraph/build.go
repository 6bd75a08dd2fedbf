package depgraph

import "github.com/matzehuels/svz/pkg/cstruct"

// Report describes input that Build could not turn into nodes.
type Report struct {
	Anonymous  int      // structures dropped because they have no name
	Duplicates []string // names defined more than once; the first definition was kept
}

// Build derives the dependency graph from parsed structures.
//
// Nodes are inserted in input order. Then, for each structure S in order and
// each structure T in order, the edge S -> T is added when S has a field of
// type T's name. The result does not depend on how the structures were
// produced, only on their order.
func Build(structs []*cstruct.Structure) (*Graph, Report) {
	g := New()
	var rep Report

	named := make([]*cstruct.Structure, 0, len(structs))
	for _, s := range structs {
		switch {
		case s == nil || s.Anonymous():
			rep.Anonymous++
		case !g.addNode(s):
			rep.Duplicates = append(rep.Duplicates, s.Name())
		default:
			named = append(named, s)
		}
	}

	for _, s := range named {
		for _, t := range named {
			if s.References(t.Name()) {
				g.addEdge(s.Name(), t.Name())
			}
		}
	}
	return g, rep
}
