package pipeline

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/svz/pkg/depgraph"
	"github.com/matzehuels/svz/pkg/parser"
)

// Build derives the dependency graph from a parse result and logs the
// structures that could not become nodes.
func Build(res parser.Result, logger *log.Logger) (*depgraph.Graph, depgraph.Report) {
	g, rep := depgraph.Build(res.Structures)
	if logger != nil {
		if rep.Anonymous > 0 {
			logger.Debug("dropped anonymous structures", "count", rep.Anonymous)
		}
		for _, name := range rep.Duplicates {
			logger.Warn("duplicate structure definition, keeping the first", "name", name)
		}
	}
	return g, rep
}
