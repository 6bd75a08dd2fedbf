// Package neo4j exports struct dependency graphs into a Neo4j database.
//
// Every structure becomes a (:CStruct {name}) node and every dependency a
// [:REFERENCES] relationship. Writes are idempotent MERGE upserts sent in
// UNWIND batches, so exporting the same graph twice leaves the database
// unchanged. Use [Exporter.Clean] first to drop structures that no longer
// exist in the sources.
package neo4j

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/matzehuels/svz/pkg/depgraph"
	svzerrors "github.com/matzehuels/svz/pkg/errors"
)

// DefaultBatchSize is the number of rows sent per UNWIND query.
const DefaultBatchSize = 500

// Label and relationship type used for exported graphs.
const (
	NodeLabel = "CStruct"
	RelType   = "REFERENCES"
)

// Row is one UNWIND parameter row.
type Row = map[string]any

// runFunc executes one Cypher statement.
type runFunc func(ctx context.Context, cypher string, params map[string]any) error

// Exporter writes dependency graphs to Neo4j.
type Exporter struct {
	driver    neo4j.DriverWithContext
	run       runFunc
	batchSize int
	logger    *log.Logger
}

// Stats counts what an export wrote.
type Stats struct {
	Nodes   int
	Edges   int
	Batches int
}

// Connect opens a driver for uri and verifies connectivity.
func Connect(ctx context.Context, uri, user, password string, logger *log.Logger) (*Exporter, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, svzerrors.Wrap(svzerrors.ErrCodeInvalidConfig, err, "create neo4j driver for %s", uri)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, svzerrors.Wrap(svzerrors.ErrCodeUnavailable, err, "connect to neo4j at %s", uri)
	}

	e := newExporter(func(ctx context.Context, cypher string, params map[string]any) error {
		_, err := neo4j.ExecuteQuery(ctx, driver, cypher, params, neo4j.EagerResultTransformer)
		return err
	}, logger)
	e.driver = driver
	return e, nil
}

func newExporter(run runFunc, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Exporter{run: run, batchSize: DefaultBatchSize, logger: logger}
}

// SetBatchSize changes the number of rows per query. Values below 1 are
// ignored.
func (e *Exporter) SetBatchSize(n int) {
	if n > 0 {
		e.batchSize = n
	}
}

// Close releases the driver.
func (e *Exporter) Close(ctx context.Context) error {
	if e.driver == nil {
		return nil
	}
	return e.driver.Close(ctx)
}

// CreateIndexes ensures the lookup index on structure names exists.
func (e *Exporter) CreateIndexes(ctx context.Context) error {
	e.logger.Debug("creating indexes")
	q := fmt.Sprintf("CREATE INDEX cstruct_name IF NOT EXISTS FOR (n:%s) ON (n.name)", NodeLabel)
	return e.exec(ctx, q, nil)
}

// Clean removes every exported structure and its relationships.
func (e *Exporter) Clean(ctx context.Context) error {
	e.logger.Debug("cleaning existing structures")
	queries := []string{
		fmt.Sprintf("MATCH ()-[r:%s]->() DELETE r", RelType),
		fmt.Sprintf("MATCH (n:%s) DETACH DELETE n", NodeLabel),
	}
	for _, q := range queries {
		if err := e.exec(ctx, q, nil); err != nil {
			return err
		}
	}
	return nil
}

var (
	upsertNodes = fmt.Sprintf(`UNWIND $batch AS row
MERGE (n:%s {name: row.name})
SET n.fields = row.fields, n.field_types = row.field_types,
    n.field_count = row.field_count, n.padding = row.padding`, NodeLabel)

	upsertEdges = fmt.Sprintf(`UNWIND $batch AS row
MATCH (a:%[1]s {name: row.from}), (b:%[1]s {name: row.to})
MERGE (a)-[r:%[2]s]->(b)
SET r.fields = row.fields`, NodeLabel, RelType)
)

// Export upserts every node of g, then every edge.
func (e *Exporter) Export(ctx context.Context, g *depgraph.Graph) (Stats, error) {
	var st Stats

	nodes := NodeRows(g)
	for _, batch := range Batches(nodes, e.batchSize) {
		if err := e.exec(ctx, upsertNodes, map[string]any{"batch": batch}); err != nil {
			return st, err
		}
		st.Nodes += len(batch)
		st.Batches++
	}

	edges := EdgeRows(g)
	for _, batch := range Batches(edges, e.batchSize) {
		if err := e.exec(ctx, upsertEdges, map[string]any{"batch": batch}); err != nil {
			return st, err
		}
		st.Edges += len(batch)
		st.Batches++
	}

	e.logger.Info("exported graph", "nodes", st.Nodes, "edges", st.Edges, "batches", st.Batches)
	return st, nil
}

func (e *Exporter) exec(ctx context.Context, cypher string, params map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.run(ctx, cypher, params); err != nil {
		return svzerrors.Wrap(svzerrors.ErrCodeUnavailable, err, "neo4j query")
	}
	return nil
}

// =============================================================================
// Row builders
// =============================================================================

// NodeRows returns one row per structure in insertion order. fields holds
// "type name" strings in declaration order.
func NodeRows(g *depgraph.Graph) []Row {
	rows := make([]Row, 0, g.NodeCount())
	for _, s := range g.Nodes() {
		fields := s.Fields()
		decls := make([]string, len(fields))
		types := make([]string, len(fields))
		for i, f := range fields {
			decls[i] = f.TypeName + " " + f.Name
			types[i] = f.TypeName
		}
		rows = append(rows, Row{
			"name":        s.Name(),
			"fields":      decls,
			"field_types": types,
			"field_count": len(fields),
			"padding":     s.Padding(),
		})
	}
	return rows
}

// EdgeRows returns one row per edge in insertion order. fields names the
// fields of the source structure that have the target's type.
func EdgeRows(g *depgraph.Graph) []Row {
	edges := g.Edges()
	rows := make([]Row, 0, len(edges))
	for _, edge := range edges {
		var names []string
		if s, ok := g.Node(edge.From); ok {
			for _, f := range s.Fields() {
				if f.TypeName == edge.To {
					names = append(names, f.Name)
				}
			}
		}
		rows = append(rows, Row{"from": edge.From, "to": edge.To, "fields": names})
	}
	return rows
}

// Batches splits rows into consecutive chunks of at most size rows.
func Batches(rows []Row, size int) [][]Row {
	if size < 1 {
		size = DefaultBatchSize
	}
	var out [][]Row
	for len(rows) > 0 {
		n := min(size, len(rows))
		out = append(out, rows[:n])
		rows = rows[n:]
	}
	return out
}
