package neo4j

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/svz/pkg/depgraph"
	svzerrors "github.com/matzehuels/svz/pkg/errors"
	"github.com/matzehuels/svz/pkg/parser"
)

type call struct {
	cypher string
	params map[string]any
}

type fakeDB struct {
	calls []call
	err   error
}

func (f *fakeDB) run(_ context.Context, cypher string, params map[string]any) error {
	f.calls = append(f.calls, call{cypher, params})
	return f.err
}

func sampleGraph(t *testing.T) *depgraph.Graph {
	t.Helper()
	g, _ := depgraph.Build(parser.Parse(`
struct ll_node { int value; ll_node *next; };
struct list { size_t size; ll_node *head; ll_node *tail; };`).Structures)
	return g
}

func TestNodeRows(t *testing.T) {
	rows := NodeRows(sampleGraph(t))
	require.Len(t, rows, 2)
	assert.Equal(t, Row{
		"name":        "ll_node",
		"fields":      []string{"int value", "ll_node next"},
		"field_types": []string{"int", "ll_node"},
		"field_count": 2,
		"padding":     11,
	}, rows[0])
	assert.Equal(t, "list", rows[1]["name"])
}

func TestEdgeRows(t *testing.T) {
	rows := EdgeRows(sampleGraph(t))
	assert.Equal(t, []Row{
		{"from": "ll_node", "to": "ll_node", "fields": []string{"next"}},
		{"from": "list", "to": "ll_node", "fields": []string{"head", "tail"}},
	}, rows)
}

func TestBatches(t *testing.T) {
	rows := make([]Row, 5)
	for i := range rows {
		rows[i] = Row{"i": i}
	}

	got := Batches(rows, 2)
	require.Len(t, got, 3)
	assert.Len(t, got[0], 2)
	assert.Len(t, got[2], 1)
	assert.Equal(t, 4, got[2][0]["i"])

	assert.Nil(t, Batches(nil, 2))
	assert.Len(t, Batches(rows, 0), 1)
}

func TestExport(t *testing.T) {
	db := &fakeDB{}
	e := newExporter(db.run, nil)
	e.SetBatchSize(1)

	st, err := e.Export(context.Background(), sampleGraph(t))
	require.NoError(t, err)
	assert.Equal(t, Stats{Nodes: 2, Edges: 2, Batches: 4}, st)

	require.Len(t, db.calls, 4)
	assert.True(t, strings.Contains(db.calls[0].cypher, "MERGE (n:CStruct {name: row.name})"))
	assert.True(t, strings.Contains(db.calls[3].cypher, "MERGE (a)-[r:REFERENCES]->(b)"))
	batch := db.calls[0].params["batch"].([]Row)
	assert.Equal(t, "ll_node", batch[0]["name"])
}

func TestExportEmptyGraph(t *testing.T) {
	db := &fakeDB{}
	st, err := newExporter(db.run, nil).Export(context.Background(), depgraph.New())
	require.NoError(t, err)
	assert.Zero(t, st)
	assert.Empty(t, db.calls)
}

func TestExportError(t *testing.T) {
	db := &fakeDB{err: errors.New("connection reset")}
	_, err := newExporter(db.run, nil).Export(context.Background(), sampleGraph(t))
	require.Error(t, err)
	assert.True(t, svzerrors.Is(err, svzerrors.ErrCodeUnavailable))
	assert.Len(t, db.calls, 1)
}

func TestExportCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	db := &fakeDB{}
	_, err := newExporter(db.run, nil).Export(ctx, sampleGraph(t))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, db.calls)
}

func TestCleanAndIndexes(t *testing.T) {
	db := &fakeDB{}
	e := newExporter(db.run, nil)

	require.NoError(t, e.Clean(context.Background()))
	require.NoError(t, e.CreateIndexes(context.Background()))

	require.Len(t, db.calls, 3)
	assert.Equal(t, "MATCH ()-[r:REFERENCES]->() DELETE r", db.calls[0].cypher)
	assert.Equal(t, "MATCH (n:CStruct) DETACH DELETE n", db.calls[1].cypher)
	assert.Contains(t, db.calls[2].cypher, "IF NOT EXISTS FOR (n:CStruct) ON (n.name)")
}

func TestCloseWithoutDriver(t *testing.T) {
	assert.NoError(t, newExporter((&fakeDB{}).run, nil).Close(context.Background()))
}
