package pipeline

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/svz/pkg/cache"
	svzerrors "github.com/matzehuels/svz/pkg/errors"
	svzio "github.com/matzehuels/svz/pkg/io"
	"github.com/matzehuels/svz/pkg/observability"
	"github.com/matzehuels/svz/pkg/parser"
	"github.com/matzehuels/svz/pkg/parser/treesitter"
	"github.com/matzehuels/svz/pkg/render/dot"
)

const (
	nodeSrc = `
struct ll_node {
	int value;
	ll_node *next;
};`
	listSrc = `
struct list {
	size_t size;
	ll_node *head;
	ll_node *tail;
};
typedef union { int i; } value;`
)

var sources = []Source{
	{Name: "node.h", Text: nodeSrc},
	{Name: "list.h", Text: listSrc},
}

// memCache is an in-memory cache.Cache that counts operations.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	gets int
	sets int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.data[key] = data
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

var _ cache.Cache = (*memCache)(nil)

func newTestRunner(c cache.Cache) *Runner {
	return NewRunner(c, nil, log.NewWithOptions(io.Discard, log.Options{}))
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	assert.IsType(t, cache.NullCache{}, r.Cache)
	assert.NotNil(t, r.Keyer)
	assert.NotNil(t, r.Logger)
	assert.Equal(t, DefaultTTL, r.TTL)
	assert.NoError(t, r.Close())
}

func TestExecute(t *testing.T) {
	r := newTestRunner(nil)

	res, err := r.Execute(context.Background(), sources, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"ll_node", "list"}, res.Graph.Names())
	assert.True(t, res.Graph.HasEdge("ll_node", "ll_node"))
	assert.True(t, res.Graph.HasEdge("list", "ll_node"))
	assert.Equal(t, 2, res.Graph.EdgeCount())

	want, err := Generate(nodeSrc+"\n"+listSrc, dot.Options{})
	require.NoError(t, err)
	assert.Equal(t, want, res.DOT)
	assert.Equal(t, []byte(want), res.Artifacts[FormatDOT])
	assert.Equal(t, cache.HashString(want), res.DOTHash)

	assert.Equal(t, Stats{
		Sources:    2,
		Structs:    2,
		Skipped:    1,
		NodeCount:  2,
		EdgeCount:  2,
		ParseTime:  res.Stats.ParseTime,
		BuildTime:  res.Stats.BuildTime,
		RenderTime: res.Stats.RenderTime,
	}, res.Stats)
}

func TestExecuteTagsSkipsWithSource(t *testing.T) {
	res, err := newTestRunner(nil).Execute(context.Background(), sources, Options{})
	require.NoError(t, err)

	require.Len(t, res.Parsed.Skipped, 1)
	assert.Equal(t, "list.h", res.Parsed.Skipped[0].Source)
	assert.Equal(t, parser.SkipDeclaration, res.Parsed.Skipped[0].Kind)
}

func TestExecuteReportsDuplicates(t *testing.T) {
	srcs := []Source{{Name: "a.h", Text: "struct s { int a; };"}, {Name: "b.h", Text: "struct s { long b; };"}}
	res, err := newTestRunner(nil).Execute(context.Background(), srcs, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"s"}, res.Report.Duplicates)
	node, _ := res.Graph.Node("s")
	assert.Equal(t, "int", node.Fields()[0].TypeName)
}

func TestExecuteNoSources(t *testing.T) {
	res, err := newTestRunner(nil).Execute(context.Background(), nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, "digraph svz {\n}", res.DOT)
	assert.False(t, res.CacheInfo.ParseHit)
}

func TestExecuteParseCache(t *testing.T) {
	c := newMemCache()
	r := newTestRunner(c)
	ctx := context.Background()

	first, err := r.Execute(ctx, sources, Options{})
	require.NoError(t, err)
	assert.False(t, first.CacheInfo.ParseHit)
	assert.Equal(t, 2, c.sets)

	second, err := r.Execute(ctx, sources, Options{})
	require.NoError(t, err)
	assert.True(t, second.CacheInfo.ParseHit)
	assert.Equal(t, first.DOT, second.DOT)
	assert.Equal(t, first.Parsed.Skipped, second.Parsed.Skipped)

	refreshed, err := r.Execute(ctx, sources, Options{Refresh: true})
	require.NoError(t, err)
	assert.False(t, refreshed.CacheInfo.ParseHit)
	assert.Equal(t, first.DOT, refreshed.DOT)
}

func TestExecuteParseCacheIsPerParser(t *testing.T) {
	c := newMemCache()
	r := newTestRunner(c)
	ctx := context.Background()

	_, err := r.Execute(ctx, sources, Options{})
	require.NoError(t, err)

	res, err := r.Execute(ctx, sources, Options{Parser: treesitter.Name})
	require.NoError(t, err)
	assert.False(t, res.CacheInfo.ParseHit)
	assert.Equal(t, []string{"ll_node", "list"}, res.Graph.Names())
}

func TestExecuteIgnoresCorruptCacheEntries(t *testing.T) {
	c := newMemCache()
	r := newTestRunner(c)
	ctx := context.Background()

	_, err := r.Execute(ctx, sources, Options{})
	require.NoError(t, err)
	for k := range c.data {
		c.data[k] = []byte("garbage")
	}

	res, err := r.Execute(ctx, sources, Options{})
	require.NoError(t, err)
	assert.False(t, res.CacheInfo.ParseHit)
	assert.Equal(t, 2, res.Graph.NodeCount())
}

func TestExecuteArtifactCache(t *testing.T) {
	c := newMemCache()
	r := newTestRunner(c)
	ctx := context.Background()
	opts := Options{Formats: []string{FormatDOT, FormatSVG}}

	first, err := r.Execute(ctx, sources, opts)
	require.NoError(t, err)
	assert.False(t, first.CacheInfo.RenderHit)
	assert.Contains(t, string(first.Artifacts[FormatSVG]), "<svg")

	second, err := r.Execute(ctx, sources, opts)
	require.NoError(t, err)
	assert.True(t, second.CacheInfo.RenderHit)
	assert.Equal(t, first.Artifacts[FormatSVG], second.Artifacts[FormatSVG])
}

func TestExecuteDOTOnlyIsNeverARenderHit(t *testing.T) {
	c := newMemCache()
	r := newTestRunner(c)
	for i := 0; i < 2; i++ {
		res, err := r.Execute(context.Background(), sources, Options{})
		require.NoError(t, err)
		assert.False(t, res.CacheInfo.RenderHit)
	}
}

func TestExecuteDocumentFormats(t *testing.T) {
	res, err := newTestRunner(nil).Execute(context.Background(), sources, Options{Formats: []string{FormatJSON, FormatYAML}})
	require.NoError(t, err)

	doc, err := svzio.ReadJSON(bytes.NewReader(res.Artifacts[FormatJSON]))
	require.NoError(t, err)
	assert.Len(t, doc.Structures, 2)
	assert.Equal(t, []svzio.Edge{{From: "ll_node", To: "ll_node"}, {From: "list", To: "ll_node"}}, doc.Edges)

	ydoc, err := svzio.ReadYAML(bytes.NewReader(res.Artifacts[FormatYAML]))
	require.NoError(t, err)
	assert.Equal(t, doc, ydoc)
}

func TestExecuteDOTOptions(t *testing.T) {
	res, err := newTestRunner(nil).Execute(context.Background(), sources, Options{AccentColor: "#336699"})
	require.NoError(t, err)
	assert.Contains(t, res.DOT, `<FONT COLOR="#336699">`)
	assert.NotContains(t, res.DOT, "purple")

	res, err = newTestRunner(nil).Execute(context.Background(), sources, Options{NoColor: true})
	require.NoError(t, err)
	assert.NotContains(t, res.DOT, "<FONT")
}

func TestExecuteInvalidOptions(t *testing.T) {
	_, err := newTestRunner(nil).Execute(context.Background(), sources, Options{Formats: []string{"gif"}})
	require.Error(t, err)
	assert.True(t, svzerrors.Is(err, svzerrors.ErrCodeInvalidFormat))
}

func TestExecuteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestRunner(nil).Execute(ctx, sources, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseWithoutRunner(t *testing.T) {
	res, err := Parse(context.Background(), parser.New(), sources)
	require.NoError(t, err)
	assert.Len(t, res.Structures, 2)
	assert.Equal(t, "list.h", res.Skipped[0].Source)
}

func TestRenderWithoutRunner(t *testing.T) {
	parsed := parser.Parse(nodeSrc)
	g, _ := Build(parsed, nil)
	dotText, err := dot.ToDOT(g, dot.Options{})
	require.NoError(t, err)

	opts := Options{Formats: []string{FormatDOT, FormatJSON}}
	require.NoError(t, opts.ValidateAndSetDefaults())

	artifacts, err := Render(context.Background(), dotText, g, parsed, opts)
	require.NoError(t, err)
	assert.Equal(t, dotText, string(artifacts[FormatDOT]))
	assert.True(t, strings.HasPrefix(string(artifacts[FormatJSON]), "{"))
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu       sync.Mutex
	parsed   []string
	builds   int
	rendered [][]string
}

func (h *recordingHooks) OnParseComplete(_ context.Context, _, source string, _, _ int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.parsed = append(h.parsed, source)
}

func (h *recordingHooks) OnBuildComplete(context.Context, int, int, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.builds++
}

func (h *recordingHooks) OnRenderComplete(_ context.Context, formats []string, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rendered = append(h.rendered, formats)
}

type countingCacheHooks struct {
	observability.NoopCacheHooks
	hits, misses, sets int
}

func (h *countingCacheHooks) OnCacheHit(context.Context, string)      { h.hits++ }
func (h *countingCacheHooks) OnCacheMiss(context.Context, string)     { h.misses++ }
func (h *countingCacheHooks) OnCacheSet(context.Context, string, int) { h.sets++ }

func TestExecuteEmitsHooks(t *testing.T) {
	observability.Reset()
	t.Cleanup(observability.Reset)

	ph := &recordingHooks{}
	ch := &countingCacheHooks{}
	observability.SetPipelineHooks(ph)
	observability.SetCacheHooks(ch)

	r := newTestRunner(newMemCache())
	_, err := r.Execute(context.Background(), sources, Options{})
	require.NoError(t, err)
	_, err = r.Execute(context.Background(), sources, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"node.h", "list.h", "node.h", "list.h"}, ph.parsed)
	assert.Equal(t, 2, ph.builds)
	assert.Equal(t, [][]string{{"dot"}, {"dot"}}, ph.rendered)
	assert.Equal(t, 2, ch.misses)
	assert.Equal(t, 2, ch.sets)
	assert.Equal(t, 2, ch.hits)
}
