package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/svz/pkg/depgraph"
	"github.com/matzehuels/svz/pkg/render/dot"
)

// C headers under the repository's sample directory.
func sampleHeaders(t *testing.T) map[string]string {
	t.Helper()
	paths, err := filepath.Glob(filepath.Join("..", "..", "examples", "*.h"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	out := make(map[string]string, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		out[filepath.Base(p)] = string(data)
	}
	return out
}

func buildSample(t *testing.T, parserName, name, src string) *depgraph.Graph {
	t.Helper()
	ex, err := Extractor(parserName)
	require.NoError(t, err)
	res, err := Parse(context.Background(), ex, []Source{{Name: name, Text: src}})
	require.NoError(t, err)
	g, _ := depgraph.Build(res.Structures)
	return g
}

func TestSampleHeadersProduceValidDOT(t *testing.T) {
	for name, src := range sampleHeaders(t) {
		for _, p := range Parsers() {
			t.Run(name+"/"+p, func(t *testing.T) {
				g := buildSample(t, p, name, src)
				require.NotZero(t, g.NodeCount())

				out, err := dot.ToDOT(g, dot.Options{})
				require.NoError(t, err)
				assert.NoError(t, dot.Check(out))
			})
		}
	}
}

func TestSampleHeaderEdges(t *testing.T) {
	headers := sampleHeaders(t)
	want := map[string][][2]string{
		"linked_list.h": {
			{"ll_node", "ll_node"},
			{"linked_list", "ll_node"},
		},
		"scene.h": {
			{"material", "vec3"},
			{"mesh", "vec3"},
			{"mesh", "material"},
			{"scene_node", "mesh"},
			{"scene_node", "scene_node"},
			{"camera", "vec3"},
			{"scene", "scene_node"},
			{"scene", "camera"},
		},
	}

	for file, edges := range want {
		src, ok := headers[file]
		require.True(t, ok, "missing sample %s", file)
		for _, p := range Parsers() {
			g := buildSample(t, p, file, src)
			for _, e := range edges {
				assert.True(t, g.HasEdge(e[0], e[1]), "%s (%s): missing edge %s -> %s", file, p, e[0], e[1])
			}
		}
	}
}
