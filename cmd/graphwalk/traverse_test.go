package graphwalk

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/soundprediction/graphwalk/pkg/types"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const triangleFixture = "../../pkg/driver/testdata/triangle.yaml"

func TestTraverseRequestMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "walk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`start: [a]
order: bfs
uniqueness: node-path
edge_types: [KNOWS]
max_depth: 2
`), 0o644))

	cmd := &cobra.Command{}
	addTraverseFlags(cmd)
	require.NoError(t, cmd.Flags().Set("request", path))
	require.NoError(t, cmd.Flags().Set("order", "dfs"))

	req, err := traverseRequest(cmd)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, req.Start)
	assert.Equal(t, "dfs", req.Order)
	assert.Equal(t, "node-path", req.Uniqueness)
	assert.Equal(t, []string{"KNOWS"}, req.EdgeTypes)
	require.NotNil(t, req.MaxDepth)
	assert.Equal(t, 2, *req.MaxDepth)
}

func TestWritePath(t *testing.T) {
	p := &types.Path{
		Vertices: []*types.Vertex{{ID: "a"}, {ID: "b"}},
		Edges:    []*types.Edge{{ID: "ab", Type: "KNOWS", StartID: "a", EndID: "b"}},
	}

	var buf bytes.Buffer
	require.NoError(t, writePath(&buf, "text", p))
	assert.Equal(t, "(a)-[KNOWS]->(b)\n", buf.String())

	buf.Reset()
	require.NoError(t, writePath(&buf, "json", p))
	assert.JSONEq(t, `{"vertices":["a","b"],"edges":["ab"],"length":1}`, buf.String())

	assert.Error(t, writePath(&buf, "xml", p))
}

func TestTraverseCommand(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "graphwalk.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("log:\n  level: error\n"), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"traverse",
		"--config", cfgPath,
		"--fixture", triangleFixture,
		"--start", "a",
		"--direction", "outgoing",
		"--types", "KNOWS",
	})
	require.NoError(t, Execute())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{
		"(a)",
		"(a)-[KNOWS]->(b)",
		"(a)-[KNOWS]->(b)-[KNOWS]->(c)",
	}, lines)
}
