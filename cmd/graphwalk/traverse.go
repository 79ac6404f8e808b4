package graphwalk

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/soundprediction/graphwalk"
	"github.com/soundprediction/graphwalk/pkg/types"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var traverseCmd = &cobra.Command{
	Use:   "traverse",
	Short: "Run a traversal and print its paths",
	Long: `Run a traversal from one or more start vertices and print one path per line.

Settings come from flags, or from a YAML request file:

  start: [alice]
  order: bfs
  uniqueness: node-path
  direction: both
  edge_types: [KNOWS]
  max_depth: 3

Flags override the request file; unset settings use the traversal section of
the configuration.`,
	Example: `  graphwalk traverse --fixture graph.yaml --start alice --order bfs --max-depth 3
  graphwalk traverse --db-driver badger --db-uri ./graph.db --request walk.yaml --output json`,
	RunE: runTraverse,
}

// TraverseRequest is the YAML request file format.
type TraverseRequest struct {
	Start                      []string `yaml:"start"`
	graphwalk.TraversalOptions `yaml:",inline"`
}

func init() {
	rootCmd.AddCommand(traverseCmd)
	addTraverseFlags(traverseCmd)
}

func addTraverseFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("start", nil, "Start vertex ids")
	cmd.Flags().String("request", "", "YAML request file")
	cmd.Flags().String("order", "", "Traversal order (dfs, bfs, postorder)")
	cmd.Flags().String("uniqueness", "", "Uniqueness policy (node-global, node-path, relationship-global, ...)")
	cmd.Flags().String("direction", "", "Edge direction (outgoing, incoming, both)")
	cmd.Flags().StringSlice("types", nil, "Edge types to follow (default all)")
	cmd.Flags().Int("min-depth", 0, "Exclude paths shorter than this")
	cmd.Flags().Int("max-depth", -1, "Stop descending at this depth (-1 for unbounded)")
	cmd.Flags().Int("limit", 0, "Maximum number of paths (0 for the configured default)")
	cmd.Flags().String("output", "text", "Output format (text, json)")
}

func runTraverse(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	req, err := traverseRequest(cmd)
	if err != nil {
		return err
	}
	if len(req.Start) == 0 {
		return fmt.Errorf("at least one --start vertex is required")
	}

	ctx := cmd.Context()
	accessor, err := openGraph(ctx, cfg, log)
	if err != nil {
		return err
	}

	client, err := graphwalk.NewClient(accessor, &graphwalk.Config{Traversal: cfg.Traversal}, log)
	if err != nil {
		return err
	}
	defer client.Close()

	desc, err := client.NewDescription(req.TraversalOptions)
	if err != nil {
		return err
	}

	tr, err := client.Traverse(ctx, desc, req.Start...)
	if err != nil {
		return err
	}
	defer tr.Close()

	output, _ := cmd.Flags().GetString("output")
	out := cmd.OutOrStdout()
	for tr.Next() {
		if err := writePath(out, output, tr.Path()); err != nil {
			return err
		}
	}
	if err := tr.Err(); err != nil {
		return err
	}

	stats := tr.Stats()
	log.Debug("Traversal finished",
		"execution_id", tr.ExecutionID(),
		"paths", stats.PathsYielded,
		"branches", stats.BranchesCreated)
	return nil
}

// traverseRequest merges the request file, if any, with explicit flags.
func traverseRequest(cmd *cobra.Command) (*TraverseRequest, error) {
	req := &TraverseRequest{}
	if path, _ := cmd.Flags().GetString("request"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read request: %w", err)
		}
		if err := yaml.Unmarshal(data, req); err != nil {
			return nil, fmt.Errorf("failed to parse request: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("start") {
		req.Start, _ = flags.GetStringSlice("start")
	}
	if flags.Changed("order") {
		req.Order, _ = flags.GetString("order")
	}
	if flags.Changed("uniqueness") {
		req.Uniqueness, _ = flags.GetString("uniqueness")
	}
	if flags.Changed("direction") {
		req.Direction, _ = flags.GetString("direction")
	}
	if flags.Changed("types") {
		req.EdgeTypes, _ = flags.GetStringSlice("types")
	}
	if flags.Changed("min-depth") {
		req.MinDepth, _ = flags.GetInt("min-depth")
	}
	if flags.Changed("max-depth") {
		d, _ := flags.GetInt("max-depth")
		req.MaxDepth = graphwalk.Depth(d)
	}
	if flags.Changed("limit") {
		req.Limit, _ = flags.GetInt("limit")
	}
	return req, nil
}

type jsonPath struct {
	Vertices []string `json:"vertices"`
	Edges    []string `json:"edges"`
	Length   int      `json:"length"`
}

func writePath(w io.Writer, format string, p *types.Path) error {
	switch format {
	case "json":
		return json.NewEncoder(w).Encode(jsonPath{
			Vertices: p.VertexIDs(),
			Edges:    p.EdgeIDs(),
			Length:   p.Length(),
		})
	case "text", "":
		_, err := fmt.Fprintln(w, p.String())
		return err
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
