package graphwalk

import (
	"fmt"
	"os"

	"github.com/soundprediction/graphwalk/pkg/driver"
	"github.com/spf13/cobra"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Write a YAML fixture into a badger store",
	Example: `  graphwalk load --fixture graph.yaml --db ./graph.db
  graphwalk traverse --db-driver badger --db-uri ./graph.db --start alice`,
	RunE: runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)

	loadCmd.Flags().String("db", "", "Badger directory to write")
	_ = loadCmd.MarkFlagRequired("db")
}

func runLoad(cmd *cobra.Command, args []string) error {
	_, log, err := loadConfig()
	if err != nil {
		return err
	}

	fixturePath, _ := cmd.Flags().GetString("fixture")
	if fixturePath == "" {
		return fmt.Errorf("--fixture is required")
	}
	dbPath, _ := cmd.Flags().GetString("db")

	f, err := os.Open(fixturePath)
	if err != nil {
		return fmt.Errorf("failed to open fixture: %w", err)
	}
	defer f.Close()

	fixture, err := driver.LoadFixture(f)
	if err != nil {
		return err
	}

	graph, err := driver.NewBadgerGraph(dbPath)
	if err != nil {
		return err
	}
	defer graph.Close()

	if err := fixture.Apply(cmd.Context(), graph); err != nil {
		return err
	}

	log.Info("Fixture loaded",
		"path", dbPath,
		"vertices", len(fixture.Vertices),
		"edges", len(fixture.Edges))
	return nil
}
