//go:build cgo

package driver_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/soundprediction/graphwalk/pkg/driver"
	"github.com/stretchr/testify/require"
)

// The embedded engine needs its shared library at link and run time, so
// these tests only run when GRAPHWALK_TEST_LADYBUG is set.
func skipWithoutLadybug(t *testing.T) {
	t.Helper()
	if os.Getenv("GRAPHWALK_TEST_LADYBUG") == "" {
		t.Skip("set GRAPHWALK_TEST_LADYBUG=1 to run ladybug tests")
	}
}

func TestLadybugGraph(t *testing.T) {
	skipWithoutLadybug(t)

	g, err := driver.NewLadybugGraph(filepath.Join(t.TempDir(), "graph.db"))
	require.NoError(t, err)
	defer g.Close()

	testGraphContract(t, g)
}

func TestLadybugGraphInMemory(t *testing.T) {
	skipWithoutLadybug(t)

	g, err := driver.NewLadybugGraph("")
	require.NoError(t, err)
	require.Equal(t, driver.GraphProviderLadybug, g.Provider())
	require.NoError(t, g.Close())
}
