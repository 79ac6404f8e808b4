package logger_test

import (
	"log/slog"
	"os"

	"github.com/soundprediction/graphwalk/pkg/logger"
)

func ExampleNewDefaultLogger() {
	log := logger.NewDefaultLogger(slog.LevelDebug)

	log.Debug("Expanding branch", "vertex", "alice", "depth", 2)
	log.Info("Traversal finished", "paths", 12) // green on a terminal
	log.Warn("Listener failed", "event", "path_yielded")
	log.Error("Traversal failed", "error", "vertex not found")
}

func ExampleNew() {
	log := logger.New(os.Stdout, "info", "text")
	log.Debug("hidden")
	log.Info("Fixture loaded", "vertices", 3)
}
