package main

import (
	"log/slog"

	"github.com/soundprediction/graphwalk/pkg/logger"
)

func main() {
	log := logger.NewDefaultLogger(slog.LevelDebug)

	log.Info("graphwalk colored logger demo")
	log.Debug("Expanding branch", "vertex", "alice", "depth", 1)
	log.Info("Fixture loaded", "vertices", 42, "edges", 156)
	log.Info("Traversal finished", "paths", 17, "duration", "2.5ms")
	log.Warn("Listener failed", "event", "path_yielded")
	log.Error("Traversal failed", "error", "vertex not found: bob")
}
