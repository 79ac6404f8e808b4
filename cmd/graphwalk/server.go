package graphwalk

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/soundprediction/graphwalk"
	"github.com/soundprediction/graphwalk/pkg/alert"
	"github.com/soundprediction/graphwalk/pkg/config"
	"github.com/soundprediction/graphwalk/pkg/metrics"
	"github.com/soundprediction/graphwalk/pkg/monitor"
	"github.com/soundprediction/graphwalk/pkg/server"
	"github.com/soundprediction/graphwalk/pkg/telemetry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the graphwalk HTTP server",
	Long: `Start the graphwalk HTTP server to provide REST API access to traversals.

The server provides endpoints for:
- Running traversals (POST /api/v1/traverse)
- Looking up vertices
- Prometheus metrics
- Health checks

Configuration can be provided through config files, environment variables, or command-line flags.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// Server-specific flags
	serverCmd.Flags().String("host", "localhost", "Server host")
	serverCmd.Flags().Int("port", 8080, "Server port")
	serverCmd.Flags().String("mode", "debug", "Server mode (debug, release, test)")
	serverCmd.Flags().Float64("rate-limit", 50, "Requests per second, 0 disables limiting")

	// Telemetry flags
	serverCmd.Flags().String("telemetry-parquet-path", "", "Directory for traversal and error telemetry")

	for key, flag := range map[string]string{
		"server.host":            "host",
		"server.port":            "port",
		"server.mode":            "mode",
		"server.rate_limit":      "rate-limit",
		"telemetry.parquet_path": "telemetry-parquet-path",
	} {
		cobra.CheckErr(viper.BindPFlag(key, serverCmd.Flags().Lookup(flag)))
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := monitor.NewRegistry(monitor.WithLogger(log))
	metrics.NewCollector(prometheus.DefaultRegisterer).Attach(reg)
	if cfg.Alert.Enabled {
		alerter := alert.NewEmailAlerter(cfg.Alert)
		alert.NewFailureListener(alerter, time.Duration(cfg.Alert.MinInterval)*time.Second).Attach(reg)
		log.Info("Failure alerts enabled", "to", cfg.Alert.To)
	}

	log, closeTelemetry, err := setupTelemetry(cfg, reg, log)
	if err != nil {
		return err
	}
	defer closeTelemetry()

	accessor, err := openGraph(ctx, cfg, log)
	if err != nil {
		return err
	}

	client, err := graphwalk.NewClient(accessor, &graphwalk.Config{
		Traversal:   cfg.Traversal,
		Monitor:     reg,
		MonitorTags: []string{"server"},
	}, log)
	if err != nil {
		return err
	}
	defer client.Close()

	srv := server.New(cfg, client, server.WithLogger(log))
	srv.Setup()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		log.Info("Server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// setupTelemetry records traversal summaries and error logs as parquet
// when a telemetry path is configured. The returned logger also writes
// error records into the telemetry directory.
func setupTelemetry(cfg *config.Config, reg *monitor.Registry, log *slog.Logger) (*slog.Logger, func(), error) {
	path := cfg.Telemetry.ParquetPath
	if path == "" {
		return log, func() {}, nil
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create telemetry directory: %w", err)
	}

	recorder, err := telemetry.NewParquetRecorder(path, cfg.Telemetry.BatchSize)
	if err != nil {
		return nil, nil, err
	}
	recorder.Attach(reg)

	handler, err := telemetry.NewParquetHandler(log.Handler(), path, cfg.Telemetry.BatchSize)
	if err != nil {
		_ = recorder.Close()
		return nil, nil, err
	}
	log = slog.New(handler)
	log.Info("Telemetry enabled", "path", path)

	return log, func() {
		if err := recorder.Close(); err != nil {
			log.Warn("Failed to flush traversal telemetry", "error", err)
		}
		if err := handler.Flush(); err != nil {
			log.Warn("Failed to flush log telemetry", "error", err)
		}
	}, nil
}
