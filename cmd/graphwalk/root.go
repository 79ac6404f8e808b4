package graphwalk

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/soundprediction/graphwalk/pkg/config"
	"github.com/soundprediction/graphwalk/pkg/driver"
	"github.com/soundprediction/graphwalk/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "graphwalk",
		Short: "graphwalk: lazy property graph traversals",
		Long: `graphwalk runs depth-first and breadth-first traversals over property graphs
stored in memory, badger, neo4j or ladybug, with configurable uniqueness,
expansion and evaluation.

Complete documentation is available at https://github.com/soundprediction/graphwalk`,
		SilenceUsage: true,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.graphwalk.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")

	// Database flags
	rootCmd.PersistentFlags().String("db-driver", "memory", "Database driver (memory, badger, neo4j, ladybug)")
	rootCmd.PersistentFlags().String("db-uri", "", "Database URI or path")
	rootCmd.PersistentFlags().String("db-username", "", "Database username (neo4j only)")
	rootCmd.PersistentFlags().String("db-password", "", "Database password (neo4j only)")
	rootCmd.PersistentFlags().String("db-database", "", "Database name (neo4j only)")
	rootCmd.PersistentFlags().String("fixture", "", "YAML graph loaded at startup (memory and badger drivers)")
	rootCmd.PersistentFlags().Bool("circuit-breaker", false, "Wrap the graph accessor in a circuit breaker")

	// Bind flags to viper
	bindFlag("log.level", "log-level")
	bindFlag("log.format", "log-format")
	bindFlag("database.driver", "db-driver")
	bindFlag("database.uri", "db-uri")
	bindFlag("database.username", "db-username")
	bindFlag("database.password", "db-password")
	bindFlag("database.database", "db-database")
	bindFlag("database.fixture", "fixture")
	bindFlag("circuit_breaker.enabled", "circuit-breaker")
}

func bindFlag(key, flag string) {
	cobra.CheckErr(viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".graphwalk" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".graphwalk")
	}

	viper.SetEnvPrefix("GRAPHWALK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig loads the configuration and a logger built from it.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, logger.New(os.Stderr, cfg.Log.Level, cfg.Log.Format), nil
}

// openGraph opens the configured accessor, wrapped in a circuit breaker
// when enabled.
func openGraph(ctx context.Context, cfg *config.Config, log *slog.Logger) (driver.GraphAccessor, error) {
	accessor, err := driver.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s graph: %w", cfg.Database.Driver, err)
	}
	if cfg.CircuitBreaker.Enabled {
		accessor = driver.NewCircuitBreakerGraph(accessor, cfg.CircuitBreaker, cfg.Database.Driver, log)
	}
	log.Debug("Graph opened", "driver", cfg.Database.Driver, "uri", cfg.Database.URI)
	return accessor, nil
}
