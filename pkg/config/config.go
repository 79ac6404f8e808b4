package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server"`

	// Database configuration
	Database DatabaseConfig `mapstructure:"database"`

	// Traversal defaults applied to requests that leave a setting empty
	Traversal TraversalConfig `mapstructure:"traversal"`

	// Telemetry configuration
	Telemetry TelemetryConfig `mapstructure:"telemetry"`

	// Alert configuration
	Alert AlertConfig `mapstructure:"alert"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// AlertConfig holds configuration for alerting on failed traversals
type AlertConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	SMTPHost string   `mapstructure:"smtp_host"`
	SMTPPort int      `mapstructure:"smtp_port"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	From     string   `mapstructure:"from"`
	To       []string `mapstructure:"to"`
	// MinInterval is the least number of seconds between two alerts
	MinInterval int `mapstructure:"min_interval" validate:"gte=0"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host      string  `mapstructure:"host"`
	Port      int     `mapstructure:"port" validate:"min=0,max=65535"`
	Mode      string  `mapstructure:"mode" validate:"oneof=debug release test"` // gin mode
	RateLimit float64 `mapstructure:"rate_limit" validate:"gte=0"`              // requests per second, 0 disables
	Burst     int     `mapstructure:"burst" validate:"gte=0"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver" validate:"oneof=memory badger neo4j ladybug"`
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	// Fixture is a YAML graph loaded at startup (memory and badger drivers)
	Fixture string `mapstructure:"fixture"`
}

// TraversalConfig holds the defaults for traversal descriptions.
type TraversalConfig struct {
	Order      string `mapstructure:"order" validate:"oneof=dfs bfs postorder"`
	Uniqueness string `mapstructure:"uniqueness"`
	Direction  string `mapstructure:"direction" validate:"oneof=out outgoing in incoming both"`
	MaxDepth   int    `mapstructure:"max_depth" validate:"gte=-1"` // -1 means unbounded
	MaxPaths   int    `mapstructure:"max_paths" validate:"gte=0"`  // 0 means unbounded
	DepthGuard int    `mapstructure:"depth_guard" validate:"gte=1"`
}

// TelemetryConfig holds telemetry configuration
type TelemetryConfig struct {
	ParquetPath string `mapstructure:"parquet_path"`
	BatchSize   int    `mapstructure:"batch_size" validate:"gte=1"`
}

// CircuitBreakerConfig holds configuration for circuit breaking
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio" validate:"gte=0,lte=1"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	// Set defaults
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Override with environment variables if present
	overrideWithEnv(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Default returns the configuration obtained from defaults alone.
func Default() *Config {
	return &Config{
		Log:    LogConfig{Level: "info", Format: "text"},
		Server: ServerConfig{Host: "localhost", Port: 8080, Mode: "debug", RateLimit: 50, Burst: 100},
		Database: DatabaseConfig{
			Driver: "memory",
		},
		Traversal: TraversalConfig{
			Order:      "dfs",
			Uniqueness: "node-global",
			Direction:  "outgoing",
			MaxDepth:   -1,
			DepthGuard: 100000,
		},
		Telemetry: TelemetryConfig{BatchSize: 100},
		Alert:     AlertConfig{SMTPPort: 587, MinInterval: 300},
		CircuitBreaker: CircuitBreakerConfig{
			MaxRequests:      1,
			Interval:         60,
			Timeout:          30,
			ReadyToTripRatio: 0.6,
		},
	}
}

var validate = validator.New()

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	d := Default()

	// Log defaults
	viper.SetDefault("log.level", d.Log.Level)
	viper.SetDefault("log.format", d.Log.Format)

	// Server defaults
	viper.SetDefault("server.host", d.Server.Host)
	viper.SetDefault("server.port", d.Server.Port)
	viper.SetDefault("server.mode", d.Server.Mode)
	viper.SetDefault("server.rate_limit", d.Server.RateLimit)
	viper.SetDefault("server.burst", d.Server.Burst)

	// Database defaults
	viper.SetDefault("database.driver", d.Database.Driver)
	viper.SetDefault("database.uri", "")
	viper.SetDefault("database.username", "")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.database", "")
	viper.SetDefault("database.fixture", "")

	// Traversal defaults
	viper.SetDefault("traversal.order", d.Traversal.Order)
	viper.SetDefault("traversal.uniqueness", d.Traversal.Uniqueness)
	viper.SetDefault("traversal.direction", d.Traversal.Direction)
	viper.SetDefault("traversal.max_depth", d.Traversal.MaxDepth)
	viper.SetDefault("traversal.max_paths", d.Traversal.MaxPaths)
	viper.SetDefault("traversal.depth_guard", d.Traversal.DepthGuard)

	// Circuit breaker defaults
	viper.SetDefault("circuit_breaker.enabled", d.CircuitBreaker.Enabled)
	viper.SetDefault("circuit_breaker.max_requests", d.CircuitBreaker.MaxRequests)
	viper.SetDefault("circuit_breaker.interval", d.CircuitBreaker.Interval)
	viper.SetDefault("circuit_breaker.timeout", d.CircuitBreaker.Timeout)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", d.CircuitBreaker.ReadyToTripRatio)

	// Alert defaults
	viper.SetDefault("alert.enabled", d.Alert.Enabled)
	viper.SetDefault("alert.smtp_port", d.Alert.SMTPPort)
	viper.SetDefault("alert.min_interval", d.Alert.MinInterval)

	// Telemetry defaults
	viper.SetDefault("telemetry.batch_size", d.Telemetry.BatchSize)
	home, err := os.UserHomeDir()
	if err == nil {
		viper.SetDefault("telemetry.parquet_path", filepath.Join(home, ".graphwalk", "telemetry"))
	}
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	// Database credentials
	if uri := os.Getenv("NEO4J_URI"); uri != "" && config.Database.Driver == "neo4j" {
		config.Database.URI = uri
	}
	if user := os.Getenv("NEO4J_USER"); user != "" {
		config.Database.Username = user
	}
	if pass := os.Getenv("NEO4J_PASSWORD"); pass != "" {
		config.Database.Password = pass
	}

	// Generic database settings
	if dbDriver := os.Getenv("GRAPHWALK_DB_DRIVER"); dbDriver != "" {
		config.Database.Driver = dbDriver
	}
	if dbURI := os.Getenv("GRAPHWALK_DB_URI"); dbURI != "" {
		config.Database.URI = dbURI
	}

	if pass := os.Getenv("GRAPHWALK_ALERT_PASSWORD"); pass != "" {
		config.Alert.Password = pass
	}

	// Server settings
	if host := os.Getenv("GRAPHWALK_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Telemetry settings
	if path := os.Getenv("GRAPHWALK_TELEMETRY_PATH"); path != "" {
		config.Telemetry.ParquetPath = path
	}
}
