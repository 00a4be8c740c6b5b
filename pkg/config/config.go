package config

import "time"

// Config is the root configuration structure for the truth engine.
type Config struct {
	// Server contains HTTP server configuration.
	Server ServerConfig `yaml:"server"`

	// Store contains truth-store backend configuration.
	Store StoreConfig `yaml:"store"`

	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Watcher contains the PDL source directory watcher configuration.
	Watcher WatcherConfig `yaml:"watcher"`

	// Integrity contains the scheduled integrity sweep configuration.
	Integrity IntegrityConfig `yaml:"integrity"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the graceful shutdown deadline.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes caps request header size.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`
}

// StoreConfig contains configuration for the truth store.
type StoreConfig struct {
	// Backend selects the storage backend: "sqlite" or "memory".
	// The memory backend is ephemeral and intended for tests and
	// local experiments.
	// Default: "sqlite"
	Backend string `yaml:"backend"`

	// Path is the SQLite database file path.
	// Default: "data/truth.db"
	Path string `yaml:"path"`

	// Driver selects the SQLite driver: "sqlite3" (cgo) or "sqlite"
	// (pure Go).
	// Default: "sqlite3"
	Driver string `yaml:"driver"`

	// MaxOpenConns caps open database connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns caps idle database connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables write-ahead logging.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is how long to wait on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// LoggingConfig contains configuration for structured logging.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format: "json", "text", or "console".
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file:line in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactPII enables redaction of sensitive values in audit payloads.
	// Default: true
	RedactPII bool `yaml:"redact_pii"`
}

// MetricsConfig contains configuration for Prometheus metrics.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix.
	// Default: "atlas"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem label.
	// Default: "truth"
	Subsystem string `yaml:"subsystem"`
}

// WatcherConfig contains configuration for the PDL source watcher.
type WatcherConfig struct {
	// Enabled turns the watcher on.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Dir is the directory of .pdl.yaml files to watch.
	// Default: "./policies"
	Dir string `yaml:"dir"`
}

// IntegrityConfig contains configuration for the scheduled sweep.
type IntegrityConfig struct {
	// Enabled turns the scheduled sweep on.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Schedule is a cron expression for sweep timing.
	// Default: "@every 10m"
	Schedule string `yaml:"schedule"`
}
