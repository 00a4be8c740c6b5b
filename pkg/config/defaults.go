package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// Store defaults
	DefaultStoreBackend      = "sqlite"
	DefaultStorePath         = "data/truth.db"
	DefaultStoreDriver       = "sqlite3"
	DefaultStoreMaxOpenConns = 10
	DefaultStoreMaxIdleConns = 5
	DefaultStoreWALMode      = true
	DefaultStoreBusyTimeout  = 5 * time.Second

	// Logging defaults
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "json"
	DefaultLogRedactPII = true

	// Metrics defaults
	DefaultMetricsEnabled   = true
	DefaultMetricsNamespace = "atlas"
	DefaultMetricsSubsystem = "truth"

	// Watcher defaults
	DefaultWatcherDir = "./policies"

	// Integrity defaults
	DefaultIntegrityEnabled  = true
	DefaultIntegritySchedule = "@every 10m"
)

// DefaultConfig returns a configuration with every field set to its
// default.
func DefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills unset fields with default values. Boolean fields
// that default to true are handled by the zero-value-aware setters below;
// explicit false survives only through the YAML "false" literal being the
// zero value, which is why the booleans defaulting to true are applied in
// Load before unmarshalling.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}

	if cfg.Store.Backend == "" {
		cfg.Store.Backend = DefaultStoreBackend
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = DefaultStorePath
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = DefaultStoreDriver
	}
	if cfg.Store.MaxOpenConns == 0 {
		cfg.Store.MaxOpenConns = DefaultStoreMaxOpenConns
	}
	if cfg.Store.MaxIdleConns == 0 {
		cfg.Store.MaxIdleConns = DefaultStoreMaxIdleConns
	}
	if cfg.Store.BusyTimeout == 0 {
		cfg.Store.BusyTimeout = DefaultStoreBusyTimeout
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = DefaultMetricsSubsystem
	}

	if cfg.Watcher.Dir == "" {
		cfg.Watcher.Dir = DefaultWatcherDir
	}

	if cfg.Integrity.Schedule == "" {
		cfg.Integrity.Schedule = DefaultIntegritySchedule
	}
}
