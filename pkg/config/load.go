package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from a YAML file, applies defaults, and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	// Booleans that default to true are pre-set so an absent key keeps
	// the default while an explicit false in the file still wins.
	cfg := Config{
		Store:     StoreConfig{WALMode: DefaultStoreWALMode},
		Logging:   LoggingConfig{RedactPII: DefaultLogRedactPII},
		Metrics:   MetricsConfig{Enabled: DefaultMetricsEnabled},
		Integrity: IntegrityConfig{Enabled: DefaultIntegrityEnabled},
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// LoadWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Variables follow the naming convention
// ATLAS_SECTION_FIELD (e.g. ATLAS_SERVER_LISTEN_ADDRESS) and always take
// precedence over the file.
func LoadWithEnvOverrides(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("ATLAS_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("ATLAS_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("ATLAS_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}

	if val := os.Getenv("ATLAS_STORE_BACKEND"); val != "" {
		cfg.Store.Backend = val
	}
	if val := os.Getenv("ATLAS_STORE_PATH"); val != "" {
		cfg.Store.Path = val
	}
	if val := os.Getenv("ATLAS_STORE_DRIVER"); val != "" {
		cfg.Store.Driver = val
	}

	if val := os.Getenv("ATLAS_LOGGING_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("ATLAS_LOGGING_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}

	if val := os.Getenv("ATLAS_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Metrics.Enabled = b
		}
	}

	if val := os.Getenv("ATLAS_WATCHER_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Watcher.Enabled = b
		}
	}
	if val := os.Getenv("ATLAS_WATCHER_DIR"); val != "" {
		cfg.Watcher.Dir = val
	}

	if val := os.Getenv("ATLAS_INTEGRITY_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Integrity.Enabled = b
		}
	}
	if val := os.Getenv("ATLAS_INTEGRITY_SCHEDULE"); val != "" {
		cfg.Integrity.Schedule = val
	}
}
