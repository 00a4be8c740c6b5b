package config

import (
	"fmt"
	"sort"
	"strings"
)

var (
	validBackends   = map[string]bool{"sqlite": true, "memory": true}
	validDrivers    = map[string]bool{"sqlite3": true, "sqlite": true}
	validLogLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validLogFormats = map[string]bool{"json": true, "text": true, "console": true}
)

// Validate checks the configuration for semantic errors. It returns an
// error describing the first problem found.
func Validate(cfg *Config) error {
	if cfg.Server.ListenAddress == "" {
		return fmt.Errorf("server.listen_address must not be empty")
	}
	if cfg.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be positive, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be positive, got %v", cfg.Server.WriteTimeout)
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive, got %v", cfg.Server.ShutdownTimeout)
	}

	if !validBackends[cfg.Store.Backend] {
		return fmt.Errorf("store.backend must be one of %s, got %q",
			joinKeys(validBackends), cfg.Store.Backend)
	}
	if cfg.Store.Backend == "sqlite" {
		if cfg.Store.Path == "" {
			return fmt.Errorf("store.path must not be empty for the sqlite backend")
		}
		if !validDrivers[cfg.Store.Driver] {
			return fmt.Errorf("store.driver must be one of %s, got %q",
				joinKeys(validDrivers), cfg.Store.Driver)
		}
	}
	if cfg.Store.MaxIdleConns > cfg.Store.MaxOpenConns {
		return fmt.Errorf("store.max_idle_conns (%d) must not exceed store.max_open_conns (%d)",
			cfg.Store.MaxIdleConns, cfg.Store.MaxOpenConns)
	}

	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be one of %s, got %q",
			joinKeys(validLogLevels), cfg.Logging.Level)
	}
	if !validLogFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be one of %s, got %q",
			joinKeys(validLogFormats), cfg.Logging.Format)
	}

	if cfg.Watcher.Enabled && cfg.Watcher.Dir == "" {
		return fmt.Errorf("watcher.dir must not be empty when the watcher is enabled")
	}

	if cfg.Integrity.Enabled && cfg.Integrity.Schedule == "" {
		return fmt.Errorf("integrity.schedule must not be empty when the sweep is enabled")
	}

	return nil
}

func joinKeys(m map[string]bool) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, fmt.Sprintf("%q", k))
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}
