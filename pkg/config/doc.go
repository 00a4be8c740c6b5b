// Package config loads and validates the engine configuration from a YAML
// file, with defaults applied for every unset field and optional
// environment variable overrides using the ATLAS_SECTION_FIELD naming
// convention.
package config
