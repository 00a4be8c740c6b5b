// Atlas is the configuration truth and versioning engine for AI sales
// agents.
//
// It holds the single authoritative answer to "what exact configuration
// does an agent run on for this vertical, sub-vertical, and region" and
// refuses to answer at all when that configuration is incomplete:
//   - Resolution cascade with hard failure codes instead of fallbacks
//   - Versioned minimum-viable-truth definitions with atomic activation
//   - Policy authoring pipeline compiling free text or PDL into a
//     reviewable intermediate representation
//   - Region-scoped persona selection with deterministic precedence
//
// Usage:
//
//	# Start the API server with the default configuration
//	atlas serve
//
//	# Start with a custom configuration file
//	atlas serve --config /path/to/config.yaml
//
//	# Resolve a configuration directly against a database
//	atlas resolve --db data/truth.db --vertical banking --sub-vertical employee-banking --region UAE
//
//	# Lint PDL policy files
//	atlas lint --file policy.pdl.yaml
//
//	# Show version information
//	atlas version
package main

func main() {
	Execute()
}
