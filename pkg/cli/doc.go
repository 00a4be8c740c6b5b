// Package cli provides shared helpers for the atlas command line:
// typed command errors and shutdown signal plumbing.
package cli
