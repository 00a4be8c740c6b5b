package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "atlas",
	Short: "Atlas - configuration truth and versioning engine",
	Long: `Atlas is the single source of configuration truth for AI sales agents.

It answers exactly one runtime question: for this vertical, sub-vertical,
and region, what configuration does the agent run on. When the answer is
incomplete the engine returns a typed failure instead of a degraded
configuration:
  - Resolution cascade with stable failure codes
  - Versioned minimum-viable-truth definitions with atomic activation
  - Policy compilation from free text or PDL with an approval contract
  - Region-scoped persona selection with deterministic precedence`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
