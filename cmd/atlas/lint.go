package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"truthcore-hq/atlas/pkg/cli"
	"truthcore-hq/atlas/pkg/pdl/parser"
)

var lintFlags struct {
	file   string
	dir    string
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate PDL policy files",
	Long: `Validate PDL policy files for syntax and semantic errors.

The lint command parses policy files and reports every problem found:
  - YAML syntax errors
  - Missing required fields (pdl_version, name, target_roles)
  - Unknown threshold fields, comparisons, or size bands
  - Inconsistent headcount bounds

Examples:
  # Lint a single file
  atlas lint --file policy.pdl.yaml

  # Lint a directory
  atlas lint --dir policies/

  # JSON output for CI
  atlas lint --file policy.pdl.yaml --format json`,
	RunE: lintPolicies,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.file, "file", "f", "", "policy file to validate")
	lintCmd.Flags().StringVarP(&lintFlags.dir, "dir", "d", "", "directory of policy files")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

// LintResult is the lint outcome for a single file.
type LintResult struct {
	File   string      `json:"file"`
	Valid  bool        `json:"valid"`
	Errors []LintIssue `json:"errors,omitempty"`
}

// LintIssue is one reported problem.
type LintIssue struct {
	Line       int    `json:"line,omitempty"`
	Column     int    `json:"column,omitempty"`
	Message    string `json:"message"`
	Type       string `json:"type,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func lintPolicies(cmd *cobra.Command, args []string) error {
	if lintFlags.file == "" && lintFlags.dir == "" {
		return fmt.Errorf("either --file or --dir must be specified")
	}

	var files []string
	if lintFlags.file != "" {
		files = append(files, lintFlags.file)
	}
	if lintFlags.dir != "" {
		for _, pattern := range []string{"*.pdl.yaml", "*.pdl.yml"} {
			matches, err := filepath.Glob(filepath.Join(lintFlags.dir, pattern))
			if err != nil {
				return fmt.Errorf("failed to list policy files: %w", err)
			}
			files = append(files, matches...)
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("no policy files found")
	}

	results := make([]LintResult, 0, len(files))
	for _, file := range files {
		results = append(results, lintFile(file))
	}

	if lintFlags.format == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(results); err != nil {
			return err
		}
	} else {
		printLintResults(results)
	}

	for _, result := range results {
		if !result.Valid {
			return cli.NewCommandError("lint", fmt.Errorf("validation failed"))
		}
	}
	return nil
}

func lintFile(path string) LintResult {
	result := LintResult{File: path, Valid: true}

	errList := parser.LintFile(path)
	if !errList.HasErrors() {
		return result
	}

	result.Valid = false
	for _, e := range errList.Errors {
		result.Errors = append(result.Errors, LintIssue{
			Line:       e.Location.Line,
			Column:     e.Location.Column,
			Message:    e.Message,
			Type:       string(e.Type),
			Suggestion: e.Suggestion,
		})
	}
	return result
}

func printLintResults(results []LintResult) {
	totalErrors := 0
	for _, result := range results {
		fmt.Printf("Validating %s...\n", result.File)
		if result.Valid {
			fmt.Println("✓ Policy valid")
		}
		for _, issue := range result.Errors {
			fmt.Printf("✗ Error: %s", issue.Message)
			if issue.Line > 0 {
				fmt.Printf(" (line %d", issue.Line)
				if issue.Column > 0 {
					fmt.Printf(", col %d", issue.Column)
				}
				fmt.Print(")")
			}
			if issue.Type != "" {
				fmt.Printf(" [%s]", issue.Type)
			}
			fmt.Println()
			if issue.Suggestion != "" {
				fmt.Printf("  suggestion: %s\n", issue.Suggestion)
			}
			totalErrors++
		}
		fmt.Println()
	}
	fmt.Println("Summary:")
	fmt.Printf("  %d error(s)\n", totalErrors)
}
