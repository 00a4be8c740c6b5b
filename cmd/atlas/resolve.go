package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"truthcore-hq/atlas/pkg/cli"
	"truthcore-hq/atlas/pkg/truth"
	"truthcore-hq/atlas/pkg/truth/resolver"
	"truthcore-hq/atlas/pkg/truth/store"
)

var resolveFlags struct {
	db          string
	driver      string
	vertical    string
	subVertical string
	region      string
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve a configuration directly against a database",
	Long: `Resolve the full agent configuration for a vertical, sub-vertical, and
region directly against a truth database, without going through the API
server.

The command prints the same envelope the resolve endpoint returns. A
blocked resolution prints the failure envelope and exits non-zero.

Examples:
  atlas resolve --db data/truth.db --vertical banking --sub-vertical employee-banking --region UAE`,
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringVar(&resolveFlags.db, "db", "data/truth.db", "truth database path")
	resolveCmd.Flags().StringVar(&resolveFlags.driver, "driver", "sqlite3", "sqlite driver: sqlite3, sqlite")
	resolveCmd.Flags().StringVar(&resolveFlags.vertical, "vertical", "", "vertical key")
	resolveCmd.Flags().StringVar(&resolveFlags.subVertical, "sub-vertical", "", "sub-vertical key")
	resolveCmd.Flags().StringVar(&resolveFlags.region, "region", "", "region code")
	_ = resolveCmd.MarkFlagRequired("vertical")
	_ = resolveCmd.MarkFlagRequired("sub-vertical")
	_ = resolveCmd.MarkFlagRequired("region")
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg := store.DefaultSQLiteConfig()
	cfg.Path = resolveFlags.db
	cfg.Driver = resolveFlags.driver

	st, err := store.NewSQLite(cfg)
	if err != nil {
		return cli.NewCommandError("resolve", err)
	}
	defer st.Close()

	res := resolver.New(st, nil)
	resolution, err := res.Resolve(context.Background(),
		resolveFlags.vertical, resolveFlags.subVertical, resolveFlags.region)

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	if err != nil {
		failure, ok := truth.AsFailure(err)
		if !ok {
			return cli.NewCommandError("resolve", err)
		}
		envelope := map[string]any{
			"success": false,
			"error":   failure.Code,
			"message": failure.Message,
		}
		for k, v := range failure.Context {
			envelope[k] = v
		}
		if err := encoder.Encode(envelope); err != nil {
			return err
		}
		return cli.NewCommandError("resolve", fmt.Errorf("resolution blocked: %s", failure.Code))
	}

	return encoder.Encode(map[string]any{
		"success":    true,
		"resolution": resolution,
	})
}
