package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"truthcore-hq/atlas/pkg/cli"
	"truthcore-hq/atlas/pkg/config"
	"truthcore-hq/atlas/pkg/pdl/watcher"
	"truthcore-hq/atlas/pkg/server"
	"truthcore-hq/atlas/pkg/telemetry/logging"
	"truthcore-hq/atlas/pkg/telemetry/metrics"
	"truthcore-hq/atlas/pkg/truth/compiler"
	"truthcore-hq/atlas/pkg/truth/integrity"
	"truthcore-hq/atlas/pkg/truth/resolver"
	"truthcore-hq/atlas/pkg/truth/store"
	"truthcore-hq/atlas/pkg/truth/version"
)

var serveFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the truth engine API server",
	Long: `Start the truth engine API server with the specified configuration.

The server exposes the resolution endpoint, the version lifecycle write
endpoints, and the health and metrics endpoints.

Examples:
  # Start with default config
  atlas serve

  # Start with custom config
  atlas serve --config /etc/atlas/config.yaml

  # Override listen address
  atlas serve --listen 0.0.0.0:8080

  # Validate config without starting the server
  atlas serve --dry-run`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config without starting the server")
}

func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		// Run on defaults when the default config path is absent; an
		// explicitly named file must exist.
		if cfgFile == "config.yaml" {
			return config.DefaultConfig(), nil
		}
		return nil, cli.NewConfigError("", fmt.Sprintf("config file not found: %s", cfgFile))
	}
	cfg, err := config.LoadWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("", err.Error())
	}
	return cfg, nil
}

func openStore(cfg *config.StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case "memory":
		return store.NewMemory(), nil
	case "sqlite":
		return store.NewSQLite(&store.SQLiteConfig{
			Path:         cfg.Path,
			Driver:       cfg.Driver,
			MaxOpenConns: cfg.MaxOpenConns,
			MaxIdleConns: cfg.MaxIdleConns,
			WALMode:      cfg.WALMode,
			BusyTimeout:  cfg.BusyTimeout,
		})
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", cfg.Backend)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if serveFlags.listenAddress != "" {
		cfg.Server.ListenAddress = serveFlags.listenAddress
	}
	if serveFlags.logLevel != "" {
		cfg.Logging.Level = serveFlags.logLevel
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	appLogger, err := logging.New(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.AddSource,
		RedactPII: cfg.Logging.RedactPII,
	})
	if err != nil {
		return cli.NewConfigError("logging", err.Error())
	}
	logger := appLogger.Slog()
	slog.SetDefault(logger)

	if serveFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Atlas v%s\n", Version)

	st, err := openStore(&cfg.Store)
	if err != nil {
		return cli.NewCommandError("serve", err)
	}
	defer st.Close()
	fmt.Printf("✓ Truth store ready (%s)\n", cfg.Store.Backend)

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Metrics, nil)
	}

	comp := compiler.New(compiler.NewTextExtractor(compiler.DefaultVocabulary()), logger)
	mgr := version.NewManager(st, comp, logger)
	res := resolver.New(st, logger)

	srv := server.New(&cfg.Server, st, res, mgr, collector, logger)

	ctx := cli.SignalContext()

	if cfg.Watcher.Enabled {
		w, err := watcher.New(cfg.Watcher.Dir, logger)
		if err != nil {
			return cli.NewCommandError("serve", fmt.Errorf("policy watcher: %w", err))
		}
		go func() {
			if err := w.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error("policy watcher stopped", "error", err)
			}
		}()
		fmt.Printf("✓ Policy source watcher on %s\n", cfg.Watcher.Dir)
	}

	if cfg.Integrity.Enabled {
		sweeper := integrity.NewSweeper(st, logger)
		if collector != nil {
			sweeper.OnFindings(func(findings []integrity.Finding) {
				for _, f := range findings {
					collector.RecordFinding(f.Kind)
				}
				if len(findings) == 0 {
					collector.RecordSweep("clean")
				} else {
					collector.RecordSweep("findings")
				}
			})
		}
		if err := sweeper.Start(cfg.Integrity.Schedule); err != nil {
			return cli.NewCommandError("serve", fmt.Errorf("integrity sweep: %w", err))
		}
		defer sweeper.Stop()
		fmt.Printf("✓ Integrity sweep scheduled (%s)\n", cfg.Integrity.Schedule)

		// One sweep up front so operators see drift immediately after
		// restart, not after the first interval.
		if _, err := sweeper.Sweep(context.Background()); err != nil {
			logger.Warn("initial integrity sweep failed", "error", err)
		}
	}

	fmt.Printf("✓ Listening on %s\n", cfg.Server.ListenAddress)
	fmt.Println("\nPress Ctrl+C to stop")

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("serve", err)
	}
	fmt.Println("✓ Server stopped")
	return nil
}
