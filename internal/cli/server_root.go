package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/namgaylhamo24/quick-post-02240350/internal/config"
	"github.com/namgaylhamo24/quick-post-02240350/internal/logger"
	"github.com/namgaylhamo24/quick-post-02240350/internal/store"
)

var (
	configPath string
	envFile    string

	// cfg is loaded once per invocation by the server root
	cfg *config.Config
)

var serverRootCmd = &cobra.Command{
	Use:   "quickpost-server",
	Short: "Quick-Post API server",
	Long: `Quick-Post API server.

Without a subcommand the server is started. Settings come from defaults,
the optional YAML file, a .env file and QUICKPOST_* environment variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}

		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = c

		lc := logger.DefaultConfig()
		lc.Level = logger.ParseLevel(cfg.Log.Level)
		lc.Format = cfg.Log.Format
		lc.FilePath = cfg.Log.File
		if logLevel != "" {
			lc.Level = logger.ParseLevel(logLevel)
		}
		if err := logger.Init(lc); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logger.Debug("Configuration loaded",
			logger.F("environment", cfg.Environment),
			logger.F("driver", cfg.Database.Driver),
		)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Close()
	},
	RunE: runServe,
}

// ExecuteServer runs the server root command with ctx
func ExecuteServer(ctx context.Context) error {
	return serverRootCmd.ExecuteContext(ctx)
}

func init() {
	serverRootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML config (default $QUICKPOST_CONFIG)")
	serverRootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to .env file")
	serverRootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level (DEBUG, INFO, WARN, ERROR)")

	serverRootCmd.AddCommand(serveCmd)
	serverRootCmd.AddCommand(migrateCmd)
	serverRootCmd.AddCommand(seedCmd)
	serverRootCmd.AddCommand(sweepCmd)
}

func openStore(ctx context.Context) (*store.Store, error) {
	st, err := store.Open(ctx, store.Dialect(cfg.Database.Driver), cfg.Database.URL, store.Options{
		MaxOpenConns: cfg.Database.MaxOpenConns,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Database ready", logger.F("driver", cfg.Database.Driver))
	return st, nil
}
