// Package cli holds the cobra commands of the quickpost and quickpost-server binaries.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/namgaylhamo24/quick-post-02240350/internal/client"
	"github.com/namgaylhamo24/quick-post-02240350/internal/logger"
	"github.com/namgaylhamo24/quick-post-02240350/internal/tui"
)

var (
	logLevel   string
	logFile    string
	logConsole bool

	// newClient is swapped in tests
	newClient = client.NewClient
)

var rootCmd = &cobra.Command{
	Use:   "quickpost",
	Short: "Quick-Post - browse dev.to and keep bookmarks from the terminal",
	Long: `Quick-Post is a terminal client for the Quick-Post API.

Sign in with a magic link, browse the article feed and manage your bookmarks.
Run without a subcommand to open the interactive feed browser.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		lc := logger.DefaultConfig()
		lc.Level = logger.WARN
		lc.Console = logConsole
		lc.FilePath = logFile
		if logLevel != "" {
			lc.Level = logger.ParseLevel(logLevel)
		}
		if !logConsole && logFile == "" {
			lc.Output = io.Discard
		}

		if err := logger.Init(lc); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logger.Debug("Quick-Post started", logger.F("command", cmd.Name()))
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		logger.Info("Starting feed browser")
		return tui.Run(cmd.Context(), c)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Debug("Quick-Post exiting", logger.F("command", cmd.Name()))
		logger.Close()
	},
}

// Execute runs the client root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "Enable console logging")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(articlesCmd)
	rootCmd.AddCommand(bookmarksCmd)
	rootCmd.AddCommand(serverCmd)
}
