package main

import (
	"os"

	"github.com/JonMunkholm/worldstats/internal/config"
	"github.com/JonMunkholm/worldstats/internal/core"
	"github.com/JonMunkholm/worldstats/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// app carries state shared by all subcommands.
type app struct {
	cfg *config.Config

	logLevel  string
	logFormat string
}

func newRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "worldstats",
		Short: "Reconcile country-indexed statistics into one dataset",
		Long: `worldstats merges country-level CSV datasets on a canonical country name,
drops sparse rows, fills numeric gaps with column means and writes the result
to CSV, SQLite, Parquet or Postgres.

Settings come from the environment (and a .env file) and can be overridden
with flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env file is fine
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			// The CLI is quieter than the server unless asked otherwise
			if cmd.Flags().Changed("log-level") || os.Getenv("LOG_LEVEL") == "" {
				cfg.Logging.Level = a.logLevel
			}
			if cmd.Flags().Changed("log-format") || os.Getenv("LOG_FORMAT") == "" {
				cfg.Logging.Format = a.logFormat
			}
			logging.SetupWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
			a.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "text", "log format: text or json")

	cmd.AddCommand(newRunCommand(a))
	cmd.AddCommand(newSourcesCommand(a))
	cmd.AddCommand(newNormalizeCommand(a))

	return cmd
}

// formatError renders an error with its support code.
func formatError(err error) string {
	if core.IsUserFacing(err) {
		return "error: " + core.FormatUserError(err) + "\n  " + err.Error()
	}
	return "error: " + err.Error()
}
