package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"ddportal/internal/config"
	"ddportal/internal/logger"
)

var (
	cfg       *config.Config
	flagPort  string
	flagLevel string
)

var rootCmd = &cobra.Command{
	Use:   "portal",
	Short: "Due-diligence portal",
	Long: `portal serves the due-diligence web portal in front of the checklist
backend.

  portal serve      Start the HTTP server
  portal migrate    Create or update the portal's session and activity tables`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		cfg = config.Load()
		if flagLevel != "" {
			cfg.LogLevel = flagLevel
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLevel, "log-level", "", "Override LOG_LEVEL (debug, info, warn, error)")
	rootCmd.AddCommand(newServeCommand(), newMigrateCommand())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the portal tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			lg := logger.New(cfg.LogLevel)
			defer lg.Sync()
			if _, err := openDB(); err != nil {
				return err
			}
			lg.Infow("migrated", "driver", cfg.DB.Driver)
			return nil
		},
	}
}
