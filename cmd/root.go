package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Aashish23092/ghost-shift-audit/config"
	"github.com/Aashish23092/ghost-shift-audit/logging"
)

var (
	configFile string

	// Version information set by main.
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "ghost-audit",
	Short: "Shift attendance audit service",
	Long: `ghost-audit reconciles the digital shift roster against the physical
sign-in sheet and reports ghost shifts, time theft, unauthorized workers
and late arrivals.`,
	SilenceUsage: true,
}

// Execute runs the root command with SIGINT/SIGTERM cancellation.
func Execute(version, commit, date string) {
	Version, Commit, Date = version, commit, date

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logging.Default().Error().Err(err).Msg("Command failed")
		cancel()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./ghost-audit.yaml)")
}

// loadConfig reads configuration and installs the configured logger.
func loadConfig() (*config.Config, *zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logging.Configure(cfg.LogConfig()), nil
}
