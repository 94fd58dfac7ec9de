package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/loyalty-api/internal/config"
	"github.com/phrazzld/loyalty-api/internal/platform/logger"
	"github.com/spf13/cobra"
)

// logToStdout marks commands whose logs go to stdout. Every other command
// logs to stderr and keeps stdout for its own output.
const logToStdout = "log-to-stdout"

// cli holds state shared by every command, populated before a command runs.
type cli struct {
	configPath string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:          "loyalty-api",
		Short:        "Loyalty card ledger service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./config.yaml)")

	root.AddCommand(serveCmd(c), migrateCmd(c), tokenCmd(c), importCmd(c), statsCmd(c))
	return root
}

// setup loads .env, configuration and the logger for cmd.
func (c *cli) setup(cmd *cobra.Command) error {
	loadDotenv(slog.Default())

	cfg, err := config.LoadFrom(c.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	out := cmd.ErrOrStderr()
	if cmd.Annotations[logToStdout] == "true" {
		out = cmd.OutOrStdout()
	}
	l, err := logger.SetupWithWriter(cfg.Server, out)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"persistent", cfg.Persistent())
	if cfg.Ledger.SeedFile != "" {
		l.Debug("seed file configured", "path", cfg.Ledger.SeedFile)
	}

	c.cfg = cfg
	c.logger = l
	return nil
}
