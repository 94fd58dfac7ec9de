package main

import (
	"context"
	"fmt"

	"github.com/phrazzld/loyalty-api/internal/platform/postgres"
	"github.com/spf13/cobra"
)

func migrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [up|down|status|version|create NAME]",
		Short: "Manage the database schema",
		Long:  `Run goose migrations compiled into the binary against database.url.
Without arguments, migrate applies every pending migration. "create NAME"
writes a new SQL migration into ` + postgres.MigrationsDir + `.`,
		Args:      cobra.MaximumNArgs(2),
		ValidArgs: []string{"up", "down", "status", "version", "create"},
		RunE: func(cmd *cobra.Command, args []string) error {
			command := "up"
			if len(args) > 0 {
				command = args[0]
			}
			return c.runMigrate(cmd.Context(), command, args[min(len(args), 1):])
		},
	}
}

func (c *cli) runMigrate(ctx context.Context, command string, args []string) error {
	switch command {
	case "create":
		if len(args) != 1 {
			return fmt.Errorf("create needs exactly one migration name")
		}
		if err := postgres.CreateMigration(postgres.MigrationsDir, args[0]); err != nil {
			return err
		}
		c.logger.Info("migration created", "name", args[0], "dir", postgres.MigrationsDir)
		return nil
	case "up", "down", "status", "version":
		if len(args) != 0 {
			return fmt.Errorf("%s takes no arguments", command)
		}
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}

	if err := requirePersistence(c.cfg, "migrate"); err != nil {
		return err
	}

	db, err := postgres.Open(ctx, c.cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			c.logger.Error("error closing database connection", "error", err)
		}
	}()

	if err := postgres.Migrate(ctx, db, c.logger, command); err != nil {
		return err
	}
	c.logger.Info("migration command completed", "command", command)
	return nil
}
