package main

import (
	"fmt"
	"io"
	"time"

	"github.com/phrazzld/loyalty-api/internal/service"
	"github.com/phrazzld/loyalty-api/internal/store"
	"github.com/spf13/cobra"
)

func statsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print aggregate figures for the stored ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePersistence(c.cfg, "stats"); err != nil {
				return err
			}
			ctx := cmd.Context()

			app, err := newApplication(ctx, c.cfg, c.logger)
			if err != nil {
				return err
			}
			defer func() { _ = app.cleanup(ctx) }()

			var last *store.Checkpoint
			cp, err := app.ledger.LastCheckpoint(ctx)
			switch {
			case err == nil:
				last = &cp
			case !store.IsNotFoundError(err):
				return err
			}

			return printStats(cmd.OutOrStdout(), app.ledger.Stats(ctx), last)
		},
	}
}

// printStats writes the ledger figures. last is nil when no checkpoint has
// been written.
func printStats(w io.Writer, stats service.Stats, last *store.Checkpoint) error {
	mostUsed := "none"
	if stats.MostUsed != nil {
		mostUsed = fmt.Sprintf("%s <%s>", stats.MostUsed.Name, stats.MostUsed.Email)
	}
	checkpoint := "none"
	if last != nil {
		checkpoint = fmt.Sprintf("%s (%d cards)", last.CreatedAt.UTC().Format(time.RFC3339), last.CardCount)
	}

	_, err := fmt.Fprintf(w, "customers:       %d\ntotal points:    %d\nmost used:       %s\nlast checkpoint: %s\n",
		stats.Customers, stats.TotalPoints, mostUsed, checkpoint)
	return err
}
