package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func importCmd(c *cli) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Apply a YAML seed file to the stored ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePersistence(c.cfg, "import"); err != nil {
				return err
			}
			ctx := cmd.Context()

			app, err := newApplication(ctx, c.cfg, c.logger)
			if err != nil {
				return err
			}

			res, err := app.applySeed(ctx, path)
			if err != nil {
				// Nothing is written when the seed fails part way.
				app.closeDB()
				return err
			}
			if err := app.ledger.ForceCheckpoint(ctx); err != nil {
				return errors.Join(err, app.cleanup(ctx))
			}
			if err := app.cleanup(ctx); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d owners and %d purchases\n",
				res.Owners, res.Purchases)
			return err
		},
	}

	cmd.Flags().StringVarP(&path, "file", "f", "", "seed file to import")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
