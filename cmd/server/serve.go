package main

import (
	"github.com/spf13/cobra"
)

func serveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:         "serve",
		Short:       "Serve the loyalty API over HTTP",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{logToStdout: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApplication(cmd.Context(), c.cfg, c.logger)
			if err != nil {
				c.logger.Error("failed to initialize application", "error", err)
				return err
			}
			return app.Run(cmd.Context())
		},
	}
}
