package main

import (
	"fmt"

	"github.com/phrazzld/loyalty-api/internal/service/auth"
	"github.com/spf13/cobra"
)

func tokenCmd(c *cli) *cobra.Command {
	var subject string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an API access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			jwtService, err := auth.NewJWTService(c.cfg.Auth)
			if err != nil {
				return fmt.Errorf("failed to initialize JWT service: %w", err)
			}

			token, err := jwtService.GenerateToken(cmd.Context(), subject)
			if err != nil {
				return err
			}

			c.logger.Info("access token issued",
				"subject", subject,
				"lifetime_minutes", c.cfg.Auth.TokenLifetimeMinutes)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "who the token is for, e.g. a till or client name")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
