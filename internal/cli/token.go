package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/textcipher-go/internal/auth"
	"github.com/textcipher-go/internal/errors"
)

func newTokenCommand(a *app) *cobra.Command {
	var subject string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API token signed with auth.jwt_secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.cfg.IsAuthEnabled() {
				return errors.NewBadRequest("auth.jwt_secret is not set")
			}
			j := auth.NewJWTAuth(a.cfg.Auth.JWTSecret, time.Duration(a.cfg.Auth.JWTExpire)*time.Hour)
			token, err := j.GenerateToken(subject)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "cli", "Token subject")
	return cmd
}
