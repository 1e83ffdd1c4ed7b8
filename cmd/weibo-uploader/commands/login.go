package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/consatan/weibo-image-uploader/internal/domain"
)

// login: establish and cache a session without uploading anything.
func loginCmd() *cobra.Command {
	var fresh bool
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Establish and cache a session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if username == "" {
				return fmt.Errorf("username required (--username)")
			}
			id, err := resolveIdentity()
			if err != nil {
				return err
			}

			opts := domain.LoginOptions{UseCachedSession: !fresh}
			for {
				res, err := appCtx.Auth.Login(ctx, id, opts)
				if err != nil {
					return err
				}
				switch res.Status {
				case domain.LoginAuthenticated:
					fmt.Println("logged in")
					return nil
				case domain.LoginRejected:
					return domain.NewError(domain.CodeAuthenticationFailed, "login failed, check the username and password")
				case domain.LoginChallengeRequired:
					pin, err := promptChallenge(res.ChallengeArtifact)
					if err != nil {
						return err
					}
					opts = domain.LoginOptions{ChallengeSolution: pin}
				}
			}
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "account name")
	cmd.Flags().BoolVar(&fresh, "fresh", false, "ignore any cached session")
	return cmd
}
