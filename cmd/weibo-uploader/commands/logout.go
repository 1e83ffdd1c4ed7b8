package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/consatan/weibo-image-uploader/internal/domain"
)

// logout: drop the cached session and any pending challenge for the account.
func logoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Drop the cached session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if username == "" {
				return fmt.Errorf("username required (--username)")
			}
			// Only the username keys the cached state; no password needed.
			id := domain.Identity{Username: username}
			if err := appCtx.Sessions.Drop(ctx, id); err != nil {
				return err
			}
			if err := appCtx.Challenges.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Println("logged out")
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "account name")
	return cmd
}
