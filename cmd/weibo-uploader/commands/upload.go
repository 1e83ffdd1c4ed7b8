package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/consatan/weibo-image-uploader/internal/domain"
)

// upload <file>...: upload images and print one delivery URL per size.
func uploadCmd() *cobra.Command {
	var (
		sizes     []string
		watermark bool
		markpos   int
		nickname  string
	)
	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload images and print their delivery URLs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			id, err := resolveIdentity()
			if err != nil {
				return err
			}
			cfg := domain.UploadConfig{
				Watermark: watermark,
				MarkPos:   domain.MarkPosition(markpos),
				Nickname:  nickname,
				Sizes:     sizes,
			}

			failed := 0
			for _, path := range args {
				res, err := uploadOne(ctx, path, id, cfg)
				if err != nil {
					return err
				}
				if res.Empty() {
					failed++
					fmt.Printf("%s: upload failed\n", path)
					continue
				}
				fmt.Printf("%s:\n", path)
				for _, size := range res.Sizes {
					fmt.Printf("  %s\t%s\n", size, res.URLs[size])
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d uploads failed", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "account name; omit for anonymous upload")
	cmd.Flags().StringSliceVar(&sizes, "sizes", nil, "delivery sizes (default large)")
	cmd.Flags().BoolVar(&watermark, "watermark", false, "apply the nickname watermark")
	cmd.Flags().IntVar(&markpos, "markpos", 1, "watermark position: 1 bottom right, 2 bottom center, 3 center")
	cmd.Flags().StringVar(&nickname, "nickname", "", "watermark nickname override")
	return cmd
}

// uploadOne retries across pin challenges: each suspension prompts the user
// and re-runs the login with the solution before trying the upload again.
func uploadOne(ctx context.Context, path string, id domain.Identity, cfg domain.UploadConfig) (domain.UploadResult, error) {
	for {
		res, err := appCtx.Uploads.UploadFile(ctx, path, id, cfg, domain.RequestOptions{})
		var challenge *domain.ChallengeRequiredError
		if !errors.As(err, &challenge) {
			return res, err
		}
		if err := solveChallenge(ctx, id, challenge.ArtifactPath); err != nil {
			return domain.UploadResult{}, err
		}
	}
}

// solveChallenge prompts for the pin and resumes the suspended login.
func solveChallenge(ctx context.Context, id domain.Identity, artifact string) error {
	pin, err := promptChallenge(artifact)
	if err != nil {
		return err
	}
	res, err := appCtx.Auth.Login(ctx, id, domain.LoginOptions{ChallengeSolution: pin})
	if err != nil {
		return err
	}
	switch res.Status {
	case domain.LoginAuthenticated:
		return nil
	case domain.LoginRejected:
		return domain.NewError(domain.CodeAuthenticationFailed, "login failed, check the username, password and pin")
	default:
		// A fresh challenge was issued; the caller loops and prompts again.
		return nil
	}
}
