package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/consatan/weibo-image-uploader/internal/imageurl"
)

// url <pid-or-url>...: resolve delivery URLs offline.
func urlCmd() *cobra.Command {
	var sizes []string
	cmd := &cobra.Command{
		Use:   "url <pid-or-url>...",
		Short: "Resolve a pid or existing URL to delivery URLs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(sizes) == 0 {
				sizes = []string{imageurl.SizeLarge}
			}
			for _, arg := range args {
				for _, size := range sizes {
					u, err := imageurl.Resolve(arg, size, !useHTTP)
					if err != nil {
						return err
					}
					fmt.Printf("%s\t%s\n", size, u)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&sizes, "sizes", nil, "delivery sizes (default large)")
	return cmd
}
