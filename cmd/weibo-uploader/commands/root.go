package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/spf13/cobra"

	"github.com/consatan/weibo-image-uploader/internal/app"
)

var (
	home      string
	redisAddr string
	verbosity int
	useHTTP   bool

	username string
	password string

	wire   *app.Wire
	appCtx *app.App
)

func Execute() error {
	root := &cobra.Command{
		Use:           "weibo-uploader",
		Short:         "Upload images to the weibo image bed",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".weibo-uploader")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}

			w, err := app.NewWire(app.Config{
				Home:      home,
				RedisAddr: redisAddr,
				Secure:    !useHTTP,
				Logger:    newLogger(verbosity),
			})
			if err != nil {
				return err
			}
			wire = w
			appCtx = app.New(w)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if wire == nil {
				return nil
			}
			return wire.Close()
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "state dir (default ~/.weibo-uploader)")
	root.PersistentFlags().StringVar(&redisAddr, "redis", "", "redis address for shared state (e.g. 127.0.0.1:6379)")
	root.PersistentFlags().StringVarP(&password, "password", "p", "", "account password (prompted when omitted)")
	root.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity")
	root.PersistentFlags().BoolVar(&useHTTP, "http", false, "emit http delivery URLs instead of https")

	root.AddCommand(uploadCmd(), loginCmd(), logoutCmd(), urlCmd())

	err := root.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	return err
}

// newLogger builds a stderr logger gated on -v count.
func newLogger(verbosity int) logr.Logger {
	if verbosity <= 0 {
		return logr.Discard()
	}
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintln(os.Stderr, prefix, args)
			return
		}
		fmt.Fprintln(os.Stderr, args)
	}, funcr.Options{Verbosity: verbosity})
}
