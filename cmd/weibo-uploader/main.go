package main

import (
	"os"

	"github.com/consatan/weibo-image-uploader/cmd/weibo-uploader/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
