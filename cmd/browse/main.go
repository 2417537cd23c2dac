package main

import (
	"context"
	"os"

	"tangled.org/repobrowser/log"
)

func main() {
	cmd := Command(githubSource)

	ctx := context.Background()
	logger := log.New("browse")
	ctx = log.IntoContext(ctx, logger.With("command", cmd.Name))

	if err := cmd.Run(ctx, os.Args); err != nil {
		logger.Error(err.Error())
		os.Exit(-1)
	}
}
