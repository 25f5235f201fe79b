package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/tunen/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{
		Logger: logger,
		Output: os.Stdout,
	})

	app := &cli.Command{
		Name:     "tunen",
		Usage:    "Spotify OAuth session proxy",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		logger.Fatalf("application error: %v", err)
	}
}
