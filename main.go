// Package main implements the main entry point for the NAND flash bus decoder
package main

import (
	"context"
	"errors"

	"github.com/retroenv/nanddecode/internal/app"
	"github.com/retroenv/nanddecode/internal/cli"
	"github.com/retroenv/nanddecode/internal/config"
	"github.com/retroenv/nanddecode/internal/options"
	retroapp "github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := retroapp.Context()
	logger := config.CreateLogger(options.Flags{})
	build := app.Build{Version: version, Commit: commit, Date: date}

	env, err := cli.LoadEnvironment(".env")
	if err != nil {
		logger.Error("Loading environment failed", log.Err(err))
		atexit.Exit(1)
	}

	root, err := cli.NewRootCommand(env, cli.Handlers{
		Decode: func(cmd *cobra.Command, opts options.Decode) error {
			return app.Decode(cmd.Context(), opts, build)
		},
		Simulate: func(cmd *cobra.Command, opts options.Simulate) error {
			return app.Simulate(cmd.Context(), opts, build)
		},
	})
	if err != nil {
		logger.Error("Invalid environment", log.Err(err))
		atexit.Exit(1)
	}

	if err := root.ExecuteContext(ctx); err != nil {
		// Handle context cancellation (Ctrl+C) gracefully
		if errors.Is(err, context.Canceled) {
			logger.Info("Operation cancelled")
			atexit.Exit(0)
		}
		logger.Error("Decoding failed", log.Err(err))
		atexit.Exit(1)
	}
	atexit.Exit(0)
}
