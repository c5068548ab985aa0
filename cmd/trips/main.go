// Package main is the entry point for the trips command.
// Its sole responsibility is wiring dependencies together and running one
// subcommand. No business logic belongs here.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"

	"github.com/google/subcommands"

	"github.com/pkordes/travel-tracker/internal/cli"
	"github.com/pkordes/travel-tracker/internal/config"
)

func main() {
	os.Exit(int(run()))
}

// run exists so deferred cleanup happens before os.Exit.
func run() (status subcommands.ExitStatus) {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		return subcommands.ExitFailure
	}

	// --- Logger -----------------------------------------------------------
	// Logs go to stderr as JSON so stdout carries only command output.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Level(),
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	// --- Storage ----------------------------------------------------------
	app, err := cli.Open(ctx, cfg, logger)
	if err != nil {
		slog.Error("failed to open trip store", "error", err)
		return subcommands.ExitFailure
	}

	if report, ok := app.LoadReport(); ok && len(report.Skipped) > 0 {
		fmt.Fprintf(os.Stderr, "Warning: %s: %s\n", cfg.TripsFile, report.Summary())
	}

	// Close runs even if the command fails, flushing the trips file (in
	// memory mode) and releasing the database pool.
	defer func() {
		if err := app.Close(ctx); err != nil {
			slog.Error("failed to close trip store", "error", err)
			if status == subcommands.ExitSuccess {
				status = subcommands.ExitFailure
			}
		}
	}()

	return cli.Run(ctx, path.Base(os.Args[0]), os.Args[1:], app)
}
