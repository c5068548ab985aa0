// Package cli implements the trips subcommands on top of the service layer.
// Each command is a small struct satisfying subcommands.Command; all of them
// share one App, passed through Commander.Execute.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/subcommands"

	"github.com/pkordes/travel-tracker/internal/config"
	"github.com/pkordes/travel-tracker/internal/domain"
	"github.com/pkordes/travel-tracker/internal/repo"
	"github.com/pkordes/travel-tracker/internal/service"
	"github.com/pkordes/travel-tracker/internal/tripfile"
)

// App holds the services a command needs and where to print results.
type App struct {
	Trips  *service.TripService
	Import *service.ImportService
	Export *service.ExportService
	In     io.Reader
	Out    io.Writer
	Err    io.Writer
	Log    *slog.Logger

	store     repo.TripRepo
	tripsFile string // rewritten on Close when changed is set
	changed   bool

	loaded *service.ImportReport
	// kept holds trips-file lines that could not be loaded; they are written
	// back unchanged after the loaded trips.
	kept []string
	// truncated is set when an unloaded line was too long to keep, which
	// makes the trips file unsafe to rewrite.
	truncated bool
}

// NewApp wires the services over an already-open store.
func NewApp(store repo.TripRepo, log *slog.Logger) *App {
	trips := service.NewTripService(store, log)
	return &App{
		Trips:  trips,
		Import: service.NewImportService(trips, log),
		Export: service.NewExportService(trips),
		In:     os.Stdin,
		Out:    os.Stdout,
		Err:    os.Stderr,
		Log:    log,
		store:  store,
	}
}

// Open selects and opens the backend described by cfg. With the in-memory
// backend and a TripsFile, the file is imported now and written back by Close.
// A missing TripsFile is treated as empty. Lines that fail to load are kept
// for the write-back, and their IDs are never handed out to new trips; see
// LoadReport.
func Open(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	store, err := repo.Open(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return nil, err
	}
	app := NewApp(store, log)

	if !cfg.UsesMemory() || cfg.TripsFile == "" {
		return app, nil
	}
	app.tripsFile = cfg.TripsFile

	if err := app.load(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("cli.Open: load %s: %w", cfg.TripsFile, err)
	}
	return app, nil
}

func (a *App) load(ctx context.Context) error {
	f, err := os.Open(a.tripsFile)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	report, err := a.Import.Import(ctx, f)
	if err != nil {
		return err
	}
	a.loaded = &report

	for _, line := range report.Skipped {
		if errors.Is(line.Reason, service.ErrLineTooLong) {
			a.truncated = true
			continue
		}
		a.kept = append(a.kept, line.Raw)
		if id, ok := tripfile.LeadingID(line.Raw); ok {
			if err := a.Trips.ReserveID(ctx, id); err != nil && !errors.Is(err, domain.ErrValidation) {
				return err
			}
		}
	}
	return nil
}

// LoadReport returns the result of loading the trips file, and false when no
// file was loaded.
func (a *App) LoadReport() (service.ImportReport, bool) {
	if a.loaded == nil {
		return service.ImportReport{}, false
	}
	return *a.loaded, true
}

// MarkChanged records that the collection was modified, so Close persists it
// to the trips file when one is configured.
func (a *App) MarkChanged() { a.changed = true }

// Close flushes the trips file if needed and releases the backend. The backend
// is released even when the flush fails.
func (a *App) Close(ctx context.Context) error {
	var flushErr error
	if a.changed && a.tripsFile != "" {
		flushErr = a.flush(ctx)
	}
	return errors.Join(flushErr, a.store.Close())
}

// flush writes the collection, then any kept lines, to a temporary file and
// renames it over the trips file so a failed write never truncates existing
// data.
func (a *App) flush(ctx context.Context) error {
	if a.truncated {
		return fmt.Errorf("cli.App.Close: %s has a line too long to keep; not rewriting it", a.tripsFile)
	}

	tmp, err := os.CreateTemp(filepath.Dir(a.tripsFile), ".trips-*")
	if err != nil {
		return fmt.Errorf("cli.App.Close: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := a.Export.Export(ctx, tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("cli.App.Close: %w", err)
	}
	for _, line := range a.kept {
		if _, err := io.WriteString(tmp, line+"\n"); err != nil {
			tmp.Close()
			return fmt.Errorf("cli.App.Close: %w", err)
		}
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cli.App.Close: %w", err)
	}
	if err := os.Rename(tmp.Name(), a.tripsFile); err != nil {
		return fmt.Errorf("cli.App.Close: %w", err)
	}
	a.Log.Debug("trips file written", "path", a.tripsFile)
	return nil
}

// Commands returns a fresh instance of every trips subcommand.
func Commands() []subcommands.Command {
	return []subcommands.Command{
		&addCmd{},
		&listCmd{},
		&showCmd{},
		&updateCmd{},
		&deleteCmd{},
		&completeCmd{},
		&sortCmd{},
		&importCmd{},
		&exportCmd{},
	}
}

// Run parses args and executes the matching subcommand against app.
func Run(ctx context.Context, name string, args []string, app *App) subcommands.ExitStatus {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(app.Err)

	commander := subcommands.NewCommander(fs, name)
	commander.Output = app.Out
	commander.Error = app.Err
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	for _, c := range Commands() {
		commander.Register(c, "")
	}

	if err := fs.Parse(args); err != nil {
		return subcommands.ExitUsageError
	}
	return commander.Execute(ctx, app)
}

// appFrom extracts the *App passed to Commander.Execute.
func appFrom(args []interface{}) *App {
	return args[0].(*App)
}
