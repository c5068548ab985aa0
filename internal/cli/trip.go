package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/pkordes/travel-tracker/internal/domain"
	"github.com/pkordes/travel-tracker/internal/tripfile"
)

type addCmd struct {
	destination string
	start       string
	end         string
	budget      string
	notes       string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "add a new trip" }
func (*addCmd) Usage() string {
	return `trips add -dest <destination> -start <MM/DD/YYYY> -end <MM/DD/YYYY> [-budget <amount>] [-notes <text>]

  Adds a trip in the Planning state and prints it with its new ID.

Usage Examples:
$ trips add -dest Tokyo -start 03/01/2025 -end 03/10/2025 -budget 1200 -notes "solo trip"

`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.destination, "dest", "", "Destination name.")
	f.StringVar(&c.start, "start", "", "Start date, MM/DD/YYYY.")
	f.StringVar(&c.end, "end", "", "End date, MM/DD/YYYY.")
	f.StringVar(&c.budget, "budget", "0", "Budget amount.")
	f.StringVar(&c.notes, "notes", "", "Free-form notes.")
}

func (c *addCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := appFrom(args)

	start, err := tripfile.ParseDate(c.start)
	if err != nil {
		fmt.Fprintln(app.Err, "Invalid start date. Please use mm/dd/yyyy.")
		return subcommands.ExitUsageError
	}
	end, err := tripfile.ParseDate(c.end)
	if err != nil {
		fmt.Fprintln(app.Err, "Invalid end date. Please use mm/dd/yyyy.")
		return subcommands.ExitUsageError
	}
	budget, err := decimal.NewFromString(c.budget)
	if err != nil {
		fmt.Fprintf(app.Err, "Invalid budget %q.\n", c.budget)
		return subcommands.ExitUsageError
	}

	trip, err := app.Trips.Create(ctx, domain.Trip{
		Destination: c.destination,
		StartDate:   start,
		EndDate:     end,
		Budget:      budget,
		Notes:       c.notes,
	})
	if err != nil {
		return fail(app, err)
	}
	app.MarkChanged()
	fmt.Fprintln(app.Out, "Trip added:", trip)
	return subcommands.ExitSuccess
}

type listCmd struct{}

func (*listCmd) Name() string           { return "list" }
func (*listCmd) Synopsis() string       { return "list all trips in storage order" }
func (*listCmd) Usage() string          { return "trips list\n" }
func (*listCmd) SetFlags(*flag.FlagSet) {}

func (*listCmd) Execute(ctx context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := appFrom(args)
	trips, err := app.Trips.List(ctx)
	if err != nil {
		return fail(app, err)
	}
	printTrips(app, trips)
	return subcommands.ExitSuccess
}

type showCmd struct{}

func (*showCmd) Name() string           { return "show" }
func (*showCmd) Synopsis() string       { return "show one trip" }
func (*showCmd) Usage() string          { return "trips show <id>\n" }
func (*showCmd) SetFlags(*flag.FlagSet) {}

func (*showCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := appFrom(args)
	id, ok := idArg(app, f)
	if !ok {
		return subcommands.ExitUsageError
	}
	trip, err := app.Trips.GetByID(ctx, id)
	if err != nil {
		return fail(app, err)
	}
	fmt.Fprintln(app.Out, trip)
	return subcommands.ExitSuccess
}

type updateCmd struct {
	destination string
	start       string
	end         string
	budget      string
	notes       string
}

func (*updateCmd) Name() string     { return "update" }
func (*updateCmd) Synopsis() string { return "change fields of an existing trip" }
func (*updateCmd) Usage() string {
	return `trips update [-dest <destination>] [-start <MM/DD/YYYY>] [-end <MM/DD/YYYY>] [-budget <amount>] [-notes <text>] <id>

  Only the flags given are changed. Pass -notes "" to clear the notes.

`
}

func (c *updateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.destination, "dest", "", "New destination.")
	f.StringVar(&c.start, "start", "", "New start date, MM/DD/YYYY.")
	f.StringVar(&c.end, "end", "", "New end date, MM/DD/YYYY.")
	f.StringVar(&c.budget, "budget", "", "New budget amount.")
	f.StringVar(&c.notes, "notes", "", "New notes.")
}

func (c *updateCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := appFrom(args)
	id, ok := idArg(app, f)
	if !ok {
		return subcommands.ExitUsageError
	}

	patch, err := c.patch(f)
	if err != nil {
		fmt.Fprintln(app.Err, err)
		return subcommands.ExitUsageError
	}

	trip, err := app.Trips.Update(ctx, id, patch)
	if err != nil {
		return fail(app, err)
	}
	app.MarkChanged()
	fmt.Fprintln(app.Out, "Trip updated:", trip)
	return subcommands.ExitSuccess
}

// patch builds a TripPatch from the flags that were explicitly set.
func (c *updateCmd) patch(f *flag.FlagSet) (domain.TripPatch, error) {
	var (
		patch domain.TripPatch
		err   error
	)
	f.Visit(func(fl *flag.Flag) {
		if err != nil {
			return
		}
		switch fl.Name {
		case "dest":
			patch.Destination = &c.destination
		case "notes":
			patch.Notes = &c.notes
		case "start":
			d, perr := tripfile.ParseDate(c.start)
			if perr != nil {
				err = errors.New("invalid start date, please use mm/dd/yyyy")
				return
			}
			patch.StartDate = &d
		case "end":
			d, perr := tripfile.ParseDate(c.end)
			if perr != nil {
				err = errors.New("invalid end date, please use mm/dd/yyyy")
				return
			}
			patch.EndDate = &d
		case "budget":
			b, perr := decimal.NewFromString(c.budget)
			if perr != nil {
				err = fmt.Errorf("invalid budget %q", c.budget)
				return
			}
			patch.Budget = &b
		}
	})
	return patch, err
}

type deleteCmd struct{}

func (*deleteCmd) Name() string           { return "delete" }
func (*deleteCmd) Synopsis() string       { return "delete a trip" }
func (*deleteCmd) Usage() string          { return "trips delete <id>\n" }
func (*deleteCmd) SetFlags(*flag.FlagSet) {}

func (*deleteCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := appFrom(args)
	id, ok := idArg(app, f)
	if !ok {
		return subcommands.ExitUsageError
	}
	deleted, err := app.Trips.Delete(ctx, id)
	if err != nil {
		return fail(app, err)
	}
	if !deleted {
		fmt.Fprintln(app.Out, "Trip not found.")
		return subcommands.ExitFailure
	}
	app.MarkChanged()
	fmt.Fprintln(app.Out, "Trip deleted.")
	return subcommands.ExitSuccess
}

type completeCmd struct {
	state string
}

func (*completeCmd) Name() string     { return "complete" }
func (*completeCmd) Synopsis() string { return "mark a trip completed or back to planning" }
func (*completeCmd) Usage() string {
	return `trips complete [-state toggle|completed|planning] <id>

  Without -state the trip flips between Planning and Completed.

`
}

func (c *completeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.state, "state", "toggle", "toggle, completed or planning.")
}

func (c *completeCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := appFrom(args)
	id, ok := idArg(app, f)
	if !ok {
		return subcommands.ExitUsageError
	}

	var (
		trip domain.Trip
		err  error
	)
	switch strings.ToLower(c.state) {
	case "toggle":
		trip, err = app.Trips.ToggleCompleted(ctx, id)
	case "completed":
		trip, err = app.Trips.SetCompleted(ctx, id, true)
	case "planning":
		trip, err = app.Trips.SetCompleted(ctx, id, false)
	default:
		fmt.Fprintf(app.Err, "Unknown state %q.\n", c.state)
		return subcommands.ExitUsageError
	}
	if err != nil {
		return fail(app, err)
	}
	app.MarkChanged()
	fmt.Fprintf(app.Out, "Trip marked as %s.\n", strings.ToLower(trip.Status()))
	return subcommands.ExitSuccess
}

type sortCmd struct{}

func (*sortCmd) Name() string     { return "sort" }
func (*sortCmd) Synopsis() string { return "list trips in a chosen order" }
func (*sortCmd) Usage() string {
	return `trips sort <criterion>

  Criteria: 1|id, 2|start, 3|destination, 4|budget (low to high),
  5|budget-desc (high to low). Destination ordering ignores case.

`
}
func (*sortCmd) SetFlags(*flag.FlagSet) {}

func (*sortCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := appFrom(args)
	if f.NArg() != 1 {
		fmt.Fprintln(app.Err, "Usage: trips sort <criterion>")
		return subcommands.ExitUsageError
	}
	by, err := domain.ParseSortBy(f.Arg(0))
	if err != nil {
		fmt.Fprintln(app.Err, "Invalid choice.")
		return subcommands.ExitUsageError
	}
	trips, err := app.Trips.Sort(ctx, by)
	if err != nil {
		return fail(app, err)
	}
	printTrips(app, trips)
	return subcommands.ExitSuccess
}

// ---- helpers ---------------------------------------------------------------

func printTrips(app *App, trips []domain.Trip) {
	if len(trips) == 0 {
		fmt.Fprintln(app.Out, "No trips found.")
		return
	}
	for _, t := range trips {
		fmt.Fprintln(app.Out, t)
	}
}

// idArg reads the single positional trip ID.
func idArg(app *App, f *flag.FlagSet) (int64, bool) {
	if f.NArg() != 1 {
		fmt.Fprintln(app.Err, "Expected exactly one trip ID.")
		return 0, false
	}
	id, err := strconv.ParseInt(f.Arg(0), 10, 64)
	if err != nil {
		fmt.Fprintf(app.Err, "Invalid trip ID %q.\n", f.Arg(0))
		return 0, false
	}
	return id, true
}

// fail reports err and picks the exit status. A missing trip is a plain
// message on stdout; anything else is logged and printed to stderr.
func fail(app *App, err error) subcommands.ExitStatus {
	if errors.Is(err, domain.ErrNotFound) {
		fmt.Fprintln(app.Out, "Trip not found.")
		return subcommands.ExitFailure
	}
	app.Log.Error("command failed", "error", err)
	fmt.Fprintln(app.Err, "Error:", err)
	return subcommands.ExitFailure
}
