package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/pkordes/travel-tracker/internal/tripfile"
)

type importCmd struct{}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import trips from a pipe-delimited file" }
func (*importCmd) Usage() string {
	return `trips import <file|->

  Reads one trip per line:
    id|destination|MM/DD/YYYY|MM/DD/YYYY|budget|notes|true|false
  Trips keep their IDs. Malformed lines and lines whose ID is already taken
  are skipped and reported; the rest of the file is still imported.
  Use - to read from standard input.

`
}
func (*importCmd) SetFlags(*flag.FlagSet) {}

func (*importCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := appFrom(args)
	if f.NArg() != 1 {
		fmt.Fprintln(app.Err, "Usage: trips import <file|->")
		return subcommands.ExitUsageError
	}
	name := f.Arg(0)

	r := app.In
	if name != "-" {
		file, err := os.Open(name)
		if err != nil {
			fmt.Fprintf(app.Err, "Error importing trips: %v\n", err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		r = file
	}

	report, err := app.Import.Import(ctx, r)
	if len(report.Imported) > 0 {
		app.MarkChanged()
	}
	for _, s := range report.Skipped {
		fmt.Fprintf(app.Err, "Skipping line %d: %s (%v)\n", s.Number, s.Raw, s.Reason)
	}
	if err != nil {
		return fail(app, err)
	}
	fmt.Fprintf(app.Out, "Trips imported from %s: %s\n", name, report.Summary())
	return subcommands.ExitSuccess
}

type exportCmd struct{}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export all trips to a pipe-delimited file" }
func (*exportCmd) Usage() string {
	return `trips export <file|->

  Writes every trip, one per line, in the format read by import.
  ".txt" is appended to the file name if missing. Use - for standard output.

`
}
func (*exportCmd) SetFlags(*flag.FlagSet) {}

func (*exportCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	app := appFrom(args)
	if f.NArg() != 1 {
		fmt.Fprintln(app.Err, "Usage: trips export <file|->")
		return subcommands.ExitUsageError
	}

	if f.Arg(0) == "-" {
		if _, err := app.Export.Export(ctx, app.Out); err != nil {
			return fail(app, err)
		}
		return subcommands.ExitSuccess
	}

	name := tripfile.ExportPath(f.Arg(0))
	file, err := os.Create(name)
	if err != nil {
		fmt.Fprintf(app.Err, "Error exporting trips: %v\n", err)
		return subcommands.ExitFailure
	}
	n, err := app.Export.Export(ctx, file)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fail(app, err)
	}
	fmt.Fprintf(app.Out, "%d trip(s) exported to %s\n", n, name)
	return subcommands.ExitSuccess
}
