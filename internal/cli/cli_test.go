package cli_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/travel-tracker/internal/cli"
	"github.com/pkordes/travel-tracker/internal/config"
	"github.com/pkordes/travel-tracker/internal/repo"
)

type harness struct {
	app      *cli.App
	out, err *bytes.Buffer
}

func newHarness() *harness {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := &harness{app: cli.NewApp(repo.NewMemoryTripRepo(), log), out: &bytes.Buffer{}, err: &bytes.Buffer{}}
	h.app.Out = h.out
	h.app.Err = h.err
	return h
}

// run executes one command line and returns its stdout, resetting the buffers.
func (h *harness) run(t *testing.T, args ...string) (subcommands.ExitStatus, string) {
	t.Helper()
	h.out.Reset()
	h.err.Reset()
	status := cli.Run(context.Background(), "trips", args, h.app)
	return status, h.out.String()
}

func TestRun_AddListShow(t *testing.T) {
	h := newHarness()

	status, out := h.run(t, "add", "-dest", "Tokyo", "-start", "03/01/2025", "-end", "03/10/2025",
		"-budget", "1200", "-notes", "solo trip")
	require.Equal(t, subcommands.ExitSuccess, status, h.err.String())
	assert.Equal(t, "Trip added: Trip #1 | Tokyo | 03/01/2025 - 03/10/2025 | $1200.00 | solo trip | Planning\n", out)

	status, out = h.run(t, "list")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "Trip #1 | Tokyo")

	status, out = h.run(t, "show", "1")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out, "solo trip")
}

func TestRun_ListEmpty(t *testing.T) {
	h := newHarness()

	_, out := h.run(t, "list")

	assert.Equal(t, "No trips found.\n", out)
}

func TestRun_AddRejectsBadDate(t *testing.T) {
	h := newHarness()

	status, _ := h.run(t, "add", "-dest", "Tokyo", "-start", "2025-03-01", "-end", "03/10/2025")

	assert.Equal(t, subcommands.ExitUsageError, status)
	assert.Contains(t, h.err.String(), "mm/dd/yyyy")
}

func TestRun_UpdateOnlyChangesGivenFlags(t *testing.T) {
	h := newHarness()
	h.run(t, "add", "-dest", "Tokyo", "-start", "03/01/2025", "-end", "03/10/2025", "-notes", "solo trip")

	status, out := h.run(t, "update", "-budget", "99.9", "1")

	require.Equal(t, subcommands.ExitSuccess, status, h.err.String())
	assert.Equal(t, "Trip updated: Trip #1 | Tokyo | 03/01/2025 - 03/10/2025 | $99.90 | solo trip | Planning\n", out)
}

func TestRun_CompleteToggles(t *testing.T) {
	h := newHarness()
	h.run(t, "add", "-dest", "Rome", "-start", "02/01/2025", "-end", "02/10/2025")

	_, out := h.run(t, "complete", "1")
	assert.Equal(t, "Trip marked as completed.\n", out)

	_, out = h.run(t, "complete", "1")
	assert.Equal(t, "Trip marked as planning.\n", out)

	_, out = h.run(t, "complete", "-state", "completed", "1")
	assert.Equal(t, "Trip marked as completed.\n", out)
}

func TestRun_DeleteThenNotFound(t *testing.T) {
	h := newHarness()
	h.run(t, "add", "-dest", "Rome", "-start", "02/01/2025", "-end", "02/10/2025")

	status, out := h.run(t, "delete", "1")
	assert.Equal(t, subcommands.ExitSuccess, status)
	assert.Equal(t, "Trip deleted.\n", out)

	status, out = h.run(t, "delete", "1")
	assert.Equal(t, subcommands.ExitFailure, status)
	assert.Equal(t, "Trip not found.\n", out)

	_, out = h.run(t, "show", "1")
	assert.Equal(t, "Trip not found.\n", out)
}

func TestRun_Sort(t *testing.T) {
	h := newHarness()
	h.run(t, "add", "-dest", "paris", "-start", "05/01/2025", "-end", "05/02/2025", "-budget", "300")
	h.run(t, "add", "-dest", "Athens", "-start", "01/01/2025", "-end", "01/02/2025", "-budget", "900")
	h.run(t, "add", "-dest", "Paris", "-start", "03/01/2025", "-end", "03/02/2025", "-budget", "100")

	_, out := h.run(t, "sort", "destination")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Trip #2 "))
	assert.True(t, strings.HasPrefix(lines[1], "Trip #1 "))
	assert.True(t, strings.HasPrefix(lines[2], "Trip #3 "))

	_, out = h.run(t, "sort", "5")
	assert.True(t, strings.HasPrefix(out, "Trip #2 "), out)

	status, _ := h.run(t, "sort", "price")
	assert.Equal(t, subcommands.ExitUsageError, status)
}

func TestRun_ImportFromStdinAndExport(t *testing.T) {
	h := newHarness()
	h.app.In = strings.NewReader(
		"1|Paris|01/01/2025|01/05/2025|500.00|trip|false\n" +
			"garbage\n" +
			"2|Rome|02/01/2025|02/10/2025|700.00|fun|true\n")

	status, out := h.run(t, "import", "-")
	require.Equal(t, subcommands.ExitSuccess, status, h.err.String())
	assert.Contains(t, out, "imported 2 trip(s), skipped 1 line(s)")
	assert.Contains(t, h.err.String(), "Skipping line 2: garbage")

	status, out = h.run(t, "export", "-")
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Equal(t,
		"1|Paris|01/01/2025|01/05/2025|500.00|trip|false\n"+
			"2|Rome|02/01/2025|02/10/2025|700.00|fun|true\n",
		out)
}

func TestRun_ExportAppendsTxt(t *testing.T) {
	h := newHarness()
	h.run(t, "add", "-dest", "Oslo", "-start", "01/01/2025", "-end", "01/02/2025")
	base := filepath.Join(t.TempDir(), "backup")

	status, _ := h.run(t, "export", base)

	require.Equal(t, subcommands.ExitSuccess, status, h.err.String())
	data, err := os.ReadFile(base + ".txt")
	require.NoError(t, err)
	assert.Equal(t, "1|Oslo|01/01/2025|01/02/2025|0.00||false\n", string(data))
}

func TestOpen_TripsFileIsLoadedAndWrittenBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trips.txt")
	require.NoError(t, os.WriteFile(path, []byte("5|Lima|01/01/2025|01/02/2025|10.00|x|true\n"), 0o600))

	ctx := context.Background()
	cfg := config.Config{TripsFile: path, LogLevel: "warn"}
	app, err := cli.Open(ctx, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	var out bytes.Buffer
	app.Out = &out
	app.Err = io.Discard

	status := cli.Run(ctx, "trips", []string{"add", "-dest", "Quito", "-start", "02/01/2025", "-end", "02/03/2025"}, app)
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out.String(), "Trip #6 | Quito")

	require.NoError(t, app.Close(ctx))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"5|Lima|01/01/2025|01/02/2025|10.00|x|true\n"+
			"6|Quito|02/01/2025|02/03/2025|0.00||false\n",
		string(data))
}

func TestOpen_MissingTripsFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.txt")
	ctx := context.Background()

	app, err := cli.Open(ctx, config.Config{TripsFile: path}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	trips, err := app.Trips.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, trips)
	_, loaded := app.LoadReport()
	assert.False(t, loaded)

	// Nothing changed, so nothing is written.
	require.NoError(t, app.Close(ctx))
	_, err = os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpen_UnloadableLinesSurviveRewrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trips.txt")
	ctx := context.Background()
	cfg := config.Config{TripsFile: path}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	// A '|' in the notes produces a record with too many fields.
	first, err := cli.Open(ctx, cfg, log)
	require.NoError(t, err)
	first.Out, first.Err = io.Discard, io.Discard
	status := cli.Run(ctx, "trips", []string{"add", "-dest", "Oslo", "-start", "01/01/2025", "-end", "01/02/2025", "-notes", "a|b"}, first)
	require.Equal(t, subcommands.ExitSuccess, status)
	require.NoError(t, first.Close(ctx))

	oslo := "1|Oslo|01/01/2025|01/02/2025|0.00|a|b|false"
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, oslo+"\n", string(data))

	second, err := cli.Open(ctx, cfg, log)
	require.NoError(t, err)
	report, ok := second.LoadReport()
	require.True(t, ok)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, oslo, report.Skipped[0].Raw)

	var out bytes.Buffer
	second.Out, second.Err = &out, io.Discard
	status = cli.Run(ctx, "trips", []string{"add", "-dest", "Rome", "-start", "01/01/2025", "-end", "01/02/2025"}, second)
	require.Equal(t, subcommands.ExitSuccess, status)
	assert.Contains(t, out.String(), "Trip #2 | Rome", "the unloaded line's id stays taken")
	require.NoError(t, second.Close(ctx))

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"2|Rome|01/01/2025|01/02/2025|0.00||false\n"+
			oslo+"\n",
		string(data))
}

func TestOpen_OverLongLineBlocksRewrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trips.txt")
	original := "1|Lima|01/01/2025|01/02/2025|10.00|x|true\n" +
		strings.Repeat("x", 2*1024*1024) + "\n"
	require.NoError(t, os.WriteFile(path, []byte(original), 0o600))
	ctx := context.Background()

	app, err := cli.Open(ctx, config.Config{TripsFile: path}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	app.Out, app.Err = io.Discard, io.Discard

	status := cli.Run(ctx, "trips", []string{"delete", "1"}, app)
	require.Equal(t, subcommands.ExitSuccess, status)

	assert.Error(t, app.Close(ctx))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, string(data), "the file is left untouched")
}

func TestOpen_LoadReportNamesSkippedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trips.txt")
	require.NoError(t, os.WriteFile(path, []byte("garbage\n"), 0o600))
	ctx := context.Background()

	app, err := cli.Open(ctx, config.Config{TripsFile: path}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	report, ok := app.LoadReport()
	require.True(t, ok)
	assert.Equal(t, "imported 0 trip(s), skipped 1 line(s)", report.Summary())
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, 1, report.Skipped[0].Number)
	require.NoError(t, app.Close(ctx))
}
