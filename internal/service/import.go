package service

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/travel-tracker/internal/domain"
	"github.com/pkordes/travel-tracker/internal/tripfile"
)

// TripImporter is the write side of TripService that ImportService needs.
type TripImporter interface {
	Import(ctx context.Context, trip domain.Trip) (domain.Trip, error)
}

// SkippedLine describes an input line that was not imported.
type SkippedLine struct {
	Number int    // 1-based line number in the source
	Raw    string // the line exactly as read, without its terminator
	Reason error
}

// ImportReport summarises one Import call.
type ImportReport struct {
	BatchID  uuid.UUID
	Imported []domain.Trip
	Skipped  []SkippedLine
}

// Summary returns a one-line human-readable result.
func (r ImportReport) Summary() string {
	return fmt.Sprintf("imported %d trip(s), skipped %d line(s)", len(r.Imported), len(r.Skipped))
}

// DefaultMaxLineLength bounds how much of one input line ImportService buffers.
const DefaultMaxLineLength = 1024 * 1024

// ErrLineTooLong is the SkippedLine reason for a line longer than the
// service's limit. Raw then holds only the start of the line.
var ErrLineTooLong = errors.New("line too long")

// rawPrefixLen is how much of an over-long line is kept for diagnostics.
const rawPrefixLen = 64

// ImportService feeds flat-file records into a TripImporter one at a time.
type ImportService struct {
	trips      TripImporter
	log        *slog.Logger
	maxLineLen int
}

// NewImportService constructs an ImportService writing into trips.
func NewImportService(trips TripImporter, log *slog.Logger) *ImportService {
	return &ImportService{trips: trips, log: log, maxLineLen: DefaultMaxLineLength}
}

// Import reads r line by line. Blank lines are ignored. A line that fails to
// parse, is longer than DefaultMaxLineLength, or whose ID is taken or unusable
// is recorded in the report and logged, and the batch continues. Only a read
// failure or a storage error stops the batch; the report returned alongside
// that error covers the lines handled so far.
func (s *ImportService) Import(ctx context.Context, r io.Reader) (ImportReport, error) {
	report := ImportReport{BatchID: uuid.New()}
	log := s.log.With("batch_id", report.BatchID)

	br := bufio.NewReader(r)

	lineNo := 0
	for {
		raw, tooLong, err := readLine(br, s.maxLineLen)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return report, fmt.Errorf("service.ImportService.Import: read: %w", err)
		}
		lineNo++

		var trip domain.Trip
		if tooLong {
			err = fmt.Errorf("%w: more than %d bytes", ErrLineTooLong, s.maxLineLen)
		} else {
			trip, err = tripfile.ParseLine(raw)
			if errors.Is(err, tripfile.ErrBlankLine) {
				continue
			}
			if err == nil {
				trip, err = s.trips.Import(ctx, trip)
			}
		}

		var parseErr *tripfile.ParseError
		switch {
		case err == nil:
			report.Imported = append(report.Imported, trip)
		case errors.As(err, &parseErr), errors.Is(err, ErrLineTooLong),
			errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrValidation):
			log.WarnContext(ctx, "skipping line", "line_no", lineNo, "line", raw, "error", err)
			report.Skipped = append(report.Skipped, SkippedLine{Number: lineNo, Raw: raw, Reason: err})
		default:
			return report, fmt.Errorf("service.ImportService.Import: line %d: %w", lineNo, err)
		}
	}

	log.InfoContext(ctx, "import finished", "imported", len(report.Imported), "skipped", len(report.Skipped))
	return report, nil
}

// readLine returns the next line of br without its terminator. A line longer
// than limit is consumed in full but only its first rawPrefixLen bytes are
// returned, with tooLong set. io.EOF is returned once no line is left.
func readLine(br *bufio.Reader, limit int) (line string, tooLong bool, err error) {
	var buf []byte
	for {
		chunk, isPrefix, readErr := br.ReadLine()
		if readErr != nil {
			if errors.Is(readErr, io.EOF) && (len(buf) > 0 || tooLong) {
				break
			}
			return "", false, readErr
		}
		if !tooLong {
			tooLong = len(buf)+len(chunk) > limit
			buf = append(buf, chunk...)
			if tooLong {
				buf = buf[:min(len(buf), rawPrefixLen)]
			}
		}
		if !isPrefix {
			break
		}
	}
	return string(buf), tooLong, nil
}
