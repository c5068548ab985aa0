// Package tripfile converts trips to and from the pipe-delimited flat-file
// format used for bulk import and export:
//
//	<id>|<destination>|<MM/DD/YYYY>|<MM/DD/YYYY>|<budget>|<notes>|<true|false>
//
// The package is pure and stateless.
package tripfile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pkordes/travel-tracker/internal/domain"
)

// FieldCount is the number of '|'-separated fields every record must have.
const FieldCount = 7

// Separator splits the fields of a record.
const Separator = "|"

// ErrBlankLine is returned by ParseLine for empty or whitespace-only lines.
// It is not a ParseError: callers skip blank lines silently.
var ErrBlankLine = errors.New("blank line")

// ParseErrorKind classifies why a line could not be parsed.
type ParseErrorKind int

const (
	FieldCountMismatch ParseErrorKind = iota + 1
	BadDate
	BadNumber
)

func (k ParseErrorKind) String() string {
	switch k {
	case FieldCountMismatch:
		return "field count mismatch"
	case BadDate:
		return "bad date"
	case BadNumber:
		return "bad number"
	default:
		return "unknown"
	}
}

// ParseError reports a malformed record. Line is the raw input text so the
// caller can name the offending line in diagnostics.
type ParseError struct {
	Kind  ParseErrorKind
	Line  string
	Field string // name of the offending field; empty for FieldCountMismatch
	Err   error  // underlying strconv/time/decimal error, if any
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %q", e.Kind, e.Line)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s in %s: %q: %v", e.Kind, e.Field, e.Line, e.Err)
	}
	return fmt.Sprintf("%s in %s: %q", e.Kind, e.Field, e.Line)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseLine decodes one flat-file record into a Trip.
//
// A trailing carriage return is ignored. Only the budget field may carry
// surrounding spaces; " 1" is a bad id and " true" reads as false. The
// completed field is true only for a case-insensitive "true"; any other
// literal yields false rather than an error.
func ParseLine(line string) (domain.Trip, error) {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return domain.Trip{}, ErrBlankLine
	}

	parts := strings.Split(line, Separator)
	if len(parts) != FieldCount {
		return domain.Trip{}, &ParseError{Kind: FieldCountMismatch, Line: line}
	}

	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return domain.Trip{}, &ParseError{Kind: BadNumber, Line: line, Field: "id", Err: err}
	}
	start, err := parseDate(parts[2])
	if err != nil {
		return domain.Trip{}, &ParseError{Kind: BadDate, Line: line, Field: "start_date", Err: err}
	}
	end, err := parseDate(parts[3])
	if err != nil {
		return domain.Trip{}, &ParseError{Kind: BadDate, Line: line, Field: "end_date", Err: err}
	}
	budget, err := decimal.NewFromString(strings.TrimSpace(parts[4]))
	if err != nil {
		return domain.Trip{}, &ParseError{Kind: BadNumber, Line: line, Field: "budget", Err: err}
	}

	return domain.Trip{
		ID:          id,
		Destination: parts[1],
		StartDate:   start,
		EndDate:     end,
		Budget:      budget,
		Notes:       parts[5],
		Completed:   strings.EqualFold(parts[6], "true"),
	}, nil
}

// FormatLine encodes a Trip as a flat-file record without a line terminator.
// It is the inverse of ParseLine up to two decimal places of budget.
func FormatLine(t domain.Trip) string {
	return t.ExportString()
}

// ParseDate parses a MM/DD/YYYY date into UTC midnight, ignoring surrounding
// whitespace. It is meant for interactive input; record fields are stricter.
func ParseDate(s string) (time.Time, error) {
	return parseDate(strings.TrimSpace(s))
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(domain.DateLayout, s, time.UTC)
}

// LeadingID reads the id field of a record that may not otherwise parse.
// ok is false when the line does not start with an integer id.
func LeadingID(line string) (id int64, ok bool) {
	head, _, _ := strings.Cut(line, Separator)
	id, err := strconv.ParseInt(head, 10, 64)
	return id, err == nil
}

// ExportPath appends ".txt" to name unless it already ends in it (any case).
func ExportPath(name string) string {
	if strings.HasSuffix(strings.ToLower(name), ".txt") {
		return name
	}
	return name + ".txt"
}
