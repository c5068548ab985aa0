// Package domain contains the core data types for the travel tracker.
// It is imported by every other internal package (tripfile, repo, service, cli).
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the MM/DD/YYYY layout used for display and for the flat-file format.
const DateLayout = "01/02/2006"

// Trip represents a single planned or completed journey.
// No field is validated: an end date before the start date, a negative budget,
// and empty strings are all accepted as-is.
type Trip struct {
	ID          int64
	Destination string
	StartDate   time.Time // date only, UTC midnight
	EndDate     time.Time // date only, UTC midnight
	Budget      decimal.Decimal
	Notes       string
	Completed   bool
}

// Status returns "Completed" or "Planning".
func (t Trip) Status() string {
	if t.Completed {
		return "Completed"
	}
	return "Planning"
}

// DisplayString returns the human-readable one-line summary of the trip.
func (t Trip) DisplayString() string {
	return fmt.Sprintf("Trip #%d | %s | %s - %s | $%s | %s | %s",
		t.ID,
		t.Destination,
		t.StartDate.Format(DateLayout),
		t.EndDate.Format(DateLayout),
		t.Budget.StringFixed(2),
		t.Notes,
		t.Status(),
	)
}

// String implements fmt.Stringer.
func (t Trip) String() string {
	return t.DisplayString()
}

// ExportString returns the pipe-delimited flat-file form of the trip:
//
//	id|destination|MM/DD/YYYY|MM/DD/YYYY|budget|notes|true|false
//
// The budget is always rendered with two decimals.
func (t Trip) ExportString() string {
	return fmt.Sprintf("%d|%s|%s|%s|%s|%s|%t",
		t.ID,
		t.Destination,
		t.StartDate.Format(DateLayout),
		t.EndDate.Format(DateLayout),
		t.Budget.StringFixed(2),
		t.Notes,
		t.Completed,
	)
}

// Date truncates a calendar day to UTC midnight, the canonical form for
// StartDate and EndDate.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// TripPatch is a partial update. Nil fields are left untouched.
// It has no ID field: a trip's ID never changes.
type TripPatch struct {
	Destination *string
	StartDate   *time.Time
	EndDate     *time.Time
	Budget      *decimal.Decimal
	Notes       *string
	Completed   *bool
}

// Apply returns a copy of t with every non-nil patch field applied.
func (p TripPatch) Apply(t Trip) Trip {
	if p.Destination != nil {
		t.Destination = *p.Destination
	}
	if p.StartDate != nil {
		t.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		t.EndDate = *p.EndDate
	}
	if p.Budget != nil {
		t.Budget = *p.Budget
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return t
}

// IsEmpty reports whether the patch changes nothing.
func (p TripPatch) IsEmpty() bool {
	return p == TripPatch{}
}
