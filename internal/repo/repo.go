// Package repo contains the persistence backends for trips.
// Two interchangeable implementations satisfy TripRepo: an in-memory slice and
// a Postgres table. No business logic lives here, only storage and type mapping.
package repo

import (
	"context"
	"fmt"
	"math"

	"github.com/pkordes/travel-tracker/internal/domain"
)

// TripRepo defines the persistence operations for Trips.
// The service layer depends on this interface, not on a concrete backend,
// which lets the backend be chosen at construction time.
//
// Every implementation must guarantee that IDs are unique among live trips and
// are never handed out twice, including IDs that arrived through Import.
type TripRepo interface {
	// Create stores a new trip under the next unused ID and returns the
	// persisted record. The ID field of the argument is ignored.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// Import stores a trip under its own ID and advances the ID allocator so
	// that future Create calls return IDs greater than trip.ID.
	// Returns domain.ErrConflict if a live trip already has that ID, and
	// domain.ErrValidation if trip.ID is math.MaxInt64.
	Import(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// Reserve advances the ID allocator past id without storing a trip. The
	// allocator never moves backwards. Returns domain.ErrValidation if id is
	// math.MaxInt64.
	Reserve(ctx context.Context, id int64) error

	// GetByID retrieves a single trip.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id int64) (domain.Trip, error)

	// List returns every trip in storage order. No particular order is promised.
	List(ctx context.Context) ([]domain.Trip, error)

	// Update overwrites the mutable fields of an existing trip and returns the
	// updated record. Returns domain.ErrNotFound if no trip with that ID exists.
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// Delete removes a trip by ID. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id int64) error

	// Close releases the backend handle. It is safe to call more than once.
	Close() error
}

// checkImportID rejects an explicit ID that would leave no room for the
// allocator to move past it.
func checkImportID(id int64) error {
	if id == math.MaxInt64 {
		return fmt.Errorf("id %d: %w: no later id can be allocated", id, domain.ErrValidation)
	}
	return nil
}
