// Package service contains the trip repository's business rules: ID policy,
// partial updates, completion, sorting, and bulk import/export.
// No SQL lives here; services depend on repo.TripRepo, not on a backend.
package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/pkordes/travel-tracker/internal/domain"
	"github.com/pkordes/travel-tracker/internal/repo"
)

// TripService owns the authoritative trip collection behind a TripRepo.
// Callers receive copies; every mutation goes through this type.
type TripService struct {
	repo repo.TripRepo
	log  *slog.Logger
}

// NewTripService constructs a TripService backed by the provided TripRepo.
func NewTripService(r repo.TripRepo, log *slog.Logger) *TripService {
	return &TripService{repo: r, log: log}
}

// Create persists a new trip under the next unused ID. The ID and Completed
// fields of the argument are ignored; no other field is validated.
func (s *TripService) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	trip.ID = 0
	trip.Completed = false

	created, err := s.repo.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	s.log.DebugContext(ctx, "trip created", "id", created.ID, "destination", created.Destination)
	return created, nil
}

// GetByID returns a single trip, or domain.ErrNotFound.
func (s *TripService) GetByID(ctx context.Context, id int64) (domain.Trip, error) {
	trip, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return trip, nil
}

// List returns all trips in storage order. The result is never nil.
func (s *TripService) List(ctx context.Context) ([]domain.Trip, error) {
	trips, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.List: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, nil
}

// Update applies patch to the trip with the given ID and persists the result.
// The ID itself cannot be patched.
func (s *TripService) Update(ctx context.Context, id int64, patch domain.TripPatch) (domain.Trip, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	if patch.IsEmpty() {
		return current, nil
	}

	updated, err := s.repo.Update(ctx, patch.Apply(current))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	s.log.DebugContext(ctx, "trip updated", "id", updated.ID)
	return updated, nil
}

// Delete removes a trip. It reports false, not an error, when no trip has id.
func (s *TripService) Delete(ctx context.Context, id int64) (bool, error) {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("service.TripService.Delete: %w", err)
	}
	s.log.DebugContext(ctx, "trip deleted", "id", id)
	return true, nil
}

// SetCompleted sets the completion flag of a trip.
func (s *TripService) SetCompleted(ctx context.Context, id int64, completed bool) (domain.Trip, error) {
	trip, err := s.Update(ctx, id, domain.TripPatch{Completed: &completed})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.SetCompleted: %w", err)
	}
	return trip, nil
}

// ToggleCompleted flips the completion flag of a trip between Planning and
// Completed.
func (s *TripService) ToggleCompleted(ctx context.Context, id int64) (domain.Trip, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.ToggleCompleted: %w", err)
	}
	current.Completed = !current.Completed

	updated, err := s.repo.Update(ctx, current)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.ToggleCompleted: %w", err)
	}
	return updated, nil
}

// Import stores a fully-formed trip under its own ID and completion flag.
// Subsequent Create calls never return an ID at or below trip.ID.
// Returns domain.ErrConflict if the ID belongs to a live trip.
func (s *TripService) Import(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	imported, err := s.repo.Import(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Import: %w", err)
	}
	return imported, nil
}

// ReserveID makes sure later Create calls return IDs greater than id, as if a
// trip with that ID had been imported.
func (s *TripService) ReserveID(ctx context.Context, id int64) error {
	if err := s.repo.Reserve(ctx, id); err != nil {
		return fmt.Errorf("service.TripService.ReserveID: %w", err)
	}
	return nil
}

// Sort returns every trip ordered by the given criterion. The stored order is
// left untouched; ties keep their relative storage order.
func (s *TripService) Sort(ctx context.Context, by domain.SortBy) ([]domain.Trip, error) {
	compare, ok := comparators[by]
	if !ok {
		return nil, fmt.Errorf("service.TripService.Sort: %w: unknown sort criterion %q", domain.ErrValidation, by)
	}

	trips, err := s.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.Sort: %w", err)
	}
	sorted := slices.Clone(trips)
	slices.SortStableFunc(sorted, compare)
	return sorted, nil
}

var comparators = map[domain.SortBy]func(a, b domain.Trip) int{
	domain.SortByID: func(a, b domain.Trip) int {
		return cmp.Compare(a.ID, b.ID)
	},
	domain.SortByStartDate: func(a, b domain.Trip) int {
		return a.StartDate.Compare(b.StartDate)
	},
	domain.SortByDestination: func(a, b domain.Trip) int {
		return cmp.Compare(strings.ToLower(a.Destination), strings.ToLower(b.Destination))
	},
	domain.SortByBudgetAsc: func(a, b domain.Trip) int {
		return a.Budget.Cmp(b.Budget)
	},
	domain.SortByBudgetDesc: func(a, b domain.Trip) int {
		return b.Budget.Cmp(a.Budget)
	},
}
