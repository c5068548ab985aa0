package repo

import (
	"context"
	"fmt"
	"slices"

	"github.com/pkordes/travel-tracker/internal/domain"
)

// memTripRepo keeps trips in insertion order for the lifetime of the process.
// It is not safe for concurrent use.
type memTripRepo struct {
	trips  []domain.Trip
	nextID int64
}

// NewMemoryTripRepo returns an empty in-memory TripRepo whose first Create
// returns ID 1.
func NewMemoryTripRepo() TripRepo {
	return &memTripRepo{nextID: 1}
}

func (r *memTripRepo) Create(_ context.Context, trip domain.Trip) (domain.Trip, error) {
	trip.ID = r.nextID
	r.nextID++
	r.trips = append(r.trips, trip)
	return trip, nil
}

func (r *memTripRepo) Import(_ context.Context, trip domain.Trip) (domain.Trip, error) {
	if err := checkImportID(trip.ID); err != nil {
		return domain.Trip{}, fmt.Errorf("repo.memTripRepo.Import: %w", err)
	}
	if r.indexOf(trip.ID) >= 0 {
		return domain.Trip{}, fmt.Errorf("repo.memTripRepo.Import: id %d: %w", trip.ID, domain.ErrConflict)
	}
	r.trips = append(r.trips, trip)
	r.nextID = max(r.nextID, trip.ID+1)
	return trip, nil
}

func (r *memTripRepo) Reserve(_ context.Context, id int64) error {
	if err := checkImportID(id); err != nil {
		return fmt.Errorf("repo.memTripRepo.Reserve: %w", err)
	}
	r.nextID = max(r.nextID, id+1)
	return nil
}

func (r *memTripRepo) GetByID(_ context.Context, id int64) (domain.Trip, error) {
	i := r.indexOf(id)
	if i < 0 {
		return domain.Trip{}, fmt.Errorf("repo.memTripRepo.GetByID: %w", domain.ErrNotFound)
	}
	return r.trips[i], nil
}

// List returns a copy so callers cannot reorder or mutate the stored slice.
func (r *memTripRepo) List(_ context.Context) ([]domain.Trip, error) {
	return slices.Clone(r.trips), nil
}

func (r *memTripRepo) Update(_ context.Context, trip domain.Trip) (domain.Trip, error) {
	i := r.indexOf(trip.ID)
	if i < 0 {
		return domain.Trip{}, fmt.Errorf("repo.memTripRepo.Update: %w", domain.ErrNotFound)
	}
	r.trips[i] = trip
	return trip, nil
}

func (r *memTripRepo) Delete(_ context.Context, id int64) error {
	i := r.indexOf(id)
	if i < 0 {
		return fmt.Errorf("repo.memTripRepo.Delete: %w", domain.ErrNotFound)
	}
	r.trips = slices.Delete(r.trips, i, i+1)
	return nil
}

func (r *memTripRepo) Close() error { return nil }

func (r *memTripRepo) indexOf(id int64) int {
	return slices.IndexFunc(r.trips, func(t domain.Trip) bool { return t.ID == id })
}
