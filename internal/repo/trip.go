package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/pkordes/travel-tracker/internal/domain"
)

// isoDate is the storage layout for start_date and end_date.
const isoDate = "2006-01-02"

// pgUniqueViolation is the SQLSTATE Postgres reports for a duplicate key.
const pgUniqueViolation = "23505"

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgTripRepo is the Postgres implementation of TripRepo.
// IDs come from the identity sequence on trips.id; Postgres sequences never
// hand out a value twice, so deleted IDs are not reused.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
// The caller owns db: Close on the returned repo does not close it.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `id, destination, start_date, end_date, budget::text, notes, completed`

// Create inserts a new trip row and returns the full persisted record.
func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (destination, start_date, end_date, budget, notes, completed)
		VALUES (@destination, @start_date, @end_date, @budget::numeric, @notes, @completed)
		RETURNING ` + tripColumns

	row := r.db.QueryRow(ctx, q, tripArgs(trip))
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

// Import moves the identity sequence past trip.ID, then inserts the row with
// its explicit ID. The sequence is advanced first so that a failure between
// the two statements can only waste IDs, never hand one out twice.
func (r *pgTripRepo) Import(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	if err := r.Reserve(ctx, trip.ID); err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Import: %w", err)
	}

	const q = `
		INSERT INTO trips (id, destination, start_date, end_date, budget, notes, completed)
		VALUES (@id, @destination, @start_date, @end_date, @budget::numeric, @notes, @completed)
		RETURNING ` + tripColumns

	args := tripArgs(trip)
	args["id"] = trip.ID

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Import: id %d: %w", trip.ID, err)
	}
	return result, nil
}

// Reserve sets the identity sequence so the next generated ID is at least
// id+1. setval is never given a value below the sequence's own next value.
func (r *pgTripRepo) Reserve(ctx context.Context, id int64) error {
	if err := checkImportID(id); err != nil {
		return fmt.Errorf("repo.TripRepo.Reserve: %w", err)
	}

	const q = `
		SELECT setval(pg_get_serial_sequence('trips', 'id'),
		              GREATEST(@next::bigint, CASE WHEN is_called THEN last_value + 1 ELSE last_value END),
		              false)
		FROM trips_id_seq`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"next": id + 1}); err != nil {
		return fmt.Errorf("repo.TripRepo.Reserve: %w", mapErr(err))
	}
	return nil
}

// GetByID retrieves a trip by primary key.
func (r *pgTripRepo) GetByID(ctx context.Context, id int64) (domain.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

// List is a full, unordered table scan. Callers sort afterwards.
func (r *pgTripRepo) List(ctx context.Context) ([]domain.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.List: %w", mapErr(err))
	}
	defer rows.Close()

	var trips []domain.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TripRepo.List: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripRepo.List: rows: %w", mapErr(err))
	}

	return trips, nil
}

// Update overwrites the mutable fields of a trip and returns the updated record.
func (r *pgTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET destination = @destination,
		    start_date  = @start_date,
		    end_date    = @end_date,
		    budget      = @budget::numeric,
		    notes       = @notes,
		    completed   = @completed
		WHERE id = @id
		RETURNING ` + tripColumns

	args := tripArgs(trip)
	args["id"] = trip.ID

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", err)
	}
	return result, nil
}

// Delete removes a trip by primary key.
func (r *pgTripRepo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM trips WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", mapErr(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// Close is a no-op: the connection passed to NewTripRepo belongs to the caller.
func (r *pgTripRepo) Close() error { return nil }

// tripArgs maps the mutable fields of a trip onto named query arguments.
// Dates are stored as ISO-8601 text and completed as 0/1.
func tripArgs(t domain.Trip) pgx.NamedArgs {
	completed := 0
	if t.Completed {
		completed = 1
	}
	return pgx.NamedArgs{
		"destination": t.Destination,
		"start_date":  t.StartDate.Format(isoDate),
		"end_date":    t.EndDate.Format(isoDate),
		"budget":      t.Budget.String(),
		"notes":       t.Notes,
		"completed":   completed,
	}
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanTrip to be
// reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a single database row into a domain.Trip.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t                domain.Trip
		startRaw, endRaw string
		budgetRaw        string
		completed        int16
	)

	err := s.Scan(&t.ID, &t.Destination, &startRaw, &endRaw, &budgetRaw, &t.Notes, &completed)
	if err != nil {
		return domain.Trip{}, mapErr(err)
	}

	if t.StartDate, err = time.ParseInLocation(isoDate, startRaw, time.UTC); err != nil {
		return domain.Trip{}, fmt.Errorf("%w: start_date %q: %w", domain.ErrStorage, startRaw, err)
	}
	if t.EndDate, err = time.ParseInLocation(isoDate, endRaw, time.UTC); err != nil {
		return domain.Trip{}, fmt.Errorf("%w: end_date %q: %w", domain.ErrStorage, endRaw, err)
	}
	if t.Budget, err = decimal.NewFromString(budgetRaw); err != nil {
		return domain.Trip{}, fmt.Errorf("%w: budget %q: %w", domain.ErrStorage, budgetRaw, err)
	}
	t.Completed = completed != 0

	return t, nil
}

// mapErr translates driver errors into domain sentinels. Anything that is not
// a missing row or a duplicate key is a storage failure.
func mapErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.Detail)
	}
	return fmt.Errorf("%w: %w", domain.ErrStorage, err)
}
