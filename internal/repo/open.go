package repo

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/pkordes/travel-tracker/migrations"
)

// Open returns the backend selected by databaseURL. An empty URL selects the
// in-memory backend. Otherwise the trips table is created if it does not exist
// and a connection pool is opened; any failure here is returned immediately and
// leaves nothing open.
//
// The caller must Close the returned repo.
func Open(ctx context.Context, databaseURL string, log *slog.Logger) (TripRepo, error) {
	if databaseURL == "" {
		log.Debug("using in-memory trip store")
		return NewMemoryTripRepo(), nil
	}

	if err := Migrate(ctx, databaseURL, log); err != nil {
		return nil, err
	}

	// pgxpool manages a pool of Postgres connections.
	// New() does not open connections immediately; Ping forces the first one.
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("repo.Open: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("repo.Open: ping: %w", err)
	}
	log.Debug("database connection established")

	return &pooledTripRepo{pgTripRepo: pgTripRepo{db: pool}, pool: pool}, nil
}

// Migrate applies the embedded schema to the database at databaseURL.
// It is idempotent: an up-to-date database is left untouched.
func Migrate(ctx context.Context, databaseURL string, log *slog.Logger) error {
	// goose needs database/sql, not a pgx pool.
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("repo.Migrate: open: %w", err)
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("repo.Migrate: create goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("repo.Migrate: apply schema: %w", err)
	}
	for _, r := range results {
		log.Info("schema migration applied", "version", r.Source.Version, "duration", r.Duration)
	}
	return nil
}

// pooledTripRepo is a pgTripRepo that owns its connection pool.
type pooledTripRepo struct {
	pgTripRepo
	pool *pgxpool.Pool
}

// Close closes the pool. pgxpool.Pool.Close is idempotent.
func (r *pooledTripRepo) Close() error {
	r.pool.Close()
	return nil
}
