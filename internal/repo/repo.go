// Package repo contains all storage access for the day planner: the day-record
// store the planner rewrites and the read-only POI/transportation catalog.
// Each contract has a Postgres, a SQLite and a file-backed implementation.
// No business logic lives here, only queries and type mapping.
package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pkordes/dayplanner/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DayRepo reads and writes itinerary day records.
// The service layer depends on this interface, not on a concrete backend.
type DayRepo interface {
	// GetByTripAndNumber returns the day with the given number in a trip.
	// Returns domain.ErrNotFound if the day has not been created yet.
	GetByTripAndNumber(ctx context.Context, tripID uuid.UUID, dayNumber int) (domain.DayRecord, error)

	// GetByID returns a day by its primary key.
	// Returns domain.ErrNotFound if no such day exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.DayRecord, error)

	// ListByTrip returns the trip's days ordered by day number.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.DayRecord, error)

	// Create inserts a day on first touch. (trip_id, day_number) is unique:
	// if the day already exists the stored record is returned unchanged.
	Create(ctx context.Context, day domain.DayRecord) (domain.DayRecord, error)

	// Update applies a partial update and returns the stored record. The
	// activities array, when present in the patch, replaces the stored one
	// whole. Returns domain.ErrNotFound if no such day exists.
	Update(ctx context.Context, id uuid.UUID, patch domain.DayPatch) (domain.DayRecord, error)
}

// CatalogRepo reads a trip's points of interest and transportations.
type CatalogRepo interface {
	ListPOIs(ctx context.Context, tripID uuid.UUID) ([]domain.POI, error)
	ListTransportations(ctx context.Context, tripID uuid.UUID) ([]domain.Transportation, error)
}

// CatalogWriter upserts catalog entries. The planner never writes the
// catalog; seeding and tests do.
type CatalogWriter interface {
	PutPOI(ctx context.Context, poi domain.POI) error
	PutTransportation(ctx context.Context, t domain.Transportation) error
}

// Catalog is a readable and writable catalog.
type Catalog interface {
	CatalogRepo
	CatalogWriter
}

// scanner is satisfied by pgx.Row, pgx.Rows, *sql.Row and *sql.Rows, allowing
// the scan helpers to be reused for single-row and multi-row queries.
type scanner interface {
	Scan(dest ...any) error
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
