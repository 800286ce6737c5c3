package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/dayplanner/internal/domain"
)

const dayColumns = `id, trip_id, day_number, date, location_context,
		accommodation_options, activities, transportation_segments, created_at, updated_at`

// pgDayRepo is the Postgres implementation of DayRepo. JSON columns are
// encoded and decoded by pgx's jsonb codec.
type pgDayRepo struct {
	db db
}

// NewDayRepo constructs a DayRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewDayRepo(db db) DayRepo {
	return &pgDayRepo{db: db}
}

func (r *pgDayRepo) GetByTripAndNumber(ctx context.Context, tripID uuid.UUID, dayNumber int) (domain.DayRecord, error) {
	q := `SELECT ` + dayColumns + ` FROM itinerary_days
		WHERE trip_id = @trip_id AND day_number = @day_number`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID, "day_number": dayNumber})
	d, err := scanPgDay(row)
	if err != nil {
		return domain.DayRecord{}, fmt.Errorf("repo.DayRepo.GetByTripAndNumber: %w", err)
	}
	return d, nil
}

func (r *pgDayRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.DayRecord, error) {
	q := `SELECT ` + dayColumns + ` FROM itinerary_days WHERE id = @id`

	d, err := scanPgDay(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.DayRecord{}, fmt.Errorf("repo.DayRepo.GetByID: %w", err)
	}
	return d, nil
}

func (r *pgDayRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.DayRecord, error) {
	q := `SELECT ` + dayColumns + ` FROM itinerary_days
		WHERE trip_id = @trip_id
		ORDER BY day_number`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.DayRepo.ListByTrip: %w", err)
	}
	defer rows.Close()

	var days []domain.DayRecord
	for rows.Next() {
		d, err := scanPgDay(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.DayRepo.ListByTrip: scan: %w", err)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.DayRepo.ListByTrip: rows: %w", err)
	}
	return days, nil
}

// Create inserts the day, or returns the existing row for the same
// (trip_id, day_number) when a concurrent first touch won the race.
func (r *pgDayRepo) Create(ctx context.Context, day domain.DayRecord) (domain.DayRecord, error) {
	q := `
		INSERT INTO itinerary_days (trip_id, day_number, date, location_context,
			accommodation_options, activities, transportation_segments)
		VALUES (@trip_id, @day_number, @date, @location_context,
			@accommodation_options, @activities, @transportation_segments)
		ON CONFLICT (trip_id, day_number) DO NOTHING
		RETURNING ` + dayColumns

	date, err := pgDate(day.Date)
	if err != nil {
		return domain.DayRecord{}, fmt.Errorf("repo.DayRepo.Create: %w", err)
	}
	args := pgx.NamedArgs{
		"trip_id":                 day.TripID,
		"day_number":              day.DayNumber,
		"date":                    date,
		"location_context":        day.LocationContext,
		"accommodation_options":   nonNil(day.AccommodationOptions),
		"activities":              nonNil(day.Activities),
		"transportation_segments": nonNil(day.TransportationSegments),
	}

	created, err := scanPgDay(r.db.QueryRow(ctx, q, args))
	if errors.Is(err, domain.ErrNotFound) {
		return r.GetByTripAndNumber(ctx, day.TripID, day.DayNumber)
	}
	if err != nil {
		return domain.DayRecord{}, fmt.Errorf("repo.DayRepo.Create: %w", err)
	}
	return created, nil
}

// Update writes only the fields the patch sets. A set-but-empty date clears
// the column.
func (r *pgDayRepo) Update(ctx context.Context, id uuid.UUID, patch domain.DayPatch) (domain.DayRecord, error) {
	q := `
		UPDATE itinerary_days
		SET date                    = CASE WHEN @set_date THEN @date ELSE date END,
		    location_context        = COALESCE(@location_context, location_context),
		    activities              = COALESCE(@activities, activities),
		    transportation_segments = COALESCE(@transportation_segments, transportation_segments),
		    updated_at              = now()
		WHERE id = @id
		RETURNING ` + dayColumns

	args := pgx.NamedArgs{
		"id":                      id,
		"set_date":                patch.Date != nil,
		"date":                    pgtype.Date{},
		"location_context":        patch.LocationContext,
		"activities":              nil,
		"transportation_segments": nil,
	}
	if patch.Date != nil {
		date, err := pgDate(*patch.Date)
		if err != nil {
			return domain.DayRecord{}, fmt.Errorf("repo.DayRepo.Update: %w", err)
		}
		args["date"] = date
	}
	if patch.Activities != nil {
		args["activities"] = nonNil(*patch.Activities)
	}
	if patch.TransportationSegments != nil {
		args["transportation_segments"] = nonNil(*patch.TransportationSegments)
	}

	d, err := scanPgDay(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.DayRecord{}, fmt.Errorf("repo.DayRepo.Update: %w", err)
	}
	return d, nil
}

func pgDate(s string) (pgtype.Date, error) {
	if s == "" {
		return pgtype.Date{}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return pgtype.Date{}, fmt.Errorf("%w: date %q: want YYYY-MM-DD", domain.ErrValidation, s)
	}
	return pgtype.Date{Time: t, Valid: true}, nil
}

// scanPgDay maps a single itinerary_days row into a domain.DayRecord.
func scanPgDay(s scanner) (domain.DayRecord, error) {
	var (
		d      domain.DayRecord
		id     pgtype.UUID
		tripID pgtype.UUID
		date   pgtype.Date
	)
	err := s.Scan(&id, &tripID, &d.DayNumber, &date, &d.LocationContext,
		&d.AccommodationOptions, &d.Activities, &d.TransportationSegments,
		&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.DayRecord{}, domain.ErrNotFound
		}
		return domain.DayRecord{}, err
	}

	d.ID = uuid.UUID(id.Bytes)
	d.TripID = uuid.UUID(tripID.Bytes)
	if date.Valid {
		d.Date = date.Time.Format(time.DateOnly)
	}
	return d, nil
}
