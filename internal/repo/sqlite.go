package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver for database/sql

	"github.com/pkordes/dayplanner/internal/domain"
)

// OpenSQLite opens a SQLite database at path (":memory:" for a private
// in-memory database) with foreign keys and a busy timeout enabled.
func OpenSQLite(path string) (*sql.DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("repo.OpenSQLite: %w", err)
	}
	// One writer at a time; an in-memory database also only exists per connection.
	db.SetMaxOpenConns(1)
	return db, nil
}

// sqliteDayRepo is the SQLite implementation of DayRepo. JSON columns are
// stored as TEXT and timestamps as RFC 3339 strings.
type sqliteDayRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteDayRepo constructs a DayRepo over a migrated SQLite database.
func NewSQLiteDayRepo(db *sql.DB) DayRepo {
	return &sqliteDayRepo{db: db, now: time.Now}
}

func (r *sqliteDayRepo) GetByTripAndNumber(ctx context.Context, tripID uuid.UUID, dayNumber int) (domain.DayRecord, error) {
	q := `SELECT ` + dayColumns + ` FROM itinerary_days
		WHERE trip_id = @trip_id AND day_number = @day_number`

	row := r.db.QueryRowContext(ctx, q, sql.Named("trip_id", tripID.String()), sql.Named("day_number", dayNumber))
	d, err := scanSQLiteDay(row)
	if err != nil {
		return domain.DayRecord{}, fmt.Errorf("repo.DayRepo.GetByTripAndNumber: %w", err)
	}
	return d, nil
}

func (r *sqliteDayRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.DayRecord, error) {
	d, err := r.getByID(ctx, r.db, id)
	if err != nil {
		return domain.DayRecord{}, fmt.Errorf("repo.DayRepo.GetByID: %w", err)
	}
	return d, nil
}

type sqliteQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *sqliteDayRepo) getByID(ctx context.Context, q sqliteQuerier, id uuid.UUID) (domain.DayRecord, error) {
	row := q.QueryRowContext(ctx, `SELECT `+dayColumns+` FROM itinerary_days WHERE id = @id`,
		sql.Named("id", id.String()))
	return scanSQLiteDay(row)
}

func (r *sqliteDayRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.DayRecord, error) {
	q := `SELECT ` + dayColumns + ` FROM itinerary_days
		WHERE trip_id = @trip_id
		ORDER BY day_number`

	rows, err := r.db.QueryContext(ctx, q, sql.Named("trip_id", tripID.String()))
	if err != nil {
		return nil, fmt.Errorf("repo.DayRepo.ListByTrip: %w", err)
	}
	defer rows.Close()

	var days []domain.DayRecord
	for rows.Next() {
		d, err := scanSQLiteDay(rows)
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

func (r *sqliteDayRepo) Create(ctx context.Context, day domain.DayRecord) (domain.DayRecord, error) {
	const q = `
		INSERT INTO itinerary_days (id, trip_id, day_number, date, location_context,
			accommodation_options, activities, transportation_segments, created_at, updated_at)
		VALUES (@id, @trip_id, @day_number, @date, @location_context,
			@accommodation_options, @activities, @transportation_segments, @now, @now)
		ON CONFLICT (trip_id, day_number) DO NOTHING`

	if err := validDate(day.Date); err != nil {
		return domain.DayRecord{}, fmt.Errorf("repo.DayRepo.Create: %w", err)
	}
	docs, err := marshalDayDocs(day)
	if err != nil {
		return domain.DayRecord{}, fmt.Errorf("repo.DayRepo.Create: %w", err)
	}
	_, err = r.db.ExecContext(ctx, q,
		sql.Named("id", uuid.New().String()),
		sql.Named("trip_id", day.TripID.String()),
		sql.Named("day_number", day.DayNumber),
		sql.Named("date", day.Date),
		sql.Named("location_context", day.LocationContext),
		sql.Named("accommodation_options", docs[0]),
		sql.Named("activities", docs[1]),
		sql.Named("transportation_segments", docs[2]),
		sql.Named("now", r.now().UTC().Format(time.RFC3339Nano)),
	)
	if err != nil {
		return domain.DayRecord{}, fmt.Errorf("repo.DayRepo.Create: %w", err)
	}
	return r.GetByTripAndNumber(ctx, day.TripID, day.DayNumber)
}

// Update emulates a partial update with a read-modify-write inside one
// transaction.
func (r *sqliteDayRepo) Update(ctx context.Context, id uuid.UUID, patch domain.DayPatch) (domain.DayRecord, error) {
	if patch.Date != nil {
		if err := validDate(*patch.Date); err != nil {
			return domain.DayRecord{}, fmt.Errorf("repo.DayRepo.Update: %w", err)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.DayRecord{}, fmt.Errorf("repo.DayRepo.Update: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	current, err := r.getByID(ctx, tx, id)
	if err != nil {
		return domain.DayRecord{}, fmt.Errorf("repo.DayRepo.Update: %w", err)
	}
	next := patch.Apply(current)
	docs, err := marshalDayDocs(next)
	if err != nil {
		return domain.DayRecord{}, fmt.Errorf("repo.DayRepo.Update: %w", err)
	}

	const q = `
		UPDATE itinerary_days
		SET date = @date, location_context = @location_context,
		    activities = @activities, transportation_segments = @transportation_segments,
		    updated_at = @now
		WHERE id = @id`
	if _, err := tx.ExecContext(ctx, q,
		sql.Named("id", id.String()),
		sql.Named("date", next.Date),
		sql.Named("location_context", next.LocationContext),
		sql.Named("activities", docs[1]),
		sql.Named("transportation_segments", docs[2]),
		sql.Named("now", r.now().UTC().Format(time.RFC3339Nano)),
	); err != nil {
		return domain.DayRecord{}, fmt.Errorf("repo.DayRepo.Update: %w", err)
	}

	updated, err := r.getByID(ctx, tx, id)
	if err != nil {
		return domain.DayRecord{}, fmt.Errorf("repo.DayRepo.Update: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.DayRecord{}, fmt.Errorf("repo.DayRepo.Update: commit: %w", err)
	}
	return updated, nil
}

func validDate(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return fmt.Errorf("%w: date %q: want YYYY-MM-DD", domain.ErrValidation, s)
	}
	return nil
}

// marshalDayDocs encodes the three JSON columns of a day, in column order.
func marshalDayDocs(d domain.DayRecord) ([3]string, error) {
	var out [3]string
	for i, v := range []any{
		nonNil(d.AccommodationOptions),
		nonNil(d.Activities),
		nonNil(d.TransportationSegments),
	} {
		b, err := json.Marshal(v)
		if err != nil {
			return out, fmt.Errorf("encode day document: %w", err)
		}
		out[i] = string(b)
	}
	return out, nil
}

// scanSQLiteDay maps a single itinerary_days row into a domain.DayRecord.
func scanSQLiteDay(s scanner) (domain.DayRecord, error) {
	var (
		d                         domain.DayRecord
		id, tripID                string
		accommodation, acts, segs string
		createdAt, updatedAt      string
	)
	err := s.Scan(&id, &tripID, &d.DayNumber, &d.Date, &d.LocationContext,
		&accommodation, &acts, &segs, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.DayRecord{}, domain.ErrNotFound
		}
		return domain.DayRecord{}, err
	}

	if d.ID, err = uuid.Parse(id); err != nil {
		return domain.DayRecord{}, fmt.Errorf("decode id: %w", err)
	}
	if d.TripID, err = uuid.Parse(tripID); err != nil {
		return domain.DayRecord{}, fmt.Errorf("decode trip_id: %w", err)
	}
	if err := json.Unmarshal([]byte(accommodation), &d.AccommodationOptions); err != nil {
		return domain.DayRecord{}, fmt.Errorf("decode accommodation_options: %w", err)
	}
	if err := json.Unmarshal([]byte(acts), &d.Activities); err != nil {
		return domain.DayRecord{}, fmt.Errorf("decode activities: %w", err)
	}
	if err := json.Unmarshal([]byte(segs), &d.TransportationSegments); err != nil {
		return domain.DayRecord{}, fmt.Errorf("decode transportation_segments: %w", err)
	}
	if d.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return domain.DayRecord{}, fmt.Errorf("decode created_at: %w", err)
	}
	if d.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return domain.DayRecord{}, fmt.Errorf("decode updated_at: %w", err)
	}
	return d, nil
}

// sqliteCatalog is the SQLite implementation of Catalog.
type sqliteCatalog struct {
	db *sql.DB
}

// NewSQLiteCatalog constructs a Catalog over a migrated SQLite database.
func NewSQLiteCatalog(db *sql.DB) Catalog {
	return &sqliteCatalog{db: db}
}

func (r *sqliteCatalog) ListPOIs(ctx context.Context, tripID uuid.UUID) ([]domain.POI, error) {
	const q = `
		SELECT id, name, category, sub_category, city, remark, booking_hour, cancelled
		FROM pois
		WHERE trip_id = @trip_id
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, q, sql.Named("trip_id", tripID.String()))
	if err != nil {
		return nil, fmt.Errorf("repo.Catalog.ListPOIs: %w", err)
	}
	defer rows.Close()

	var pois []domain.POI
	for rows.Next() {
		p := domain.POI{TripID: tripID}
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.SubCategory, &p.City,
			&p.Remark, &p.BookingHour, &p.Cancelled); err != nil {
			return nil, fmt.Errorf("repo.Catalog.ListPOIs: scan: %w", err)
		}
		pois = append(pois, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.Catalog.ListPOIs: rows: %w", err)
	}
	return pois, nil
}

func (r *sqliteCatalog) ListTransportations(ctx context.Context, tripID uuid.UUID) ([]domain.Transportation, error) {
	const q = `
		SELECT id, category, segments
		FROM transportations
		WHERE trip_id = @trip_id
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, q, sql.Named("trip_id", tripID.String()))
	if err != nil {
		return nil, fmt.Errorf("repo.Catalog.ListTransportations: %w", err)
	}
	defer rows.Close()

	var out []domain.Transportation
	for rows.Next() {
		var segs string
		t := domain.Transportation{TripID: tripID}
		if err := rows.Scan(&t.ID, &t.Category, &segs); err != nil {
			return nil, fmt.Errorf("repo.Catalog.ListTransportations: scan: %w", err)
		}
		if err := json.Unmarshal([]byte(segs), &t.Segments); err != nil {
			return nil, fmt.Errorf("repo.Catalog.ListTransportations: decode segments: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.Catalog.ListTransportations: rows: %w", err)
	}
	return out, nil
}

func (r *sqliteCatalog) PutPOI(ctx context.Context, p domain.POI) error {
	const q = `
		INSERT INTO pois (trip_id, id, name, category, sub_category, city, remark, booking_hour, cancelled)
		VALUES (@trip_id, @id, @name, @category, @sub_category, @city, @remark, @booking_hour, @cancelled)
		ON CONFLICT (trip_id, id) DO UPDATE
		SET name = excluded.name, category = excluded.category,
		    sub_category = excluded.sub_category, city = excluded.city,
		    remark = excluded.remark, booking_hour = excluded.booking_hour,
		    cancelled = excluded.cancelled`

	_, err := r.db.ExecContext(ctx, q,
		sql.Named("trip_id", p.TripID.String()),
		sql.Named("id", p.ID),
		sql.Named("name", p.Name),
		sql.Named("category", p.Category),
		sql.Named("sub_category", p.SubCategory),
		sql.Named("city", p.City),
		sql.Named("remark", p.Remark),
		sql.Named("booking_hour", p.BookingHour),
		sql.Named("cancelled", p.Cancelled),
	)
	if err != nil {
		return fmt.Errorf("repo.Catalog.PutPOI: %w", err)
	}
	return nil
}

func (r *sqliteCatalog) PutTransportation(ctx context.Context, t domain.Transportation) error {
	const q = `
		INSERT INTO transportations (trip_id, id, category, segments)
		VALUES (@trip_id, @id, @category, @segments)
		ON CONFLICT (trip_id, id) DO UPDATE
		SET category = excluded.category, segments = excluded.segments`

	segs, err := json.Marshal(nonNil(t.Segments))
	if err != nil {
		return fmt.Errorf("repo.Catalog.PutTransportation: encode segments: %w", err)
	}
	_, err = r.db.ExecContext(ctx, q,
		sql.Named("trip_id", t.TripID.String()),
		sql.Named("id", t.ID),
		sql.Named("category", t.Category),
		sql.Named("segments", string(segs)),
	)
	if err != nil {
		return fmt.Errorf("repo.Catalog.PutTransportation: %w", err)
	}
	return nil
}
