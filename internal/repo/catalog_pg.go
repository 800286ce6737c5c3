package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pkordes/dayplanner/internal/domain"
)

// pgCatalog is the Postgres implementation of Catalog.
type pgCatalog struct {
	db db
}

// NewCatalog constructs a Catalog backed by the provided db connection.
func NewCatalog(db db) Catalog {
	return &pgCatalog{db: db}
}

func (r *pgCatalog) ListPOIs(ctx context.Context, tripID uuid.UUID) ([]domain.POI, error) {
	const q = `
		SELECT id, name, category, sub_category, city, remark, booking_hour, cancelled
		FROM pois
		WHERE trip_id = @trip_id
		ORDER BY id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
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

func (r *pgCatalog) ListTransportations(ctx context.Context, tripID uuid.UUID) ([]domain.Transportation, error) {
	const q = `
		SELECT id, category, segments
		FROM transportations
		WHERE trip_id = @trip_id
		ORDER BY id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.Catalog.ListTransportations: %w", err)
	}
	defer rows.Close()

	var out []domain.Transportation
	for rows.Next() {
		t := domain.Transportation{TripID: tripID}
		if err := rows.Scan(&t.ID, &t.Category, &t.Segments); err != nil {
			return nil, fmt.Errorf("repo.Catalog.ListTransportations: scan: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.Catalog.ListTransportations: rows: %w", err)
	}
	return out, nil
}

func (r *pgCatalog) PutPOI(ctx context.Context, p domain.POI) error {
	const q = `
		INSERT INTO pois (trip_id, id, name, category, sub_category, city, remark, booking_hour, cancelled)
		VALUES (@trip_id, @id, @name, @category, @sub_category, @city, @remark, @booking_hour, @cancelled)
		ON CONFLICT (trip_id, id) DO UPDATE
		SET name         = EXCLUDED.name,
		    category     = EXCLUDED.category,
		    sub_category = EXCLUDED.sub_category,
		    city         = EXCLUDED.city,
		    remark       = EXCLUDED.remark,
		    booking_hour = EXCLUDED.booking_hour,
		    cancelled    = EXCLUDED.cancelled`

	_, err := r.db.Exec(ctx, q, pgx.NamedArgs{
		"trip_id":      p.TripID,
		"id":           p.ID,
		"name":         p.Name,
		"category":     p.Category,
		"sub_category": p.SubCategory,
		"city":         p.City,
		"remark":       p.Remark,
		"booking_hour": p.BookingHour,
		"cancelled":    p.Cancelled,
	})
	if err != nil {
		return fmt.Errorf("repo.Catalog.PutPOI: %w", err)
	}
	return nil
}

func (r *pgCatalog) PutTransportation(ctx context.Context, t domain.Transportation) error {
	const q = `
		INSERT INTO transportations (trip_id, id, category, segments)
		VALUES (@trip_id, @id, @category, @segments)
		ON CONFLICT (trip_id, id) DO UPDATE
		SET category = EXCLUDED.category,
		    segments = EXCLUDED.segments`

	_, err := r.db.Exec(ctx, q, pgx.NamedArgs{
		"trip_id":  t.TripID,
		"id":       t.ID,
		"category": t.Category,
		"segments": nonNil(t.Segments),
	})
	if err != nil {
		return fmt.Errorf("repo.Catalog.PutTransportation: %w", err)
	}
	return nil
}
