package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/pkordes/dayplanner/internal/domain"
	"github.com/pkordes/dayplanner/internal/repo"
)

// Fixture is a seed file: one trip's catalog and stored days.
type Fixture struct {
	Trip            uuid.UUID               `yaml:"trip"`
	POIs            []domain.POI            `yaml:"pois"`
	Transportations []domain.Transportation `yaml:"transportations"`
	Days            []FixtureDay            `yaml:"days"`
}

// FixtureDay is one stored day of a fixture.
type FixtureDay struct {
	DayNumber              int                          `yaml:"dayNumber"`
	Date                   string                       `yaml:"date"`
	LocationContext        string                       `yaml:"locationContext"`
	Accommodations         []domain.AccommodationOption `yaml:"accommodationOptions"`
	Activities             []domain.ActivityEntry       `yaml:"activities"`
	TransportationSegments []domain.TransportSegmentRef `yaml:"transportationSegments"`
}

// SeedSummary counts what a fixture wrote.
type SeedSummary struct {
	POIs            int
	Transportations int
	Days            int
}

// ReadFixture decodes a YAML fixture. Unknown keys are rejected.
func ReadFixture(r io.Reader) (Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return Fixture{}, fmt.Errorf("decode fixture: %w", err)
	}
	if f.Trip == uuid.Nil {
		return Fixture{}, fmt.Errorf("decode fixture: trip id is required")
	}
	for _, d := range f.Days {
		if d.DayNumber < 1 {
			return Fixture{}, fmt.Errorf("decode fixture: day number must be at least 1, got %d", d.DayNumber)
		}
	}
	return f, nil
}

// Apply writes the fixture. Catalog entries are upserted and days are
// created on first touch then overwritten, so applying twice is harmless.
func (f Fixture) Apply(ctx context.Context, days repo.DayRepo, catalog repo.CatalogWriter) (SeedSummary, error) {
	var sum SeedSummary
	for _, p := range f.POIs {
		p.TripID = f.Trip
		if err := catalog.PutPOI(ctx, p); err != nil {
			return sum, fmt.Errorf("poi %s: %w", p.ID, err)
		}
		sum.POIs++
	}
	for _, t := range f.Transportations {
		t.TripID = f.Trip
		if err := catalog.PutTransportation(ctx, t); err != nil {
			return sum, fmt.Errorf("transportation %s: %w", t.ID, err)
		}
		sum.Transportations++
	}
	for _, d := range f.Days {
		rec, err := days.Create(ctx, domain.DayRecord{
			TripID:               f.Trip,
			DayNumber:            d.DayNumber,
			Date:                 d.Date,
			LocationContext:      d.LocationContext,
			AccommodationOptions: d.Accommodations,
		})
		if err != nil {
			return sum, fmt.Errorf("day %d: %w", d.DayNumber, err)
		}
		activities := nonNilEntries(d.Activities)
		segments := append([]domain.TransportSegmentRef{}, d.TransportationSegments...)
		patch := domain.DayPatch{
			Date:                   &d.Date,
			LocationContext:        &d.LocationContext,
			Activities:             &activities,
			TransportationSegments: &segments,
		}
		if _, err := days.Update(ctx, rec.ID, patch); err != nil {
			return sum, fmt.Errorf("day %d: %w", d.DayNumber, err)
		}
		sum.Days++
	}
	return sum, nil
}

func nonNilEntries(v []domain.ActivityEntry) []domain.ActivityEntry {
	if v == nil {
		return []domain.ActivityEntry{}
	}
	return v
}
