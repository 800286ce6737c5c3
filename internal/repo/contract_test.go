package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/dayplanner/internal/domain"
	"github.com/pkordes/dayplanner/internal/repo"
)

// The contract tests below run unchanged against every backend.

// dayFixture returns a day with sensible defaults for use in tests.
// Callers can override individual fields after calling this function.
func dayFixture(tripID uuid.UUID, number int) domain.DayRecord {
	return domain.DayRecord{
		TripID:          tripID,
		DayNumber:       number,
		Date:            "2025-06-02",
		LocationContext: "Naples",
		AccommodationOptions: []domain.AccommodationOption{
			{POIID: "hotel", IsSelected: true},
		},
		Activities: []domain.ActivityEntry{
			{Order: 1, Type: domain.EntryPOI, ID: "museum", ScheduleState: domain.StateScheduled,
				TimeWindow: &domain.TimeWindow{Start: "09:00", End: "11:00"}},
			{Order: 2, Type: domain.EntryTimeBlock, ID: "tb", Label: "Lunch"},
			{Order: 3, Type: domain.EntryPOI, ID: "park", ScheduleState: domain.StatePotential},
		},
		TransportationSegments: []domain.TransportSegmentRef{
			{TransportationID: "ferry", SegmentID: "s1", IsSelected: true},
		},
	}
}

func runDayRepoContract(t *testing.T, newRepo func(t *testing.T) repo.DayRepo) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		r := newRepo(t)
		input := dayFixture(uuid.New(), 1)

		got, err := r.Create(ctx, input)

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, got.ID)
		assert.Equal(t, input.TripID, got.TripID)
		assert.Equal(t, 1, got.DayNumber)
		assert.Equal(t, "2025-06-02", got.Date)
		assert.Equal(t, "Naples", got.LocationContext)
		assert.Equal(t, input.AccommodationOptions, got.AccommodationOptions)
		assert.Equal(t, input.Activities, got.Activities)
		assert.Equal(t, input.TransportationSegments, got.TransportationSegments)
		assert.False(t, got.CreatedAt.IsZero())

		byID, err := r.GetByID(ctx, got.ID)
		require.NoError(t, err)
		assert.Equal(t, got.Activities, byID.Activities)

		byNumber, err := r.GetByTripAndNumber(ctx, input.TripID, 1)
		require.NoError(t, err)
		assert.Equal(t, got.ID, byNumber.ID)
	})

	t.Run("create is idempotent per trip and number", func(t *testing.T) {
		r := newRepo(t)
		tripID := uuid.New()
		first, err := r.Create(ctx, dayFixture(tripID, 2))
		require.NoError(t, err)

		again := dayFixture(tripID, 2)
		again.LocationContext = "Capri"
		second, err := r.Create(ctx, again)

		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "Naples", second.LocationContext)
	})

	t.Run("create empty day", func(t *testing.T) {
		r := newRepo(t)

		got, err := r.Create(ctx, domain.DayRecord{TripID: uuid.New(), DayNumber: 5})

		require.NoError(t, err)
		assert.Empty(t, got.Date)
		assert.Empty(t, got.Activities)
	})

	t.Run("create rejects malformed date", func(t *testing.T) {
		r := newRepo(t)
		d := dayFixture(uuid.New(), 1)
		d.Date = "June 2nd"

		_, err := r.Create(ctx, d)

		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("not found", func(t *testing.T) {
		r := newRepo(t)

		_, err := r.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, domain.ErrNotFound)

		_, err = r.GetByTripAndNumber(ctx, uuid.New(), 1)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		_, err = r.Update(ctx, uuid.New(), domain.ActivitiesPatch(nil))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("update rewrites activities only", func(t *testing.T) {
		r := newRepo(t)
		created, err := r.Create(ctx, dayFixture(uuid.New(), 3))
		require.NoError(t, err)

		entries := []domain.ActivityEntry{
			{Order: 1, Type: domain.EntryPOI, ID: "park", ScheduleState: domain.StateScheduled},
		}
		got, err := r.Update(ctx, created.ID, domain.ActivitiesPatch(entries))

		require.NoError(t, err)
		assert.Equal(t, entries, got.Activities)
		assert.Equal(t, "Naples", got.LocationContext)
		assert.Equal(t, "2025-06-02", got.Date)
		assert.Equal(t, created.TransportationSegments, got.TransportationSegments)
		assert.False(t, got.UpdatedAt.Before(created.UpdatedAt))
	})

	t.Run("update clears date and sets location", func(t *testing.T) {
		r := newRepo(t)
		created, err := r.Create(ctx, dayFixture(uuid.New(), 4))
		require.NoError(t, err)

		empty, loc := "", "Sorrento"
		got, err := r.Update(ctx, created.ID, domain.DayPatch{Date: &empty, LocationContext: &loc})

		require.NoError(t, err)
		assert.Empty(t, got.Date)
		assert.Equal(t, "Sorrento", got.LocationContext)
		assert.Equal(t, created.Activities, got.Activities)
	})

	t.Run("list by trip ordered by number", func(t *testing.T) {
		r := newRepo(t)
		tripID := uuid.New()
		for _, n := range []int{3, 1, 2} {
			_, err := r.Create(ctx, dayFixture(tripID, n))
			require.NoError(t, err)
		}
		_, err := r.Create(ctx, dayFixture(uuid.New(), 1))
		require.NoError(t, err)

		days, err := r.ListByTrip(ctx, tripID)

		require.NoError(t, err)
		require.Len(t, days, 3)
		assert.Equal(t, []int{1, 2, 3}, []int{days[0].DayNumber, days[1].DayNumber, days[2].DayNumber})
	})
}

func runCatalogContract(t *testing.T, newCatalog func(t *testing.T) repo.Catalog) {
	ctx := context.Background()

	t.Run("pois upsert and list", func(t *testing.T) {
		c := newCatalog(t)
		tripID := uuid.New()
		require.NoError(t, c.PutPOI(ctx, domain.POI{TripID: tripID, ID: "museum", Name: "Museum", Category: "sight"}))
		require.NoError(t, c.PutPOI(ctx, domain.POI{TripID: tripID, ID: "dinner", Name: "Trattoria",
			Category: "food", BookingHour: "19:30", Cancelled: true}))
		require.NoError(t, c.PutPOI(ctx, domain.POI{TripID: tripID, ID: "museum", Name: "National Museum", Category: "sight"}))
		require.NoError(t, c.PutPOI(ctx, domain.POI{TripID: uuid.New(), ID: "elsewhere", Name: "x"}))

		pois, err := c.ListPOIs(ctx, tripID)

		require.NoError(t, err)
		require.Len(t, pois, 2)
		assert.Equal(t, "dinner", pois[0].ID)
		assert.Equal(t, "19:30", pois[0].BookingHour)
		assert.True(t, pois[0].Cancelled)
		assert.Equal(t, "National Museum", pois[1].Name)
		assert.Equal(t, tripID, pois[1].TripID)
	})

	t.Run("transportations keep segments", func(t *testing.T) {
		c := newCatalog(t)
		tripID := uuid.New()
		dep := time.Date(2025, 6, 2, 13, 0, 0, 0, time.UTC)
		in := domain.Transportation{TripID: tripID, ID: "ferry", Category: "ferry", Segments: []domain.Segment{
			{ID: "s1", From: "Naples", To: "Capri", DepartureTime: &dep, Number: "NLG 12"},
		}}
		require.NoError(t, c.PutTransportation(ctx, in))

		got, err := c.ListTransportations(ctx, tripID)

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "ferry", got[0].Category)
		require.Len(t, got[0].Segments, 1)
		assert.Equal(t, "Capri", got[0].Segments[0].To)
		assert.True(t, dep.Equal(*got[0].Segments[0].DepartureTime))
	})

	t.Run("empty trip", func(t *testing.T) {
		c := newCatalog(t)

		pois, err := c.ListPOIs(ctx, uuid.New())
		require.NoError(t, err)
		assert.Empty(t, pois)

		ts, err := c.ListTransportations(ctx, uuid.New())
		require.NoError(t, err)
		assert.Empty(t, ts)
	})
}
