package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/dayplanner/internal/domain"
	"github.com/pkordes/dayplanner/internal/drag"
	"github.com/pkordes/dayplanner/internal/notify"
	"github.com/pkordes/dayplanner/internal/repo"
	"github.com/pkordes/dayplanner/internal/service"
)

// mockDayRepo is a hand-written test double for repo.DayRepo.
// Each method is a function field; set only the ones your test needs.
type mockDayRepo struct {
	getByTripAndNumber func(ctx context.Context, tripID uuid.UUID, n int) (domain.DayRecord, error)
	getByID            func(ctx context.Context, id uuid.UUID) (domain.DayRecord, error)
	listByTrip         func(ctx context.Context, tripID uuid.UUID) ([]domain.DayRecord, error)
	create             func(ctx context.Context, day domain.DayRecord) (domain.DayRecord, error)
	update             func(ctx context.Context, id uuid.UUID, patch domain.DayPatch) (domain.DayRecord, error)
}

func (m *mockDayRepo) GetByTripAndNumber(ctx context.Context, tripID uuid.UUID, n int) (domain.DayRecord, error) {
	return m.getByTripAndNumber(ctx, tripID, n)
}
func (m *mockDayRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.DayRecord, error) {
	return m.getByID(ctx, id)
}
func (m *mockDayRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.DayRecord, error) {
	return m.listByTrip(ctx, tripID)
}
func (m *mockDayRepo) Create(ctx context.Context, day domain.DayRecord) (domain.DayRecord, error) {
	return m.create(ctx, day)
}
func (m *mockDayRepo) Update(ctx context.Context, id uuid.UUID, patch domain.DayPatch) (domain.DayRecord, error) {
	return m.update(ctx, id, patch)
}

// compile-time check: mockDayRepo must satisfy repo.DayRepo.
var _ repo.DayRepo = (*mockDayRepo)(nil)

type mockCatalog struct {
	listPOIs            func(ctx context.Context, tripID uuid.UUID) ([]domain.POI, error)
	listTransportations func(ctx context.Context, tripID uuid.UUID) ([]domain.Transportation, error)
}

func (m *mockCatalog) ListPOIs(ctx context.Context, tripID uuid.UUID) ([]domain.POI, error) {
	return m.listPOIs(ctx, tripID)
}
func (m *mockCatalog) ListTransportations(ctx context.Context, tripID uuid.UUID) ([]domain.Transportation, error) {
	return m.listTransportations(ctx, tripID)
}

var _ repo.CatalogRepo = (*mockCatalog)(nil)

type mockPublisher struct {
	mu     sync.Mutex
	events []notify.Event
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, e notify.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return m.err
}

func (m *mockPublisher) reasons() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, e := range m.events {
		out = append(out, e.Reason)
	}
	return out
}

var _ notify.Publisher = (*mockPublisher)(nil)

// ---- helpers ---------------------------------------------------------------

var (
	tripID = uuid.MustParse("7c9e6679-7425-40de-944b-e07fc1f90ae7")
	day1ID = uuid.MustParse("0f8fad5b-d9cb-469f-a165-70867728950e")
)

const ferryID = "transport:ferry:s1"

// memDays is an in-memory day store behind a mockDayRepo. It records every
// patch it applies.
type memDays struct {
	mu      sync.Mutex
	byNum   map[int]domain.DayRecord
	creates int
	patches map[int][]domain.ActivityEntry
}

func newMemDays(records ...domain.DayRecord) *memDays {
	m := &memDays{byNum: map[int]domain.DayRecord{}, patches: map[int][]domain.ActivityEntry{}}
	for _, r := range records {
		m.byNum[r.DayNumber] = r
	}
	return m
}

func (m *memDays) repo() *mockDayRepo {
	return &mockDayRepo{
		getByTripAndNumber: func(_ context.Context, _ uuid.UUID, n int) (domain.DayRecord, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			rec, ok := m.byNum[n]
			if !ok {
				return domain.DayRecord{}, domain.ErrNotFound
			}
			return rec, nil
		},
		listByTrip: func(_ context.Context, _ uuid.UUID) ([]domain.DayRecord, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			var out []domain.DayRecord
			for n := 1; n <= len(m.byNum)+1; n++ {
				if rec, ok := m.byNum[n]; ok {
					out = append(out, rec)
				}
			}
			return out, nil
		},
		create: func(_ context.Context, day domain.DayRecord) (domain.DayRecord, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.creates++
			day.ID = uuid.New()
			m.byNum[day.DayNumber] = day
			return day, nil
		},
		update: func(_ context.Context, id uuid.UUID, patch domain.DayPatch) (domain.DayRecord, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			for n, rec := range m.byNum {
				if rec.ID == id {
					rec = patch.Apply(rec)
					m.byNum[n] = rec
					m.patches[n] = *patch.Activities
					return rec, nil
				}
			}
			return domain.DayRecord{}, domain.ErrNotFound
		},
	}
}

func (m *memDays) written(n int) []domain.ActivityEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.patches[n]
}

func (m *memDays) writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.patches)
}

func tripCatalog() *mockCatalog {
	dep := time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)
	return &mockCatalog{
		listPOIs: func(context.Context, uuid.UUID) ([]domain.POI, error) {
			return []domain.POI{
				{ID: "a", Name: "Harbour walk"},
				{ID: "b", Name: "Museum", BookingHour: "10:00"},
				{ID: "c", Name: "Old town"},
				{ID: "p", Name: "Beach"},
			}, nil
		},
		listTransportations: func(context.Context, uuid.UUID) ([]domain.Transportation, error) {
			return []domain.Transportation{{
				ID:       "ferry",
				Category: "ferry",
				Segments: []domain.Segment{{ID: "s1", From: "Piraeus", To: "Naxos", DepartureTime: &dep}},
			}}, nil
		},
	}
}

// day1 materializes [a] [b 10:00] [ferry 14:00] [c] with p in potential.
func day1() domain.DayRecord {
	return domain.DayRecord{
		ID:        day1ID,
		TripID:    tripID,
		DayNumber: 1,
		Date:      "2025-06-01",
		Activities: []domain.ActivityEntry{
			{Order: 1, Type: domain.EntryPOI, ID: "a", ScheduleState: domain.StateScheduled},
			{Order: 2, Type: domain.EntryPOI, ID: "b", ScheduleState: domain.StateScheduled},
			{Order: 4, Type: domain.EntryPOI, ID: "c", ScheduleState: domain.StateScheduled},
			{Order: 5, Type: domain.EntryPOI, ID: "p", ScheduleState: domain.StatePotential},
		},
		TransportationSegments: []domain.TransportSegmentRef{
			{TransportationID: "ferry", SegmentID: "s1", IsSelected: true},
		},
	}
}

func newPlanner(days repo.DayRepo, pub notify.Publisher) *service.Planner {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return service.NewPlanner(days, tripCatalog(), service.NewDayWriter(days, pub, logger), logger)
}

func itemIDs(items []service.ItemView) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func entryIDs(entries []domain.ActivityEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func entryOrders(entries []domain.ActivityEntry) []float64 {
	out := make([]float64, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Order)
	}
	return out
}

// ---- View tests ------------------------------------------------------------

func TestPlanner_View_MissingDayIsEmpty(t *testing.T) {
	mem := newMemDays()
	p := newPlanner(mem.repo(), &mockPublisher{})

	v, err := p.View(context.Background(), tripID, 3)

	require.NoError(t, err)
	assert.Nil(t, v.DayID)
	assert.Equal(t, 3, v.DayNumber)
	assert.Empty(t, v.Scheduled)
	assert.Empty(t, v.Potential)
	assert.Empty(t, v.Groups)
	assert.Zero(t, mem.creates, "reading must not create the day")
}

func TestPlanner_View_GroupsAndLabels(t *testing.T) {
	p := newPlanner(newMemDays(day1()).repo(), &mockPublisher{})

	v, err := p.View(context.Background(), tripID, 1)

	require.NoError(t, err)
	require.NotNil(t, v.DayID)
	assert.Equal(t, day1ID, *v.DayID)
	assert.Equal(t, []string{"a", "b", ferryID, "c"}, itemIDs(v.Scheduled))
	assert.Equal(t, []string{"p"}, itemIDs(v.Potential))
	assert.Equal(t, []string{"b", ferryID}, v.LockedIDs)

	require.Len(t, v.Groups, 4)
	labels := []string{v.Groups[0].Label, v.Groups[1].Label, v.Groups[2].Label, v.Groups[3].Label}
	assert.Equal(t, []string{"morning", "10:00", "14:00", "evening"}, labels)

	assert.False(t, v.Groups[0].Deletable, "only free group in its section")
	assert.True(t, v.Groups[1].Deletable)
	assert.False(t, v.Groups[2].Deletable, "transport groups are not deletable")
	assert.False(t, v.Groups[3].Deletable)

	require.NotNil(t, v.Scheduled[2].Leg)
	assert.Equal(t, "Naxos", v.Scheduled[2].Leg.To)
}

func TestPlanner_View_InvalidDayNumber(t *testing.T) {
	p := newPlanner(newMemDays().repo(), &mockPublisher{})

	_, err := p.View(context.Background(), tripID, 0)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPlanner_View_CatalogError(t *testing.T) {
	days := newMemDays(day1()).repo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cat := tripCatalog()
	cat.listPOIs = func(context.Context, uuid.UUID) ([]domain.POI, error) {
		return nil, errors.New("connection refused")
	}
	p := service.NewPlanner(days, cat, service.NewDayWriter(days, &mockPublisher{}, logger), logger)

	_, err := p.View(context.Background(), tripID, 1)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

// ---- Drop tests ------------------------------------------------------------

func TestPlanner_Drop_PromoteOntoGap(t *testing.T) {
	mem := newMemDays(day1())
	pub := &mockPublisher{}
	p := newPlanner(mem.repo(), pub)

	res, err := p.Drop(context.Background(), tripID, 1, service.DropRequest{
		Session: drag.Session{Source: drag.SourcePotential, ItemID: "p"},
		Target:  &drag.Target{Kind: drag.TargetGap, Index: 4},
	})

	require.NoError(t, err)
	assert.Equal(t, drag.OutcomePromote, res.Outcome)
	assert.Equal(t, []string{"a", "b", ferryID, "c", "p"}, itemIDs(res.View.Scheduled))
	assert.Empty(t, res.View.Potential)

	written := mem.written(1)
	assert.Equal(t, []string{"a", "b", "c", "p"}, entryIDs(written))
	assert.Equal(t, []float64{1, 2, 4, 5}, entryOrders(written), "the leg consumes order 3")
	assert.Equal(t, domain.StateScheduled, written[3].ScheduleState)
	assert.Equal(t, []string{notify.ReasonDrop}, pub.reasons())
}

func TestPlanner_Drop_ResolvesPointer(t *testing.T) {
	mem := newMemDays(day1())
	p := newPlanner(mem.repo(), &mockPublisher{})

	res, err := p.Drop(context.Background(), tripID, 1, service.DropRequest{
		Session: drag.Session{Source: drag.SourceScheduled, ItemID: "c"},
		Pointer: &drag.Point{X: 50, Y: 50},
		Candidates: []drag.Target{
			{Kind: drag.TargetPotentialZone, Rect: drag.Rect{X: 0, Y: 0, W: 100, H: 100}},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, drag.OutcomeUnschedule, res.Outcome)
	assert.Equal(t, []string{"p", "c"}, itemIDs(res.View.Potential))
}

func TestPlanner_Drop_NothingUnderPointer(t *testing.T) {
	mem := newMemDays(day1())
	pub := &mockPublisher{}
	p := newPlanner(mem.repo(), pub)

	res, err := p.Drop(context.Background(), tripID, 1, service.DropRequest{
		Session: drag.Session{Source: drag.SourceScheduled, ItemID: "c"},
		Pointer: &drag.Point{X: 5000, Y: 5000},
		Candidates: []drag.Target{
			{Kind: drag.TargetPotentialZone, Rect: drag.Rect{X: 0, Y: 0, W: 100, H: 100}},
		},
	})

	assert.ErrorIs(t, err, domain.ErrInvalidDrop)
	assert.Equal(t, []string{"a", "b", ferryID, "c"}, itemIDs(res.View.Scheduled), "view is unchanged")
	assert.Zero(t, mem.writes())
	assert.Empty(t, pub.reasons())
}

func TestPlanner_Drop_RequiresTargetOrPointer(t *testing.T) {
	p := newPlanner(newMemDays(day1()).repo(), &mockPublisher{})

	_, err := p.Drop(context.Background(), tripID, 1, service.DropRequest{
		Session: drag.Session{Source: drag.SourceScheduled, ItemID: "c"},
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPlanner_Drop_TransportToOtherDayRejected(t *testing.T) {
	mem := newMemDays(day1())
	p := newPlanner(mem.repo(), &mockPublisher{})

	res, err := p.Drop(context.Background(), tripID, 1, service.DropRequest{
		Session: drag.Session{Source: drag.SourceScheduled, ItemID: ferryID},
		Target:  &drag.Target{Kind: drag.TargetDayPill, DayNumber: 2},
	})

	assert.ErrorIs(t, err, domain.ErrCrossDayTransport)
	assert.Contains(t, itemIDs(res.View.Scheduled), ferryID)
	assert.Zero(t, mem.writes())
	assert.Zero(t, mem.creates)
}

func TestPlanner_Drop_MoveToOtherDay(t *testing.T) {
	mem := newMemDays(day1())
	pub := &mockPublisher{}
	p := newPlanner(mem.repo(), pub)

	res, err := p.Drop(context.Background(), tripID, 1, service.DropRequest{
		Session: drag.Session{Source: drag.SourceScheduled, ItemID: "a"},
		Target:  &drag.Target{Kind: drag.TargetDayPill, DayNumber: 2},
	})

	require.NoError(t, err)
	assert.Equal(t, drag.OutcomeMoveDay, res.Outcome)
	assert.Equal(t, 2, res.MovedTo)
	assert.NotContains(t, itemIDs(res.View.Scheduled), "a")

	assert.Equal(t, []string{"b", "c", "p"}, entryIDs(mem.written(1)))
	assert.Equal(t, 1, mem.creates, "day 2 is created on first touch")

	moved := mem.written(2)
	require.Len(t, moved, 1)
	assert.Equal(t, "a", moved[0].ID)
	assert.Equal(t, domain.StatePotential, moved[0].ScheduleState)
	assert.Nil(t, moved[0].TimeWindow)

	assert.ElementsMatch(t, []string{notify.ReasonDrop, notify.ReasonMoveIn}, pub.reasons())
}

func TestPlanner_Drop_MoveTargetWriteFailsSourceStillWritten(t *testing.T) {
	mem := newMemDays(day1())
	days := mem.repo()
	update := days.update
	days.update = func(ctx context.Context, id uuid.UUID, patch domain.DayPatch) (domain.DayRecord, error) {
		if id != day1ID {
			return domain.DayRecord{}, errors.New("disk full")
		}
		return update(ctx, id, patch)
	}
	pub := &mockPublisher{}
	p := newPlanner(days, pub)

	res, err := p.Drop(context.Background(), tripID, 1, service.DropRequest{
		Session: drag.Session{Source: drag.SourceScheduled, ItemID: "a"},
		Target:  &drag.Target{Kind: drag.TargetDayPill, DayNumber: 2},
	})

	require.ErrorIs(t, err, domain.ErrPersistence)
	assert.ErrorContains(t, err, "disk full")
	assert.NotContains(t, itemIDs(res.View.Scheduled), "a", "no rollback")
	assert.Equal(t, []string{"b", "c", "p"}, entryIDs(mem.written(1)))
	assert.Nil(t, mem.written(2))
	assert.Equal(t, []string{notify.ReasonDrop}, pub.reasons(), "the stored day is still announced")
}

func TestPlanner_Drop_MoveOntoDayThatHasItem(t *testing.T) {
	day2 := domain.DayRecord{
		ID:         uuid.New(),
		TripID:     tripID,
		DayNumber:  2,
		Activities: []domain.ActivityEntry{{Order: 1, Type: domain.EntryPOI, ID: "a", ScheduleState: domain.StatePotential}},
	}
	mem := newMemDays(day1(), day2)
	p := newPlanner(mem.repo(), &mockPublisher{})

	_, err := p.Drop(context.Background(), tripID, 1, service.DropRequest{
		Session: drag.Session{Source: drag.SourceScheduled, ItemID: "a"},
		Target:  &drag.Target{Kind: drag.TargetDayPill, DayNumber: 2},
	})

	assert.ErrorIs(t, err, domain.ErrDuplicateItem)
	assert.Zero(t, mem.writes())
}

func TestPlanner_Drop_PersistenceFailureKeepsOptimisticView(t *testing.T) {
	mem := newMemDays(day1())
	days := mem.repo()
	days.update = func(context.Context, uuid.UUID, domain.DayPatch) (domain.DayRecord, error) {
		return domain.DayRecord{}, errors.New("permission denied")
	}
	pub := &mockPublisher{}
	p := newPlanner(days, pub)

	res, err := p.Drop(context.Background(), tripID, 1, service.DropRequest{
		Session: drag.Session{Source: drag.SourceScheduled, ItemID: "c"},
		Target:  &drag.Target{Kind: drag.TargetPotentialZone},
	})

	assert.ErrorIs(t, err, domain.ErrPersistence)
	assert.Equal(t, []string{"p", "c"}, itemIDs(res.View.Potential), "no rollback")
	assert.Empty(t, pub.reasons())
}

func TestPlanner_Drop_PublishFailureIsNotAnError(t *testing.T) {
	mem := newMemDays(day1())
	p := newPlanner(mem.repo(), &mockPublisher{err: errors.New("redis down")})

	_, err := p.Drop(context.Background(), tripID, 1, service.DropRequest{
		Session: drag.Session{Source: drag.SourceScheduled, ItemID: "c"},
		Target:  &drag.Target{Kind: drag.TargetPotentialZone},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, mem.writes())
}

// ---- Marker and group tests ------------------------------------------------

func TestPlanner_CreateMarker(t *testing.T) {
	mem := newMemDays(day1())
	pub := &mockPublisher{}
	p := newPlanner(mem.repo(), pub)

	v, m, err := p.CreateMarker(context.Background(), tripID, 1, " Dinner ", "19:00")

	require.NoError(t, err)
	assert.Equal(t, "Dinner", m.Label)
	require.Len(t, v.Groups, 5)
	assert.True(t, v.Groups[4].Marker)
	assert.Equal(t, "Dinner · 19:00", v.Groups[4].Label)

	written := mem.written(1)
	last := written[len(written)-2] // p stays last
	assert.Equal(t, domain.EntryTimeBlock, last.Type)
	assert.Equal(t, "Dinner", last.Label)
	require.NotNil(t, last.TimeWindow)
	assert.Equal(t, "19:00", last.TimeWindow.Start)
	assert.Equal(t, []string{notify.ReasonMarker}, pub.reasons())
}

func TestPlanner_CreateMarker_Invalid(t *testing.T) {
	mem := newMemDays(day1())
	p := newPlanner(mem.repo(), &mockPublisher{})

	_, _, err := p.CreateMarker(context.Background(), tripID, 1, "  ", "19:00")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, _, err = p.CreateMarker(context.Background(), tripID, 1, "Dinner", "25:00")
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Zero(t, mem.writes())
}

func TestPlanner_CreateMarker_OnNewDay(t *testing.T) {
	mem := newMemDays()
	p := newPlanner(mem.repo(), &mockPublisher{})

	v, _, err := p.CreateMarker(context.Background(), tripID, 4, "Arrival", "")

	require.NoError(t, err)
	require.NotNil(t, v.DayID)
	assert.Equal(t, 1, mem.creates)
	assert.Len(t, mem.written(4), 1)
}

func TestPlanner_UpdateMarker(t *testing.T) {
	mem := newMemDays(day1())
	p := newPlanner(mem.repo(), &mockPublisher{})
	_, m, err := p.CreateMarker(context.Background(), tripID, 1, "Dinner", "19:00")
	require.NoError(t, err)

	label, start := "Late dinner", "21:30"
	v, got, err := p.UpdateMarker(context.Background(), tripID, 1, m.ID, &label, &start)

	require.NoError(t, err)
	assert.Equal(t, "21:30", got.Time)
	assert.Equal(t, "Late dinner · 21:30", v.Groups[len(v.Groups)-1].Label)
}

func TestPlanner_UpdateMarker_NotAMarker(t *testing.T) {
	p := newPlanner(newMemDays(day1()).repo(), &mockPublisher{})
	label := "x"

	_, _, err := p.UpdateMarker(context.Background(), tripID, 1, "a", &label, nil)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPlanner_RenameGroup_AutoGroupGetsMarker(t *testing.T) {
	mem := newMemDays(day1())
	p := newPlanner(mem.repo(), &mockPublisher{})

	v, err := p.RenameGroup(context.Background(), tripID, 1, 3, "Sunset")

	require.NoError(t, err)
	require.Len(t, v.Groups, 5)
	assert.True(t, v.Groups[3].Marker)
	assert.Equal(t, "Sunset", v.Groups[4].Label)
	assert.Equal(t, []string{"c"}, v.Groups[4].ItemIDs)
}

func TestPlanner_DeleteGroup_LastFreeGroup(t *testing.T) {
	mem := newMemDays(day1())
	p := newPlanner(mem.repo(), &mockPublisher{})

	_, err := p.DeleteGroup(context.Background(), tripID, 1, 0)

	assert.ErrorIs(t, err, domain.ErrLastFreeGroup)
	assert.Zero(t, mem.writes())
}

func TestPlanner_DeleteGroup_LockedActivityReturnsToPotential(t *testing.T) {
	mem := newMemDays(day1())
	p := newPlanner(mem.repo(), &mockPublisher{})

	v, err := p.DeleteGroup(context.Background(), tripID, 1, 1)

	require.NoError(t, err)
	assert.Equal(t, []string{"p", "b"}, itemIDs(v.Potential))
}

// ---- Days tests ------------------------------------------------------------

func TestPlanner_Days(t *testing.T) {
	p := newPlanner(newMemDays(day1()).repo(), &mockPublisher{})

	days, err := p.Days(context.Background(), tripID)

	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, 1, days[0].DayNumber)
}

func TestPlanner_Days_RequiresTrip(t *testing.T) {
	p := newPlanner(newMemDays().repo(), &mockPublisher{})

	_, err := p.Days(context.Background(), uuid.Nil)

	assert.ErrorIs(t, err, domain.ErrValidation)
}
