package schedule_test

import (
	"time"

	"github.com/pkordes/dayplanner/internal/domain"
	"github.com/pkordes/dayplanner/internal/schedule"
)

// ---- fixtures --------------------------------------------------------------

func act(id string, key float64, clock string) schedule.Item {
	return schedule.Item{
		ID:       id,
		Kind:     schedule.KindActivity,
		OrderKey: key,
		State:    domain.StateScheduled,
		Time:     clock,
		POI:      &domain.POI{ID: id, Name: id},
	}
}

func potential(id string, key float64) schedule.Item {
	it := act(id, key, "")
	it.State = domain.StatePotential
	return it
}

func marker(id string, key float64, label, clock string) schedule.Item {
	it := schedule.Item{
		ID:       id,
		Kind:     schedule.KindMarker,
		OrderKey: key,
		State:    domain.StateScheduled,
		Label:    label,
		Time:     clock,
	}
	if clock != "" {
		it.Window = &domain.TimeWindow{Start: clock}
	}
	return it
}

func leg(id, clock string) schedule.Item {
	it := schedule.Item{
		ID:    id,
		Kind:  schedule.KindTransport,
		State: domain.StateScheduled,
		Leg:   &schedule.Leg{TransportID: id, Category: "train"},
	}
	if clock != "" {
		dep := at(clock)
		it.Leg.Segment.DepartureTime = &dep
		it.Time = clock
	}
	return it
}

func at(clock string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", "2025-06-01 "+clock)
	if err != nil {
		panic(err)
	}
	return t
}

func dayOf(scheduled []schedule.Item, pot ...schedule.Item) schedule.Day {
	return schedule.Day{Scheduled: scheduled, Potential: pot}
}

func ids(items []schedule.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func groupIDs(groups []schedule.Group) [][]string {
	out := make([][]string, len(groups))
	for i, g := range groups {
		out[i] = ids(g.Items)
	}
	return out
}

func lockedFlags(groups []schedule.Group) []bool {
	out := make([]bool, len(groups))
	for i, g := range groups {
		out[i] = g.Locked
	}
	return out
}

func keys(items []schedule.Item) []float64 {
	out := make([]float64, len(items))
	for i, it := range items {
		out[i] = it.OrderKey
	}
	return out
}
