package schedule

import (
	"sort"

	"github.com/pkordes/dayplanner/internal/domain"
)

// Renumber returns a copy of items with contiguous keys 1..n in slice order.
func Renumber(items []Item) []Item {
	out := cloneItems(items)
	for i := range out {
		out[i].OrderKey = float64(i + 1)
	}
	return out
}

// Entries serializes the day into the full activities array of its record.
//
// Keys are contiguous over the merged timeline: transport legs consume a
// number without being written, which leaves the gap Interleave refills on
// the next load. Potential activities follow the timeline, and orphaned
// entries follow those.
func (d Day) Entries() []domain.ActivityEntry {
	out := make([]domain.ActivityEntry, 0, len(d.Scheduled)+len(d.Potential)+len(d.Orphans))
	n := 0
	for _, it := range d.Scheduled {
		n++
		if it.Kind == KindTransport {
			continue
		}
		out = append(out, entryOf(it, float64(n), domain.StateScheduled))
	}
	for _, it := range d.Potential {
		n++
		out = append(out, entryOf(it, float64(n), domain.StatePotential))
	}
	for _, o := range d.Orphans {
		n++
		o.Order = float64(n)
		out = append(out, o)
	}
	return out
}

func entryOf(it Item, order float64, state domain.ScheduleState) domain.ActivityEntry {
	e := domain.ActivityEntry{Order: order, ID: it.ID}
	if it.Window != nil {
		w := *it.Window
		e.TimeWindow = &w
	}
	switch it.Kind {
	case KindMarker:
		e.Type = domain.EntryTimeBlock
		e.Label = it.Label
	default:
		e.Type = domain.EntryPOI
		e.ScheduleState = state
	}
	return e
}

// Normalize returns a copy of the day with the timeline sorted by key and
// both lists renumbered. Keys are rational in between, so a half-integer
// insertion sorts into place here without touching other items' relative order.
func (d Day) Normalize() Day {
	out := d.clone()
	sortStable(out.Scheduled)
	sortStable(out.Potential)
	out.Scheduled = Renumber(out.Scheduled)
	out.Potential = Renumber(out.Potential)
	return out
}

func sortStable(items []Item) {
	sort.SliceStable(items, func(i, j int) bool { return items[i].OrderKey < items[j].OrderKey })
}

// reindex renumbers both lists in their current slice order. Mutations that
// move items within the slices use it instead of Normalize, whose sort would
// restore the stale keys.
func (d Day) reindex() Day {
	out := d
	out.Scheduled = Renumber(d.Scheduled)
	out.Potential = Renumber(d.Potential)
	return out
}
