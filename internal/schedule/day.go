package schedule

import (
	"sort"

	"github.com/pkordes/dayplanner/internal/domain"
)

// Catalog holds the trip's resolved POIs and transportations, keyed by id.
type Catalog struct {
	POIs       map[string]domain.POI
	Transports map[string]domain.Transportation
}

// NewCatalog indexes the given collections by id.
func NewCatalog(pois []domain.POI, transports []domain.Transportation) Catalog {
	c := Catalog{
		POIs:       make(map[string]domain.POI, len(pois)),
		Transports: make(map[string]domain.Transportation, len(transports)),
	}
	for _, p := range pois {
		c.POIs[p.ID] = p
	}
	for _, t := range transports {
		c.Transports[t.ID] = t
	}
	return c
}

// Day is the in-memory working copy of one day's schedule.
//
// Scheduled holds the merged timeline (activities, markers and transport legs)
// in display order. Potential holds unscheduled activities. Orphans are stored
// entries whose POI could not be resolved; they are not shown but are written
// back untouched so the reference survives until the POI reappears.
type Day struct {
	Record    domain.DayRecord
	Potential []Item
	Scheduled []Item
	Orphans   []domain.ActivityEntry
}

// Materialize builds the working copy of a day from its stored record and the
// trip's catalog. References to missing POIs or transport segments are
// dropped from the view; duplicates keep their first occurrence.
func Materialize(rec domain.DayRecord, cat Catalog) Day {
	day := Day{Record: rec}

	entries := append([]domain.ActivityEntry(nil), rec.Activities...)
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Order < entries[j].Order })

	seen := make(map[string]bool, len(entries))
	var ordered []Item
	for _, e := range entries {
		switch e.Type {
		case domain.EntryTimeBlock:
			if e.ID == "" || seen[e.ID] {
				continue
			}
			seen[e.ID] = true
			ordered = append(ordered, markerFromEntry(e))

		case domain.EntryPOI:
			if seen[e.ID] {
				continue
			}
			poi, ok := cat.POIs[e.ID]
			if !ok {
				day.Orphans = append(day.Orphans, e)
				continue
			}
			seen[e.ID] = true
			it := activityFromEntry(e, poi)
			if it.State == domain.StatePotential {
				day.Potential = append(day.Potential, it)
			} else {
				ordered = append(ordered, it)
			}
		}
	}

	var legs []Item
	for _, ref := range rec.TransportationSegments {
		if !ref.IsSelected {
			continue
		}
		t, ok := cat.Transports[ref.TransportationID]
		if !ok {
			continue
		}
		seg, ok := t.Segment(ref.SegmentID)
		if !ok {
			continue
		}
		id := LegID(ref.TransportationID, ref.SegmentID)
		if seen[id] {
			continue
		}
		seen[id] = true
		legs = append(legs, legItem(id, ref, t, seg))
	}

	day.Scheduled = Renumber(Interleave(ordered, legs))
	return day
}

// activityFromEntry resolves the item's time: explicit window first, then the
// POI's booking hour, then no time.
func activityFromEntry(e domain.ActivityEntry, poi domain.POI) Item {
	p := poi
	it := Item{
		ID:       e.ID,
		Kind:     KindActivity,
		OrderKey: e.Order,
		State:    e.ScheduleState,
		POI:      &p,
	}
	if e.TimeWindow != nil && e.TimeWindow.Start != "" {
		w := *e.TimeWindow
		it.Window = &w
		it.Time = clockOrRaw(w.Start)
	} else if poi.BookingHour != "" {
		it.Time = clockOrRaw(poi.BookingHour)
	}
	// An explicit window always places the item on the timeline; an entry
	// without any state predates the potential pool and counts as scheduled.
	if it.Window != nil || it.State == "" {
		it.State = domain.StateScheduled
	}
	return it
}

func markerFromEntry(e domain.ActivityEntry) Item {
	it := Item{
		ID:       e.ID,
		Kind:     KindMarker,
		OrderKey: e.Order,
		State:    domain.StateScheduled,
		Label:    e.Label,
	}
	if e.TimeWindow != nil && e.TimeWindow.Start != "" {
		w := *e.TimeWindow
		it.Window = &w
		it.Time = clockOrRaw(w.Start)
	}
	return it
}

func legItem(id string, ref domain.TransportSegmentRef, t domain.Transportation, seg domain.Segment) Item {
	it := Item{
		ID:    id,
		Kind:  KindTransport,
		State: domain.StateScheduled,
		Leg: &Leg{
			TransportID: ref.TransportationID,
			SegmentID:   ref.SegmentID,
			Category:    t.Category,
			Segment:     seg,
		},
	}
	if seg.DepartureTime != nil {
		it.Time = seg.DepartureTime.Format("15:04")
	}
	return it
}

// clockOrRaw normalizes parseable times to "HH:MM" and keeps anything else as
// given, so a malformed value still locks the item rather than vanishing.
func clockOrRaw(s string) string {
	if m, ok := ParseClock(s); ok {
		return FormatClock(m)
	}
	return s
}

// LockedIDs returns the ids of scheduled items that are locked. It is
// recomputed from item data on every call.
func (d Day) LockedIDs() map[string]bool {
	locked := make(map[string]bool)
	for _, it := range d.Scheduled {
		if it.Locked() {
			locked[it.ID] = true
		}
	}
	return locked
}

// Groups derives the day's groups from the scheduled timeline.
func (d Day) Groups() []Group {
	return BuildGroups(d.Scheduled, d.LockedIDs())
}

// Find returns the item with the given id and which list holds it.
func (d Day) Find(id string) (Item, domain.ScheduleState, bool) {
	if i := indexOf(d.Scheduled, id); i >= 0 {
		return d.Scheduled[i], domain.StateScheduled, true
	}
	if i := indexOf(d.Potential, id); i >= 0 {
		return d.Potential[i], domain.StatePotential, true
	}
	return Item{}, "", false
}

// Contains reports whether an item with the given id is on the day in either
// list. Orphaned entries count as well.
func (d Day) Contains(id string) bool {
	if _, _, ok := d.Find(id); ok {
		return true
	}
	for _, o := range d.Orphans {
		if o.ID == id {
			return true
		}
	}
	return false
}

func (d Day) clone() Day {
	out := d
	out.Potential = cloneItems(d.Potential)
	out.Scheduled = cloneItems(d.Scheduled)
	out.Orphans = append([]domain.ActivityEntry(nil), d.Orphans...)
	return out
}
