// Package schedule is the day-schedule composition engine: it materializes a
// day record into ordered schedule items, derives locked/free groups and their
// labels, merges transport legs into the activity order, and applies the list
// mutations a drag or marker edit resolves to.
//
// Everything in this package is synchronous and side-effect free. Values are
// copied on mutation; a Day returned by a method never aliases its receiver.
package schedule

import (
	"time"

	"github.com/pkordes/dayplanner/internal/domain"
)

// Kind discriminates the three placeable units of a day.
type Kind string

const (
	KindActivity  Kind = "activity"
	KindTransport Kind = "transport"
	KindMarker    Kind = "marker"
)

// Item is one placeable unit of a day: an activity (POI reference), a
// transport leg, or a time marker.
type Item struct {
	ID       string
	Kind     Kind
	OrderKey float64
	State    domain.ScheduleState

	// Time is the resolved wall-clock start ("HH:MM") used for locking and
	// labels. For activities it falls back to the POI's booking hour.
	Time string

	// Window is the explicit window stored on the day record. It is written
	// back verbatim; Time is derived and never persisted.
	Window *domain.TimeWindow

	Label string // markers only

	POI *domain.POI // activities only
	Leg *Leg        // transport legs only
}

// Leg identifies one transport segment placed on a day.
type Leg struct {
	TransportID string
	SegmentID   string
	Category    string
	Segment     domain.Segment
}

// Departure returns the leg's departure time, or nil when undated.
func (l *Leg) Departure() *time.Time {
	if l == nil {
		return nil
	}
	return l.Segment.DepartureTime
}

// Locked reports whether the item is anchored to a time. Markers are never
// locked; activities and legs are locked iff they carry a start time.
func (it Item) Locked() bool {
	return it.Kind != KindMarker && it.Time != ""
}

// LegID is the day-scoped identifier of a transport segment reference.
func LegID(transportID, segmentID string) string {
	if segmentID == "" {
		return "transport:" + transportID
	}
	return "transport:" + transportID + ":" + segmentID
}

func (it Item) clone() Item {
	if it.Window != nil {
		w := *it.Window
		it.Window = &w
	}
	return it
}

func cloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = it.clone()
	}
	return out
}

func indexOf(items []Item, id string) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func insertAt(items []Item, pos int, it Item) []Item {
	if pos < 0 {
		pos = 0
	}
	if pos > len(items) {
		pos = len(items)
	}
	items = append(items, Item{})
	copy(items[pos+1:], items[pos:])
	items[pos] = it
	return items
}

func removeAt(items []Item, pos int) []Item {
	return append(items[:pos], items[pos+1:]...)
}
