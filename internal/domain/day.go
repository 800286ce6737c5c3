// Package domain contains the core data types for the day planner.
// This package has no dependencies beyond uuid and is imported by every other
// internal package (schedule, repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ScheduleState says whether an activity sits on the day timeline or in the
// day's pool of candidates.
type ScheduleState string

const (
	StatePotential ScheduleState = "potential"
	StateScheduled ScheduleState = "scheduled"
)

// EntryType discriminates the elements of DayRecord.Activities.
type EntryType string

const (
	EntryPOI       EntryType = "poi"
	EntryTimeBlock EntryType = "time_block"
)

// TimeWindow is a wall-clock window ("HH:MM") attached to an entry.
type TimeWindow struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end,omitempty" yaml:"end,omitempty"`
}

// ActivityEntry is one element of a day's ordered item list. It is either a
// POI reference (Type == EntryPOI) or a named time block (Type == EntryTimeBlock).
// The JSON shape is the persisted document shape and must stay stable.
type ActivityEntry struct {
	Order         float64       `json:"order" yaml:"order"`
	Type          EntryType     `json:"type" yaml:"type"`
	ID            string        `json:"id" yaml:"id"`
	ScheduleState ScheduleState `json:"scheduleState,omitempty" yaml:"scheduleState,omitempty"`
	Label         string        `json:"label,omitempty" yaml:"label,omitempty"` // time blocks only
	TimeWindow    *TimeWindow   `json:"timeWindow,omitempty" yaml:"timeWindow,omitempty"`
}

// StartTime returns the entry's explicit window start, or "" when unset.
func (e ActivityEntry) StartTime() string {
	if e.TimeWindow == nil {
		return ""
	}
	return e.TimeWindow.Start
}

// AccommodationOption is passed through untouched by the planner.
type AccommodationOption struct {
	POIID      string `json:"poiId" yaml:"poiId"`
	IsSelected bool   `json:"isSelected" yaml:"isSelected"`
}

// TransportSegmentRef links a day to one segment of a transportation entity.
// An empty SegmentID refers to the transportation's first segment.
type TransportSegmentRef struct {
	TransportationID string `json:"transportationId" yaml:"transportationId"`
	SegmentID        string `json:"segmentId,omitempty" yaml:"segmentId,omitempty"`
	IsSelected       bool   `json:"isSelected" yaml:"isSelected"`
}

// DayRecord is one calendar day of one trip as held by the store.
// (TripID, DayNumber) is unique.
type DayRecord struct {
	ID                     uuid.UUID
	TripID                 uuid.UUID
	DayNumber              int
	Date                   string // "2006-01-02", empty when undated
	LocationContext        string
	AccommodationOptions   []AccommodationOption
	Activities             []ActivityEntry
	TransportationSegments []TransportSegmentRef
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// MaxOrder returns the largest Order among the record's activities, or 0.
func (d DayRecord) MaxOrder() float64 {
	var max float64
	for _, a := range d.Activities {
		if a.Order > max {
			max = a.Order
		}
	}
	return max
}

// DayPatch is a partial update of a DayRecord. Nil fields are left untouched.
// Activities is never patched element-wise: when set it replaces the whole array.
type DayPatch struct {
	Date                   *string
	LocationContext        *string
	Activities             *[]ActivityEntry
	TransportationSegments *[]TransportSegmentRef
}

// ActivitiesPatch returns a patch that rewrites only the activities array.
func ActivitiesPatch(entries []ActivityEntry) DayPatch {
	if entries == nil {
		entries = []ActivityEntry{}
	}
	return DayPatch{Activities: &entries}
}

// IsEmpty reports whether the patch changes nothing.
func (p DayPatch) IsEmpty() bool {
	return p.Date == nil && p.LocationContext == nil && p.Activities == nil && p.TransportationSegments == nil
}

// Apply returns a copy of d with the patch's non-nil fields written over it.
// Stores without a native partial update use this to emulate one.
func (p DayPatch) Apply(d DayRecord) DayRecord {
	if p.Date != nil {
		d.Date = *p.Date
	}
	if p.LocationContext != nil {
		d.LocationContext = *p.LocationContext
	}
	if p.Activities != nil {
		d.Activities = append([]ActivityEntry(nil), (*p.Activities)...)
	}
	if p.TransportationSegments != nil {
		d.TransportationSegments = append([]TransportSegmentRef(nil), (*p.TransportationSegments)...)
	}
	return d
}
