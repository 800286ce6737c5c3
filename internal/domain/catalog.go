package domain

import (
	"time"

	"github.com/google/uuid"
)

// POI is a point of interest resolved for a trip. The planner only reads it.
// BookingHour is an optional "HH:MM" hint used when a day entry carries no
// explicit time window.
type POI struct {
	ID          string    `json:"id" yaml:"id"`
	TripID      uuid.UUID `json:"trip_id" yaml:"-"`
	Name        string    `json:"name" yaml:"name"`
	Category    string    `json:"category" yaml:"category"`
	SubCategory string    `json:"sub_category,omitempty" yaml:"subCategory,omitempty"`
	City        string    `json:"city,omitempty" yaml:"city,omitempty"`
	Remark      string    `json:"remark,omitempty" yaml:"remark,omitempty"`
	BookingHour string    `json:"booking_hour,omitempty" yaml:"bookingHour,omitempty"`
	Cancelled   bool      `json:"cancelled,omitempty" yaml:"cancelled,omitempty"`
}

// Transportation is a booked journey made of one or more ordered segments.
type Transportation struct {
	ID       string    `json:"id" yaml:"id"`
	TripID   uuid.UUID `json:"trip_id" yaml:"-"`
	Category string    `json:"category" yaml:"category"` // flight, train, ferry, ...
	Segments []Segment `json:"segments" yaml:"segments"`
}

// Segment returns the segment with the given id. An empty id selects the
// first segment. ok is false when no such segment exists.
func (t Transportation) Segment(id string) (Segment, bool) {
	if len(t.Segments) == 0 {
		return Segment{}, false
	}
	if id == "" {
		return t.Segments[0], true
	}
	for _, s := range t.Segments {
		if s.ID == id {
			return s, true
		}
	}
	return Segment{}, false
}

// Segment is one leg of a Transportation.
type Segment struct {
	ID            string     `json:"id" yaml:"id"`
	From          string     `json:"from" yaml:"from"`
	To            string     `json:"to" yaml:"to"`
	DepartureTime *time.Time `json:"departure_time,omitempty" yaml:"departureTime,omitempty"`
	ArrivalTime   *time.Time `json:"arrival_time,omitempty" yaml:"arrivalTime,omitempty"`
	Number        string     `json:"number,omitempty" yaml:"number,omitempty"` // flight or vessel number
}
