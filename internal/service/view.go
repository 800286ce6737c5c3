package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/dayplanner/internal/schedule"
)

// View is the derived, display-ready state of one day. It is recomputed from
// the schedule on every request and never stored.
type View struct {
	TripID          uuid.UUID   `json:"tripId"`
	DayID           *uuid.UUID  `json:"dayId,omitempty"` // nil until the day is first written
	DayNumber       int         `json:"dayNumber"`
	Date            string      `json:"date,omitempty"`
	LocationContext string      `json:"locationContext,omitempty"`
	Potential       []ItemView  `json:"potential"`
	Scheduled       []ItemView  `json:"scheduled"`
	LockedIDs       []string    `json:"lockedIds"`
	Groups          []GroupView `json:"groups"`
}

// ItemView is one card.
type ItemView struct {
	ID          string   `json:"id"`
	Kind        string   `json:"kind"`
	OrderKey    float64  `json:"orderKey"`
	State       string   `json:"scheduleState"`
	Time        string   `json:"time,omitempty"`
	Locked      bool     `json:"locked"`
	Label       string   `json:"label,omitempty"`
	Name        string   `json:"name,omitempty"`
	Category    string   `json:"category,omitempty"`
	SubCategory string   `json:"subCategory,omitempty"`
	City        string   `json:"city,omitempty"`
	Remark      string   `json:"remark,omitempty"`
	Cancelled   bool     `json:"cancelled,omitempty"`
	Leg         *LegView `json:"leg,omitempty"`
}

// LegView describes a transport leg card.
type LegView struct {
	TransportID string     `json:"transportId"`
	SegmentID   string     `json:"segmentId,omitempty"`
	Category    string     `json:"category"`
	From        string     `json:"from"`
	To          string     `json:"to"`
	Departure   *time.Time `json:"departure,omitempty"`
	Arrival     *time.Time `json:"arrival,omitempty"`
	Number      string     `json:"number,omitempty"`
}

// GroupView is one derived group with its label. Index addresses the group
// in rename and delete calls; gaps are addressed 0..len(groups).
type GroupView struct {
	Index     int      `json:"index"`
	Label     string   `json:"label"`
	Locked    bool     `json:"locked"`
	Marker    bool     `json:"marker"`
	Deletable bool     `json:"deletable"`
	ItemIDs   []string `json:"itemIds"`
}

// NewView derives the display state of day.
func NewView(day schedule.Day) View {
	v := View{
		TripID:          day.Record.TripID,
		DayNumber:       day.Record.DayNumber,
		Date:            day.Record.Date,
		LocationContext: day.Record.LocationContext,
		Potential:       make([]ItemView, 0, len(day.Potential)),
		Scheduled:       make([]ItemView, 0, len(day.Scheduled)),
		LockedIDs:       []string{},
		Groups:          []GroupView{},
	}
	if day.Record.ID != uuid.Nil {
		id := day.Record.ID
		v.DayID = &id
	}

	locked := day.LockedIDs()
	for _, it := range day.Potential {
		v.Potential = append(v.Potential, itemView(it, false))
	}
	for _, it := range day.Scheduled {
		v.Scheduled = append(v.Scheduled, itemView(it, locked[it.ID]))
		if locked[it.ID] {
			v.LockedIDs = append(v.LockedIDs, it.ID)
		}
	}

	groups := schedule.BuildGroups(day.Scheduled, locked)
	for i, g := range groups {
		gv := GroupView{
			Index:     i,
			Label:     schedule.GroupLabel(groups, i),
			Locked:    g.Locked,
			Marker:    g.IsMarker(),
			Deletable: schedule.CanDeleteGroup(groups, i) && g.Items[0].Kind != schedule.KindTransport,
		}
		for _, it := range g.Items {
			gv.ItemIDs = append(gv.ItemIDs, it.ID)
		}
		v.Groups = append(v.Groups, gv)
	}
	return v
}

func itemView(it schedule.Item, locked bool) ItemView {
	v := ItemView{
		ID:       it.ID,
		Kind:     string(it.Kind),
		OrderKey: it.OrderKey,
		State:    string(it.State),
		Time:     it.Time,
		Locked:   locked,
		Label:    it.Label,
	}
	if p := it.POI; p != nil {
		v.Name = p.Name
		v.Category = p.Category
		v.SubCategory = p.SubCategory
		v.City = p.City
		v.Remark = p.Remark
		v.Cancelled = p.Cancelled
	}
	if l := it.Leg; l != nil {
		v.Leg = &LegView{
			TransportID: l.TransportID,
			SegmentID:   l.SegmentID,
			Category:    l.Category,
			From:        l.Segment.From,
			To:          l.Segment.To,
			Departure:   l.Segment.DepartureTime,
			Arrival:     l.Segment.ArrivalTime,
			Number:      l.Segment.Number,
		}
	}
	return v
}
