// Package drag is the drag interaction controller. It tracks the single
// active drag session, resolves the target under the pointer by a fixed
// priority, and turns the resolved drop into a new day schedule plus any
// cross-day move the persistence layer must carry out.
//
// Nothing here performs I/O.
package drag

import "math"

// SourceKind is the list the dragged item came from. It is fixed when the
// drag starts and never recomputed.
type SourceKind string

const (
	SourcePotential SourceKind = "potential"
	SourceScheduled SourceKind = "scheduled"
)

// TargetKind discriminates drop targets.
type TargetKind string

const (
	TargetDayPill       TargetKind = "day_pill"       // another day in the day selector
	TargetGap           TargetKind = "gap"            // the space between two groups
	TargetScheduleZone  TargetKind = "schedule_zone"  // catch-all for the timeline
	TargetGroupFrame    TargetKind = "group_frame"    // the frame around one group
	TargetPotentialZone TargetKind = "potential_zone" // the potential list
	TargetItem          TargetKind = "item"           // a single card in either list
)

// Point is a pointer position in screen coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned box in screen coordinates.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Center returns the midpoint of r.
func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Target is one droppable region registered by the UI.
//
// Index is the gap index for gaps, the group index for group frames and
// the position within List for items. Anchor, when set, is the item's
// un-shifted center captured before the drag moved neighbouring cards.
type Target struct {
	Kind      TargetKind `json:"kind"`
	Rect      Rect       `json:"rect"`
	Anchor    *Point     `json:"anchor,omitempty"`
	DayNumber int        `json:"dayNumber,omitempty"`
	Index     int        `json:"index"`
	ItemID    string     `json:"itemId,omitempty"`
	List      SourceKind `json:"list,omitempty"`
}

// center is the point used for nearest-center matching.
func (t Target) center() Point {
	if t.Anchor != nil {
		return *t.Anchor
	}
	return t.Rect.Center()
}
