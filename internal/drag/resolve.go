package drag

import "math"

// DefaultSnapRadius bounds nearest-center matching when the pointer is not
// over any target.
const DefaultSnapRadius = 96

// Resolver picks the drop target for a released pointer.
type Resolver struct {
	// SnapRadius limits nearest-center matching to targets whose center is
	// this close to the pointer while the pointer hits nothing. Zero means
	// DefaultSnapRadius; a negative value disables the limit.
	SnapRadius float64
}

// Resolve returns the target a drop at p lands on, in priority order:
//
//  1. a day pill, for either source;
//  2. a gap between groups, for either source;
//  3. potential source: the schedule zone, then a group frame, then any
//     other target under the pointer except the dragged card itself, then
//     the nearest item center;
//  4. scheduled source: the potential zone, then the nearest un-shifted
//     center among the other scheduled items.
//
// Scheduled cards are transform-shifted during the drag, so their pointer
// containment is never used. ok is false when nothing qualifies.
func (r Resolver) Resolve(s Session, p Point, candidates []Target) (Target, bool) {
	hits := make([]Target, 0, len(candidates))
	for _, c := range candidates {
		if c.Rect.Contains(p) {
			hits = append(hits, c)
		}
	}

	if t, ok := firstOfKind(hits, TargetDayPill); ok {
		return t, true
	}
	if t, ok := firstOfKind(hits, TargetGap); ok {
		return t, true
	}

	switch s.Source {
	case SourcePotential:
		for _, k := range []TargetKind{TargetScheduleZone, TargetGroupFrame} {
			if t, ok := firstOfKind(hits, k); ok {
				return t, true
			}
		}
		for _, t := range hits {
			if !s.isSelf(t) {
				return t, true
			}
		}
		return r.nearest(s, p, candidates, func(t Target) bool { return t.Kind == TargetItem }, len(hits) > 0)

	case SourceScheduled:
		if t, ok := firstOfKind(hits, TargetPotentialZone); ok {
			return t, true
		}
		return r.nearest(s, p, candidates, func(t Target) bool {
			return t.Kind == TargetItem && t.List == SourceScheduled
		}, len(hits) > 0)
	}
	return Target{}, false
}

// nearest returns the closest matching target by center. When the pointer
// is over some target the search is unbounded; otherwise it is limited to
// the snap radius.
func (r Resolver) nearest(s Session, p Point, candidates []Target, match func(Target) bool, overAny bool) (Target, bool) {
	limit := r.SnapRadius
	switch {
	case overAny || limit < 0:
		limit = math.Inf(1)
	case limit == 0:
		limit = DefaultSnapRadius
	}

	var best Target
	found := false
	bestDist := math.Inf(1)
	for _, c := range candidates {
		if !match(c) || s.isSelf(c) {
			continue
		}
		d := distance(p, c.center())
		if d <= limit && d < bestDist {
			best, bestDist, found = c, d, true
		}
	}
	return best, found
}

func firstOfKind(targets []Target, kind TargetKind) (Target, bool) {
	for _, t := range targets {
		if t.Kind == kind {
			return t, true
		}
	}
	return Target{}, false
}
