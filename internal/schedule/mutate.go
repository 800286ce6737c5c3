package schedule

import (
	"fmt"

	"github.com/pkordes/dayplanner/internal/domain"
)

// Reposition moves a scheduled item onto a gap between groups. The gap's
// position is the size of all groups before it, less one when the item
// itself sits before that position and its removal shifts the rest down.
func (d Day) Reposition(id string, gap int) (Day, error) {
	out := d.clone()
	old := indexOf(out.Scheduled, id)
	if old < 0 {
		return d, fmt.Errorf("%w: %s is not scheduled", domain.ErrInvalidDrop, id)
	}
	pos := gapPosition(out.Groups(), gap)
	if old < pos {
		pos--
	}
	it := out.Scheduled[old]
	out.Scheduled = insertAt(removeAt(out.Scheduled, old), pos, it)
	return out.reindex(), nil
}

// Promote moves a potential activity onto the timeline at a gap.
func (d Day) Promote(id string, gap int) (Day, error) {
	return d.promoteAt(id, func(out Day) int { return gapPosition(out.Groups(), gap) })
}

// PromoteAt moves a potential activity onto the timeline at position index.
func (d Day) PromoteAt(id string, index int) (Day, error) {
	return d.promoteAt(id, func(Day) int { return index })
}

// AppendScheduled moves a potential activity to the end of the timeline.
func (d Day) AppendScheduled(id string) (Day, error) {
	return d.promoteAt(id, func(out Day) int { return len(out.Scheduled) })
}

func (d Day) promoteAt(id string, position func(Day) int) (Day, error) {
	out := d.clone()
	i := indexOf(out.Potential, id)
	if i < 0 {
		return d, fmt.Errorf("%w: %s is not a potential item", domain.ErrInvalidDrop, id)
	}
	it := out.Potential[i]
	out.Potential = removeAt(out.Potential, i)
	it.State = domain.StateScheduled
	out.Scheduled = insertAt(out.Scheduled, position(out), it)
	return out.reindex(), nil
}

// InsertIntoGroup places an item, from either list, directly after the last
// item of groups[group].
func (d Day) InsertIntoGroup(id string, group int) (Day, error) {
	groups := d.Groups()
	if group < 0 || group >= len(groups) {
		return d, fmt.Errorf("%w: group %d out of range", domain.ErrInvalidDrop, group)
	}
	last := groups[group].Items[len(groups[group].Items)-1].ID
	if last == id {
		return d, fmt.Errorf("%w: %s is already last in its group", domain.ErrInvalidDrop, id)
	}

	out := d.clone()
	var it Item
	if i := indexOf(out.Scheduled, id); i >= 0 {
		it = out.Scheduled[i]
		out.Scheduled = removeAt(out.Scheduled, i)
	} else if i := indexOf(out.Potential, id); i >= 0 {
		it = out.Potential[i]
		out.Potential = removeAt(out.Potential, i)
		it.State = domain.StateScheduled
	} else {
		return d, fmt.Errorf("%w: %s is not on this day", domain.ErrInvalidDrop, id)
	}
	pos := indexOf(out.Scheduled, last) + 1
	out.Scheduled = insertAt(out.Scheduled, pos, it)
	return out.reindex(), nil
}

// Reorder moves a scheduled item from its current index to newIndex.
func (d Day) Reorder(id string, newIndex int) (Day, error) {
	out := d.clone()
	old := indexOf(out.Scheduled, id)
	if old < 0 {
		return d, fmt.Errorf("%w: %s is not scheduled", domain.ErrInvalidDrop, id)
	}
	if newIndex < 0 || newIndex >= len(out.Scheduled) {
		return d, fmt.Errorf("%w: index %d out of range", domain.ErrInvalidDrop, newIndex)
	}
	if old == newIndex {
		return d, fmt.Errorf("%w: %s dropped in place", domain.ErrInvalidDrop, id)
	}
	it := out.Scheduled[old]
	out.Scheduled = insertAt(removeAt(out.Scheduled, old), newIndex, it)
	return out.reindex(), nil
}

// Unschedule returns a scheduled activity to the potential list. Its
// explicit window is cleared, otherwise the window would keep it scheduled.
func (d Day) Unschedule(id string) (Day, error) {
	out := d.clone()
	i := indexOf(out.Scheduled, id)
	if i < 0 {
		return d, fmt.Errorf("%w: %s is not scheduled", domain.ErrInvalidDrop, id)
	}
	it := out.Scheduled[i]
	if it.Kind != KindActivity {
		return d, fmt.Errorf("%w: only activities can return to potential", domain.ErrInvalidDrop)
	}
	out.Scheduled = removeAt(out.Scheduled, i)
	out.Potential = append(out.Potential, asPotential(it))
	return out.reindex(), nil
}

// Remove takes an activity off the day entirely, from whichever list holds
// it, and returns it. Transport legs are bound to their departure and are
// rejected with domain.ErrCrossDayTransport.
func (d Day) Remove(id string) (Day, Item, error) {
	it, _, ok := d.Find(id)
	if !ok {
		return d, Item{}, fmt.Errorf("%w: %s is not on this day", domain.ErrInvalidDrop, id)
	}
	switch it.Kind {
	case KindTransport:
		return d, Item{}, domain.ErrCrossDayTransport
	case KindMarker:
		return d, Item{}, fmt.Errorf("%w: time markers belong to their day", domain.ErrInvalidDrop)
	}
	out := d.clone()
	if i := indexOf(out.Scheduled, id); i >= 0 {
		out.Scheduled = removeAt(out.Scheduled, i)
	} else {
		out.Potential = removeAt(out.Potential, indexOf(out.Potential, id))
	}
	return out.reindex(), it, nil
}

// AppendPotential adds an activity arriving from another day. It lands in
// the potential list, never auto-scheduled, keyed one past the current max.
func (d Day) AppendPotential(it Item) (Day, error) {
	if it.Kind != KindActivity {
		return d, fmt.Errorf("%w: only activities can move between days", domain.ErrInvalidDrop)
	}
	if d.Contains(it.ID) {
		return d, fmt.Errorf("%w: %s", domain.ErrDuplicateItem, it.ID)
	}
	out := d.clone()
	p := asPotential(it)
	p.OrderKey = out.maxKey() + 1
	out.Potential = append(out.Potential, p)
	return out, nil
}

func (d Day) maxKey() float64 {
	var max float64
	for _, list := range [][]Item{d.Scheduled, d.Potential} {
		for _, it := range list {
			if it.OrderKey > max {
				max = it.OrderKey
			}
		}
	}
	for _, o := range d.Orphans {
		if o.Order > max {
			max = o.Order
		}
	}
	return max
}

func asPotential(it Item) Item {
	it = it.clone()
	it.State = domain.StatePotential
	it.Window = nil
	it.Time = ""
	if it.POI != nil && it.POI.BookingHour != "" {
		it.Time = clockOrRaw(it.POI.BookingHour)
	}
	return it
}
