package schedule

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/dayplanner/internal/domain"
)

// NewMarker validates label and start and returns an unplaced time marker
// with a fresh id. start may be empty.
func NewMarker(label, start string) (Item, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return Item{}, fmt.Errorf("%w: marker label is required", domain.ErrValidation)
	}
	clock, err := NormalizeClock(start)
	if err != nil {
		return Item{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	it := Item{
		ID:    uuid.NewString(),
		Kind:  KindMarker,
		State: domain.StateScheduled,
		Label: label,
	}
	setMarkerTime(&it, clock)
	return it, nil
}

func setMarkerTime(it *Item, clock string) {
	it.Time = clock
	if clock == "" {
		it.Window = nil
		return
	}
	it.Window = &domain.TimeWindow{Start: clock}
}

// CreateMarker appends a new time marker to the end of the timeline.
func (d Day) CreateMarker(label, start string) (Day, Item, error) {
	m, err := NewMarker(label, start)
	if err != nil {
		return d, Item{}, err
	}
	out := d.clone()
	m.OrderKey = out.maxKey() + 1
	out.Scheduled = append(out.Scheduled, m)
	out = out.reindex()
	return out, out.Scheduled[len(out.Scheduled)-1], nil
}

// UpdateMarker renames and/or retimes a marker in place. A nil argument
// leaves that field unchanged; an empty start clears the marker's time.
func (d Day) UpdateMarker(id string, label, start *string) (Day, Item, error) {
	i := indexOf(d.Scheduled, id)
	if i < 0 || d.Scheduled[i].Kind != KindMarker {
		return d, Item{}, fmt.Errorf("marker %s: %w", id, domain.ErrNotFound)
	}
	out := d.clone()
	m := &out.Scheduled[i]
	if label != nil {
		l := strings.TrimSpace(*label)
		if l == "" {
			return d, Item{}, fmt.Errorf("%w: marker label is required", domain.ErrValidation)
		}
		m.Label = l
	}
	if start != nil {
		clock, err := NormalizeClock(*start)
		if err != nil {
			return d, Item{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
		}
		setMarkerTime(m, clock)
	}
	return out, *m, nil
}

// RenameGroup names groups[index]. A marker group, or a free group headed by
// a marker, renames that marker. An auto-labelled free group gets a new
// marker keyed half a step before its first item, so it sorts into place
// without moving anything else.
func (d Day) RenameGroup(index int, label string) (Day, Item, error) {
	groups := d.Groups()
	if index < 0 || index >= len(groups) {
		return d, Item{}, fmt.Errorf("group %d: %w", index, domain.ErrNotFound)
	}
	g := groups[index]
	switch {
	case g.IsMarker():
		return d.UpdateMarker(g.Items[0].ID, &label, nil)
	case g.Locked:
		return d, Item{}, fmt.Errorf("%w: a locked group is labelled by its time", domain.ErrValidation)
	case index > 0 && groups[index-1].IsMarker():
		return d.UpdateMarker(groups[index-1].Items[0].ID, &label, nil)
	}

	m, err := NewMarker(label, "")
	if err != nil {
		return d, Item{}, err
	}
	out := d.clone()
	m.OrderKey = g.Items[0].OrderKey - 0.5
	out.Scheduled = append(out.Scheduled, m)
	out = out.Normalize()
	return out, out.Scheduled[indexOf(out.Scheduled, m.ID)], nil
}

// DeleteGroup removes groups[index] from the timeline.
//
// Deleting a marker (or the free group it heads) drops the marker and moves
// its content directly after the next marker forward in the same section.
// With no such marker the content stays where it is, joining whatever
// precedes it. Deleting an auto-labelled free group is guarded by
// CanDeleteGroup and moves its content the same way. Deleting a locked
// activity returns it to the potential list; transport legs stay.
func (d Day) DeleteGroup(index int) (Day, error) {
	groups := d.Groups()
	if index < 0 || index >= len(groups) {
		return d, fmt.Errorf("group %d: %w", index, domain.ErrNotFound)
	}
	g := groups[index]

	var marker *Item
	var content []Item
	switch {
	case g.IsMarker():
		marker = &g.Items[0]
		if index+1 < len(groups) && !groups[index+1].Locked {
			content = groups[index+1].Items
		}
	case g.Locked:
		return d.Unschedule(g.Items[0].ID)
	case index > 0 && groups[index-1].IsMarker():
		if !CanDeleteGroup(groups, index) {
			return d, domain.ErrLastFreeGroup
		}
		marker = &groups[index-1].Items[0]
		content = g.Items
	default:
		if !CanDeleteGroup(groups, index) {
			return d, domain.ErrLastFreeGroup
		}
		content = g.Items
	}

	out := d.clone()
	if marker != nil {
		out.Scheduled = removeAt(out.Scheduled, indexOf(out.Scheduled, marker.ID))
	}
	target := forwardMarker(groups, index)
	if target == "" || len(content) == 0 {
		return out.reindex(), nil
	}

	for _, it := range content {
		out.Scheduled = removeAt(out.Scheduled, indexOf(out.Scheduled, it.ID))
	}
	pos := indexOf(out.Scheduled, target) + 1
	for i, it := range content {
		out.Scheduled = insertAt(out.Scheduled, pos+i, it)
	}
	return out.reindex(), nil
}

// forwardMarker returns the id of the first marker after index. The search
// crosses locked groups.
func forwardMarker(groups []Group, index int) string {
	for i := index + 1; i < len(groups); i++ {
		if groups[i].IsMarker() {
			return groups[i].Items[0].ID
		}
	}
	return ""
}
