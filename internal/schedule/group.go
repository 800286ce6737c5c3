package schedule

// Slot labels for free groups, chosen from the midpoint of the surrounding
// locked times.
const (
	LabelMorning  = "morning"
	LabelMidday   = "midday"
	LabelEvening  = "evening"
	LabelNight    = "night"
	LabelFlexible = "flexible time"

	// LockGlyph labels a locked group whose item has no displayable time.
	LockGlyph = "🔒"
)

// Group is a derived run of the timeline: a single anchored item (a locked
// item or a time marker) or a maximal run of consecutive free items.
// Groups are never stored.
type Group struct {
	Locked bool
	Items  []Item
}

// IsMarker reports whether the group is a time marker's anchor group.
func (g Group) IsMarker() bool {
	return g.Locked && len(g.Items) == 1 && g.Items[0].Kind == KindMarker
}

// isItemAnchor reports whether the group bounds a section: an anchored
// group holding a locked activity or leg.
func (g Group) isItemAnchor() bool {
	return g.Locked && !g.IsMarker()
}

// BuildGroups partitions items in one linear pass. A time marker closes the
// open free group and stands as its own anchor; the free items after it form
// the group it heads. A locked item closes the open free group and becomes a
// singleton. Any other item joins the open free group, opening one if needed.
func BuildGroups(items []Item, locked map[string]bool) []Group {
	var groups []Group
	open := -1
	for _, it := range items {
		if it.Kind == KindMarker || locked[it.ID] {
			groups = append(groups, Group{Locked: true, Items: []Item{it}})
			open = -1
			continue
		}
		if open < 0 {
			groups = append(groups, Group{})
			open = len(groups) - 1
		}
		groups[open].Items = append(groups[open].Items, it)
	}
	return groups
}

// GroupLabel computes the display label of groups[index]. It depends only on
// its arguments.
func GroupLabel(groups []Group, index int) string {
	if index < 0 || index >= len(groups) {
		return ""
	}
	g := groups[index]
	if g.Locked {
		it := g.Items[0]
		if it.Kind == KindMarker {
			return markerTitle(it)
		}
		if it.Time != "" {
			return it.Time
		}
		return LockGlyph
	}

	if index > 0 && groups[index-1].IsMarker() {
		return markerTitle(groups[index-1].Items[0])
	}

	hasLocked := false
	for _, gr := range groups {
		if gr.Locked {
			hasLocked = true
			break
		}
	}
	if !hasLocked {
		return LabelFlexible
	}

	prev, hasPrev := neighborTime(groups, index, -1)
	next, hasNext := neighborTime(groups, index, +1)
	var mid int
	switch {
	case hasPrev && hasNext:
		mid = (prev + next) / 2
	case hasPrev:
		mid = (prev + minutesPerDay) / 2
	case hasNext:
		mid = next / 2
	default:
		mid = noon
	}
	return SlotLabel(mid)
}

// SlotLabel names the part of the day a minute-of-day falls in.
func SlotLabel(minutes int) string {
	switch {
	case minutes < 12*60:
		return LabelMorning
	case minutes < 17*60:
		return LabelMidday
	case minutes <= 21*60:
		return LabelEvening
	default:
		return LabelNight
	}
}

// neighborTime scans from index in direction step for the nearest locked
// group carrying a parseable time.
func neighborTime(groups []Group, index, step int) (int, bool) {
	for i := index + step; i >= 0 && i < len(groups); i += step {
		g := groups[i]
		if !g.Locked {
			continue
		}
		if m, ok := ParseClock(g.Items[0].Time); ok {
			return m, true
		}
	}
	return 0, false
}

func markerTitle(it Item) string {
	switch {
	case it.Label != "" && it.Time != "":
		return it.Label + " · " + it.Time
	case it.Label != "":
		return it.Label
	default:
		return it.Time
	}
}

// CanDeleteGroup reports whether groups[index] may be deleted. Anchored
// groups always may. A free group may only if another free group remains in
// its section, the run of groups between two locked-item anchors (or an
// anchor and either end). Marker groups sit inside sections.
func CanDeleteGroup(groups []Group, index int) bool {
	if index < 0 || index >= len(groups) {
		return false
	}
	if groups[index].Locked {
		return true
	}
	lo, hi := sectionBounds(groups, index)
	for i := lo; i <= hi; i++ {
		if i != index && !groups[i].Locked {
			return true
		}
	}
	return false
}

// sectionBounds returns the inclusive range of the section containing index.
func sectionBounds(groups []Group, index int) (lo, hi int) {
	lo, hi = index, index
	for lo > 0 && !groups[lo-1].isItemAnchor() {
		lo--
	}
	for hi < len(groups)-1 && !groups[hi+1].isItemAnchor() {
		hi++
	}
	return lo, hi
}

// gapPosition converts a gap index (0 = before the first group, len(groups)
// = after the last) into a timeline position.
func gapPosition(groups []Group, gap int) int {
	if gap < 0 {
		gap = 0
	}
	if gap > len(groups) {
		gap = len(groups)
	}
	pos := 0
	for _, g := range groups[:gap] {
		pos += len(g.Items)
	}
	return pos
}
