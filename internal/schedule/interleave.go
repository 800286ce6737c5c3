package schedule

import (
	"math"
	"sort"
)

// Interleave merges items that carry a durable OrderKey (activities and
// markers) with transport legs that only carry a departure time.
//
// Ordered items are walked by ascending key. Before each one, up to
// key-prev-1 legs are taken from the front of the departure-sorted queue,
// so legs fill the holes a contiguous renumbering left behind. Legs still
// queued after the last ordered item are appended.
func Interleave(ordered, legs []Item) []Item {
	acts := cloneItems(ordered)
	sort.SliceStable(acts, func(i, j int) bool { return acts[i].OrderKey < acts[j].OrderKey })
	queue := SortLegs(legs)

	out := make([]Item, 0, len(acts)+len(queue))
	prev := 0.0
	for _, a := range acts {
		slots := int(math.Floor(a.OrderKey - prev - 1))
		for ; slots > 0 && len(queue) > 0; slots-- {
			out = append(out, queue[0])
			queue = queue[1:]
		}
		out = append(out, a)
		prev = a.OrderKey
	}
	return append(out, queue...)
}

// SortLegs returns legs ordered by departure time, undated legs last. Ties
// keep their input order.
func SortLegs(legs []Item) []Item {
	out := cloneItems(legs)
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].Leg.Departure(), out[j].Leg.Departure()
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return di.Before(*dj)
		}
	})
	return out
}
