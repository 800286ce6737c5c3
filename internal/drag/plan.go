package drag

import (
	"fmt"

	"github.com/pkordes/dayplanner/internal/domain"
	"github.com/pkordes/dayplanner/internal/schedule"
)

// Outcome names what a resolved drop does.
type Outcome string

const (
	OutcomeMoveDay         Outcome = "move_day"
	OutcomeUnschedule      Outcome = "unschedule"
	OutcomeReposition      Outcome = "reposition"
	OutcomePromote         Outcome = "promote"
	OutcomeInsertIntoGroup Outcome = "insert_into_group"
	OutcomeReorder         Outcome = "reorder"
)

// CrossDayMove is the second half of a move to another day: Item must be
// appended to day TargetDay as a potential activity.
type CrossDayMove struct {
	TargetDay int
	Item      schedule.Item
}

// Plan is the result of applying a drop to a day. Day is the new state of
// the source day; Move is set only for cross-day moves.
type Plan struct {
	Outcome Outcome
	Day     schedule.Day
	Move    *CrossDayMove
}

// Apply turns a drop of s onto t into a new schedule for day, whose day
// number is dayNumber. Rejected drops return an error wrapping
// domain.ErrInvalidDrop (or domain.ErrCrossDayTransport) and leave day as
// it was.
func Apply(day schedule.Day, dayNumber int, s Session, t Target) (Plan, error) {
	if err := s.Validate(); err != nil {
		return Plan{Day: day}, err
	}

	var (
		out     schedule.Day
		outcome Outcome
		err     error
	)
	switch t.Kind {
	case TargetDayPill:
		if t.DayNumber == dayNumber {
			return Plan{Day: day}, fmt.Errorf("%w: item is already on day %d", domain.ErrInvalidDrop, dayNumber)
		}
		next, it, err := day.Remove(s.ItemID)
		if err != nil {
			return Plan{Day: day}, err
		}
		return Plan{
			Outcome: OutcomeMoveDay,
			Day:     next,
			Move:    &CrossDayMove{TargetDay: t.DayNumber, Item: it},
		}, nil

	case TargetGap:
		if s.Source == SourcePotential {
			outcome = OutcomePromote
			out, err = day.Promote(s.ItemID, t.Index)
		} else {
			outcome = OutcomeReposition
			out, err = day.Reposition(s.ItemID, t.Index)
		}

	case TargetScheduleZone:
		if s.Source != SourcePotential {
			return Plan{Day: day}, fmt.Errorf("%w: already scheduled", domain.ErrInvalidDrop)
		}
		outcome = OutcomePromote
		out, err = day.AppendScheduled(s.ItemID)

	case TargetGroupFrame:
		outcome = OutcomeInsertIntoGroup
		out, err = day.InsertIntoGroup(s.ItemID, t.Index)

	case TargetPotentialZone:
		if s.Source != SourceScheduled {
			return Plan{Day: day}, fmt.Errorf("%w: already potential", domain.ErrInvalidDrop)
		}
		outcome = OutcomeUnschedule
		out, err = day.Unschedule(s.ItemID)

	case TargetItem:
		switch {
		case t.List == SourceScheduled && s.Source == SourceScheduled:
			outcome = OutcomeReorder
			out, err = day.Reorder(s.ItemID, t.Index)
		case t.List == SourceScheduled:
			outcome = OutcomePromote
			out, err = day.PromoteAt(s.ItemID, t.Index)
		case s.Source == SourceScheduled:
			outcome = OutcomeUnschedule
			out, err = day.Unschedule(s.ItemID)
		default:
			return Plan{Day: day}, fmt.Errorf("%w: potential list is not reordered by drag", domain.ErrInvalidDrop)
		}

	default:
		return Plan{Day: day}, fmt.Errorf("%w: unknown target %q", domain.ErrInvalidDrop, t.Kind)
	}

	if err != nil {
		return Plan{Day: day}, err
	}
	return Plan{Outcome: outcome, Day: out}, nil
}
