// Package service contains the business logic for the day planner API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pkordes/dayplanner/internal/domain"
	"github.com/pkordes/dayplanner/internal/drag"
	"github.com/pkordes/dayplanner/internal/notify"
	"github.com/pkordes/dayplanner/internal/repo"
	"github.com/pkordes/dayplanner/internal/schedule"
)

// Planner loads day schedules, applies drops and marker edits to them, and
// hands the result to the DayWriter.
//
// Every mutating call computes the new schedule first and returns its view
// even when the write fails: the error then wraps domain.ErrPersistence and
// the view is the optimistic state the caller already shows.
type Planner struct {
	days     repo.DayRepo
	catalog  repo.CatalogRepo
	writer   *DayWriter
	resolver drag.Resolver
	logger   *slog.Logger
}

// NewPlanner constructs a Planner. Drops are resolved with the default snap
// radius unless WithSnapRadius is applied.
func NewPlanner(days repo.DayRepo, catalog repo.CatalogRepo, writer *DayWriter, logger *slog.Logger) *Planner {
	return &Planner{
		days:     days,
		catalog:  catalog,
		writer:   writer,
		resolver: drag.Resolver{SnapRadius: drag.DefaultSnapRadius},
		logger:   logger,
	}
}

// WithSnapRadius overrides the nearest-target radius used by Drop. A
// negative radius disables the limit.
func (p *Planner) WithSnapRadius(r float64) *Planner {
	p.resolver.SnapRadius = r
	return p
}

// DropRequest is one completed drag gesture. Either Target is set (the client
// already resolved the drop) or Pointer and Candidates are set and the
// planner resolves it.
type DropRequest struct {
	Session    drag.Session  `json:"session"`
	Pointer    *drag.Point   `json:"pointer,omitempty"`
	Candidates []drag.Target `json:"candidates,omitempty"`
	Target     *drag.Target  `json:"target,omitempty"`
}

// DropResult is the outcome of a drop on the source day.
type DropResult struct {
	Outcome drag.Outcome `json:"outcome"`
	View    View         `json:"view"`
	// MovedTo is the day the item was moved to, for cross-day moves.
	MovedTo int `json:"movedTo,omitempty"`
}

// Days returns the trip's stored days ordered by day number.
func (p *Planner) Days(ctx context.Context, tripID uuid.UUID) ([]domain.DayRecord, error) {
	if tripID == uuid.Nil {
		return nil, fmt.Errorf("%w: trip id is required", domain.ErrValidation)
	}
	days, err := p.days.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.Planner.Days: %w", err)
	}
	return days, nil
}

// Load materializes a day's schedule. A day that has never been written is
// returned empty with a nil ID; nothing is created until the first write.
func (p *Planner) Load(ctx context.Context, tripID uuid.UUID, dayNumber int) (schedule.Day, error) {
	if tripID == uuid.Nil {
		return schedule.Day{}, fmt.Errorf("%w: trip id is required", domain.ErrValidation)
	}
	if dayNumber < 1 {
		return schedule.Day{}, fmt.Errorf("%w: day number must be at least 1", domain.ErrValidation)
	}

	var (
		rec        domain.DayRecord
		pois       []domain.POI
		transports []domain.Transportation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rec, err = p.days.GetByTripAndNumber(gctx, tripID, dayNumber)
		if errors.Is(err, domain.ErrNotFound) {
			rec = domain.DayRecord{TripID: tripID, DayNumber: dayNumber}
			return nil
		}
		return err
	})
	g.Go(func() error {
		var err error
		pois, err = p.catalog.ListPOIs(gctx, tripID)
		return err
	})
	g.Go(func() error {
		var err error
		transports, err = p.catalog.ListTransportations(gctx, tripID)
		return err
	})
	if err := g.Wait(); err != nil {
		return schedule.Day{}, fmt.Errorf("service.Planner.Load: %w", err)
	}

	return schedule.Materialize(rec, schedule.NewCatalog(pois, transports)), nil
}

// View returns the derived display state of a day.
func (p *Planner) View(ctx context.Context, tripID uuid.UUID, dayNumber int) (View, error) {
	day, err := p.Load(ctx, tripID, dayNumber)
	if err != nil {
		return View{}, err
	}
	return NewView(day), nil
}

// Drop applies one drag gesture to a day. A gesture that resolves to nothing,
// or to an operation the item does not support, changes nothing and writes
// nothing.
func (p *Planner) Drop(ctx context.Context, tripID uuid.UUID, dayNumber int, req DropRequest) (DropResult, error) {
	day, err := p.Load(ctx, tripID, dayNumber)
	if err != nil {
		return DropResult{}, err
	}

	target, err := p.resolve(req)
	if err != nil {
		p.rejected(tripID, dayNumber, req.Session, err)
		return DropResult{View: NewView(day)}, err
	}

	plan, err := drag.Apply(day, dayNumber, req.Session, target)
	if err != nil {
		p.rejected(tripID, dayNumber, req.Session, err)
		return DropResult{View: NewView(day)}, err
	}

	if plan.Move != nil {
		return p.move(ctx, tripID, plan)
	}

	res := DropResult{Outcome: plan.Outcome, View: NewView(plan.Day)}
	rec, err := p.writer.Save(ctx, plan.Day, notify.ReasonDrop)
	if err != nil {
		return res, err
	}
	plan.Day.Record = rec
	res.View = NewView(plan.Day)
	return res, nil
}

// move completes a cross-day drop: the item leaves the source day and joins
// the target day's potential list. Both days are written together.
func (p *Planner) move(ctx context.Context, tripID uuid.UUID, plan drag.Plan) (DropResult, error) {
	dst, err := p.Load(ctx, tripID, plan.Move.TargetDay)
	if err != nil {
		return DropResult{}, err
	}
	dst, err = dst.AppendPotential(plan.Move.Item)
	if err != nil {
		p.rejected(tripID, plan.Day.Record.DayNumber, drag.Session{ItemID: plan.Move.Item.ID}, err)
		return DropResult{}, err
	}

	res := DropResult{Outcome: plan.Outcome, View: NewView(plan.Day), MovedTo: plan.Move.TargetDay}
	src, _, err := p.writer.SaveMove(ctx, plan.Day, dst)
	if err != nil {
		return res, err
	}
	plan.Day.Record = src
	res.View = NewView(plan.Day)
	return res, nil
}

func (p *Planner) resolve(req DropRequest) (drag.Target, error) {
	if req.Target != nil {
		if err := req.Session.Validate(); err != nil {
			return drag.Target{}, err
		}
		return *req.Target, nil
	}
	if req.Pointer == nil {
		return drag.Target{}, fmt.Errorf("%w: drop needs a target or a pointer", domain.ErrValidation)
	}

	c := drag.Controller{Resolver: p.resolver}
	if err := c.Start(req.Session); err != nil {
		return drag.Target{}, err
	}
	_, t, err := c.Drop(*req.Pointer, req.Candidates)
	return t, err
}

func (p *Planner) rejected(tripID uuid.UUID, dayNumber int, s drag.Session, err error) {
	p.logger.Info("drop rejected",
		"trip_id", tripID,
		"day_number", dayNumber,
		"item_id", s.ItemID,
		"source", s.Source,
		"reason", err.Error(),
	)
}

// CreateMarker appends a new time marker to the end of the day.
func (p *Planner) CreateMarker(ctx context.Context, tripID uuid.UUID, dayNumber int, label, start string) (View, schedule.Item, error) {
	day, err := p.Load(ctx, tripID, dayNumber)
	if err != nil {
		return View{}, schedule.Item{}, err
	}
	next, it, err := day.CreateMarker(label, start)
	if err != nil {
		return NewView(day), schedule.Item{}, err
	}
	v, err := p.save(ctx, next, notify.ReasonMarker)
	return v, it, err
}

// UpdateMarker changes a marker's label and/or start time. Nil arguments are
// left untouched; an empty start clears the time.
func (p *Planner) UpdateMarker(ctx context.Context, tripID uuid.UUID, dayNumber int, id string, label, start *string) (View, schedule.Item, error) {
	day, err := p.Load(ctx, tripID, dayNumber)
	if err != nil {
		return View{}, schedule.Item{}, err
	}
	next, it, err := day.UpdateMarker(id, label, start)
	if err != nil {
		return NewView(day), schedule.Item{}, err
	}
	v, err := p.save(ctx, next, notify.ReasonMarker)
	return v, it, err
}

// RenameGroup sets the label of a group, turning an unlabeled group into a
// marker-headed one.
func (p *Planner) RenameGroup(ctx context.Context, tripID uuid.UUID, dayNumber, index int, label string) (View, error) {
	day, err := p.Load(ctx, tripID, dayNumber)
	if err != nil {
		return View{}, err
	}
	next, _, err := day.RenameGroup(index, label)
	if err != nil {
		return NewView(day), err
	}
	return p.save(ctx, next, notify.ReasonGroup)
}

// DeleteGroup removes a group's boundary and folds its items into the
// neighbouring group.
func (p *Planner) DeleteGroup(ctx context.Context, tripID uuid.UUID, dayNumber, index int) (View, error) {
	day, err := p.Load(ctx, tripID, dayNumber)
	if err != nil {
		return View{}, err
	}
	next, err := day.DeleteGroup(index)
	if err != nil {
		return NewView(day), err
	}
	return p.save(ctx, next, notify.ReasonGroup)
}

func (p *Planner) save(ctx context.Context, day schedule.Day, reason string) (View, error) {
	rec, err := p.writer.Save(ctx, day, reason)
	if err != nil {
		return NewView(day), err
	}
	day.Record = rec
	return NewView(day), nil
}
