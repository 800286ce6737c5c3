package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pkordes/dayplanner/internal/domain"
	"github.com/pkordes/dayplanner/internal/notify"
	"github.com/pkordes/dayplanner/internal/repo"
	"github.com/pkordes/dayplanner/internal/schedule"
)

// DayWriter is the persistence adapter: it serializes a day's schedule into
// the full activities array and writes it to the day-record store, creating
// the day on first touch. Every successful write is announced on the
// publisher.
//
// A failed write is logged and returned wrapped in domain.ErrPersistence.
// The caller's in-memory day is never rolled back.
type DayWriter struct {
	days   repo.DayRepo
	pub    notify.Publisher
	logger *slog.Logger
	now    func() time.Time
}

// NewDayWriter constructs a DayWriter over the given store and publisher.
func NewDayWriter(days repo.DayRepo, pub notify.Publisher, logger *slog.Logger) *DayWriter {
	return &DayWriter{days: days, pub: pub, logger: logger, now: time.Now}
}

// Save rewrites the day's activities array and returns the stored record.
func (w *DayWriter) Save(ctx context.Context, day schedule.Day, reason string) (domain.DayRecord, error) {
	rec, err := w.write(ctx, day)
	if err != nil {
		w.logFailure(day.Record, err)
		return domain.DayRecord{}, fmt.Errorf("service.DayWriter.Save: %w: %w", domain.ErrPersistence, err)
	}
	w.publish(ctx, rec, reason)
	return rec, nil
}

// SaveMove writes both days of a cross-day move concurrently. The writes are
// independent: a failure on one side neither cancels nor rolls back the
// other, and the side that was stored is still announced. A failure on
// either side is reported as one error.
func (w *DayWriter) SaveMove(ctx context.Context, source, target schedule.Day) (domain.DayRecord, domain.DayRecord, error) {
	var src, dst domain.DayRecord

	var g errgroup.Group
	g.Go(func() error {
		rec, err := w.write(ctx, source)
		if err != nil {
			w.logFailure(source.Record, err)
			return err
		}
		src = rec
		w.publish(ctx, rec, notify.ReasonDrop)
		return nil
	})
	g.Go(func() error {
		rec, err := w.write(ctx, target)
		if err != nil {
			w.logFailure(target.Record, err)
			return err
		}
		dst = rec
		w.publish(ctx, rec, notify.ReasonMoveIn)
		return nil
	})
	if err := g.Wait(); err != nil {
		return src, dst, fmt.Errorf("service.DayWriter.SaveMove: %w: %w", domain.ErrPersistence, err)
	}
	return src, dst, nil
}

func (w *DayWriter) write(ctx context.Context, day schedule.Day) (domain.DayRecord, error) {
	rec := day.Record
	if rec.ID == uuid.Nil {
		created, err := w.days.Create(ctx, domain.DayRecord{
			TripID:                 rec.TripID,
			DayNumber:              rec.DayNumber,
			Date:                   rec.Date,
			LocationContext:        rec.LocationContext,
			AccommodationOptions:   rec.AccommodationOptions,
			TransportationSegments: rec.TransportationSegments,
		})
		if err != nil {
			return domain.DayRecord{}, err
		}
		rec = created
	}
	return w.days.Update(ctx, rec.ID, domain.ActivitiesPatch(day.Entries()))
}

func (w *DayWriter) logFailure(rec domain.DayRecord, err error) {
	w.logger.Error("day write failed",
		"trip_id", rec.TripID,
		"day_number", rec.DayNumber,
		"day_id", rec.ID,
		"error", err,
	)
}

// publish announces a write. A failed publish only costs other sessions a
// refresh, so it is logged and not returned.
func (w *DayWriter) publish(ctx context.Context, rec domain.DayRecord, reason string) {
	e := notify.Event{
		TripID:    rec.TripID,
		DayID:     rec.ID,
		DayNumber: rec.DayNumber,
		Reason:    reason,
		At:        w.now().UTC(),
	}
	if err := w.pub.Publish(ctx, e); err != nil {
		w.logger.Warn("day event not published", "trip_id", rec.TripID, "day_number", rec.DayNumber, "error", err)
	}
}
