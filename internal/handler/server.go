// Package handler implements the HTTP handlers for the day planner API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, day.go, drop.go, ...) but share the same Server struct so
// they can access its dependencies. Routes are documented in spec/openapi.yaml.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/dayplanner/internal/domain"
	"github.com/pkordes/dayplanner/internal/notify"
	"github.com/pkordes/dayplanner/internal/schedule"
	"github.com/pkordes/dayplanner/internal/service"
)

// Planner defines the business operations the day handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the store or the service layer.
type Planner interface {
	Days(ctx context.Context, tripID uuid.UUID) ([]domain.DayRecord, error)
	View(ctx context.Context, tripID uuid.UUID, dayNumber int) (service.View, error)
	Drop(ctx context.Context, tripID uuid.UUID, dayNumber int, req service.DropRequest) (service.DropResult, error)
	CreateMarker(ctx context.Context, tripID uuid.UUID, dayNumber int, label, start string) (service.View, schedule.Item, error)
	UpdateMarker(ctx context.Context, tripID uuid.UUID, dayNumber int, id string, label, start *string) (service.View, schedule.Item, error)
	RenameGroup(ctx context.Context, tripID uuid.UUID, dayNumber, index int, label string) (service.View, error)
	DeleteGroup(ctx context.Context, tripID uuid.UUID, dayNumber, index int) (service.View, error)
}

// Server holds the dependencies of every endpoint.
type Server struct {
	planner Planner
	events  notify.Subscriber
	logger  *slog.Logger
}

// NewServer constructs the Server with all its dependencies. events may be
// nil, in which case the change stream answers 503.
func NewServer(planner Planner, events notify.Subscriber, logger *slog.Logger) *Server {
	return &Server{planner: planner, events: events, logger: logger}
}

// Routes returns the API router. Wire it in main.go under the global
// middleware stack.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/trips/{tripId}", func(r chi.Router) {
		r.Get("/days", s.ListDays)
		r.Get("/events", s.StreamEvents)

		r.Route("/days/{dayNumber}", func(r chi.Router) {
			r.Get("/", s.GetDay)
			r.Post("/drops", s.PostDrop)
			r.Post("/markers", s.CreateMarker)
			r.Patch("/markers/{markerId}", s.UpdateMarker)
			r.Post("/groups/{groupIndex}/rename", s.RenameGroup)
			r.Delete("/groups/{groupIndex}", s.DeleteGroup)
		})
	})
	return r
}
