package handler

import (
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/dayplanner/internal/domain"
)

// DayPill is one entry of the day switcher.
type DayPill struct {
	ID              openapi_types.UUID  `json:"id"`
	DayNumber       int                 `json:"dayNumber"`
	Date            *openapi_types.Date `json:"date,omitempty"`
	LocationContext string              `json:"locationContext,omitempty"`
}

// ListDays handles GET /trips/{tripId}/days.
func (s *Server) ListDays(w http.ResponseWriter, r *http.Request) {
	tripID, ok := tripParam(w, r)
	if !ok {
		return
	}
	days, err := s.planner.Days(r.Context(), tripID)
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}

	out := make([]DayPill, 0, len(days))
	for _, d := range days {
		out = append(out, dayToPill(d))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetDay handles GET /trips/{tripId}/days/{dayNumber}.
// A day that was never written answers 200 with an empty view.
func (s *Server) GetDay(w http.ResponseWriter, r *http.Request) {
	p, ok := bindDay(w, r)
	if !ok {
		return
	}
	view, err := s.planner.View(r.Context(), p.TripID, p.DayNumber)
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// dayToPill maps a stored day onto its pill. Dates the store holds in any
// other shape than "2006-01-02" are left out.
func dayToPill(d domain.DayRecord) DayPill {
	pill := DayPill{ID: d.ID, DayNumber: d.DayNumber, LocationContext: d.LocationContext}
	if t, err := time.Parse("2006-01-02", d.Date); err == nil {
		pill.Date = &openapi_types.Date{Time: t}
	}
	return pill
}
