package handler

import (
	"net/http"

	"github.com/pkordes/dayplanner/internal/service"
)

// PostDrop handles POST /trips/{tripId}/days/{dayNumber}/drops.
// The body is a service.DropRequest. A drop that resolves to nothing answers
// 409 with code invalid_drop and changes nothing.
func (s *Server) PostDrop(w http.ResponseWriter, r *http.Request) {
	p, ok := bindDay(w, r)
	if !ok {
		return
	}
	var req service.DropRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := s.planner.Drop(r.Context(), p.TripID, p.DayNumber, req)
	if err != nil {
		s.writeError(w, r, err, &res.View)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
