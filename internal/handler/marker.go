package handler

import (
	"net/http"

	"github.com/pkordes/dayplanner/internal/schedule"
	"github.com/pkordes/dayplanner/internal/service"
)

// CreateMarkerRequest is the body of POST .../markers.
type CreateMarkerRequest struct {
	Label string `json:"label"`
	Time  string `json:"time,omitempty"`
}

// UpdateMarkerRequest is the body of PATCH .../markers/{markerId}. Absent
// fields are left unchanged; an empty time clears the marker's time.
type UpdateMarkerRequest struct {
	Label *string `json:"label,omitempty"`
	Time  *string `json:"time,omitempty"`
}

// RenameGroupRequest is the body of POST .../groups/{groupIndex}/rename.
type RenameGroupRequest struct {
	Label string `json:"label"`
}

// Marker is a time marker as returned by the marker endpoints.
type Marker struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Time  string `json:"time,omitempty"`
}

// MarkerResponse carries the touched marker and the day's new view.
type MarkerResponse struct {
	Marker Marker       `json:"marker"`
	View   service.View `json:"view"`
}

// CreateMarker handles POST /trips/{tripId}/days/{dayNumber}/markers.
func (s *Server) CreateMarker(w http.ResponseWriter, r *http.Request) {
	p, ok := bindDay(w, r)
	if !ok {
		return
	}
	var req CreateMarkerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	view, m, err := s.planner.CreateMarker(r.Context(), p.TripID, p.DayNumber, req.Label, req.Time)
	if err != nil {
		s.writeError(w, r, err, &view)
		return
	}
	writeJSON(w, http.StatusCreated, MarkerResponse{Marker: markerToResponse(m), View: view})
}

// UpdateMarker handles PATCH /trips/{tripId}/days/{dayNumber}/markers/{markerId}.
func (s *Server) UpdateMarker(w http.ResponseWriter, r *http.Request) {
	p, ok := bindDay(w, r)
	if !ok {
		return
	}
	var markerID string
	if err := bindPath(r, "markerId", &markerID); err != nil {
		requestError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req UpdateMarkerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Label == nil && req.Time == nil {
		requestError(w, http.StatusUnprocessableEntity, "label or time is required")
		return
	}

	view, m, err := s.planner.UpdateMarker(r.Context(), p.TripID, p.DayNumber, markerID, req.Label, req.Time)
	if err != nil {
		s.writeError(w, r, err, &view)
		return
	}
	writeJSON(w, http.StatusOK, MarkerResponse{Marker: markerToResponse(m), View: view})
}

// RenameGroup handles POST /trips/{tripId}/days/{dayNumber}/groups/{groupIndex}/rename.
func (s *Server) RenameGroup(w http.ResponseWriter, r *http.Request) {
	p, ok := bindDay(w, r)
	if !ok {
		return
	}
	index, ok := intParam(w, r, "groupIndex")
	if !ok {
		return
	}
	var req RenameGroupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	view, err := s.planner.RenameGroup(r.Context(), p.TripID, p.DayNumber, index, req.Label)
	if err != nil {
		s.writeError(w, r, err, &view)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// DeleteGroup handles DELETE /trips/{tripId}/days/{dayNumber}/groups/{groupIndex}.
func (s *Server) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	p, ok := bindDay(w, r)
	if !ok {
		return
	}
	index, ok := intParam(w, r, "groupIndex")
	if !ok {
		return
	}

	view, err := s.planner.DeleteGroup(r.Context(), p.TripID, p.DayNumber, index)
	if err != nil {
		s.writeError(w, r, err, &view)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func markerToResponse(m schedule.Item) Marker {
	return Marker{ID: m.ID, Label: m.Label, Time: m.Time}
}
