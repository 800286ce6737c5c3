package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/oapi-codegen/runtime"
)

// heartbeatInterval keeps idle change streams open through proxies.
const heartbeatInterval = 15 * time.Second

// StreamEvents handles GET /trips/{tripId}/events.
// It streams the trip's day-change events as Server-Sent Events until the
// client goes away. ?day=N limits the stream to one day. Events carry no
// diff: the client re-fetches the day view on each one.
func (s *Server) StreamEvents(w http.ResponseWriter, r *http.Request) {
	tripID, ok := tripParam(w, r)
	if !ok {
		return
	}
	var day *int
	if err := runtime.BindQueryParameter("form", true, false, "day", r.URL.Query(), &day); err != nil {
		requestError(w, http.StatusBadRequest, "invalid query parameter day: "+err.Error())
		return
	}
	if s.events == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
			Error: ErrorDetail{Code: "events_disabled", Message: "change notifications are not configured"},
		})
		return
	}

	ctx := r.Context()
	events, stop, err := s.events.Subscribe(ctx, tripID)
	if err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	defer stop()

	rc := http.NewResponseController(w)
	// The server's write timeout would cut the stream.
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	if err := rc.Flush(); err != nil {
		s.logger.Warn("event stream cannot flush", "error", err)
		return
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
		case e, ok := <-events:
			if !ok {
				return
			}
			if day != nil && e.DayNumber != *day {
				continue
			}
			data, err := json.Marshal(e)
			if err != nil {
				s.logger.Error("event not encoded", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: day\ndata: %s\n\n", data)
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
