package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/pkordes/dayplanner/internal/domain"
	"github.com/pkordes/dayplanner/internal/service"
)

// ErrorDetail is the machine code and human-readable message of a failure.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx response. View is set when a
// write failed after the new schedule was computed: it is the optimistic
// state the client keeps showing.
type ErrorResponse struct {
	Error ErrorDetail   `json:"error"`
	View  *service.View `json:"view,omitempty"`
}

// errorKinds maps sentinels to status and code. Order matters: a persistence
// failure may wrap a not-found from the store.
var errorKinds = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrPersistence, http.StatusBadGateway, "persistence_failed"},
	{domain.ErrValidation, http.StatusUnprocessableEntity, "validation_error"},
	{domain.ErrNotFound, http.StatusNotFound, "not_found"},
	{domain.ErrCrossDayTransport, http.StatusConflict, "cross_day_transport"},
	{domain.ErrInvalidDrop, http.StatusConflict, "invalid_drop"},
	{domain.ErrLastFreeGroup, http.StatusConflict, "last_free_group"},
	{domain.ErrDuplicateItem, http.StatusConflict, "duplicate_item"},
	{domain.ErrDragInProgress, http.StatusConflict, "drag_in_progress"},
	{domain.ErrNoDrag, http.StatusConflict, "no_drag"},
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status and an ErrorResponse. Unknown errors are
// logged and answered with a generic 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, view *service.View) {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			body := ErrorResponse{Error: ErrorDetail{Code: k.code, Message: unwrapMessage(err, k.err)}}
			if k.err == domain.ErrPersistence {
				body.View = view
			}
			writeJSON(w, k.status, body)
			return
		}
	}
	s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error: ErrorDetail{Code: "internal_error", Message: "internal server error"},
	})
}

// requestError answers a request rejected before it reached the planner
// (malformed body or parameter).
func requestError(w http.ResponseWriter, status int, message string) {
	code := "bad_request"
	if status == http.StatusUnprocessableEntity {
		code = "validation_error"
	}
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// unwrapMessage extracts the human-readable part after a wrapped sentinel.
// e.g. "service.Planner.Load: validation error: day number must be at least 1"
// → "day number must be at least 1". A bare sentinel yields its own text.
func unwrapMessage(err, sentinel error) string {
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	if strings.HasSuffix(msg, ": "+sentinel.Error()) || msg == sentinel.Error() {
		return sentinel.Error()
	}
	return msg
}

// decodeBody decodes a JSON request body into dst. It writes the error
// response itself and reports whether the handler should continue.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		requestError(w, http.StatusUnprocessableEntity, "request body is required")
		return false
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			requestError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		requestError(w, http.StatusBadRequest, "malformed JSON body: "+err.Error())
		return false
	}
	return true
}
