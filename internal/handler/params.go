package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// dayParams are the path parameters shared by every /days/{dayNumber} route.
type dayParams struct {
	TripID    openapi_types.UUID
	DayNumber int
}

// bindPath binds one simple-style path parameter into dest.
func bindPath(r *http.Request, name string, dest any) error {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{
			ParamLocation: runtime.ParamLocationPath,
			Explode:       false,
			Required:      true,
		})
	if err != nil {
		return fmt.Errorf("invalid path parameter %s: %w", name, err)
	}
	return nil
}

// tripParam binds {tripId}, answering 400 itself on failure.
func tripParam(w http.ResponseWriter, r *http.Request) (openapi_types.UUID, bool) {
	var id openapi_types.UUID
	if err := bindPath(r, "tripId", &id); err != nil {
		requestError(w, http.StatusBadRequest, err.Error())
		return id, false
	}
	return id, true
}

// bindDay binds {tripId} and {dayNumber}, answering 400 itself on failure.
func bindDay(w http.ResponseWriter, r *http.Request) (dayParams, bool) {
	var p dayParams
	var ok bool
	if p.TripID, ok = tripParam(w, r); !ok {
		return p, false
	}
	if err := bindPath(r, "dayNumber", &p.DayNumber); err != nil {
		requestError(w, http.StatusBadRequest, err.Error())
		return p, false
	}
	return p, true
}

// intParam binds an integer path parameter such as {groupIndex}.
func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	var n int
	if err := bindPath(r, name, &n); err != nil {
		requestError(w, http.StatusBadRequest, err.Error())
		return 0, false
	}
	return n, true
}
