// Package response provides helpers for writing facade responses.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/logihub/logihub/internal/facade/middleware"
	"github.com/logihub/logihub/internal/facade/models"
	"github.com/logihub/logihub/internal/planner"
)

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Error writes a Problem response with the request path as instance.
func Error(w http.ResponseWriter, r *http.Request, problem *models.Problem) {
	problem.Instance = r.URL.Path
	problem.Write(w)
}

// BadRequest writes a 400 validation problem.
func BadRequest(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, models.NewBadRequest(middleware.GetRequestID(r.Context()), detail))
}

// NotFound writes a 404 problem.
func NotFound(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, models.NewNotFound(middleware.GetRequestID(r.Context()), detail))
}

// UpstreamFailure writes a 502 problem.
func UpstreamFailure(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, models.NewUpstreamFailure(middleware.GetRequestID(r.Context()), detail))
}

// PlannerError maps a planning error to the right problem class:
// validation failures are the caller's fault, everything else is the
// backend's.
func PlannerError(w http.ResponseWriter, r *http.Request, err error) {
	var perr *planner.Error
	detail := err.Error()
	if errors.As(err, &perr) {
		detail = perr.Message
	}

	switch {
	case errors.Is(err, planner.ErrEmptyQuery),
		errors.Is(err, planner.ErrNotEnoughLocations),
		errors.Is(err, planner.ErrNoOptimizedRoute),
		errors.Is(err, planner.ErrNoRouteID):
		BadRequest(w, r, detail)
	default:
		UpstreamFailure(w, r, detail)
	}
}
