// Package models defines the request and error shapes of the local facade.
package models

import (
	"encoding/json"
	"net/http"
)

// Problem is an RFC7807 error response, written with
// Content-Type: application/problem+json.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	TraceID  string `json:"traceId"`
}

// Problem type URIs.
const (
	ProblemTypeValidation      = "https://logihub.dev/problems/validation-error"
	ProblemTypeNotFound        = "https://logihub.dev/problems/not-found"
	ProblemTypeTooManyRequests = "https://logihub.dev/problems/too-many-requests"
	ProblemTypeUpstream        = "https://logihub.dev/problems/upstream-failure"
	ProblemTypeInternal        = "https://logihub.dev/problems/internal-error"
)

// Write writes the Problem as JSON to the ResponseWriter.
func (p *Problem) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	if p.TraceID != "" {
		w.Header().Set("X-Request-Id", p.TraceID)
	}
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// NewBadRequest creates a 400 validation problem.
func NewBadRequest(traceID, detail string) *Problem {
	return &Problem{
		Type:    ProblemTypeValidation,
		Title:   "Validation error",
		Status:  http.StatusBadRequest,
		Detail:  detail,
		TraceID: traceID,
	}
}

// NewNotFound creates a 404 problem.
func NewNotFound(traceID, detail string) *Problem {
	return &Problem{
		Type:    ProblemTypeNotFound,
		Title:   "Not found",
		Status:  http.StatusNotFound,
		Detail:  detail,
		TraceID: traceID,
	}
}

// NewTooManyRequests creates a 429 problem.
func NewTooManyRequests(traceID, detail string) *Problem {
	return &Problem{
		Type:    ProblemTypeTooManyRequests,
		Title:   "Too many requests",
		Status:  http.StatusTooManyRequests,
		Detail:  detail,
		TraceID: traceID,
	}
}

// NewUpstreamFailure creates a 502 problem for backend failures.
func NewUpstreamFailure(traceID, detail string) *Problem {
	return &Problem{
		Type:    ProblemTypeUpstream,
		Title:   "Upstream failure",
		Status:  http.StatusBadGateway,
		Detail:  detail,
		TraceID: traceID,
	}
}

// NewInternalError creates a 500 problem.
func NewInternalError(traceID, detail string) *Problem {
	return &Problem{
		Type:    ProblemTypeInternal,
		Title:   "Internal error",
		Status:  http.StatusInternalServerError,
		Detail:  detail,
		TraceID: traceID,
	}
}
