// Package planner drives the route-planning session: collect input, run the
// backend extraction/optimization pipeline, and hold the resulting view state.
package planner

import (
	"errors"
	"time"
)

// Sentinel errors for planning operations.
var (
	// ErrBackendUnavailable indicates the planning backend is unreachable.
	ErrBackendUnavailable = errors.New("planning backend unavailable")
	// ErrNotEnoughLocations indicates fewer than two stops were provided or extracted.
	ErrNotEnoughLocations = errors.New("at least two locations are required")
	// ErrEmptyQuery indicates the delivery request text was empty.
	ErrEmptyQuery = errors.New("delivery request text is empty")
	// ErrNoOptimizedRoute indicates an operation needs an optimized route that does not exist yet.
	ErrNoOptimizedRoute = errors.New("no optimized route available")
	// ErrNoRouteID indicates the optimized route carries no route identifier.
	ErrNoRouteID = errors.New("optimized route has no route identifier")
	// ErrSessionNotReady indicates the session identifier is not available yet.
	ErrSessionNotReady = errors.New("session is still initializing")
	// ErrExtractionFailed indicates the backend could not parse locations from the text.
	ErrExtractionFailed = errors.New("could not extract locations from request text")
)

// Stage is the view stage of the planning session.
type Stage string

const (
	// StageInput means the planner is awaiting user input.
	StageInput Stage = "input"
	// StageProcessing means a planning pipeline is in flight.
	StageProcessing Stage = "processing"
	// StageResults means an optimized route is available.
	StageResults Stage = "results"
)

// Location is a single delivery stop.
type Location struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`

	// VisitSequence is a 1-based ordering hint on input. Optimized
	// responses order the slice positionally instead.
	VisitSequence int `json:"visit_sequence,omitempty"`
}

// ExtractedRequest is the output of natural-language extraction.
type ExtractedRequest struct {
	ParsedLocations []Location `json:"parsed_locations"`
}

// OptimizedRoute is the optimizer's answer, normalized to full stop objects.
type OptimizedRoute struct {
	Stops            []Location    `json:"optimized_route"`
	TotalDistanceKm  float64       `json:"total_distance_km"`
	TotalDurationHrs float64       `json:"total_duration_hours"`
	RouteID          string        `json:"route_id,omitempty"`
	WeatherAlerts    []string      `json:"weather_alerts,omitempty"`
	TravelLog        []TravelEntry `json:"full_log,omitempty"`
	Manifest         *Manifest     `json:"manifest,omitempty"`
}

// TravelEntry is one leg or wait event from the optimizer's travel log.
type TravelEntry struct {
	Type        string  `json:"type"`
	City        string  `json:"city,omitempty"`
	From        string  `json:"from,omitempty"`
	To          string  `json:"to,omitempty"`
	DurationSec float64 `json:"duration_sec,omitempty"`
	Note        string  `json:"note,omitempty"`
}

// Manifest holds the delivery-manifest fields returned by the backend once a
// manifest is created for a route. They are merged into the in-memory
// optimized route, not re-fetched.
type Manifest struct {
	ManifestID string    `json:"manifest_id"`
	Driver     string    `json:"driver"`
	CreatedAt  time.Time `json:"created_at"`
}

// Snapshot is the persisted view of a planning session: what is needed to
// restore the results view after a restart without re-contacting the
// optimizer. It is written wholesale after every state-affecting action.
type Snapshot struct {
	Locations       []Location      `json:"locations"`
	OptimizedRoute  *OptimizedRoute `json:"optimizedRoute"`
	ManifestCreated bool            `json:"manifestCreated"`
	RouteSummary    string          `json:"routeSummary,omitempty"`
	Timestamp       time.Time       `json:"timestamp"`
}

// Error carries detailed failure information from the planning backend.
type Error struct {
	Endpoint string // endpoint that produced the error
	Code     string // short machine-readable code
	Message  string // human-readable message shown to the user
	Err      error  // underlying sentinel
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}
