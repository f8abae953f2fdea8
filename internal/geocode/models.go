// Package geocode resolves picked coordinates to place names and manages
// the picked-location list used for map-style route input.
package geocode

import (
	"context"
	"errors"
)

// Sentinel errors for geocoding operations.
var (
	// ErrGeocoderUnavailable indicates the geocoding provider is down or
	// its circuit breaker is open.
	ErrGeocoderUnavailable = errors.New("geocoding provider unavailable")
	// ErrNoResult indicates no place name exists for the coordinates.
	ErrNoResult = errors.New("no place found at the given coordinates")
	// ErrInvalidCoordinates indicates coordinates out of range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrPickNotFound indicates no pick exists with the given identifier.
	ErrPickNotFound = errors.New("pick not found")
)

// Provider is a reverse-geocoding source.
type Provider interface {
	// Reverse resolves coordinates to a place name.
	Reverse(ctx context.Context, lat, lon float64) (string, error)
	// Name returns the provider identifier for logging.
	Name() string
}

// Pick is one picked location with a stable identifier, so removal stays
// correct among duplicate coordinates.
type Pick struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}
