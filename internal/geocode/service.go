package geocode

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ServiceConfig holds configuration for the geocoding service.
type ServiceConfig struct {
	// Provider is the reverse-geocoding source.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheGridSize is the coordinate rounding granularity in degrees
	// (default: 0.005, ~550m). Picks within the same cell share the
	// cached name; repeated picks cluster tightly in practice.
	CacheGridSize float64
}

// Service resolves picks through the provider with a grid cache and keeps
// the ordered pick list. Each pick gets a stable identifier; removal is by
// identifier, never by position.
type Service struct {
	provider      Provider
	logger        zerolog.Logger
	cacheGridSize float64

	mu    sync.Mutex
	cache map[string]string
	picks []Pick
}

// NewService creates a new geocoding service.
func NewService(cfg ServiceConfig) *Service {
	cacheGridSize := cfg.CacheGridSize
	if cacheGridSize == 0 {
		cacheGridSize = 0.005
	}

	return &Service{
		provider:      cfg.Provider,
		logger:        cfg.Logger,
		cacheGridSize: cacheGridSize,
		cache:         make(map[string]string),
	}
}

// Add reverse-geocodes the coordinates and appends one pick to the list.
func (s *Service) Add(ctx context.Context, lat, lon float64) (*Pick, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, ErrInvalidCoordinates
	}

	name, err := s.resolve(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	pick := Pick{
		ID:   "pick_" + uuid.New().String()[:8],
		Name: name,
		Lat:  lat,
		Lon:  lon,
	}

	s.mu.Lock()
	s.picks = append(s.picks, pick)
	s.mu.Unlock()

	s.logger.Debug().
		Str("pick_id", pick.ID).
		Str("name", name).
		Msg("added picked location")

	return &pick, nil
}

// Remove deletes exactly the pick with the given identifier.
func (s *Service) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.picks {
		if p.ID == id {
			s.picks = append(s.picks[:i], s.picks[i+1:]...)
			return nil
		}
	}
	return ErrPickNotFound
}

// Picks returns a copy of the current pick list in insertion order.
func (s *Service) Picks() []Pick {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Pick(nil), s.picks...)
}

// Clear empties the pick list.
func (s *Service) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.picks = nil
}

// resolve looks up the place name, consulting the grid cache first.
func (s *Service) resolve(ctx context.Context, lat, lon float64) (string, error) {
	key := s.cacheKey(lat, lon)

	s.mu.Lock()
	if name, ok := s.cache[key]; ok {
		s.mu.Unlock()
		s.logger.Debug().Str("cache_key", key).Msg("cache hit for reverse geocode")
		return name, nil
	}
	s.mu.Unlock()

	name, err := s.provider.Reverse(ctx, lat, lon)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.cache[key] = name
	s.mu.Unlock()
	return name, nil
}

func (s *Service) cacheKey(lat, lon float64) string {
	gridLat := int(lat / s.cacheGridSize)
	gridLon := int(lon / s.cacheGridSize)
	return fmt.Sprintf("%d:%d", gridLat, gridLon)
}
