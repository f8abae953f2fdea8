package planner

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Backend is the slice of the planning backend the orchestrator drives.
type Backend interface {
	ExtractSequence(ctx context.Context, sessionID, text string) (*ExtractedRequest, error)
	OptimizeRoute(ctx context.Context, sessionID string, locations []Location) (*OptimizedRoute, error)
	CreateManifest(ctx context.Context, sessionID, routeID, driver string) (*Manifest, error)
	RouteSummary(ctx context.Context, sessionID string, route *OptimizedRoute, locations []Location) (string, error)
}

// Identity provides the session identifier used to correlate backend calls.
type Identity interface {
	ID(ctx context.Context) (string, error)
}

// SnapshotStore persists the session snapshot between invocations.
type SnapshotStore interface {
	Save(ctx context.Context, snapshot Snapshot) error
	Load(ctx context.Context) (*Snapshot, error)
	Clear(ctx context.Context) error
}

// ServiceConfig holds configuration for the planning orchestrator.
type ServiceConfig struct {
	Backend   Backend
	Identity  Identity
	Snapshots SnapshotStore
	Logger    zerolog.Logger

	// SummaryTimeout bounds the background prose-summary fetch.
	SummaryTimeout time.Duration
}

// Service is the request orchestrator: it sequences input collection,
// extraction, optimization and summary, and owns the input → processing →
// results stage machine. Errors from any step set a displayed message and
// revert the stage to input; nothing is retried automatically.
type Service struct {
	backend        Backend
	identity       Identity
	snapshots      SnapshotStore
	logger         zerolog.Logger
	summaryTimeout time.Duration

	mu              sync.Mutex
	stage           Stage
	locations       []Location
	route           *OptimizedRoute
	summary         string
	manifestCreated bool
	errMsg          string

	// planSeq tags each planning request; completions carrying a stale
	// tag are discarded so only the most recent action's result applies.
	planSeq    uint64
	appliedSeq uint64

	background sync.WaitGroup
}

// NewService creates the planning orchestrator.
func NewService(cfg ServiceConfig) *Service {
	summaryTimeout := cfg.SummaryTimeout
	if summaryTimeout == 0 {
		summaryTimeout = 30 * time.Second
	}

	return &Service{
		backend:        cfg.Backend,
		identity:       cfg.Identity,
		snapshots:      cfg.Snapshots,
		logger:         cfg.Logger,
		summaryTimeout: summaryTimeout,
		stage:          StageInput,
	}
}

// View is an immutable copy of the orchestrator state for rendering.
type View struct {
	Stage           Stage
	Locations       []Location
	Route           *OptimizedRoute
	Summary         string
	ManifestCreated bool
	ErrMsg          string
}

// View returns the current view state.
func (s *Service) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Stage:           s.stage,
		Locations:       append([]Location(nil), s.locations...),
		Summary:         s.summary,
		ManifestCreated: s.manifestCreated,
		ErrMsg:          s.errMsg,
	}
	if s.route != nil {
		cpy := *s.route
		v.Route = &cpy
	}
	return v
}

// Restore rehydrates the last session snapshot, if any, without contacting
// the backend. Returns true when a snapshot was restored.
func (s *Service) Restore(ctx context.Context) bool {
	snapshot, err := s.snapshots.Load(ctx)
	if err != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations = snapshot.Locations
	s.route = snapshot.OptimizedRoute
	s.summary = snapshot.RouteSummary
	s.manifestCreated = snapshot.ManifestCreated
	s.errMsg = ""
	if s.route != nil {
		s.stage = StageResults
	}
	return s.route != nil
}

// PlanFromText runs the full pipeline for a natural-language request:
// extraction, then optimization with exactly the extracted locations in
// their returned order. Fewer than two extracted locations aborts the
// pipeline with a validation error before the optimizer is called.
func (s *Service) PlanFromText(ctx context.Context, text string) (*OptimizedRoute, error) {
	if strings.TrimSpace(text) == "" {
		return nil, s.fail(ErrEmptyQuery, "please enter a delivery request")
	}

	sessionID, err := s.identity.ID(ctx)
	if err != nil {
		return nil, s.fail(ErrSessionNotReady, "session is initializing, try again in a moment")
	}

	seq := s.begin()

	extracted, err := s.backend.ExtractSequence(ctx, sessionID, text)
	if err != nil {
		return nil, s.failWith(err)
	}
	if len(extracted.ParsedLocations) < 2 {
		return nil, s.fail(ErrNotEnoughLocations,
			"found only one location; a route needs a start and at least one stop")
	}

	route, err := s.backend.OptimizeRoute(ctx, sessionID, extracted.ParsedLocations)
	if err != nil {
		return nil, s.failWith(err)
	}

	s.complete(ctx, seq, sessionID, extracted.ParsedLocations, route)
	return route, nil
}

// PlanFromPicks optimizes a route over pre-geocoded picked locations,
// bypassing extraction. Picks missing an ordering hint get a 1-based visit
// sequence assigned positionally.
func (s *Service) PlanFromPicks(ctx context.Context, picks []Location) (*OptimizedRoute, error) {
	if len(picks) < 2 {
		return nil, s.fail(ErrNotEnoughLocations, "pick at least two locations")
	}

	sessionID, err := s.identity.ID(ctx)
	if err != nil {
		return nil, s.fail(ErrSessionNotReady, "session is initializing, try again in a moment")
	}

	locations := make([]Location, len(picks))
	copy(locations, picks)
	for i := range locations {
		if locations[i].VisitSequence == 0 {
			locations[i].VisitSequence = i + 1
		}
	}

	seq := s.begin()

	route, err := s.backend.OptimizeRoute(ctx, sessionID, locations)
	if err != nil {
		return nil, s.failWith(err)
	}

	s.complete(ctx, seq, sessionID, locations, route)
	return route, nil
}

// CreateManifest creates a delivery manifest for the current optimized
// route and merges the returned fields into the in-memory route. Requires a
// prior optimized result carrying a route identifier; performs no network
// call otherwise.
func (s *Service) CreateManifest(ctx context.Context, driver string) (*Manifest, error) {
	s.mu.Lock()
	route := s.route
	s.mu.Unlock()

	if route == nil {
		return nil, s.fail(ErrNoOptimizedRoute, "optimize a route before creating a manifest")
	}
	if route.RouteID == "" {
		return nil, s.fail(ErrNoRouteID, "this route has no identifier; re-run optimization first")
	}

	sessionID, err := s.identity.ID(ctx)
	if err != nil {
		return nil, s.fail(ErrSessionNotReady, "session is initializing, try again in a moment")
	}

	manifest, err := s.backend.CreateManifest(ctx, sessionID, route.RouteID, driver)
	if err != nil {
		return nil, s.failWith(err)
	}

	s.mu.Lock()
	if s.route != nil {
		s.route.Manifest = manifest
	}
	s.manifestCreated = true
	s.errMsg = ""
	s.mu.Unlock()

	s.persist(ctx)
	return manifest, nil
}

// Summarize returns the prose route summary for the current results,
// fetching it synchronously when the background fetch has not landed yet.
func (s *Service) Summarize(ctx context.Context) (string, error) {
	s.mu.Lock()
	route := s.route
	locations := append([]Location(nil), s.locations...)
	summary := s.summary
	seq := s.appliedSeq
	s.mu.Unlock()

	if route == nil {
		return "", ErrNoOptimizedRoute
	}
	if summary != "" {
		return summary, nil
	}

	sessionID, err := s.identity.ID(ctx)
	if err != nil {
		return "", ErrSessionNotReady
	}

	fetched, err := s.backend.RouteSummary(ctx, sessionID, route, locations)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	applied := seq == s.appliedSeq
	if applied {
		s.summary = fetched
	}
	s.mu.Unlock()

	if applied {
		s.persist(ctx)
	}
	return fetched, nil
}

// Reset clears all in-memory state and deletes the persisted snapshot,
// returning the stage machine to input.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.stage = StageInput
	s.locations = nil
	s.route = nil
	s.summary = ""
	s.manifestCreated = false
	s.errMsg = ""
	s.planSeq++
	s.appliedSeq = s.planSeq
	s.mu.Unlock()

	return s.snapshots.Clear(ctx)
}

// Wait blocks until background work (the summary fetch) has finished.
func (s *Service) Wait() {
	s.background.Wait()
}

// begin moves the stage machine to processing and issues a sequence tag for
// this planning request.
func (s *Service) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stage = StageProcessing
	s.errMsg = ""
	s.planSeq++
	return s.planSeq
}

// complete applies a successful optimization, unless a newer request has
// started or finished since this one began.
func (s *Service) complete(ctx context.Context, seq uint64, sessionID string, locations []Location, route *OptimizedRoute) {
	s.mu.Lock()
	if seq < s.planSeq || seq <= s.appliedSeq {
		s.mu.Unlock()
		s.logger.Debug().Uint64("seq", seq).Msg("discarding stale optimization result")
		return
	}
	s.appliedSeq = seq
	s.stage = StageResults
	s.locations = locations
	s.route = route
	s.summary = ""
	s.manifestCreated = false
	s.errMsg = ""
	s.mu.Unlock()

	s.persist(ctx)

	s.background.Add(1)
	go s.fetchSummary(seq, sessionID, route, locations)
}

// fetchSummary retrieves the prose route summary without blocking the
// numeric results. A failed fetch only logs; the results view stands.
func (s *Service) fetchSummary(seq uint64, sessionID string, route *OptimizedRoute, locations []Location) {
	defer s.background.Done()

	ctx, cancel := context.WithTimeout(context.Background(), s.summaryTimeout)
	defer cancel()

	summary, err := s.backend.RouteSummary(ctx, sessionID, route, locations)
	if err != nil {
		s.logger.Warn().Err(err).Msg("route summary fetch failed")
		return
	}

	s.mu.Lock()
	if seq != s.appliedSeq {
		s.mu.Unlock()
		return
	}
	s.summary = summary
	s.mu.Unlock()

	s.persist(ctx)
}

// persist snapshots the current state. Runs after every state-affecting
// action so a restart restores the last view.
func (s *Service) persist(ctx context.Context) {
	s.mu.Lock()
	snapshot := Snapshot{
		Locations:       append([]Location(nil), s.locations...),
		OptimizedRoute:  s.route,
		ManifestCreated: s.manifestCreated,
		RouteSummary:    s.summary,
		Timestamp:       time.Now().UTC(),
	}
	s.mu.Unlock()

	if err := s.snapshots.Save(ctx, snapshot); err != nil {
		s.logger.Warn().Err(err).Msg("persisting session snapshot failed")
	}
}

// fail records a validation failure raised before any network call.
func (s *Service) fail(err error, msg string) error {
	s.mu.Lock()
	s.stage = StageInput
	s.errMsg = msg
	s.mu.Unlock()
	return &Error{Code: "VALIDATION", Message: msg, Err: err}
}

// failWith records a backend failure, preferring its message when present.
func (s *Service) failWith(err error) error {
	msg := "something went wrong talking to the planning backend"
	var perr *Error
	if errors.As(err, &perr) && perr.Message != "" {
		msg = perr.Message
	}

	s.mu.Lock()
	s.stage = StageInput
	s.errMsg = msg
	s.mu.Unlock()
	return err
}
