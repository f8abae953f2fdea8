package planner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
)

// mockBackend is a mock planning backend for testing.
type mockBackend struct {
	extracted *ExtractedRequest
	route     *OptimizedRoute
	manifest  *Manifest
	summary   string

	extractErr  error
	optimizeErr error
	manifestErr error
	summaryErr  error

	extractCalls  atomic.Int32
	optimizeCalls atomic.Int32
	manifestCalls atomic.Int32
	summaryCalls  atomic.Int32

	lastOptimized []Location
}

func (m *mockBackend) ExtractSequence(_ context.Context, _, _ string) (*ExtractedRequest, error) {
	m.extractCalls.Add(1)
	if m.extractErr != nil {
		return nil, m.extractErr
	}
	return m.extracted, nil
}

func (m *mockBackend) OptimizeRoute(_ context.Context, _ string, locations []Location) (*OptimizedRoute, error) {
	m.optimizeCalls.Add(1)
	m.lastOptimized = locations
	if m.optimizeErr != nil {
		return nil, m.optimizeErr
	}
	return m.route, nil
}

func (m *mockBackend) CreateManifest(_ context.Context, _, _, _ string) (*Manifest, error) {
	m.manifestCalls.Add(1)
	if m.manifestErr != nil {
		return nil, m.manifestErr
	}
	return m.manifest, nil
}

func (m *mockBackend) RouteSummary(_ context.Context, _ string, _ *OptimizedRoute, _ []Location) (string, error) {
	m.summaryCalls.Add(1)
	if m.summaryErr != nil {
		return "", m.summaryErr
	}
	return m.summary, nil
}

type mockIdentity struct {
	id  string
	err error
}

func (m *mockIdentity) ID(_ context.Context) (string, error) {
	return m.id, m.err
}

// mockSnapshots is an in-memory snapshot store.
type mockSnapshots struct {
	mu       sync.Mutex
	snapshot *Snapshot
	saves    int
	loadErr  error
}

func (m *mockSnapshots) Save(_ context.Context, snapshot Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = &snapshot
	m.saves++
	return nil
}

func (m *mockSnapshots) Load(_ context.Context) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.snapshot == nil {
		return nil, errors.New("no snapshot")
	}
	return m.snapshot, nil
}

func (m *mockSnapshots) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = nil
	return nil
}

func newTestService(backend *mockBackend, snapshots *mockSnapshots) *Service {
	return NewService(ServiceConfig{
		Backend:   backend,
		Identity:  &mockIdentity{id: "sid_test"},
		Snapshots: snapshots,
		Logger:    zerolog.Nop(),
	})
}

func testLocations() []Location {
	return []Location{
		{Name: "Mumbai", Lat: 19.076, Lon: 72.8777, VisitSequence: 1},
		{Name: "Pune", Lat: 18.5204, Lon: 73.8567, VisitSequence: 2},
		{Name: "Nashik", Lat: 19.9975, Lon: 73.7898, VisitSequence: 3},
	}
}

func TestService_PlanFromText_Success(t *testing.T) {
	locations := testLocations()
	backend := &mockBackend{
		extracted: &ExtractedRequest{ParsedLocations: locations},
		route: &OptimizedRoute{
			Stops:            []Location{locations[0], locations[2], locations[1]},
			TotalDistanceKm:  412.5,
			TotalDurationHrs: 7.2,
			RouteID:          "route_abc",
		},
		summary: "Start in Mumbai, head north to Nashik, finish in Pune.",
	}
	snapshots := &mockSnapshots{}
	service := newTestService(backend, snapshots)

	route, err := service.PlanFromText(context.Background(), "deliver to Mumbai, Pune and Nashik")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(route.Stops) != 3 {
		t.Fatalf("expected 3 stops, got %d", len(route.Stops))
	}
	if route.Stops[1].Name != "Nashik" {
		t.Errorf("expected optimizer order preserved, got %q second", route.Stops[1].Name)
	}

	service.Wait()
	v := service.View()
	if v.Stage != StageResults {
		t.Errorf("expected stage %q, got %q", StageResults, v.Stage)
	}
	if v.Summary != backend.summary {
		t.Errorf("expected summary applied after background fetch, got %q", v.Summary)
	}
	if snapshots.snapshot == nil {
		t.Fatal("expected snapshot persisted")
	}
	if snapshots.snapshot.OptimizedRoute == nil || snapshots.snapshot.OptimizedRoute.RouteID != "route_abc" {
		t.Error("expected snapshot to carry the optimized route")
	}
}

func TestService_PlanFromText_EmptyText(t *testing.T) {
	backend := &mockBackend{}
	service := newTestService(backend, &mockSnapshots{})

	_, err := service.PlanFromText(context.Background(), "   ")
	if !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("expected ErrEmptyQuery, got %v", err)
	}
	if backend.extractCalls.Load() != 0 {
		t.Error("expected no backend call for empty text")
	}
	if v := service.View(); v.ErrMsg == "" {
		t.Error("expected a displayed error message")
	}
}

func TestService_PlanFromText_SingleLocation(t *testing.T) {
	backend := &mockBackend{
		extracted: &ExtractedRequest{ParsedLocations: testLocations()[:1]},
	}
	service := newTestService(backend, &mockSnapshots{})

	_, err := service.PlanFromText(context.Background(), "deliver to Mumbai")
	if !errors.Is(err, ErrNotEnoughLocations) {
		t.Fatalf("expected ErrNotEnoughLocations, got %v", err)
	}
	if backend.optimizeCalls.Load() != 0 {
		t.Error("expected optimizer not called with a single location")
	}

	v := service.View()
	if v.Stage != StageInput {
		t.Errorf("expected stage reverted to %q, got %q", StageInput, v.Stage)
	}
}

func TestService_PlanFromText_BackendError(t *testing.T) {
	backend := &mockBackend{
		extractErr: &Error{Endpoint: "/extract-sequence", Code: "SERVER_ERROR", Message: "backend exploded"},
	}
	service := newTestService(backend, &mockSnapshots{})

	_, err := service.PlanFromText(context.Background(), "deliver to Mumbai and Pune")
	if err == nil {
		t.Fatal("expected an error")
	}

	v := service.View()
	if v.Stage != StageInput {
		t.Errorf("expected stage reverted to input, got %q", v.Stage)
	}
	if v.ErrMsg != "backend exploded" {
		t.Errorf("expected backend message surfaced, got %q", v.ErrMsg)
	}
	if backend.extractCalls.Load() != 1 {
		t.Errorf("expected exactly one extraction attempt, got %d", backend.extractCalls.Load())
	}
}

func TestService_PlanFromPicks_TooFew(t *testing.T) {
	backend := &mockBackend{}
	service := newTestService(backend, &mockSnapshots{})

	_, err := service.PlanFromPicks(context.Background(), testLocations()[:1])
	if !errors.Is(err, ErrNotEnoughLocations) {
		t.Fatalf("expected ErrNotEnoughLocations, got %v", err)
	}
	if backend.optimizeCalls.Load() != 0 {
		t.Error("expected no backend call")
	}
}

func TestService_PlanFromPicks_AssignsVisitSequence(t *testing.T) {
	picks := []Location{
		{Name: "Mumbai", Lat: 19.076, Lon: 72.8777},
		{Name: "Pune", Lat: 18.5204, Lon: 73.8567},
	}
	backend := &mockBackend{
		route: &OptimizedRoute{Stops: picks, RouteID: "route_x"},
	}
	service := newTestService(backend, &mockSnapshots{})

	if _, err := service.PlanFromPicks(context.Background(), picks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, loc := range backend.lastOptimized {
		if loc.VisitSequence != i+1 {
			t.Errorf("expected pick %d to get visit sequence %d, got %d", i, i+1, loc.VisitSequence)
		}
	}
	// Caller's slice must not be mutated.
	if picks[0].VisitSequence != 0 {
		t.Error("expected input picks left untouched")
	}
	service.Wait()
}

func TestService_CreateManifest_RequiresRoute(t *testing.T) {
	backend := &mockBackend{}
	service := newTestService(backend, &mockSnapshots{})

	_, err := service.CreateManifest(context.Background(), "Ramesh")
	if !errors.Is(err, ErrNoOptimizedRoute) {
		t.Fatalf("expected ErrNoOptimizedRoute, got %v", err)
	}
	if backend.manifestCalls.Load() != 0 {
		t.Error("expected no backend call without a route")
	}
}

func TestService_CreateManifest_Success(t *testing.T) {
	locations := testLocations()
	backend := &mockBackend{
		route:    &OptimizedRoute{Stops: locations, RouteID: "route_abc"},
		manifest: &Manifest{ManifestID: "mf_001", Driver: "Ramesh"},
	}
	snapshots := &mockSnapshots{}
	service := newTestService(backend, snapshots)

	if _, err := service.PlanFromPicks(context.Background(), locations); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	service.Wait()

	manifest, err := service.CreateManifest(context.Background(), "Ramesh")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if manifest.ManifestID != "mf_001" {
		t.Errorf("expected manifest mf_001, got %s", manifest.ManifestID)
	}

	v := service.View()
	if !v.ManifestCreated {
		t.Error("expected manifest flag set")
	}
	if v.Route.Manifest == nil || v.Route.Manifest.Driver != "Ramesh" {
		t.Error("expected manifest merged into the in-memory route")
	}
	if snapshots.snapshot == nil || !snapshots.snapshot.ManifestCreated {
		t.Error("expected manifest state persisted")
	}
}

func TestService_Summarize_NoRoute(t *testing.T) {
	backend := &mockBackend{}
	service := newTestService(backend, &mockSnapshots{})

	_, err := service.Summarize(context.Background())
	if !errors.Is(err, ErrNoOptimizedRoute) {
		t.Fatalf("expected ErrNoOptimizedRoute, got %v", err)
	}
	if backend.summaryCalls.Load() != 0 {
		t.Error("expected no backend call without a route")
	}
}

func TestService_Summarize_UsesRestoredSummary(t *testing.T) {
	locations := testLocations()
	snapshots := &mockSnapshots{
		snapshot: &Snapshot{
			Locations:      locations,
			OptimizedRoute: &OptimizedRoute{Stops: locations, RouteID: "route_abc"},
			RouteSummary:   "a fine route",
		},
	}
	backend := &mockBackend{}
	service := newTestService(backend, snapshots)
	service.Restore(context.Background())

	summary, err := service.Summarize(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary != "a fine route" {
		t.Errorf("expected the restored summary, got %q", summary)
	}
	if backend.summaryCalls.Load() != 0 {
		t.Error("expected the cached summary to avoid the network")
	}
}

func TestService_Summarize_FetchesWhenMissing(t *testing.T) {
	locations := testLocations()
	snapshots := &mockSnapshots{
		snapshot: &Snapshot{
			Locations:      locations,
			OptimizedRoute: &OptimizedRoute{Stops: locations, RouteID: "route_abc"},
		},
	}
	backend := &mockBackend{summary: "fetched on demand"}
	service := newTestService(backend, snapshots)
	service.Restore(context.Background())

	summary, err := service.Summarize(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary != "fetched on demand" {
		t.Errorf("expected the fetched summary, got %q", summary)
	}
	if backend.summaryCalls.Load() != 1 {
		t.Errorf("expected 1 summary call, got %d", backend.summaryCalls.Load())
	}
	if v := service.View(); v.Summary != "fetched on demand" {
		t.Errorf("expected the summary applied to the view, got %q", v.Summary)
	}
	if snapshots.snapshot.RouteSummary != "fetched on demand" {
		t.Error("expected the fetched summary persisted")
	}
}

// gatedBackend blocks the summary fetch until released, so a test can
// interleave other actions mid-call.
type gatedBackend struct {
	mockBackend
	entered chan struct{}
	release chan struct{}
}

func (g *gatedBackend) RouteSummary(ctx context.Context, sessionID string, route *OptimizedRoute, locations []Location) (string, error) {
	close(g.entered)
	<-g.release
	return g.mockBackend.RouteSummary(ctx, sessionID, route, locations)
}

func TestService_Summarize_ResetDuringFetchKeepsSnapshotCleared(t *testing.T) {
	locations := testLocations()
	snapshots := &mockSnapshots{
		snapshot: &Snapshot{
			Locations:      locations,
			OptimizedRoute: &OptimizedRoute{Stops: locations, RouteID: "route_abc"},
		},
	}
	backend := &gatedBackend{
		mockBackend: mockBackend{summary: "late summary"},
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	service := NewService(ServiceConfig{
		Backend:   backend,
		Identity:  &mockIdentity{id: "sid_test"},
		Snapshots: snapshots,
		Logger:    zerolog.Nop(),
	})
	service.Restore(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = service.Summarize(context.Background())
	}()

	<-backend.entered
	if err := service.Reset(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	close(backend.release)
	<-done

	if snapshots.snapshot != nil {
		t.Error("expected the cleared snapshot to stay cleared")
	}
	if v := service.View(); v.Summary != "" {
		t.Errorf("expected no summary after reset, got %q", v.Summary)
	}
}

func TestService_Restore(t *testing.T) {
	locations := testLocations()
	snapshots := &mockSnapshots{
		snapshot: &Snapshot{
			Locations:      locations,
			OptimizedRoute: &OptimizedRoute{Stops: locations, RouteID: "route_abc"},
			RouteSummary:   "a fine route",
		},
	}
	backend := &mockBackend{}
	service := newTestService(backend, snapshots)

	if !service.Restore(context.Background()) {
		t.Fatal("expected restore to succeed")
	}

	v := service.View()
	if v.Stage != StageResults {
		t.Errorf("expected stage %q after restore, got %q", StageResults, v.Stage)
	}
	if v.Summary != "a fine route" {
		t.Errorf("expected summary restored, got %q", v.Summary)
	}
	if backend.optimizeCalls.Load() != 0 || backend.summaryCalls.Load() != 0 {
		t.Error("expected restore to avoid the network entirely")
	}
}

func TestService_Restore_NoSnapshot(t *testing.T) {
	service := newTestService(&mockBackend{}, &mockSnapshots{})
	if service.Restore(context.Background()) {
		t.Fatal("expected restore to report nothing restored")
	}
	if v := service.View(); v.Stage != StageInput {
		t.Errorf("expected stage input, got %q", v.Stage)
	}
}

func TestService_Reset(t *testing.T) {
	locations := testLocations()
	backend := &mockBackend{
		route: &OptimizedRoute{Stops: locations, RouteID: "route_abc"},
	}
	snapshots := &mockSnapshots{}
	service := newTestService(backend, snapshots)

	if _, err := service.PlanFromPicks(context.Background(), locations); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	service.Wait()

	if err := service.Reset(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v := service.View()
	if v.Stage != StageInput || v.Route != nil || len(v.Locations) != 0 {
		t.Error("expected all state cleared")
	}
	if snapshots.snapshot != nil {
		t.Error("expected persisted snapshot deleted")
	}
}

func TestService_StaleSummaryDiscarded(t *testing.T) {
	locations := testLocations()
	backend := &mockBackend{
		route:   &OptimizedRoute{Stops: locations, RouteID: "route_1"},
		summary: "summary for the first route",
	}
	snapshots := &mockSnapshots{}
	service := newTestService(backend, snapshots)

	if _, err := service.PlanFromPicks(context.Background(), locations); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// A reset between completion and the summary landing bumps the
	// sequence, so the in-flight summary must not resurrect the view.
	if err := service.Reset(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	service.Wait()

	if v := service.View(); v.Summary != "" {
		t.Errorf("expected stale summary discarded, got %q", v.Summary)
	}
}

func TestService_SummaryFailureKeepsResults(t *testing.T) {
	locations := testLocations()
	backend := &mockBackend{
		route:      &OptimizedRoute{Stops: locations, RouteID: "route_1"},
		summaryErr: errors.New("summary backend down"),
	}
	service := newTestService(backend, &mockSnapshots{})

	if _, err := service.PlanFromPicks(context.Background(), locations); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	service.Wait()

	v := service.View()
	if v.Stage != StageResults {
		t.Errorf("expected results to stand despite summary failure, got stage %q", v.Stage)
	}
	if v.Summary != "" {
		t.Errorf("expected empty summary, got %q", v.Summary)
	}
	if v.ErrMsg != "" {
		t.Errorf("expected no displayed error, got %q", v.ErrMsg)
	}
}
