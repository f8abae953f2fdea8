package logistics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/logihub/logihub/internal/planner"
)

func testClient(server *httptest.Server) *Client {
	return NewClient(ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Logger:     zerolog.Nop(),
	})
}

func TestClient_ExtractSequence_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/extract-sequence" {
			t.Errorf("expected path /extract-sequence, got %s", r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected Content-Type application/json, got %s", r.Header.Get("Content-Type"))
		}

		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req["request_text"] != "deliver to Mumbai then Pune" {
			t.Errorf("unexpected request_text: %v", req["request_text"])
		}
		if req["session_id"] != "sid_test" {
			t.Errorf("unexpected session_id: %v", req["session_id"])
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"parsed_locations":[
			{"name":"Mumbai","lat":19.076,"lon":72.8777,"visit_sequence":1},
			{"name":"Pune","lat":18.5204,"lon":73.8567,"visit_sequence":2}
		]}`))
	}))
	defer server.Close()

	client := testClient(server)

	extracted, err := client.ExtractSequence(context.Background(), "sid_test", "deliver to Mumbai then Pune")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(extracted.ParsedLocations) != 2 {
		t.Fatalf("expected 2 locations, got %d", len(extracted.ParsedLocations))
	}
	if extracted.ParsedLocations[0].Name != "Mumbai" {
		t.Errorf("expected Mumbai first, got %s", extracted.ParsedLocations[0].Name)
	}
	if extracted.ParsedLocations[1].VisitSequence != 2 {
		t.Errorf("expected visit sequence 2, got %d", extracted.ParsedLocations[1].VisitSequence)
	}
}

func TestClient_ExtractSequence_EmptyText(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := testClient(server)

	_, err := client.ExtractSequence(context.Background(), "sid_test", "   ")
	if !errors.Is(err, planner.ErrEmptyQuery) {
		t.Fatalf("expected ErrEmptyQuery, got %v", err)
	}
	if called {
		t.Error("expected no network call for empty text")
	}
}

func TestClient_ExtractSequence_NoLocations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"parsed_locations":[]}`))
	}))
	defer server.Close()

	client := testClient(server)

	_, err := client.ExtractSequence(context.Background(), "sid_test", "gibberish with no places")
	if !errors.Is(err, planner.ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}

	var perr *planner.Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *planner.Error, got %T", err)
	}
	if perr.Code != "NO_LOCATIONS" {
		t.Errorf("expected code NO_LOCATIONS, got %s", perr.Code)
	}
}

func TestClient_ExtractSequence_BackendDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"could not parse any locations"}`))
	}))
	defer server.Close()

	client := testClient(server)

	_, err := client.ExtractSequence(context.Background(), "sid_test", "deliver somewhere")
	var perr *planner.Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *planner.Error, got %v", err)
	}
	if perr.Code != "REJECTED" {
		t.Errorf("expected code REJECTED, got %s", perr.Code)
	}
	if perr.Message != "could not parse any locations" {
		t.Errorf("expected backend detail surfaced, got %q", perr.Message)
	}
}

func TestClient_OptimizeRoute_TooFewStops(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := testClient(server)

	_, err := client.OptimizeRoute(context.Background(), "sid_test", []planner.Location{{Name: "Mumbai"}})
	if !errors.Is(err, planner.ErrNotEnoughLocations) {
		t.Fatalf("expected ErrNotEnoughLocations, got %v", err)
	}
	if called {
		t.Error("expected no network call with a single stop")
	}
}

func TestClient_OptimizeRoute_PreservesRequestOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}

		var sent []planner.Location
		if err := json.Unmarshal(req["parsed_locations"], &sent); err != nil {
			t.Fatalf("decoding locations: %v", err)
		}
		if sent[0].Name != "Pune" || sent[1].Name != "Mumbai" {
			t.Errorf("expected request order preserved, got %s then %s", sent[0].Name, sent[1].Name)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"optimized_route":[{"name":"Mumbai","lat":19.076,"lon":72.8777},{"name":"Pune","lat":18.5204,"lon":73.8567}],
			"total_distance_km":148.2,
			"total_duration_hours":2.8,
			"route_id":"route_xyz"
		}`))
	}))
	defer server.Close()

	client := testClient(server)

	route, err := client.OptimizeRoute(context.Background(), "sid_test", []planner.Location{
		{Name: "Pune", Lat: 18.5204, Lon: 73.8567, VisitSequence: 1},
		{Name: "Mumbai", Lat: 19.076, Lon: 72.8777, VisitSequence: 2},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if route.RouteID != "route_xyz" {
		t.Errorf("expected route_xyz, got %s", route.RouteID)
	}
	if route.TotalDistanceKm != 148.2 {
		t.Errorf("expected distance 148.2, got %v", route.TotalDistanceKm)
	}
	if len(route.Stops) != 2 || route.Stops[0].Name != "Mumbai" {
		t.Errorf("expected optimizer order applied, got %+v", route.Stops)
	}
}

func TestClient_CreateManifest_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/create-manifest" {
			t.Errorf("expected path /create-manifest, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"manifest_id":"mf_42","driver":"Ramesh","created_at":"2026-08-29T10:00:00Z"}`))
	}))
	defer server.Close()

	client := testClient(server)

	manifest, err := client.CreateManifest(context.Background(), "sid_test", "route_xyz", "Ramesh")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if manifest.ManifestID != "mf_42" {
		t.Errorf("expected manifest mf_42, got %s", manifest.ManifestID)
	}
	if manifest.Driver != "Ramesh" {
		t.Errorf("expected driver Ramesh, got %s", manifest.Driver)
	}
}

func TestClient_CreateManifest_NoRouteID(t *testing.T) {
	client := NewClient(ClientConfig{Logger: zerolog.Nop()})

	_, err := client.CreateManifest(context.Background(), "sid_test", "", "Ramesh")
	if !errors.Is(err, planner.ErrNoRouteID) {
		t.Fatalf("expected ErrNoRouteID, got %v", err)
	}
}

func TestClient_RouteSummary_FallsBackToReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"reply":"Two stops, under three hours."}`))
	}))
	defer server.Close()

	client := testClient(server)

	summary, err := client.RouteSummary(context.Background(), "sid_test",
		&planner.OptimizedRoute{RouteID: "route_xyz"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary != "Two stops, under three hours." {
		t.Errorf("unexpected summary: %q", summary)
	}
}

func TestClient_Health(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("expected path /health, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"online"}`))
	}))
	defer server.Close()

	client := testClient(server)

	status, err := client.Health(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != "online" {
		t.Errorf("expected online, got %s", status)
	}
}

func TestClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := NewClient(ClientConfig{BaseURL: server.URL, Logger: zerolog.Nop()})

	_, err := client.Health(context.Background())
	if !errors.Is(err, planner.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
}

func TestClient_TrafficReport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("session_id"); got != "sid_test" {
			t.Errorf("expected session_id sid_test, got %s", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"congestion_status":"moderate","details":"slow near Thane","map_file":"traffic_map.html"}`))
	}))
	defer server.Close()

	client := testClient(server)

	report, err := client.TrafficReport(context.Background(), "sid_test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.CongestionStatus != "moderate" {
		t.Errorf("expected moderate, got %s", report.CongestionStatus)
	}
	if report.MapFile != "traffic_map.html" {
		t.Errorf("expected map file, got %s", report.MapFile)
	}
}
