package nominatim

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/logihub/logihub/internal/geocode"
)

func testClient(server *httptest.Server) *Client {
	return NewClient(ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		UserAgent:  "logihub-test",
		Logger:     zerolog.Nop(),
	})
}

func TestClient_Reverse_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reverse" {
			t.Errorf("expected path /reverse, got %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("format"); got != "jsonv2" {
			t.Errorf("expected format jsonv2, got %s", got)
		}
		if got := r.URL.Query().Get("zoom"); got != "10" {
			t.Errorf("expected zoom 10, got %s", got)
		}
		if got := r.Header.Get("User-Agent"); got != "logihub-test" {
			t.Errorf("expected User-Agent logihub-test, got %s", got)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"name":"Greater Mumbai",
			"display_name":"Mumbai, Maharashtra, India",
			"address":{"city":"Mumbai","state":"Maharashtra"}
		}`))
	}))
	defer server.Close()

	client := testClient(server)

	name, err := client.Reverse(context.Background(), 19.076, 72.8777)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "Mumbai" {
		t.Errorf("expected city preferred, got %q", name)
	}
}

func TestClient_Reverse_NamePreference(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "town over village",
			body: `{"address":{"town":"Lonavala","village":"Khandala"}}`,
			want: "Lonavala",
		},
		{
			name: "raw name when no settlement",
			body: `{"name":"Western Ghats","address":{"state":"Maharashtra"}}`,
			want: "Western Ghats",
		},
		{
			name: "display name as last resort",
			body: `{"display_name":"somewhere remote"}`,
			want: "somewhere remote",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			name, err := testClient(server).Reverse(context.Background(), 18.75, 73.4)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if name != tt.want {
				t.Errorf("expected %q, got %q", tt.want, name)
			}
		})
	}
}

func TestClient_Reverse_NoResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error":"Unable to geocode"}`))
	}))
	defer server.Close()

	_, err := testClient(server).Reverse(context.Background(), 0, 0)
	if !errors.Is(err, geocode.ErrNoResult) {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}
}

func TestClient_Reverse_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := testClient(server).Reverse(context.Background(), 19.076, 72.8777)
	if !errors.Is(err, geocode.ErrGeocoderUnavailable) {
		t.Fatalf("expected ErrGeocoderUnavailable, got %v", err)
	}
}
