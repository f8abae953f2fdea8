// Package logistics provides the client for the route-planning backend.
package logistics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/logihub/logihub/internal/planner"
)

const (
	// ProviderName identifies the planning backend.
	ProviderName = "logistics-backend"

	// DefaultBaseURL is the backend base URL for local development.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultTimeout is the blanket request timeout. Optimization runs a
	// genetic solver server-side and can legitimately take a while.
	DefaultTimeout = 60 * time.Second
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the backend client.
type ClientConfig struct {
	// BaseURL is the backend base URL (optional, defaults to localhost).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional). Calls through it
	// are never retried; failed operations surface to the user as-is.
	HTTPClient HTTPDoer

	// Timeout is the blanket request timeout (optional).
	Timeout time.Duration

	// Logger for the request/response diagnostic side-channel.
	Logger zerolog.Logger
}

// Client is a route-planning backend client. Every method wraps exactly one
// endpoint, validates its inputs before touching the network, and returns
// the parsed response with the route payload normalized to full stops.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new backend client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// ExtractSequence turns natural-language delivery text into an ordered
// location list.
func (c *Client) ExtractSequence(ctx context.Context, sessionID, text string) (*planner.ExtractedRequest, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &planner.Error{
			Endpoint: "/extract-sequence",
			Code:     "EMPTY_QUERY",
			Message:  "please describe where you want to deliver",
			Err:      planner.ErrEmptyQuery,
		}
	}

	body, err := c.post(ctx, "/extract-sequence", extractRequest{
		RequestText: text,
		SessionID:   sessionID,
	})
	if err != nil {
		return nil, err
	}

	var extracted planner.ExtractedRequest
	if err := json.Unmarshal(body, &extracted); err != nil {
		return nil, fmt.Errorf("decoding extraction response: %w", err)
	}

	if len(extracted.ParsedLocations) == 0 {
		return nil, &planner.Error{
			Endpoint: "/extract-sequence",
			Code:     "NO_LOCATIONS",
			Message:  "no delivery locations found in the request text",
			Err:      planner.ErrExtractionFailed,
		}
	}

	return &extracted, nil
}

// OptimizeRoute submits the location list to the optimizer. The input order
// is preserved exactly as given; requests with fewer than two stops fail
// before any network call.
func (c *Client) OptimizeRoute(ctx context.Context, sessionID string, locations []planner.Location) (*planner.OptimizedRoute, error) {
	if len(locations) < 2 {
		return nil, &planner.Error{
			Endpoint: "/optimize-route",
			Code:     "TOO_FEW_STOPS",
			Message:  "need at least two locations to optimize a route",
			Err:      planner.ErrNotEnoughLocations,
		}
	}

	body, err := c.post(ctx, "/optimize-route", optimizeRequest{
		ParsedLocations: locations,
		SessionID:       sessionID,
	})
	if err != nil {
		return nil, err
	}

	route, err := normalizeOptimizedRoute(body, locations)
	if err != nil {
		return nil, fmt.Errorf("decoding optimization response: %w", err)
	}

	return route, nil
}

// CreateManifest creates a delivery manifest for an optimized route.
func (c *Client) CreateManifest(ctx context.Context, sessionID, routeID, driver string) (*planner.Manifest, error) {
	if routeID == "" {
		return nil, &planner.Error{
			Endpoint: "/create-manifest",
			Code:     "NO_ROUTE_ID",
			Message:  "optimize a route before creating a manifest",
			Err:      planner.ErrNoRouteID,
		}
	}

	body, err := c.post(ctx, "/create-manifest", manifestRequest{
		RouteID:   routeID,
		Driver:    driver,
		SessionID: sessionID,
	})
	if err != nil {
		return nil, err
	}

	var manifest planner.Manifest
	if err := json.Unmarshal(body, &manifest); err != nil {
		return nil, fmt.Errorf("decoding manifest response: %w", err)
	}

	return &manifest, nil
}

// RouteSummary asks the backend for a prose summary of an optimized route.
func (c *Client) RouteSummary(ctx context.Context, sessionID string, route *planner.OptimizedRoute, locations []planner.Location) (string, error) {
	if route == nil {
		return "", &planner.Error{
			Endpoint: "/route/summary",
			Code:     "NO_ROUTE",
			Message:  "no optimized route to summarize",
			Err:      planner.ErrNoOptimizedRoute,
		}
	}

	body, err := c.post(ctx, "/route/summary", summaryRequest{
		OptimizedRoute: route,
		Locations:      locations,
		SessionID:      sessionID,
	})
	if err != nil {
		return "", err
	}

	summary := gjson.GetBytes(body, "summary").String()
	if summary == "" {
		summary = gjson.GetBytes(body, "reply").String()
	}
	return summary, nil
}

// Health probes the backend liveness endpoint.
func (c *Client) Health(ctx context.Context) (string, error) {
	body, err := c.get(ctx, "/health", nil)
	if err != nil {
		return "", err
	}
	return gjson.GetBytes(body, "status").String(), nil
}

// TrafficReport fetches the current traffic analysis for the active route.
func (c *Client) TrafficReport(ctx context.Context, sessionID string) (*TrafficReport, error) {
	body, err := c.get(ctx, "/traffic/map", url.Values{"session_id": {sessionID}})
	if err != nil {
		return nil, err
	}

	var report TrafficReport
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("decoding traffic report: %w", err)
	}
	return &report, nil
}

// DownloadTrafficMap retrieves the rendered traffic map artifact.
func (c *Client) DownloadTrafficMap(ctx context.Context, sessionID string) ([]byte, error) {
	return c.get(ctx, "/traffic/download-map", url.Values{"session_id": {sessionID}})
}

// post executes one POST request and returns the raw response body.
func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.do(req, path)
}

// get executes one GET request and returns the raw response body.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return c.do(req, path)
}

// do runs the request, logging it and its outcome. The log is diagnostic
// only and has no effect on control flow.
func (c *Client) do(req *http.Request, path string) ([]byte, error) {
	start := time.Now()

	c.logger.Debug().
		Str("method", req.Method).
		Str("endpoint", path).
		Msg("calling planning backend")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().
			Str("endpoint", path).
			Err(err).
			Msg("planning backend unreachable")
		return nil, &planner.Error{
			Endpoint: path,
			Code:     "REQUEST_FAILED",
			Message:  "could not reach the planning backend",
			Err:      planner.ErrBackendUnavailable,
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	c.logger.Debug().
		Str("endpoint", path).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("duration", time.Since(start)).
		Msg("planning backend responded")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.handleErrorResponse(path, resp.StatusCode, body)
	}

	return body, nil
}

// handleErrorResponse maps backend error payloads to domain errors. The
// backend reports failures as {"detail": "..."}.
func (c *Client) handleErrorResponse(path string, statusCode int, body []byte) error {
	detail := gjson.GetBytes(body, "detail").String()
	if detail == "" {
		detail = fmt.Sprintf("planning backend returned status %d", statusCode)
	}

	code := fmt.Sprintf("HTTP_%d", statusCode)
	underlying := planner.ErrBackendUnavailable
	if statusCode == http.StatusBadRequest {
		code = "REJECTED"
		underlying = planner.ErrExtractionFailed
		if path != "/extract-sequence" {
			underlying = planner.ErrNotEnoughLocations
		}
	}

	return &planner.Error{
		Endpoint: path,
		Code:     code,
		Message:  detail,
		Err:      underlying,
	}
}
