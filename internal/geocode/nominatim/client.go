// Package nominatim provides a reverse-geocoding client for the OSM
// Nominatim API.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/logihub/logihub/internal/geocode"
	"github.com/logihub/logihub/internal/resilience"
)

const (
	// ProviderName identifies this geocoding provider.
	ProviderName = "nominatim"

	// DefaultBaseURL is the public Nominatim instance.
	DefaultBaseURL = "https://nominatim.openstreetmap.org"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Nominatim client.
type ClientConfig struct {
	// BaseURL is the API base URL (optional, defaults to the public
	// instance).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional). If nil, a
	// breaker-guarded client is created.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional).
	Timeout time.Duration

	// UserAgent identifies this application; Nominatim's usage policy
	// requires one.
	UserAgent string

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a Nominatim reverse-geocoding client.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
	userAgent  string
	logger     zerolog.Logger
}

// NewClient creates a new Nominatim client.
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
		httpClient = resilience.NewClient(resilience.ClientConfig{
			Name:    ProviderName,
			Timeout: timeout,
		})
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "logihub-client"
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		userAgent:  userAgent,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Reverse resolves coordinates to a display name.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (string, error) {
	query := url.Values{
		"lat":    {strconv.FormatFloat(lat, 'f', 6, 64)},
		"lon":    {strconv.FormatFloat(lon, 'f', 6, 64)},
		"format": {"jsonv2"},
		"zoom":   {"10"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/reverse?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Float64("lat", lat).
		Float64("lon", lon).
		Msg("reverse geocoding pick")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", geocode.ErrGeocoderUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", geocode.ErrGeocoderUnavailable, resp.StatusCode)
	}

	var parsed reverseResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	name := parsed.placeName()
	if name == "" {
		return "", geocode.ErrNoResult
	}
	return name, nil
}

type reverseResponse struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Address     struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		County  string `json:"county"`
		State   string `json:"state"`
	} `json:"address"`
	Error string `json:"error"`
}

// placeName picks the most useful label: settlement first, then the raw
// name, then the full display name.
func (r *reverseResponse) placeName() string {
	if r.Error != "" {
		return ""
	}
	for _, candidate := range []string{
		r.Address.City, r.Address.Town, r.Address.Village,
		r.Name, r.Address.County, r.Address.State,
	} {
		if candidate != "" {
			return candidate
		}
	}
	return r.DisplayName
}
