// Package resilience provides a circuit-breaker-guarded HTTP client for
// third-party providers. Requests are executed exactly once; the breaker
// only stops the client from hammering a provider that is already down.
package resilience

import (
	"errors"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned when the circuit breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// ClientConfig holds configuration for the guarded HTTP client.
type ClientConfig struct {
	// Name identifies this client for circuit breaker naming.
	Name string

	// Timeout is the per-request timeout. Default: 10 seconds.
	Timeout time.Duration

	// ConsecutiveFailures is how many failures in a row open the
	// breaker. Default: 5.
	ConsecutiveFailures uint32

	// OpenFor is how long the breaker stays open before probing again.
	// Default: 30 seconds.
	OpenFor time.Duration
}

// Client wraps http.Client with a circuit breaker. 5xx responses count as
// failures so a broken provider opens the breaker, not just a dead one.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
}

// NewClient creates a new guarded HTTP client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = 5
	}
	if cfg.OpenFor == 0 {
		cfg.OpenFor = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:    cfg.Name,
		Timeout: cfg.OpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
	})

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    breaker,
	}
}

// Do executes the request once through the circuit breaker. Returns
// ErrCircuitOpen immediately while the breaker is open.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	resp, err := c.breaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // caller closes
		r, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		if r.StatusCode >= 500 {
			return r, &ServerError{StatusCode: r.StatusCode}
		}
		return r, nil
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, ErrCircuitOpen
		}
		// A 5xx still carries a usable response for the caller's error
		// mapping; the breaker has already counted the failure.
		var serverErr *ServerError
		if errors.As(err, &serverErr) && resp != nil {
			return resp, nil
		}
		return nil, err
	}

	return resp, nil
}

// State returns the current breaker state.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

// ServerError represents an HTTP 5xx server error.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return "server error: " + http.StatusText(e.StatusCode)
}
