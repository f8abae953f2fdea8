// Package agent provides the client for the backend's conversational
// endpoints: the agent copilot and the stateless route explainer.
package agent

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

	"github.com/logihub/logihub/internal/copilot"
	"github.com/logihub/logihub/internal/planner"
)

const (
	// ProviderName identifies the agent backend.
	ProviderName = "logibot-agent"

	// DefaultBaseURL is the backend base URL for local development.
	DefaultBaseURL = "http://localhost:8000"

	// DefaultTimeout is the blanket request timeout. Agent replies can
	// involve several tool round trips server-side.
	DefaultTimeout = 45 * time.Second
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the agent client.
type ClientConfig struct {
	// BaseURL is the backend base URL (optional, defaults to localhost).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	HTTPClient HTTPDoer

	// Timeout is the blanket request timeout (optional).
	Timeout time.Duration

	// Logger for the request/response diagnostic side-channel.
	Logger zerolog.Logger
}

// Client talks to the conversational endpoints.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new agent client.
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

// Status fetches the live agent execution status for the session.
func (c *Client) Status(ctx context.Context, sessionID string) (*copilot.AgentStatus, error) {
	u := c.baseURL + "/agent/status?" + url.Values{"session_id": {sessionID}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req, "/agent/status")
	if err != nil {
		return nil, err
	}

	var status copilot.AgentStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("decoding agent status: %w", err)
	}
	return &status, nil
}

// Chat sends a message to the agent copilot and returns its reply.
func (c *Client) Chat(ctx context.Context, sessionID, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", copilot.ErrEmptyMessage
	}

	body, err := c.post(ctx, "/agent/chat", chatRequest{
		SessionID: sessionID,
		Message:   message,
	})
	if err != nil {
		return "", err
	}

	return replyFrom(body), nil
}

// Explain sends a message to the stateless route explainer, passing the
// current route snapshot as explicit context with every call.
func (c *Client) Explain(ctx context.Context, message string, snapshot *planner.Snapshot) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", copilot.ErrEmptyMessage
	}

	req := explainRequest{Message: message}
	if snapshot != nil {
		req.Context = &explainContext{
			Locations:      snapshot.Locations,
			OptimizedRoute: snapshot.OptimizedRoute,
		}
	}

	body, err := c.post(ctx, "/chat", req)
	if err != nil {
		return "", err
	}

	return replyFrom(body), nil
}

// replyFrom pulls the assistant text out of a reply payload; revisions of
// the backend have used both "reply" and "response" as the field name.
func replyFrom(body []byte) string {
	if reply := gjson.GetBytes(body, "reply").String(); reply != "" {
		return reply
	}
	return gjson.GetBytes(body, "response").String()
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.do(req, path)
}

func (c *Client) do(req *http.Request, path string) ([]byte, error) {
	start := time.Now()

	c.logger.Debug().
		Str("method", req.Method).
		Str("endpoint", path).
		Msg("calling agent backend")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Str("endpoint", path).Err(err).Msg("agent backend unreachable")
		return nil, fmt.Errorf("%w: %v", copilot.ErrAgentUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	c.logger.Debug().
		Str("endpoint", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("agent backend responded")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := gjson.GetBytes(body, "detail").String()
		if detail == "" {
			detail = fmt.Sprintf("agent backend returned status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %s", copilot.ErrAgentUnavailable, detail)
	}

	return body, nil
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type explainRequest struct {
	Message string          `json:"message"`
	Context *explainContext `json:"context,omitempty"`
}

type explainContext struct {
	Locations      []planner.Location      `json:"locations"`
	OptimizedRoute *planner.OptimizedRoute `json:"optimizedRoute"`
}
