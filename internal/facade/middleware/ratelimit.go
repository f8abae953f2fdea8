package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/logihub/logihub/internal/facade/models"
)

// RateLimitConfig holds configuration for rate limiting.
type RateLimitConfig struct {
	RequestLimit int
	WindowLength time.Duration
}

// Rate limit tiers. Planning endpoints fan out to the optimizer and are
// limited much harder than reads.
var (
	// PlanRateLimit applies to the planning pipeline (10 req/min).
	PlanRateLimit = RateLimitConfig{RequestLimit: 10, WindowLength: time.Minute}

	// ChatRateLimit applies to conversational endpoints (20 req/min).
	ChatRateLimit = RateLimitConfig{RequestLimit: 20, WindowLength: time.Minute}

	// StandardRateLimit applies to reads (100 req/min).
	StandardRateLimit = RateLimitConfig{RequestLimit: 100, WindowLength: time.Minute}
)

// RateLimitByIP creates a rate limiter keyed by client IP.
func RateLimitByIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowLength,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(rateLimitExceededHandler),
	)
}

func rateLimitExceededHandler(w http.ResponseWriter, r *http.Request) {
	problem := models.NewTooManyRequests(GetRequestID(r.Context()),
		"Rate limit exceeded. Please try again later.")
	problem.Instance = r.URL.Path

	w.Header().Set("Retry-After", strconv.Itoa(60))
	problem.Write(w)
}
