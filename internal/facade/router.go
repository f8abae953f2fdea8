// Package facade exposes the client's operations over localhost HTTP so
// other frontends can embed them.
package facade

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/logihub/logihub/internal/copilot"
	"github.com/logihub/logihub/internal/facade/handler"
	"github.com/logihub/logihub/internal/facade/middleware"
	"github.com/logihub/logihub/internal/geocode"
	"github.com/logihub/logihub/internal/planner"
	"github.com/logihub/logihub/internal/session"
)

// RouterConfig holds the services the facade fronts.
type RouterConfig struct {
	Logger   zerolog.Logger
	Planner  *planner.Service
	Copilot  *copilot.Service
	Sessions *session.Service
	Geocoder *geocode.Service
	Prober   handler.HealthProber

	// TracingEnabled adds the tracing middleware when telemetry is on.
	TracingEnabled bool
}

// NewRouter creates the chi router with all facade routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	if cfg.TracingEnabled {
		r.Use(middleware.Tracing())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.RequireJSON)

	planHandler := handler.NewPlanHandler(cfg.Planner)
	sessionHandler := handler.NewSessionHandler(cfg.Planner, cfg.Sessions)
	chatHandler := handler.NewChatHandler(cfg.Copilot)
	pickHandler := handler.NewPickHandler(cfg.Geocoder)
	opsHandler := handler.NewOpsHandler(cfg.Prober)

	planRateLimit := middleware.RateLimitByIP(middleware.PlanRateLimit)
	chatRateLimit := middleware.RateLimitByIP(middleware.ChatRateLimit)
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)

	r.Route("/v1", func(r chi.Router) {
		r.With(planRateLimit).Post("/plan", planHandler.PlanFromText)
		r.With(planRateLimit).Post("/plan/picks", planHandler.PlanFromPicks)
		r.With(planRateLimit).Post("/manifest", planHandler.CreateManifest)

		r.With(planRateLimit).Post("/picks", pickHandler.AddPick)
		r.With(standardRateLimit).Get("/picks", pickHandler.ListPicks)
		r.With(standardRateLimit).Delete("/picks", pickHandler.ClearPicks)
		r.With(standardRateLimit).Delete("/picks/{id}", pickHandler.RemovePick)

		r.With(chatRateLimit).Post("/chat", chatHandler.Chat)
		r.With(chatRateLimit).Post("/explain", chatHandler.Explain)

		r.With(standardRateLimit).Get("/status", chatHandler.Status)
		r.With(standardRateLimit).Get("/session", sessionHandler.GetSession)
		r.With(standardRateLimit).Delete("/session", sessionHandler.DeleteSession)
		r.Get("/health", opsHandler.Health)
	})

	return r
}
