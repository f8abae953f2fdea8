package models

import "github.com/logihub/logihub/internal/planner"

// PlanRequest is the body of POST /v1/plan.
type PlanRequest struct {
	Text string `json:"text"`
}

// PlanPicksRequest is the body of POST /v1/plan/picks.
type PlanPicksRequest struct {
	Locations []planner.Location `json:"locations"`
}

// PlanResponse is returned by both planning endpoints.
type PlanResponse struct {
	Locations []planner.Location      `json:"locations"`
	Route     *planner.OptimizedRoute `json:"optimized_route"`
}

// PickRequest is the body of POST /v1/picks.
type PickRequest struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ManifestRequest is the body of POST /v1/manifest.
type ManifestRequest struct {
	Driver string `json:"driver"`
}

// ChatRequest is the body of POST /v1/chat and /v1/explain.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse carries one assistant reply.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// HealthResponse is returned by GET /v1/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
}
