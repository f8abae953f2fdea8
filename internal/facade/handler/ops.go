package handler

import (
	"context"
	"net/http"

	"github.com/logihub/logihub/internal/facade/models"
	"github.com/logihub/logihub/internal/facade/response"
)

// HealthProber checks the planning backend's liveness.
type HealthProber interface {
	Health(ctx context.Context) (string, error)
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	prober HealthProber
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(prober HealthProber) *OpsHandler {
	return &OpsHandler{prober: prober}
}

// Health handles GET /v1/health - facade liveness plus backend probe.
func (h *OpsHandler) Health(w http.ResponseWriter, r *http.Request) {
	backend := "unreachable"
	if status, err := h.prober.Health(r.Context()); err == nil && status != "" {
		backend = status
	}

	response.JSON(w, http.StatusOK, models.HealthResponse{
		Status:  "ok",
		Backend: backend,
	})
}
