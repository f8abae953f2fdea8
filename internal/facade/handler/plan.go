// Package handler provides HTTP handlers for the local facade.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/logihub/logihub/internal/facade/models"
	"github.com/logihub/logihub/internal/facade/response"
	"github.com/logihub/logihub/internal/planner"
)

// PlanHandler handles the planning endpoints.
type PlanHandler struct {
	planner *planner.Service
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(p *planner.Service) *PlanHandler {
	return &PlanHandler{planner: p}
}

// PlanFromText handles POST /v1/plan - natural-language route planning.
func (h *PlanHandler) PlanFromText(w http.ResponseWriter, r *http.Request) {
	var input models.PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body")
		return
	}

	route, err := h.planner.PlanFromText(r.Context(), input.Text)
	if err != nil {
		response.PlannerError(w, r, err)
		return
	}

	view := h.planner.View()
	response.JSON(w, http.StatusOK, models.PlanResponse{
		Locations: view.Locations,
		Route:     route,
	})
}

// PlanFromPicks handles POST /v1/plan/picks - planning over pre-geocoded
// locations, bypassing extraction.
func (h *PlanHandler) PlanFromPicks(w http.ResponseWriter, r *http.Request) {
	var input models.PlanPicksRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body")
		return
	}

	route, err := h.planner.PlanFromPicks(r.Context(), input.Locations)
	if err != nil {
		response.PlannerError(w, r, err)
		return
	}

	view := h.planner.View()
	response.JSON(w, http.StatusOK, models.PlanResponse{
		Locations: view.Locations,
		Route:     route,
	})
}

// CreateManifest handles POST /v1/manifest.
func (h *PlanHandler) CreateManifest(w http.ResponseWriter, r *http.Request) {
	var input models.ManifestRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body")
		return
	}
	if input.Driver == "" {
		response.BadRequest(w, r, "driver is required")
		return
	}

	manifest, err := h.planner.CreateManifest(r.Context(), input.Driver)
	if err != nil {
		response.PlannerError(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, manifest)
}
