package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/logihub/logihub/internal/facade/models"
	"github.com/logihub/logihub/internal/facade/response"
	"github.com/logihub/logihub/internal/geocode"
)

// PickHandler manages the picked-location list over HTTP.
type PickHandler struct {
	geocoder *geocode.Service
}

// NewPickHandler creates a new PickHandler.
func NewPickHandler(g *geocode.Service) *PickHandler {
	return &PickHandler{geocoder: g}
}

// AddPick handles POST /v1/picks - reverse-geocode coordinates into a pick.
func (h *PickHandler) AddPick(w http.ResponseWriter, r *http.Request) {
	var input models.PickRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body")
		return
	}

	pick, err := h.geocoder.Add(r.Context(), input.Lat, input.Lon)
	if err != nil {
		switch {
		case errors.Is(err, geocode.ErrInvalidCoordinates),
			errors.Is(err, geocode.ErrNoResult):
			response.BadRequest(w, r, err.Error())
		default:
			response.UpstreamFailure(w, r, err.Error())
		}
		return
	}

	response.JSON(w, http.StatusCreated, pick)
}

// ListPicks handles GET /v1/picks.
func (h *PickHandler) ListPicks(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.geocoder.Picks())
}

// RemovePick handles DELETE /v1/picks/{id}.
func (h *PickHandler) RemovePick(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.geocoder.Remove(id); err != nil {
		response.NotFound(w, r, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearPicks handles DELETE /v1/picks.
func (h *PickHandler) ClearPicks(w http.ResponseWriter, r *http.Request) {
	h.geocoder.Clear()
	w.WriteHeader(http.StatusNoContent)
}
