package handler

import (
	"encoding/json"
	"net/http"

	"github.com/logihub/logihub/internal/copilot"
	"github.com/logihub/logihub/internal/facade/models"
	"github.com/logihub/logihub/internal/facade/response"
)

// ChatHandler handles the conversational endpoints.
type ChatHandler struct {
	copilot *copilot.Service
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(c *copilot.Service) *ChatHandler {
	return &ChatHandler{copilot: c}
}

// Chat handles POST /v1/chat - send a message to the agent copilot.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var input models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body")
		return
	}

	reply, err := h.copilot.Send(r.Context(), input.Message)
	if err != nil {
		response.BadRequest(w, r, err.Error())
		return
	}

	response.JSON(w, http.StatusOK, models.ChatResponse{Reply: reply.Content})
}

// Explain handles POST /v1/explain - the stateless route explainer.
func (h *ChatHandler) Explain(w http.ResponseWriter, r *http.Request) {
	var input models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body")
		return
	}

	reply, err := h.copilot.Explain(r.Context(), input.Message)
	if err != nil {
		response.BadRequest(w, r, err.Error())
		return
	}

	response.JSON(w, http.StatusOK, models.ChatResponse{Reply: reply.Content})
}

// Status handles GET /v1/status - refresh and return the live agent status.
func (h *ChatHandler) Status(w http.ResponseWriter, r *http.Request) {
	h.copilot.RefreshStatus(r.Context())

	view := h.copilot.View()
	if view.Status == nil {
		response.NotFound(w, r, "no agent status available")
		return
	}
	response.JSON(w, http.StatusOK, view.Status)
}
