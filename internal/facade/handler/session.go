package handler

import (
	"errors"
	"net/http"

	"github.com/logihub/logihub/internal/facade/response"
	"github.com/logihub/logihub/internal/planner"
	"github.com/logihub/logihub/internal/session"
)

// SessionHandler exposes the persisted session snapshot.
type SessionHandler struct {
	planner  *planner.Service
	sessions *session.Service
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(p *planner.Service, s *session.Service) *SessionHandler {
	return &SessionHandler{planner: p, sessions: s}
}

// GetSession handles GET /v1/session - return the current snapshot.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.sessions.Load(r.Context())
	if errors.Is(err, session.ErrNoSnapshot) {
		response.NotFound(w, r, "no planning session yet")
		return
	}
	if err != nil {
		response.UpstreamFailure(w, r, "reading session snapshot failed")
		return
	}

	response.JSON(w, http.StatusOK, snapshot)
}

// DeleteSession handles DELETE /v1/session - explicit reset.
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.planner.Reset(r.Context()); err != nil {
		response.UpstreamFailure(w, r, "clearing session failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
