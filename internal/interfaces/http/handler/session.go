package handler

import (
	"context"

	"github.com/gin-gonic/gin"
)

// SessionClearer ends a session and everything it owns
type SessionClearer interface {
	Clear(ctx context.Context, sessionID string) error
}

// SessionHandler serves the session endpoint
type SessionHandler struct {
	BaseHandler
	sessions SessionClearer
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(sessions SessionClearer) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Clear ends the caller's session and drops its open drafts.
// DELETE /sesion
func (h *SessionHandler) Clear(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	if err := h.sessions.Clear(c.Request.Context(), session.ID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
