package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type sessionResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateSession godoc
// @Summary Start a new analyst session
// @Tags sessions
// @Produce json
// @Success 201 {object} sessionResponse
// @Router /sessions [post]
func (h *Handler) CreateSession(c *gin.Context) {
	sess := h.chatService.CreateSession(c.Request.Context())
	sendJSON(c, http.StatusCreated, sessionResponse{ID: sess.ID, CreatedAt: sess.CreatedAt})
}

// DeleteSession godoc
// @Summary Reset a session, discarding its dataset and conversation
// @Tags sessions
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id} [delete]
func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.chatService.Reset(c.Request.Context(), c.Param("id")); err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}
	c.Status(http.StatusNoContent)
}
