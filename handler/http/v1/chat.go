package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/miminchandrank/Csv-data-analyst/src/core/formatter"
)

type postMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// PostMessage godoc
// @Summary Ask a question about the loaded dataset
// @Tags chat
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param body body postMessageRequest true "Question"
// @Success 200 {object} chat.Message
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /sessions/{id}/messages [post]
func (h *Handler) PostMessage(c *gin.Context) {
	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, err)
		return
	}

	start := time.Now()
	reply, err := h.chatService.Ask(c.Request.Context(), c.Param("id"), req.Content)
	h.observer.ObserveQuestion(string(formatter.Classify(req.Content)), time.Since(start), err)
	if err != nil {
		sendError(c, http.StatusBadGateway, err)
		return
	}

	sendJSON(c, http.StatusOK, reply)
}

// ListMessages godoc
// @Summary List the session's conversation
// @Tags chat
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {array} chat.Message
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id}/messages [get]
func (h *Handler) ListMessages(c *gin.Context) {
	messages, err := h.chatService.Messages(c.Request.Context(), c.Param("id"))
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}
	sendJSON(c, http.StatusOK, messages)
}
