package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/miminchandrank/Csv-data-analyst/src/core/system"
)

// CheckHealth godoc
// @Summary Check system health status
// @Tags system
// @Produce json
// @Success 200 {object} system.HealthStatus
// @Failure 503 {object} system.HealthStatus
// @Router /health [get]
func (h *Handler) CheckHealth(c *gin.Context) {
	status, err := h.sysService.CheckHealth(c.Request.Context())
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}
	if status.Status != system.Healthy {
		sendJSON(c, http.StatusServiceUnavailable, status)
		return
	}
	sendJSON(c, http.StatusOK, status)
}
