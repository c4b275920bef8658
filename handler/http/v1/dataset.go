package v1

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/miminchandrank/Csv-data-analyst/src/core/chat"
	"github.com/miminchandrank/Csv-data-analyst/src/core/dataset"
	"github.com/miminchandrank/Csv-data-analyst/src/core/profile"
)

// room for multipart boundaries and headers on top of the file itself
const multipartOverhead = 1 << 20

type uploadResponse struct {
	Messages []chat.Message   `json:"messages"`
	Summary  *profile.Summary `json:"summary"`
}

// UploadDataset godoc
// @Summary Upload a CSV file into the session
// @Tags datasets
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Session ID"
// @Param file formData file true "CSV file"
// @Success 200 {object} uploadResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /sessions/{id}/dataset [post]
func (h *Handler) UploadDataset(c *gin.Context) {
	sessionID := c.Param("id")
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			sendError(c, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
			return
		}
		sendError(c, http.StatusBadRequest, fmt.Errorf("%w: %v", ErrMissingFile, err))
		return
	}
	if fileHeader.Size > h.maxUploadBytes {
		sendError(c, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		return
	}
	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".csv") {
		sendError(c, http.StatusBadRequest, ErrNotCSV)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		sendError(c, http.StatusInternalServerError, fmt.Errorf("failed to open uploaded file: %w", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		sendError(c, http.StatusInternalServerError, fmt.Errorf("failed to read uploaded file: %w", err))
		return
	}

	ctx := c.Request.Context()
	messages, err := h.chatService.Upload(ctx, sessionID, filepath.Base(fileHeader.Filename), data)
	if err != nil {
		h.observer.ObserveUpload(0, err)
		if len(messages) == 0 {
			sendError(c, http.StatusInternalServerError, err)
			return
		}
		sendErrorDetails(c, http.StatusInternalServerError, err, messages)
		return
	}

	summary, err := h.chatService.Summary(ctx, sessionID)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}
	h.observer.ObserveUpload(summary.Metadata.Shape[0], nil)

	sendJSON(c, http.StatusOK, uploadResponse{Messages: messages, Summary: summary})
}

// GetDatasetSummary godoc
// @Summary Get the profile of the loaded dataset
// @Tags datasets
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} profile.Summary
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id}/dataset/summary [get]
func (h *Handler) GetDatasetSummary(c *gin.Context) {
	summary, err := h.chatService.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}
	sendJSON(c, http.StatusOK, summary)
}

// ExportDataset godoc
// @Summary Download the processed dataset as CSV
// @Tags datasets
// @Produce text/csv
// @Param id path string true "Session ID"
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id}/dataset/export [get]
func (h *Handler) ExportDataset(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.chatService.Export(c.Request.Context(), c.Param("id"), &buf); err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dataset.ExportFilename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
