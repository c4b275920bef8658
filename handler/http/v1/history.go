package v1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/miminchandrank/Csv-data-analyst/src/storage/postgres/chatctrl"
)

var ErrDatasetNotFound = errors.New("dataset not found")

// HistoryService reads the recorded conversation and dataset history
type HistoryService interface {
	ListMessages(ctx context.Context, sessionID string) ([]chatctrl.ChatMessage, error)
	ListDatasets(ctx context.Context, sessionID string) ([]chatctrl.Dataset, error)
	GetDataset(ctx context.Context, datasetID string) (*chatctrl.Dataset, error)
}

type historyMessage struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type historyDataset struct {
	ID        string          `json:"id"`
	SessionID string          `json:"session_id"`
	Filename  string          `json:"filename"`
	FileKey   string          `json:"file_key"`
	Rows      int             `json:"rows"`
	Columns   int             `json:"columns"`
	Encoding  string          `json:"encoding"`
	Separator string          `json:"separator"`
	Summary   json.RawMessage `json:"summary,omitempty"`
	LoadedAt  time.Time       `json:"loaded_at"`
}

type historyResponse struct {
	SessionID string           `json:"session_id"`
	Messages  []historyMessage `json:"messages"`
	Datasets  []historyDataset `json:"datasets"`
}

func toHistoryDataset(ds *chatctrl.Dataset) historyDataset {
	out := historyDataset{
		ID:        ds.DatasetID,
		SessionID: ds.SessionID,
		Filename:  ds.Filename,
		FileKey:   ds.FileKey,
		Rows:      ds.Rows,
		Columns:   ds.Columns,
		Encoding:  ds.Encoding,
		Separator: ds.Separator,
		LoadedAt:  ds.LoadedAt,
	}
	if json.Valid([]byte(ds.Summary)) {
		out.Summary = json.RawMessage(ds.Summary)
	}
	return out
}

// GetSessionHistory godoc
// @Summary Get the recorded conversation and datasets of a session, including expired ones
// @Tags history
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} historyResponse
// @Router /sessions/{id}/history [get]
func (h *Handler) GetSessionHistory(c *gin.Context) {
	ctx := c.Request.Context()
	sessionID := c.Param("id")

	messages, err := h.history.ListMessages(ctx, sessionID)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}
	datasets, err := h.history.ListDatasets(ctx, sessionID)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	resp := historyResponse{
		SessionID: sessionID,
		Messages:  make([]historyMessage, 0, len(messages)),
		Datasets:  make([]historyDataset, 0, len(datasets)),
	}
	for _, m := range messages {
		resp.Messages = append(resp.Messages, historyMessage{
			ID:        m.MessageID,
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}
	for i := range datasets {
		resp.Datasets = append(resp.Datasets, toHistoryDataset(&datasets[i]))
	}
	sendJSON(c, http.StatusOK, resp)
}

// GetDataset godoc
// @Summary Get a recorded dataset by ID
// @Tags history
// @Produce json
// @Param dataset_id path string true "Dataset ID"
// @Success 200 {object} historyDataset
// @Failure 404 {object} ErrorResponse
// @Router /datasets/{dataset_id} [get]
func (h *Handler) GetDataset(c *gin.Context) {
	ds, err := h.history.GetDataset(c.Request.Context(), c.Param("dataset_id"))
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}
	if ds == nil {
		sendError(c, http.StatusNotFound, ErrDatasetNotFound)
		return
	}
	sendJSON(c, http.StatusOK, toHistoryDataset(ds))
}
