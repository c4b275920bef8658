package v1

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/miminchandrank/Csv-data-analyst/src/core/chat"
	"github.com/miminchandrank/Csv-data-analyst/src/core/dataset"
	"github.com/miminchandrank/Csv-data-analyst/src/core/profile"
	"github.com/miminchandrank/Csv-data-analyst/src/core/system"
)

// DefaultMaxUploadBytes is the largest accepted CSV file
const DefaultMaxUploadBytes = 200 << 20

var (
	ErrMissingFile  = errors.New("multipart field \"file\" is required")
	ErrNotCSV       = errors.New("only .csv files are accepted")
	ErrFileTooLarge = errors.New("file exceeds the maximum upload size")
)

type ChatService interface {
	CreateSession(ctx context.Context) *chat.Session
	Reset(ctx context.Context, sessionID string) error
	Upload(ctx context.Context, sessionID, filename string, data []byte) ([]chat.Message, error)
	Ask(ctx context.Context, sessionID, prompt string) (*chat.Message, error)
	Messages(ctx context.Context, sessionID string) ([]chat.Message, error)
	Summary(ctx context.Context, sessionID string) (*profile.Summary, error)
	Export(ctx context.Context, sessionID string, w io.Writer) error
}

type SystemService interface {
	CheckHealth(ctx context.Context) (*system.HealthStatus, error)
}

// Observer records pipeline metrics
type Observer interface {
	ObserveUpload(rows int, err error)
	ObserveQuestion(kind string, d time.Duration, err error)
}

type Handler struct {
	chatService    ChatService
	sysService     SystemService
	observer       Observer
	history        HistoryService
	maxUploadBytes int64
}

type Option func(*Handler)

func WithObserver(o Observer) Option {
	return func(h *Handler) { h.observer = o }
}

// WithHistory enables the routes that read recorded chat history
func WithHistory(history HistoryService) Option {
	return func(h *Handler) { h.history = history }
}

func WithMaxUploadBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxUploadBytes = n
		}
	}
}

func NewHandler(chatService ChatService, sysService SystemService, opts ...Option) *Handler {
	h := &Handler{
		chatService:    chatService,
		sysService:     sysService,
		observer:       nopObserver{},
		maxUploadBytes: DefaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes registers all v1 API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	v1 := r.Group("/api/v1")

	// Session routes
	v1.POST("/sessions", h.CreateSession)
	v1.DELETE("/sessions/:id", h.DeleteSession)

	// Dataset routes
	v1.POST("/sessions/:id/dataset", h.UploadDataset)
	v1.GET("/sessions/:id/dataset/summary", h.GetDatasetSummary)
	v1.GET("/sessions/:id/dataset/export", h.ExportDataset)

	// Chat routes
	v1.POST("/sessions/:id/messages", h.PostMessage)
	v1.GET("/sessions/:id/messages", h.ListMessages)

	// History routes
	if h.history != nil {
		v1.GET("/sessions/:id/history", h.GetSessionHistory)
		v1.GET("/datasets/:dataset_id", h.GetDataset)
	}

	// System routes
	v1.GET("/health", h.CheckHealth)
}

// Common error response structure
type ErrorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func sendError(c *gin.Context, status int, err error) {
	sendErrorDetails(c, status, err, nil)
}

func sendErrorDetails(c *gin.Context, status int, err error, details interface{}) {
	var code string
	switch {
	case errors.Is(err, chat.ErrSessionNotFound):
		code = "SESSION_NOT_FOUND"
		status = http.StatusNotFound
	case errors.Is(err, ErrDatasetNotFound):
		code = "DATASET_NOT_FOUND"
		status = http.StatusNotFound
	case errors.Is(err, chat.ErrNoDataset):
		code = "NO_DATASET"
		status = http.StatusNotFound
	case errors.Is(err, chat.ErrEmptyPrompt),
		errors.Is(err, ErrMissingFile),
		errors.Is(err, ErrNotCSV):
		code = "INVALID_REQUEST"
		status = http.StatusBadRequest
	case errors.Is(err, ErrFileTooLarge):
		code = "FILE_TOO_LARGE"
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, chat.ErrEmptyUpload),
		errors.Is(err, dataset.ErrEmptyFile),
		errors.Is(err, dataset.ErrNoColumns),
		errors.Is(err, dataset.ErrMalformedRow),
		errors.Is(err, dataset.ErrColumnLengths):
		code = "INVALID_CSV"
		status = http.StatusUnprocessableEntity
	case status == http.StatusBadRequest:
		code = "INVALID_REQUEST"
	case status == http.StatusBadGateway:
		code = "UPSTREAM_ERROR"
	default:
		code = "INTERNAL_ERROR"
		status = http.StatusInternalServerError
	}

	c.JSON(status, ErrorResponse{
		Code:    code,
		Message: err.Error(),
		Details: details,
	})
}

func sendJSON(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

type nopObserver struct{}

func (nopObserver) ObserveUpload(int, error) {}

func (nopObserver) ObserveQuestion(string, time.Duration, error) {}
