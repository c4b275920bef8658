package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/miminchandrank/Csv-data-analyst/src/core/chat"
	"github.com/miminchandrank/Csv-data-analyst/src/storage/postgres/chatctrl"
)

// History is where recorded events end up
type History interface {
	SaveMessage(ctx context.Context, msg *chatctrl.ChatMessage) error
	SaveDataset(ctx context.Context, ds *chatctrl.Dataset) error
}

// Recorder persists session events
type Recorder struct {
	history History
	logger  watermill.LoggerAdapter
}

func NewRecorder(history History, logger watermill.LoggerAdapter) *Recorder {
	return &Recorder{history: history, logger: logger}
}

func (r *Recorder) HandleMessage(msg *message.Message) error {
	var event chat.MessageEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return fmt.Errorf("failed to unmarshal message event: %w", err)
	}

	err := r.history.SaveMessage(msg.Context(), &chatctrl.ChatMessage{
		MessageID: event.Message.ID,
		SessionID: event.SessionID,
		Role:      string(event.Message.Role),
		Content:   event.Message.Content,
		CreatedAt: event.Message.CreatedAt,
	})
	if err != nil {
		return err
	}

	r.logger.Debug("message recorded", watermill.LogFields{
		"session_id":     event.SessionID,
		"message_id":     event.Message.ID,
		"correlation_id": middleware.MessageCorrelationID(msg),
	})
	return nil
}

func (r *Recorder) HandleDataset(msg *message.Message) error {
	var event chat.DatasetEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return fmt.Errorf("failed to unmarshal dataset event: %w", err)
	}

	summary, err := json.Marshal(event.Summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	err = r.history.SaveDataset(msg.Context(), &chatctrl.Dataset{
		DatasetID: event.DatasetID,
		SessionID: event.SessionID,
		Filename:  event.Filename,
		FileKey:   event.FileKey,
		Rows:      event.Rows,
		Columns:   event.Columns,
		Encoding:  event.Encoding,
		Separator: event.Separator,
		Summary:   string(summary),
		LoadedAt:  event.LoadedAt,
	})
	if err != nil {
		return err
	}

	r.logger.Info("dataset recorded", watermill.LogFields{
		"session_id": event.SessionID,
		"dataset_id": event.DatasetID,
		"filename":   event.Filename,
	})
	return nil
}

// NewRouter wires the recorder to the session topics of subscriber
func NewRouter(subscriber message.Subscriber, recorder *Recorder, logger watermill.LoggerAdapter) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 10 * time.Second}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create router: %w", err)
	}

	router.AddMiddleware(
		middleware.Recoverer,
		middleware.CorrelationID,
		middleware.Retry{
			MaxRetries:      3,
			InitialInterval: time.Second,
			Logger:          logger,
		}.Middleware,
	)

	router.AddNoPublisherHandler("message_recorder", chat.TopicMessages, subscriber, recorder.HandleMessage)
	router.AddNoPublisherHandler("dataset_recorder", chat.TopicDatasets, subscriber, recorder.HandleDataset)

	return router, nil
}
