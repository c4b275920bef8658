package chatctrl

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ChatMessage is one persisted message of a session's conversation
type ChatMessage struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	MessageID string    `gorm:"not null;uniqueIndex" json:"message_id"`
	SessionID string    `gorm:"not null;index" json:"session_id"`
	Role      string    `gorm:"not null" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Dataset records a file loaded into a session together with its profile
type Dataset struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	DatasetID string    `gorm:"not null;uniqueIndex" json:"dataset_id"`
	SessionID string    `gorm:"not null;index" json:"session_id"`
	Filename  string    `gorm:"not null" json:"filename"`
	FileKey   string    `gorm:"not null" json:"file_key"`
	Rows      int       `gorm:"not null;column:row_count" json:"rows"`
	Columns   int       `gorm:"not null;column:column_count" json:"columns"`
	Encoding  string    `json:"encoding"`
	Separator string    `json:"separator"`
	Summary   string    `gorm:"type:text" json:"summary"` // profile as JSON
	LoadedAt  time.Time `json:"loaded_at"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatService struct {
	db        *gorm.DB
	snowflake *snowflake.Node
}

func NewChatService(db *gorm.DB) (*ChatService, error) {
	node, err := snowflake.NewNode(3)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %w", err)
	}

	return &ChatService{
		db:        db,
		snowflake: node,
	}, nil
}

// Migrate creates or updates the tables
func (s *ChatService) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&ChatMessage{}, &Dataset{}); err != nil {
		return fmt.Errorf("failed to migrate chat tables: %w", err)
	}
	return nil
}

// SaveMessage stores a message once; redelivered messages are ignored
func (s *ChatService) SaveMessage(ctx context.Context, msg *ChatMessage) error {
	if msg.ID == 0 {
		msg.ID = s.snowflake.Generate().Int64()
	}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "message_id"}}, DoNothing: true}).
		Create(msg)
	if result.Error != nil {
		return fmt.Errorf("failed to save message: %w", result.Error)
	}
	return nil
}

func (s *ChatService) ListMessages(ctx context.Context, sessionID string) ([]ChatMessage, error) {
	var messages []ChatMessage
	result := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at, id").
		Find(&messages)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list messages: %w", result.Error)
	}
	return messages, nil
}

// SaveDataset stores a dataset record once; redelivered records are ignored
func (s *ChatService) SaveDataset(ctx context.Context, ds *Dataset) error {
	if ds.ID == 0 {
		ds.ID = s.snowflake.Generate().Int64()
	}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "dataset_id"}}, DoNothing: true}).
		Create(ds)
	if result.Error != nil {
		return fmt.Errorf("failed to save dataset: %w", result.Error)
	}
	return nil
}

func (s *ChatService) ListDatasets(ctx context.Context, sessionID string) ([]Dataset, error) {
	var datasets []Dataset
	result := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("loaded_at").
		Find(&datasets)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", result.Error)
	}
	return datasets, nil
}

// GetDataset returns nil when no record matches
func (s *ChatService) GetDataset(ctx context.Context, datasetID string) (*Dataset, error) {
	var ds Dataset
	result := s.db.WithContext(ctx).Where("dataset_id = ?", datasetID).First(&ds)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get dataset: %w", result.Error)
	}
	return &ds, nil
}

// Ping checks the database connection
func (s *ChatService) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
