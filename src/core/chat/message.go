package chat

import (
	"time"

	"github.com/miminchandrank/Csv-data-analyst/src/core/profile"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

const (
	MsgNoDataset  = "Please upload a CSV file first"
	MsgLoadFailed = "❌ Failed to process file. Please try another CSV."
	msgLoaded     = "✅ Data loaded successfully!\n\n"
	msgError      = "⚠️ Error: "
)

type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Event topics
const (
	TopicMessages = "csvanalyst.messages"
	TopicDatasets = "csvanalyst.datasets"
)

// MessageEvent is published for every message appended to a session
type MessageEvent struct {
	SessionID string  `json:"session_id"`
	Message   Message `json:"message"`
}

// DatasetEvent is published once a dataset has been loaded and indexed
type DatasetEvent struct {
	SessionID string           `json:"session_id"`
	DatasetID string           `json:"dataset_id"`
	Filename  string           `json:"filename"`
	FileKey   string           `json:"file_key"`
	Rows      int              `json:"rows"`
	Columns   int              `json:"columns"`
	Encoding  string           `json:"encoding"`
	Separator string           `json:"separator"`
	Summary   *profile.Summary `json:"summary"`
	LoadedAt  time.Time        `json:"loaded_at"`
}
