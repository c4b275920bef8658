// Package chat runs analyst sessions: a dataset upload followed by questions
// answered from the dataset's profile.
package chat

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/miminchandrank/Csv-data-analyst/src/core/dataset"
	"github.com/miminchandrank/Csv-data-analyst/src/core/formatter"
	"github.com/miminchandrank/Csv-data-analyst/src/core/profile"
	"github.com/miminchandrank/Csv-data-analyst/src/core/rag"
	"github.com/miminchandrank/Csv-data-analyst/src/fsutil"
	"github.com/miminchandrank/Csv-data-analyst/src/log"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrNoDataset       = errors.New("no dataset loaded")
	ErrEmptyPrompt     = errors.New("prompt is empty")
	ErrEmptyUpload     = errors.New("uploaded file is empty")
)

// SystemFactory builds the retrieval system for a newly loaded dataset
type SystemFactory func() *rag.System

// Publisher delivers session events; delivery failures never fail the session
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
}

// Archive keeps copies of uploaded and exported files
type Archive interface {
	Put(ctx context.Context, key string, data []byte) error
}

type Option func(*Service)

func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithArchive(a Archive) Option {
	return func(s *Service) { s.archive = a }
}

// WithTempDir sets where uploads are staged; empty means the OS default
func WithTempDir(dir string) Option {
	return func(s *Service) { s.tempDir = dir }
}

func WithLoadOptions(opts ...dataset.Option) Option {
	return func(s *Service) { s.loadOpts = opts }
}

// WithNodeID sets the snowflake node used for message and dataset IDs
func WithNodeID(id int64) Option {
	return func(s *Service) { s.nodeID = id }
}

type Service struct {
	sessions  *SessionStore
	files     fsutil.FileStore
	newSystem SystemFactory
	publisher Publisher
	archive   Archive
	tempDir   string
	loadOpts  []dataset.Option
	nodeID    int64
	node      *snowflake.Node
	now       func() time.Time
}

func NewService(sessions *SessionStore, files fsutil.FileStore, newSystem SystemFactory, opts ...Option) (*Service, error) {
	s := &Service{
		sessions:  sessions,
		files:     files,
		newSystem: newSystem,
		nodeID:    1,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}

	node, err := snowflake.NewNode(s.nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create id generator: %w", err)
	}
	s.node = node
	return s, nil
}

// CreateSession starts an empty session
func (s *Service) CreateSession(_ context.Context) *Session {
	sess := s.sessions.Create()
	log.Info("session created", "session_id", sess.ID)
	return sess
}

// Reset discards the session together with its index
func (s *Service) Reset(_ context.Context, sessionID string) error {
	if err := s.sessions.Delete(sessionID); err != nil {
		return err
	}
	log.Info("session reset", "session_id", sessionID)
	return nil
}

// FileKey identifies an upload by name and content
func FileKey(filename string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(filename))
	h.Write([]byte{0})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Upload loads a CSV file into the session, replacing the previous dataset
// and clearing the conversation. Uploading the file that is already loaded
// changes nothing. On failure the session records a failure message and the
// error is returned.
func (s *Service) Upload(ctx context.Context, sessionID, filename string, data []byte) ([]Message, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	key := FileKey(filename, data)
	if key == sess.fileKey {
		log.Debug("same file uploaded again", "session_id", sessionID, "filename", filename)
		return cloneMessages(sess.messages), nil
	}

	sess.messages = nil
	sess.fileKey = key

	ds, system, err := s.load(ctx, sess, filename, data)
	if err != nil {
		log.Error(err, "failed to process upload", "session_id", sessionID, "filename", filename)
		s.dropDataset(ctx, sess)
		s.appendMessage(ctx, sess, RoleAssistant, MsgLoadFailed)
		return cloneMessages(sess.messages), err
	}

	s.dropDataset(ctx, sess)
	sess.dataset = ds
	sess.system = system

	s.appendMessage(ctx, sess, RoleAssistant, msgLoaded+ds.Summary.Text())

	rows, cols := ds.Frame.Shape()
	s.publish(ctx, TopicDatasets, DatasetEvent{
		SessionID: sess.ID,
		DatasetID: ds.ID,
		Filename:  filename,
		FileKey:   key,
		Rows:      rows,
		Columns:   cols,
		Encoding:  ds.Metadata.Encoding,
		Separator: ds.Metadata.Separator,
		Summary:   ds.Summary,
		LoadedAt:  ds.LoadedAt,
	})
	log.Info("dataset loaded", "session_id", sessionID, "dataset_id", ds.ID, "rows", rows, "columns", cols)

	return cloneMessages(sess.messages), nil
}

// dropDataset unloads the session's dataset and drops its index
func (s *Service) dropDataset(ctx context.Context, sess *Session) {
	if sess.system != nil {
		if err := sess.system.Close(ctx); err != nil {
			log.Error(err, "failed to drop previous index", "session_id", sess.ID)
		}
	}
	sess.dataset = nil
	sess.system = nil
}

func (s *Service) load(ctx context.Context, sess *Session, filename string, data []byte) (*Dataset, *rag.System, error) {
	if len(data) == 0 {
		return nil, nil, ErrEmptyUpload
	}

	datasetID := s.node.Generate().String()
	if s.archive != nil {
		key := path.Join("uploads", sess.ID, datasetID, path.Base(filename))
		if err := s.archive.Put(ctx, key, data); err != nil {
			log.Error(err, "failed to archive upload", "key", key)
		}
	}

	tmp, err := s.files.WriteTempFile(s.tempDir, ".csv", data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stage upload: %w", err)
	}
	defer func() {
		if err := s.files.Remove(tmp); err != nil {
			log.Error(err, "failed to remove staged upload", "path", tmp)
		}
	}()

	r, err := s.files.ReadFileAsStream(tmp)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open staged upload: %w", err)
	}
	defer r.Close()

	frame, meta, err := dataset.Load(r, s.loadOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load csv: %w", err)
	}

	summary := profile.Analyze(frame, meta)
	documents := rag.GenerateDocuments(frame, summary)

	system := s.newSystem()
	if err := system.Prepare(ctx, "Dataset"+datasetID, documents, nil); err != nil {
		if cerr := system.Close(ctx); cerr != nil {
			log.Error(cerr, "failed to drop partial index", "dataset_id", datasetID)
		}
		return nil, nil, fmt.Errorf("failed to index dataset: %w", err)
	}

	return &Dataset{
		ID:        datasetID,
		Filename:  filename,
		Frame:     frame,
		Metadata:  meta,
		Summary:   summary,
		Documents: documents,
		LoadedAt:  s.now(),
	}, system, nil
}

// Ask records the user's prompt and the assistant's reply. An answering
// failure is recorded as an error message and returned.
func (s *Service) Ask(ctx context.Context, sessionID, prompt string) (*Message, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	s.appendMessage(ctx, sess, RoleUser, prompt)

	if sess.dataset == nil || sess.system == nil {
		reply := s.appendMessage(ctx, sess, RoleAssistant, MsgNoDataset)
		return &reply, nil
	}

	answer, err := sess.system.Answer(ctx, prompt)
	if err != nil {
		log.Error(err, "failed to answer question", "session_id", sessionID)
		s.appendMessage(ctx, sess, RoleAssistant, msgError+err.Error())
		return nil, err
	}

	reply := s.appendMessage(ctx, sess, RoleAssistant, formatter.Format(answer, prompt))
	return &reply, nil
}

func (s *Service) Messages(_ context.Context, sessionID string) ([]Message, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return cloneMessages(sess.messages), nil
}

func (s *Service) Summary(_ context.Context, sessionID string) (*profile.Summary, error) {
	ds, err := s.currentDataset(sessionID)
	if err != nil {
		return nil, err
	}
	return ds.Summary, nil
}

// Export writes the loaded dataset as CSV without the index column
func (s *Service) Export(ctx context.Context, sessionID string, w io.Writer) error {
	ds, err := s.currentDataset(sessionID)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := dataset.WriteCSV(&buf, ds.Frame); err != nil {
		return fmt.Errorf("failed to export dataset: %w", err)
	}

	if s.archive != nil {
		key := path.Join("exports", sessionID, ds.ID, dataset.ExportFilename)
		if err := s.archive.Put(ctx, key, buf.Bytes()); err != nil {
			log.Error(err, "failed to archive export", "key", key)
		}
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

func (s *Service) currentDataset(sessionID string) (*Dataset, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.dataset == nil {
		return nil, ErrNoDataset
	}
	return sess.dataset, nil
}

func (s *Service) appendMessage(ctx context.Context, sess *Session, role Role, content string) Message {
	msg := Message{
		ID:        s.node.Generate().String(),
		Role:      role,
		Content:   content,
		CreatedAt: s.now(),
	}
	sess.messages = append(sess.messages, msg)
	s.publish(ctx, TopicMessages, MessageEvent{SessionID: sess.ID, Message: msg})
	return msg
}

func (s *Service) publish(ctx context.Context, topic string, event any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		log.Error(err, "failed to publish event", "topic", topic)
	}
}

func cloneMessages(messages []Message) []Message {
	out := make([]Message, len(messages))
	copy(out, messages)
	return out
}
