package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/miminchandrank/Csv-data-analyst/src/core/dataset"
	"github.com/miminchandrank/Csv-data-analyst/src/core/profile"
	"github.com/miminchandrank/Csv-data-analyst/src/core/rag"
	"github.com/miminchandrank/Csv-data-analyst/src/log"
)

// Dataset is the file currently loaded into a session
type Dataset struct {
	ID        string
	Filename  string
	Frame     *dataset.Frame
	Metadata  *dataset.Metadata
	Summary   *profile.Summary
	Documents []string
	LoadedAt  time.Time
}

// Session holds one conversation about at most one dataset
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	messages []Message
	fileKey  string
	dataset  *Dataset
	system   *rag.System
}

func (s *Session) close(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.system == nil {
		return
	}
	if err := s.system.Close(ctx); err != nil {
		log.Error(err, "failed to drop session index", "session_id", s.ID)
	}
	s.system = nil
}

// SessionStore keeps sessions in memory and expires the ones left idle for
// longer than the configured TTL. Expired or deleted sessions have their
// index dropped.
type SessionStore struct {
	cache *cache.Cache
}

func NewSessionStore(ttl, cleanupInterval time.Duration) *SessionStore {
	c := cache.New(ttl, cleanupInterval)
	c.OnEvicted(func(id string, v interface{}) {
		if s, ok := v.(*Session); ok {
			log.Debug("session evicted", "session_id", id)
			s.close(context.Background())
		}
	})
	return &SessionStore{cache: c}
}

func (st *SessionStore) Create() *Session {
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
	st.cache.Set(s.ID, s, cache.DefaultExpiration)
	return s
}

// Get returns the session and restarts its idle timer
func (st *SessionStore) Get(id string) (*Session, error) {
	v, ok := st.cache.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	st.cache.Set(id, v, cache.DefaultExpiration)
	return v.(*Session), nil
}

func (st *SessionStore) Delete(id string) error {
	if _, ok := st.cache.Get(id); !ok {
		return ErrSessionNotFound
	}
	st.cache.Delete(id)
	return nil
}

func (st *SessionStore) Len() int {
	return st.cache.ItemCount()
}
