package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/markaz/report-assistant/internal/entity"
	gocache "github.com/patrickmn/go-cache"
)

// SessionCache keeps per-user conversation state in process memory with a
// sliding TTL. A session exists from first interaction until expiry or an
// explicit delete; nothing survives a restart.
type SessionCache struct {
	mu    sync.Mutex
	cache *gocache.Cache
}

func NewSessionCache(ttl time.Duration) *SessionCache {
	return &SessionCache{
		cache: gocache.New(ttl, 10*time.Minute),
	}
}

// CreateSession provisions an empty authenticated session.
func (s *SessionCache) CreateSession(_ context.Context) (*entity.Session, error) {
	now := time.Now().UTC()
	session := &entity.Session{
		ID:            uuid.NewString(),
		Authenticated: true,
		Messages:      make([]entity.Message, 0, 16),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	s.mu.Lock()
	s.cache.SetDefault(session.ID, session)
	s.mu.Unlock()

	return copySession(session), nil
}

// GetSession returns a copy of the session so callers cannot mutate shared
// state outside AppendMessages.
func (s *SessionCache) GetSession(_ context.Context, sessionID string) (*entity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}
	return copySession(session), nil
}

// AppendMessages appends turns to the session history in order and refreshes
// the TTL. History is append-only; there is no update or reorder path.
func (s *SessionCache) AppendMessages(_ context.Context, sessionID string, messages ...entity.Message) (*entity.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.get(sessionID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	for _, m := range messages {
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		session.Messages = append(session.Messages, m)
	}
	session.UpdatedAt = now

	s.cache.SetDefault(sessionID, session)
	return copySession(session), nil
}

// DeleteSession destroys the session. Deleting an unknown session reports
// ErrSessionNotFound so the handler can answer 404.
func (s *SessionCache) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.get(sessionID); err != nil {
		return err
	}
	s.cache.Delete(sessionID)
	return nil
}

func (s *SessionCache) get(sessionID string) (*entity.Session, error) {
	v, ok := s.cache.Get(sessionID)
	if !ok {
		return nil, entity.ErrSessionNotFound
	}
	session, ok := v.(*entity.Session)
	if !ok {
		return nil, entity.ErrSessionNotFound
	}
	return session, nil
}

func copySession(session *entity.Session) *entity.Session {
	copied := *session
	copied.Messages = make([]entity.Message, len(session.Messages))
	copy(copied.Messages, session.Messages)
	return &copied
}
