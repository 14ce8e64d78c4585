// Package memory provides an in-process SessionRepository. Sessions are
// lost on restart; use the SQL store when they must survive one.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/sakif/habit-tracker/internal/apperror"
	"github.com/sakif/habit-tracker/internal/model"
	"github.com/sakif/habit-tracker/internal/repository"
)

var _ repository.SessionRepository = (*SessionStore)(nil)

// SessionStore is a map of sessions guarded by a RWMutex.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]model.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]model.Session)}
}

// SaveSession stores a copy of session, replacing any previous one with the
// same token.
func (s *SessionStore) SaveSession(_ context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = *session
	return nil
}

func (s *SessionStore) GetSession(_ context.Context, token string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[token]
	if !ok {
		return nil, apperror.NotFoundMessage("session not found")
	}
	return &sess, nil
}

func (s *SessionStore) DeleteSession(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *SessionStore) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for token, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, token)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored sessions, expired ones included.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
