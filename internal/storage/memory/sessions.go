package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"interview-analyzer/internal/storage"
)

// SessionStore хранит сессии в памяти процесса
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*storage.InterviewSession
}

var _ storage.SessionRepository = (*SessionStore)(nil)

// NewSessionStore создает пустое хранилище сессий
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*storage.InterviewSession),
	}
}

func (s *SessionStore) Create(ctx context.Context, session *storage.InterviewSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.ID]; exists {
		return fmt.Errorf("сессия %s уже существует", session.ID)
	}
	s.sessions[session.ID] = session.Clone()
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*storage.InterviewSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, exists := s.sessions[id]
	if !exists {
		return nil, fmt.Errorf("сессия %s: %w", id, storage.ErrNotFound)
	}
	return session.Clone(), nil
}

func (s *SessionStore) Save(ctx context.Context, session *storage.InterviewSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.ID]; !exists {
		return fmt.Errorf("сессия %s: %w", session.ID, storage.ErrNotFound)
	}
	s.sessions[session.ID] = session.Clone()
	return nil
}

func (s *SessionStore) ListByUser(ctx context.Context, userID string) ([]*storage.InterviewSession, error) {
	return s.list(func(sess *storage.InterviewSession) bool { return sess.UserID == userID }), nil
}

func (s *SessionStore) ListByApplication(ctx context.Context, applicationID string) ([]*storage.InterviewSession, error) {
	return s.list(func(sess *storage.InterviewSession) bool { return sess.ApplicationID == applicationID }), nil
}

// list возвращает подходящие сессии по времени начала, затем по id
func (s *SessionStore) list(match func(*storage.InterviewSession) bool) []*storage.InterviewSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*storage.InterviewSession{}
	for _, sess := range s.sessions {
		if match(sess) {
			result = append(result, sess.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].StartedAt.Equal(result[j].StartedAt) {
			return result[i].StartedAt.Before(result[j].StartedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result
}
