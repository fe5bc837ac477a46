package memory

import (
	"context"
	"sync"
	"time"

	"health-risk-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionStore, suitable
// for tests and single-instance demos.
type SessionStore struct {
	mu        sync.RWMutex
	sessions  map[string]domain.Session
	responses map[string]map[string]domain.Response // sessionID → questionID → response
	results   map[string]domain.ScoringResult
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions:  make(map[string]domain.Session),
		responses: make(map[string]map[string]domain.Response),
		results:   make(map[string]domain.ScoringResult),
	}
}

func (s *SessionStore) CreateSession(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	s.responses[session.ID] = make(map[string]domain.Response)
	return nil
}

func (s *SessionStore) GetSession(_ context.Context, id string) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return session, nil
}

func (s *SessionStore) UpsertResponse(_ context.Context, r domain.Response) (bool, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byQuestion, ok := s.responses[r.SessionID]
	if !ok {
		return false, 0, domain.ErrSessionNotFound
	}
	_, overwritten := byQuestion[r.QuestionID]
	byQuestion[r.QuestionID] = r
	return overwritten, len(byQuestion), nil
}

func (s *SessionStore) ListResponses(_ context.Context, sessionID string) ([]domain.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byQuestion, ok := s.responses[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	out := make([]domain.Response, 0, len(byQuestion))
	for _, r := range byQuestion {
		out = append(out, r)
	}
	return out, nil
}

func (s *SessionStore) CompleteSession(_ context.Context, result domain.ScoringResult, completedAt time.Time, expectedResponses int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[result.SessionID]
	if !ok {
		return domain.ErrSessionNotFound
	}
	if session.Status != domain.StatusInProgress {
		return domain.ErrSessionFinalized
	}
	if got := len(s.responses[result.SessionID]); got != expectedResponses {
		return &domain.IncompleteAssessmentError{Expected: expectedResponses, Actual: got}
	}
	session.Status = domain.StatusCompleted
	session.CompletedAt = &completedAt
	s.sessions[result.SessionID] = session
	s.results[result.SessionID] = result
	return nil
}

func (s *SessionStore) GetResult(_ context.Context, sessionID string) (domain.ScoringResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[sessionID]
	if !ok {
		return domain.ScoringResult{}, domain.ErrResultNotFound
	}
	return result, nil
}

func (s *SessionStore) AbandonStale(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	swept := 0
	for id, session := range s.sessions {
		if session.Status == domain.StatusInProgress && session.CreatedAt.Before(cutoff) {
			session.Status = domain.StatusAbandoned
			s.sessions[id] = session
			swept++
		}
	}
	return swept, nil
}
