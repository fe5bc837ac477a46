package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"health-risk-service/internal/domain"
)

// SessionStore keeps assessment state in Redis:
//
//	SET  assessment:session:{id}   session JSON (TTL = abandonment policy)
//	HSET assessment:{id}:responses {questionID} response JSON
//	SET  assessment:{id}:result    result JSON (no expiry)
//
// The session key TTL doubles as the abandonment policy: a stale in_progress
// session simply expires, so AbandonStale has nothing to sweep here.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) CreateSession(ctx context.Context, session domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ok, err := s.client.SetNX(ctx, s.sessionKey(session.ID), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	if !ok {
		return fmt.Errorf("create session: token collision for %s", session.ID)
	}
	return nil
}

func (s *SessionStore) GetSession(ctx context.Context, id string) (domain.Session, error) {
	data, err := s.client.Get(ctx, s.sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("get session: %w", err)
	}
	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return domain.Session{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return session, nil
}

func (s *SessionStore) UpsertResponse(ctx context.Context, r domain.Response) (bool, int, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return false, 0, fmt.Errorf("marshal response: %w", err)
	}
	key := s.responsesKey(r.SessionID)
	created, err := s.client.HSet(ctx, key, r.QuestionID, data).Result()
	if err != nil {
		return false, 0, fmt.Errorf("upsert response: %w", err)
	}
	if s.ttl > 0 {
		_ = s.client.Expire(ctx, key, s.ttl).Err()
	}
	count, err := s.client.HLen(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("count responses: %w", err)
	}
	return created == 0, int(count), nil
}

func (s *SessionStore) ListResponses(ctx context.Context, sessionID string) ([]domain.Response, error) {
	fields, err := s.client.HGetAll(ctx, s.responsesKey(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	out := make([]domain.Response, 0, len(fields))
	for _, raw := range fields {
		var r domain.Response
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, fmt.Errorf("unmarshal response: %w", err)
		}
		out = append(out, r)
	}
	return out, nil
}

// CompleteSession transitions the session under WATCH so a racing submit or a
// second finalize loses cleanly instead of finalizing partial data.
func (s *SessionStore) CompleteSession(ctx context.Context, result domain.ScoringResult, completedAt time.Time, expectedResponses int) error {
	sessionKey := s.sessionKey(result.SessionID)
	responsesKey := s.responsesKey(result.SessionID)

	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, sessionKey).Bytes()
		if errors.Is(err, redis.Nil) {
			return domain.ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}
		var session domain.Session
		if err := json.Unmarshal(data, &session); err != nil {
			return fmt.Errorf("unmarshal session: %w", err)
		}
		if session.Status != domain.StatusInProgress {
			return domain.ErrSessionFinalized
		}
		count, err := tx.HLen(ctx, responsesKey).Result()
		if err != nil {
			return fmt.Errorf("count responses: %w", err)
		}
		if int(count) != expectedResponses {
			return &domain.IncompleteAssessmentError{Expected: expectedResponses, Actual: int(count)}
		}

		session.Status = domain.StatusCompleted
		session.CompletedAt = &completedAt
		sessionData, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}
		resultData, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			// Completed sessions and their results outlive the in-progress TTL.
			pipe.Set(ctx, sessionKey, sessionData, 0)
			pipe.Set(ctx, s.resultKey(result.SessionID), resultData, 0)
			pipe.Persist(ctx, responsesKey)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < 3; attempt++ {
		err := s.client.Watch(ctx, txn, sessionKey, responsesKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("complete session %s: too many write conflicts", result.SessionID)
}

func (s *SessionStore) GetResult(ctx context.Context, sessionID string) (domain.ScoringResult, error) {
	data, err := s.client.Get(ctx, s.resultKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.ScoringResult{}, domain.ErrResultNotFound
	}
	if err != nil {
		return domain.ScoringResult{}, fmt.Errorf("get result: %w", err)
	}
	var result domain.ScoringResult
	if err := json.Unmarshal(data, &result); err != nil {
		return domain.ScoringResult{}, fmt.Errorf("unmarshal result: %w", err)
	}
	return result, nil
}

// AbandonStale is a no-op: the session key TTL expires stale sessions.
func (s *SessionStore) AbandonStale(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}

func (s *SessionStore) sessionKey(id string) string {
	return "assessment:session:" + id
}

func (s *SessionStore) responsesKey(id string) string {
	return "assessment:" + id + ":responses"
}

func (s *SessionStore) resultKey(id string) string {
	return "assessment:" + id + ":result"
}
