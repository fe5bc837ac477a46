package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"health-risk-service/internal/domain"
)

// SessionStore is the durable Postgres implementation of app.SessionStore.
// One row per session, one row per (session, question) enforced by the
// primary key, results stored as jsonb 1:1 with completed sessions.
type SessionStore struct {
	pool *pgxpool.Pool
}

func NewSessionStore(pool *pgxpool.Pool) *SessionStore {
	return &SessionStore{pool: pool}
}

func (s *SessionStore) CreateSession(ctx context.Context, session domain.Session) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sessions (id, status, created_at, client_meta) VALUES ($1, $2, $3, $4)`,
		session.ID, string(session.Status), session.CreatedAt, session.ClientMeta)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *SessionStore) GetSession(ctx context.Context, id string) (domain.Session, error) {
	var (
		session     domain.Session
		status      string
		completedAt *time.Time
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, status, created_at, completed_at, client_meta FROM sessions WHERE id=$1`, id).
		Scan(&session.ID, &status, &session.CreatedAt, &completedAt, &session.ClientMeta)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("get session: %w", err)
	}
	session.Status = domain.SessionStatus(status)
	session.CompletedAt = completedAt
	return session, nil
}

func (s *SessionStore) UpsertResponse(ctx context.Context, r domain.Response) (bool, int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, 0, fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback(ctx)

	var overwritten bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM responses WHERE session_id=$1 AND question_id=$2)`,
		r.SessionID, r.QuestionID).Scan(&overwritten)
	if err != nil {
		return false, 0, fmt.Errorf("check response: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO responses (session_id, question_id, category, label, points, answered_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (session_id, question_id)
		 DO UPDATE SET category=EXCLUDED.category, label=EXCLUDED.label,
		               points=EXCLUDED.points, answered_at=EXCLUDED.answered_at`,
		r.SessionID, r.QuestionID, string(r.Category), r.Label, r.Points, r.AnsweredAt)
	if err != nil {
		return false, 0, fmt.Errorf("upsert response: %w", err)
	}

	var count int
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM responses WHERE session_id=$1`, r.SessionID).Scan(&count); err != nil {
		return false, 0, fmt.Errorf("count responses: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, 0, fmt.Errorf("commit upsert: %w", err)
	}
	return overwritten, count, nil
}

func (s *SessionStore) ListResponses(ctx context.Context, sessionID string) ([]domain.Response, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT session_id, question_id, category, label, points, answered_at
		 FROM responses WHERE session_id=$1`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer rows.Close()

	var out []domain.Response
	for rows.Next() {
		var (
			r        domain.Response
			category string
		)
		if err := rows.Scan(&r.SessionID, &r.QuestionID, &category, &r.Label, &r.Points, &r.AnsweredAt); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		r.Category = domain.Category(category)
		out = append(out, r)
	}
	return out, rows.Err()
}

// CompleteSession re-checks the response count and the in_progress status
// inside one transaction so a racing submit or a second finalize cannot slip
// past the completeness gate.
func (s *SessionStore) CompleteSession(ctx context.Context, result domain.ScoringResult, completedAt time.Time, expectedResponses int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin complete: %w", err)
	}
	defer tx.Rollback(ctx)

	var count int
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM responses WHERE session_id=$1`, result.SessionID).Scan(&count); err != nil {
		return fmt.Errorf("count responses: %w", err)
	}
	if count != expectedResponses {
		return &domain.IncompleteAssessmentError{Expected: expectedResponses, Actual: count}
	}

	tag, err := tx.Exec(ctx,
		`UPDATE sessions SET status=$2, completed_at=$3 WHERE id=$1 AND status=$4`,
		result.SessionID, string(domain.StatusCompleted), completedAt, string(domain.StatusInProgress))
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM sessions WHERE id=$1)`, result.SessionID).Scan(&exists); err != nil {
			return fmt.Errorf("check session: %w", err)
		}
		if !exists {
			return domain.ErrSessionNotFound
		}
		return domain.ErrSessionFinalized
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO results (session_id, data) VALUES ($1, $2)`, result.SessionID, data); err != nil {
		return fmt.Errorf("insert result: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit complete: %w", err)
	}
	return nil
}

func (s *SessionStore) GetResult(ctx context.Context, sessionID string) (domain.ScoringResult, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM results WHERE session_id=$1`, sessionID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ScoringResult{}, domain.ErrResultNotFound
	}
	if err != nil {
		return domain.ScoringResult{}, fmt.Errorf("get result: %w", err)
	}
	var result domain.ScoringResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return domain.ScoringResult{}, fmt.Errorf("unmarshal result: %w", err)
	}
	return result, nil
}

func (s *SessionStore) AbandonStale(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE sessions SET status=$1 WHERE status=$2 AND created_at < $3`,
		string(domain.StatusAbandoned), string(domain.StatusInProgress), cutoff)
	if err != nil {
		return 0, fmt.Errorf("abandon stale: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
