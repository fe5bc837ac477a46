package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"health-risk-service/internal/domain"
)

func testSession(id string, createdAt time.Time) domain.Session {
	return domain.Session{ID: id, Status: domain.StatusInProgress, CreatedAt: createdAt}
}

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	if err := store.CreateSession(ctx, testSession("s1", created)); err != nil {
		t.Fatalf("create: %v", err)
	}
	session, err := store.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if session.Status != domain.StatusInProgress {
		t.Fatalf("expected in_progress, got %s", session.Status)
	}
	if _, err := store.GetSession(ctx, "missing"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestUpsertResponseReportsOverwrite(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	_ = store.CreateSession(ctx, testSession("s1", time.Now()))

	overwritten, count, err := store.UpsertResponse(ctx, domain.Response{SessionID: "s1", QuestionID: "q1", Points: 2})
	if err != nil || overwritten || count != 1 {
		t.Fatalf("first upsert: overwritten=%v count=%d err=%v", overwritten, count, err)
	}
	overwritten, count, err = store.UpsertResponse(ctx, domain.Response{SessionID: "s1", QuestionID: "q1", Points: 0})
	if err != nil || !overwritten || count != 1 {
		t.Fatalf("second upsert: overwritten=%v count=%d err=%v", overwritten, count, err)
	}

	responses, err := store.ListResponses(ctx, "s1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(responses) != 1 || responses[0].Points != 0 {
		t.Fatalf("expected single overwritten row, got %+v", responses)
	}
}

func TestCompleteSessionGuards(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	_ = store.CreateSession(ctx, testSession("s1", time.Now()))
	_, _, _ = store.UpsertResponse(ctx, domain.Response{SessionID: "s1", QuestionID: "q1"})

	result := domain.ScoringResult{SessionID: "s1", RiskLevel: domain.RiskLow}
	now := time.Now()

	err := store.CompleteSession(ctx, result, now, 2)
	if !errors.Is(err, domain.ErrIncompleteAssessment) {
		t.Fatalf("expected ErrIncompleteAssessment for short count, got %v", err)
	}

	if err := store.CompleteSession(ctx, result, now, 1); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := store.CompleteSession(ctx, result, now, 1); !errors.Is(err, domain.ErrSessionFinalized) {
		t.Fatalf("expected ErrSessionFinalized on repeat, got %v", err)
	}

	session, _ := store.GetSession(ctx, "s1")
	if session.Status != domain.StatusCompleted || session.CompletedAt == nil {
		t.Fatalf("expected completed session, got %+v", session)
	}
	fetched, err := store.GetResult(ctx, "s1")
	if err != nil || fetched.SessionID != "s1" {
		t.Fatalf("get result: %+v, %v", fetched, err)
	}
}

func TestGetResultMissing(t *testing.T) {
	store := NewSessionStore()
	if _, err := store.GetResult(context.Background(), "nope"); !errors.Is(err, domain.ErrResultNotFound) {
		t.Fatalf("expected ErrResultNotFound, got %v", err)
	}
}

func TestAbandonStale(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	old := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	_ = store.CreateSession(ctx, testSession("old", old))
	_ = store.CreateSession(ctx, testSession("new", old.Add(2*time.Hour)))

	swept, err := store.AbandonStale(ctx, old.Add(time.Hour))
	if err != nil || swept != 1 {
		t.Fatalf("sweep: swept=%d err=%v", swept, err)
	}
	session, _ := store.GetSession(ctx, "old")
	if session.Status != domain.StatusAbandoned {
		t.Fatalf("expected abandoned, got %s", session.Status)
	}
	session, _ = store.GetSession(ctx, "new")
	if session.Status != domain.StatusInProgress {
		t.Fatalf("expected in_progress, got %s", session.Status)
	}
}
