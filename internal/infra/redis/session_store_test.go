package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"health-risk-service/internal/domain"
)

func newTestStore(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewSessionStore(client, time.Minute), mr
}

func TestSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	session := domain.Session{ID: "s1", Status: domain.StatusInProgress, CreatedAt: created}
	if err := store.CreateSession(ctx, session); err != nil {
		t.Fatalf("create: %v", err)
	}
	if !mr.Exists("assessment:session:s1") {
		t.Fatal("expected session key in redis")
	}

	got, err := store.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != "s1" || got.Status != domain.StatusInProgress || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected session: %+v", got)
	}

	if _, err := store.GetSession(ctx, "missing"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestUpsertResponseCountsDistinctQuestions(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	_ = store.CreateSession(ctx, domain.Session{ID: "s1", Status: domain.StatusInProgress, CreatedAt: time.Now()})

	overwritten, count, err := store.UpsertResponse(ctx, domain.Response{SessionID: "s1", QuestionID: "q1", Points: 3})
	if err != nil || overwritten || count != 1 {
		t.Fatalf("first upsert: overwritten=%v count=%d err=%v", overwritten, count, err)
	}
	overwritten, count, err = store.UpsertResponse(ctx, domain.Response{SessionID: "s1", QuestionID: "q1", Points: 1})
	if err != nil || !overwritten || count != 1 {
		t.Fatalf("resubmit: overwritten=%v count=%d err=%v", overwritten, count, err)
	}
	_, count, err = store.UpsertResponse(ctx, domain.Response{SessionID: "s1", QuestionID: "q2", Points: 0})
	if err != nil || count != 2 {
		t.Fatalf("second question: count=%d err=%v", count, err)
	}

	responses, err := store.ListResponses(ctx, "s1")
	if err != nil || len(responses) != 2 {
		t.Fatalf("list: %d responses, err=%v", len(responses), err)
	}
	for _, r := range responses {
		if r.QuestionID == "q1" && r.Points != 1 {
			t.Fatalf("expected overwritten points=1, got %+v", r)
		}
	}
}

func TestCompleteSessionIsExactlyOnce(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)
	_ = store.CreateSession(ctx, domain.Session{ID: "s1", Status: domain.StatusInProgress, CreatedAt: time.Now()})
	_, _, _ = store.UpsertResponse(ctx, domain.Response{SessionID: "s1", QuestionID: "q1"})

	result := domain.ScoringResult{SessionID: "s1", RiskLevel: domain.RiskLow, TotalScore: 0}
	completedAt := time.Now().UTC()

	if err := store.CompleteSession(ctx, result, completedAt, 5); !errors.Is(err, domain.ErrIncompleteAssessment) {
		t.Fatalf("expected ErrIncompleteAssessment, got %v", err)
	}
	if err := store.CompleteSession(ctx, result, completedAt, 1); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := store.CompleteSession(ctx, result, completedAt, 1); !errors.Is(err, domain.ErrSessionFinalized) {
		t.Fatalf("expected ErrSessionFinalized, got %v", err)
	}

	// Completed state must outlive the in-progress TTL.
	if ttl := mr.TTL("assessment:session:s1"); ttl != 0 {
		t.Fatalf("expected persisted session key, ttl=%v", ttl)
	}

	session, err := store.GetSession(ctx, "s1")
	if err != nil || session.Status != domain.StatusCompleted || session.CompletedAt == nil {
		t.Fatalf("unexpected session after completion: %+v err=%v", session, err)
	}
	fetched, err := store.GetResult(ctx, "s1")
	if err != nil || fetched.SessionID != "s1" {
		t.Fatalf("get result: %+v err=%v", fetched, err)
	}
}

func TestGetResultMissing(t *testing.T) {
	store, _ := newTestStore(t)
	if _, err := store.GetResult(context.Background(), "nope"); !errors.Is(err, domain.ErrResultNotFound) {
		t.Fatalf("expected ErrResultNotFound, got %v", err)
	}
}

func TestSessionExpiryActsAsAbandonment(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)
	_ = store.CreateSession(ctx, domain.Session{ID: "s1", Status: domain.StatusInProgress, CreatedAt: time.Now()})

	mr.FastForward(2 * time.Minute)
	if _, err := store.GetSession(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected expired session to be gone, got %v", err)
	}
}
