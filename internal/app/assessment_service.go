package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"health-risk-service/internal/catalog"
	"health-risk-service/internal/domain"
	"health-risk-service/internal/scoring"
)

// SessionStore abstracts how sessions, responses, and results are stored
// (in-memory, Redis, Postgres).
type SessionStore interface {
	CreateSession(ctx context.Context, s domain.Session) error
	GetSession(ctx context.Context, id string) (domain.Session, error)
	// UpsertResponse stores at most one response per (session, question) and
	// reports whether a prior answer was overwritten, plus the distinct
	// answered count after the write.
	UpsertResponse(ctx context.Context, r domain.Response) (overwritten bool, answered int, err error)
	ListResponses(ctx context.Context, sessionID string) ([]domain.Response, error)
	// CompleteSession persists the result and transitions the session to
	// completed in one step. It must fail with domain.ErrSessionFinalized if
	// the session already left in_progress, and re-check that exactly
	// expectedResponses responses exist at the point of the transition.
	CompleteSession(ctx context.Context, result domain.ScoringResult, completedAt time.Time, expectedResponses int) error
	GetResult(ctx context.Context, sessionID string) (domain.ScoringResult, error)
	// AbandonStale marks in_progress sessions created before the cutoff as
	// abandoned and returns how many were swept.
	AbandonStale(ctx context.Context, cutoff time.Time) (int, error)
}

// CatalogProvider resolves the active question catalog (builtin, or loaded
// from a backing store behind a cache).
type CatalogProvider interface {
	Catalog(ctx context.Context) (*catalog.Catalog, error)
}

// SubmitOutcome tells the client where it stands after recording an answer.
type SubmitOutcome struct {
	Accepted       bool `json:"accepted"`
	Overwritten    bool `json:"overwritten"`
	AnsweredCount  int  `json:"answeredCount"`
	TotalQuestions int  `json:"totalQuestions"`
}

// AssessmentService owns the session lifecycle: create, record answers,
// finalize exactly once, fetch the persisted result.
type AssessmentService struct {
	store    SessionStore
	catalogs CatalogProvider
	now      func() time.Time
}

func NewAssessmentService(store SessionStore, catalogs CatalogProvider) *AssessmentService {
	return &AssessmentService{store: store, catalogs: catalogs, now: time.Now}
}

// NewAssessmentServiceWithClock is test-only for deterministic timestamps.
func NewAssessmentServiceWithClock(store SessionStore, catalogs CatalogProvider, now func() time.Time) *AssessmentService {
	return &AssessmentService{store: store, catalogs: catalogs, now: now}
}

// CreateSession allocates a fresh unguessable session token and persists the
// session in in_progress state.
func (s *AssessmentService) CreateSession(ctx context.Context, clientMeta string) (domain.Session, error) {
	session := domain.Session{
		ID:         uuid.NewString(),
		Status:     domain.StatusInProgress,
		CreatedAt:  s.now().UTC(),
		ClientMeta: clientMeta,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

// GetQuestion returns the question at the given 1-based ordinal.
func (s *AssessmentService) GetQuestion(ctx context.Context, ordinal int) (domain.Question, error) {
	cat, err := s.catalogs.Catalog(ctx)
	if err != nil {
		return domain.Question{}, err
	}
	q, ok := cat.Question(ordinal)
	if !ok {
		return domain.Question{}, domain.ErrUnknownQuestion
	}
	return q, nil
}

// QuestionCount returns N, the fixed length of the questionnaire.
func (s *AssessmentService) QuestionCount(ctx context.Context) (int, error) {
	cat, err := s.catalogs.Catalog(ctx)
	if err != nil {
		return 0, err
	}
	return cat.Size(), nil
}

// SubmitAnswer validates the answer against the catalog and upserts the
// response. Resubmitting a question overwrites the prior answer.
func (s *AssessmentService) SubmitAnswer(ctx context.Context, sessionID, questionID, label string) (SubmitOutcome, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return SubmitOutcome{}, err
	}
	if session.Status.Terminal() {
		return SubmitOutcome{}, domain.ErrSessionFinalized
	}

	cat, err := s.catalogs.Catalog(ctx)
	if err != nil {
		return SubmitOutcome{}, err
	}
	category, points, err := cat.Resolve(questionID, label)
	if err != nil {
		return SubmitOutcome{}, err
	}

	overwritten, answered, err := s.store.UpsertResponse(ctx, domain.Response{
		SessionID:  sessionID,
		QuestionID: questionID,
		Category:   category,
		Label:      label,
		Points:     points,
		AnsweredAt: s.now().UTC(),
	})
	if err != nil {
		return SubmitOutcome{}, err
	}
	return SubmitOutcome{
		Accepted:       true,
		Overwritten:    overwritten,
		AnsweredCount:  answered,
		TotalQuestions: cat.Size(),
	}, nil
}

// Finalize scores the session and transitions it to completed, exactly once.
// A second call fails with domain.ErrSessionFinalized; a call before every
// question is answered fails with an IncompleteAssessmentError.
func (s *AssessmentService) Finalize(ctx context.Context, sessionID string) (domain.ScoringResult, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return domain.ScoringResult{}, err
	}
	if session.Status.Terminal() {
		return domain.ScoringResult{}, domain.ErrSessionFinalized
	}

	cat, err := s.catalogs.Catalog(ctx)
	if err != nil {
		return domain.ScoringResult{}, err
	}
	responses, err := s.store.ListResponses(ctx, sessionID)
	if err != nil {
		return domain.ScoringResult{}, err
	}
	if err := checkComplete(cat, responses); err != nil {
		return domain.ScoringResult{}, err
	}

	result, err := scoring.NewEngine(cat).Score(sessionID, responses)
	if err != nil {
		return domain.ScoringResult{}, err
	}
	if err := s.store.CompleteSession(ctx, result, s.now().UTC(), cat.Size()); err != nil {
		return domain.ScoringResult{}, err
	}
	return result, nil
}

// GetResult returns the persisted result for a completed session.
func (s *AssessmentService) GetResult(ctx context.Context, sessionID string) (domain.ScoringResult, error) {
	return s.store.GetResult(ctx, sessionID)
}

// AbandonStale applies the time-based abandonment policy. It is driven by a
// sweeper outside the request path, never by scoring.
func (s *AssessmentService) AbandonStale(ctx context.Context, idleAge time.Duration) (int, error) {
	return s.store.AbandonStale(ctx, s.now().UTC().Add(-idleAge))
}

// checkComplete verifies the response set covers the catalog's question ID set
// exactly: one response per question, nothing missing, nothing foreign.
func checkComplete(cat *catalog.Catalog, responses []domain.Response) error {
	answered := make(map[string]struct{}, len(responses))
	for _, r := range responses {
		answered[r.QuestionID] = struct{}{}
	}
	if len(answered) != cat.Size() || len(responses) != len(answered) {
		return &domain.IncompleteAssessmentError{Expected: cat.Size(), Actual: len(answered)}
	}
	for _, q := range cat.Questions() {
		if _, ok := answered[q.ID]; !ok {
			return &domain.IncompleteAssessmentError{Expected: cat.Size(), Actual: len(answered)}
		}
	}
	return nil
}

// IsClientError reports whether the error belongs to the client-correctable
// taxonomy, as opposed to storage unavailability.
func IsClientError(err error) bool {
	for _, sentinel := range []error{
		domain.ErrUnknownQuestion,
		domain.ErrInvalidOption,
		domain.ErrSessionNotFound,
		domain.ErrSessionFinalized,
		domain.ErrIncompleteAssessment,
		domain.ErrResultNotFound,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
