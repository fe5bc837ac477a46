package domain

import "time"

// Category is one of the fixed thematic groupings of questions. The set is
// closed: weights, maxima, and recommendations are defined per category and a
// new category is a catalog change, not a runtime event.
type Category string

const (
	CategoryBehavioral    Category = "behavioral"
	CategoryKnowledge     Category = "knowledge"
	CategoryEnvironmental Category = "environmental"
	CategorySocioeconomic Category = "socioeconomic"
)

// Categories lists every category in catalog order.
func Categories() []Category {
	return []Category{CategoryBehavioral, CategoryKnowledge, CategoryEnvironmental, CategorySocioeconomic}
}

// Option is a possible answer for a question. Point values never leave the
// server; validation authority stays server-side.
type Option struct {
	Label  string `json:"label"`
	Points int    `json:"points"`
}

// Question is one catalog entry. Ordinals are dense, 1..N.
type Question struct {
	ID       string   `json:"id"`
	Ordinal  int      `json:"ordinal"`
	Category Category `json:"category"`
	Prompt   string   `json:"prompt"`
	Options  []Option `json:"options"`
}

// MaxPoints returns the highest option point value of the question.
func (q Question) MaxPoints() int {
	max := 0
	for _, opt := range q.Options {
		if opt.Points > max {
			max = opt.Points
		}
	}
	return max
}

// SessionStatus is the lifecycle state of an assessment session.
type SessionStatus string

const (
	StatusInProgress SessionStatus = "in_progress"
	StatusCompleted  SessionStatus = "completed"
	StatusAbandoned  SessionStatus = "abandoned"
)

// Terminal reports whether no further transitions are allowed.
func (s SessionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusAbandoned
}

// Session is one respondent's single linear traversal of the questionnaire,
// identified by an opaque token.
type Session struct {
	ID          string        `json:"id"`
	Status      SessionStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
	CompletedAt *time.Time    `json:"completedAt,omitempty"`
	ClientMeta  string        `json:"clientMeta,omitempty"`
}

// Response records one validated answer. A resubmission for the same question
// overwrites the prior row; stores keep at most one row per (session, question).
type Response struct {
	SessionID  string    `json:"sessionId"`
	QuestionID string    `json:"questionId"`
	Category   Category  `json:"category"`
	Label      string    `json:"label"`
	Points     int       `json:"points"`
	AnsweredAt time.Time `json:"answeredAt"`
}

// RiskLevel is the coarse three-way classification of the weighted total.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
)

// ScoringResult is the immutable outcome of finalizing a session, 1:1 with a
// completed session.
type ScoringResult struct {
	SessionID       string           `json:"sessionId"`
	TotalScore      float64          `json:"totalScore"`   // weighted, reported to two decimals
	RoundedScore    int              `json:"roundedScore"` // drives classification
	RiskLevel       RiskLevel        `json:"riskLevel"`
	CategoryScores  map[Category]int `json:"categoryScores"` // raw point sums
	Percentages     map[Category]int `json:"percentages"`    // rounded, 0..100
	HighestRisk     []Category       `json:"highestRisk"`    // ties kept, catalog order; empty when all zero
	Interpretation  string           `json:"interpretation"`
	Recommendations []string         `json:"recommendations"`
}
