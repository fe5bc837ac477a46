// Package scoring turns a complete response set into a risk score,
// classification, and recommendations. The engine is pure: same inputs, same
// bytes out, regardless of submission order.
package scoring

import (
	"fmt"
	"math"

	"health-risk-service/internal/catalog"
	"health-risk-service/internal/domain"
)

// Risk bands partition [0,100] with no gaps and no overlaps.
const (
	lowUpper      = 30
	moderateUpper = 60
)

// Engine computes scoring results against a fixed catalog.
type Engine struct {
	cat *catalog.Catalog
}

func NewEngine(cat *catalog.Catalog) *Engine {
	return &Engine{cat: cat}
}

// Score aggregates the responses into a ScoringResult. The caller guarantees
// one response per catalog question; the count is re-checked here and a
// mismatch fails before any scoring occurs.
func (e *Engine) Score(sessionID string, responses []domain.Response) (domain.ScoringResult, error) {
	if len(responses) != e.cat.Size() {
		return domain.ScoringResult{}, &domain.IncompleteAssessmentError{
			Expected: e.cat.Size(),
			Actual:   len(responses),
		}
	}

	sums := make(map[domain.Category]int)
	for _, r := range responses {
		sums[r.Category] += r.Points
	}

	percentages := make(map[domain.Category]int)
	total := 0.0
	for _, c := range e.cat.CategoriesInOrder() {
		pct := 0
		if max := e.cat.MaxPoints(c); max > 0 {
			pct = int(math.Round(100 * float64(sums[c]) / float64(max)))
		}
		percentages[c] = pct
		total += float64(pct) * e.cat.Weight(c)
	}

	totalScore := math.Round(total*100) / 100
	rounded := int(math.Round(totalScore))
	level := classify(rounded)
	highest := highestRiskSet(e.cat.CategoriesInOrder(), percentages)

	return domain.ScoringResult{
		SessionID:       sessionID,
		TotalScore:      totalScore,
		RoundedScore:    rounded,
		RiskLevel:       level,
		CategoryScores:  sums,
		Percentages:     percentages,
		HighestRisk:     highest,
		Interpretation:  interpret(level, rounded),
		Recommendations: recommend(level, highest),
	}, nil
}

// classify maps a rounded total onto the three closed bands.
func classify(score int) domain.RiskLevel {
	switch {
	case score <= lowUpper:
		return domain.RiskLow
	case score <= moderateUpper:
		return domain.RiskModerate
	default:
		return domain.RiskHigh
	}
}

// highestRiskSet returns every category at the maximum percentage, in catalog
// order. An all-zero input yields an empty set: when every category is at its
// best possible state there is no risk to single out, and picking one anyway
// would mislead the respondent.
func highestRiskSet(order []domain.Category, percentages map[domain.Category]int) []domain.Category {
	max := 0
	for _, c := range order {
		if percentages[c] > max {
			max = percentages[c]
		}
	}
	if max == 0 {
		return []domain.Category{}
	}
	set := make([]domain.Category, 0, len(order))
	for _, c := range order {
		if percentages[c] == max {
			set = append(set, c)
		}
	}
	return set
}

// interpret builds the level-specific summary sentence. It branches on the
// risk level and score only, never on individual answers.
func interpret(level domain.RiskLevel, score int) string {
	switch level {
	case domain.RiskLow:
		return fmt.Sprintf("Your overall risk score is %d, which falls in the low range. Your answers suggest your current habits and circumstances are protective of your health.", score)
	case domain.RiskModerate:
		return fmt.Sprintf("Your overall risk score is %d, which falls in the moderate range. Some of your answers point to areas where changes could meaningfully reduce your risk.", score)
	default:
		return fmt.Sprintf("Your overall risk score is %d, which falls in the high range. Your answers indicate several factors that together warrant attention soon.", score)
	}
}
