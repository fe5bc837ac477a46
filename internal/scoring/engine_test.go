package scoring

import (
	"errors"
	"reflect"
	"testing"

	"health-risk-service/internal/catalog"
	"health-risk-service/internal/domain"
)

// responsesWith builds one response per builtin question, distributing the
// requested per-category sums across that category's questions.
func responsesWith(t *testing.T, sums map[domain.Category]int) []domain.Response {
	t.Helper()
	cat := catalog.Builtin()
	remaining := make(map[domain.Category]int, len(sums))
	for c, s := range sums {
		remaining[c] = s
	}
	out := make([]domain.Response, 0, cat.Size())
	for _, q := range cat.Questions() {
		points := remaining[q.Category]
		if max := q.MaxPoints(); points > max {
			points = max
		}
		remaining[q.Category] -= points
		out = append(out, domain.Response{
			SessionID:  "s1",
			QuestionID: q.ID,
			Category:   q.Category,
			Points:     points,
		})
	}
	for c, left := range remaining {
		if left != 0 {
			t.Fatalf("could not distribute %d remaining points for %s", left, c)
		}
	}
	return out
}

func TestScoreExampleScenario(t *testing.T) {
	engine := NewEngine(catalog.Builtin())
	responses := responsesWith(t, map[domain.Category]int{
		domain.CategoryBehavioral:    8,
		domain.CategoryKnowledge:     3,
		domain.CategoryEnvironmental: 4,
		domain.CategorySocioeconomic: 2,
	})

	result, err := engine.Score("s1", responses)
	if err != nil {
		t.Fatalf("score: %v", err)
	}

	wantPct := map[domain.Category]int{
		domain.CategoryBehavioral:    73,
		domain.CategoryKnowledge:     75,
		domain.CategoryEnvironmental: 67,
		domain.CategorySocioeconomic: 50,
	}
	if !reflect.DeepEqual(result.Percentages, wantPct) {
		t.Fatalf("percentages: got %v, want %v", result.Percentages, wantPct)
	}
	if result.TotalScore != 67.6 {
		t.Fatalf("total score: got %v, want 67.6", result.TotalScore)
	}
	if result.RoundedScore != 68 {
		t.Fatalf("rounded score: got %d, want 68", result.RoundedScore)
	}
	if result.RiskLevel != domain.RiskHigh {
		t.Fatalf("risk level: got %s, want high", result.RiskLevel)
	}
	if !reflect.DeepEqual(result.HighestRisk, []domain.Category{domain.CategoryKnowledge}) {
		t.Fatalf("highest risk: got %v, want [knowledge]", result.HighestRisk)
	}
}

func TestScoreDeterministicAndOrderIndependent(t *testing.T) {
	engine := NewEngine(catalog.Builtin())
	responses := responsesWith(t, map[domain.Category]int{
		domain.CategoryBehavioral:    5,
		domain.CategoryKnowledge:     2,
		domain.CategoryEnvironmental: 3,
		domain.CategorySocioeconomic: 1,
	})

	first, err := engine.Score("s1", responses)
	if err != nil {
		t.Fatalf("score: %v", err)
	}

	reversed := make([]domain.Response, len(responses))
	for i, r := range responses {
		reversed[len(responses)-1-i] = r
	}
	second, err := engine.Score("s1", reversed)
	if err != nil {
		t.Fatalf("score reversed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("scoring is not order independent:\n%+v\n%+v", first, second)
	}
}

func TestScoreWeightSoundness(t *testing.T) {
	engine := NewEngine(catalog.Builtin())

	min, err := engine.Score("s1", responsesWith(t, map[domain.Category]int{}))
	if err != nil {
		t.Fatalf("score min: %v", err)
	}
	if min.TotalScore != 0 || min.RoundedScore != 0 || min.RiskLevel != domain.RiskLow {
		t.Fatalf("all-minimum input: got total=%v level=%s, want 0/low", min.TotalScore, min.RiskLevel)
	}

	max, err := engine.Score("s1", responsesWith(t, map[domain.Category]int{
		domain.CategoryBehavioral:    11,
		domain.CategoryKnowledge:     4,
		domain.CategoryEnvironmental: 6,
		domain.CategorySocioeconomic: 4,
	}))
	if err != nil {
		t.Fatalf("score max: %v", err)
	}
	if max.TotalScore != 100 || max.RoundedScore != 100 || max.RiskLevel != domain.RiskHigh {
		t.Fatalf("all-maximum input: got total=%v level=%s, want 100/high", max.TotalScore, max.RiskLevel)
	}
}

func TestClassifyCoversFullRange(t *testing.T) {
	for score := 0; score <= 100; score++ {
		level := classify(score)
		var want domain.RiskLevel
		switch {
		case score <= 30:
			want = domain.RiskLow
		case score <= 60:
			want = domain.RiskModerate
		default:
			want = domain.RiskHigh
		}
		if level != want {
			t.Fatalf("score %d: got %s, want %s", score, level, want)
		}
	}
}

func TestZeroScoreNeutrality(t *testing.T) {
	engine := NewEngine(catalog.Builtin())
	result, err := engine.Score("s1", responsesWith(t, map[domain.Category]int{}))
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if len(result.HighestRisk) != 0 {
		t.Fatalf("expected empty highest-risk set, got %v", result.HighestRisk)
	}
	if result.RiskLevel != domain.RiskLow {
		t.Fatalf("expected low level, got %s", result.RiskLevel)
	}
	// No category advice when nothing is at risk: level guidance for low is
	// empty too, so only the disclaimer remains.
	if len(result.Recommendations) != 1 || result.Recommendations[0] != disclaimer {
		t.Fatalf("expected only the disclaimer, got %v", result.Recommendations)
	}
}

func TestTieFidelity(t *testing.T) {
	engine := NewEngine(catalog.Builtin())
	// knowledge 3/4 and socioeconomic 3/4 both hit 75%.
	result, err := engine.Score("s1", responsesWith(t, map[domain.Category]int{
		domain.CategoryKnowledge:     3,
		domain.CategorySocioeconomic: 3,
	}))
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	want := []domain.Category{domain.CategoryKnowledge, domain.CategorySocioeconomic}
	if !reflect.DeepEqual(result.HighestRisk, want) {
		t.Fatalf("highest risk: got %v, want %v", result.HighestRisk, want)
	}
}

func TestRecommendationAssembly(t *testing.T) {
	engine := NewEngine(catalog.Builtin())
	result, err := engine.Score("s1", responsesWith(t, map[domain.Category]int{
		domain.CategoryBehavioral:    11,
		domain.CategoryKnowledge:     4,
		domain.CategoryEnvironmental: 6,
		domain.CategorySocioeconomic: 4,
	}))
	if err != nil {
		t.Fatalf("score: %v", err)
	}

	var want []string
	for _, c := range []domain.Category{
		domain.CategoryBehavioral, domain.CategoryKnowledge,
		domain.CategoryEnvironmental, domain.CategorySocioeconomic,
	} {
		want = append(want, categoryAdvice[c]...)
	}
	want = append(want, levelAdvice[domain.RiskHigh]...)
	want = append(want, disclaimer)
	if !reflect.DeepEqual(result.Recommendations, want) {
		t.Fatalf("recommendations: got %v, want %v", result.Recommendations, want)
	}
	if result.Recommendations[len(result.Recommendations)-1] != disclaimer {
		t.Fatal("disclaimer must be the final entry")
	}
}

func TestScoreRejectsWrongCount(t *testing.T) {
	engine := NewEngine(catalog.Builtin())
	responses := responsesWith(t, map[domain.Category]int{})[:5]
	_, err := engine.Score("s1", responses)
	if !errors.Is(err, domain.ErrIncompleteAssessment) {
		t.Fatalf("expected ErrIncompleteAssessment, got %v", err)
	}
	var incomplete *domain.IncompleteAssessmentError
	if !errors.As(err, &incomplete) || incomplete.Expected != 12 || incomplete.Actual != 5 {
		t.Fatalf("expected 12/5 counts, got %+v", incomplete)
	}
}
