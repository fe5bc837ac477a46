// Package catalog holds the immutable question catalog and the answer
// validator. A Catalog is built once at process start and passed explicitly to
// whatever needs it; there is no package-level state.
package catalog

import (
	"fmt"
	"math"
	"sort"

	"health-risk-service/internal/domain"
)

// Catalog is an immutable ordered question list with per-category weights and
// maxima derived at construction time.
type Catalog struct {
	questions []domain.Question
	byID      map[string]domain.Question
	weights   map[domain.Category]float64
	maxima    map[domain.Category]int
}

// New validates the question list and weights and derives category maxima.
// Ordinals must be dense 1..N, IDs and per-question labels unique, points
// non-negative, and weights must cover exactly the categories in use and sum
// to 1.0.
func New(questions []domain.Question, weights map[domain.Category]float64) (*Catalog, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("catalog: no questions")
	}

	ordered := make([]domain.Question, len(questions))
	copy(ordered, questions)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Ordinal < ordered[j].Ordinal })

	byID := make(map[string]domain.Question, len(ordered))
	maxima := make(map[domain.Category]int)
	for i, q := range ordered {
		if q.Ordinal != i+1 {
			return nil, fmt.Errorf("catalog: ordinals not dense at %q (got %d, want %d)", q.ID, q.Ordinal, i+1)
		}
		if _, dup := byID[q.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate question id %q", q.ID)
		}
		if len(q.Options) == 0 {
			return nil, fmt.Errorf("catalog: question %q has no options", q.ID)
		}
		seen := make(map[string]struct{}, len(q.Options))
		for _, opt := range q.Options {
			if opt.Points < 0 {
				return nil, fmt.Errorf("catalog: question %q option %q has negative points", q.ID, opt.Label)
			}
			if _, dup := seen[opt.Label]; dup {
				return nil, fmt.Errorf("catalog: question %q has duplicate label %q", q.ID, opt.Label)
			}
			seen[opt.Label] = struct{}{}
		}
		if _, ok := weights[q.Category]; !ok {
			return nil, fmt.Errorf("catalog: no weight for category %q", q.Category)
		}
		byID[q.ID] = q
		maxima[q.Category] += q.MaxPoints()
	}

	sum := 0.0
	for c, w := range weights {
		if w < 0 || w > 1 {
			return nil, fmt.Errorf("catalog: weight for %q out of range: %v", c, w)
		}
		if _, used := maxima[c]; !used {
			return nil, fmt.Errorf("catalog: weight for unused category %q", c)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return nil, fmt.Errorf("catalog: weights sum to %v, want 1.0", sum)
	}

	ws := make(map[domain.Category]float64, len(weights))
	for c, w := range weights {
		ws[c] = w
	}
	return &Catalog{questions: ordered, byID: byID, weights: ws, maxima: maxima}, nil
}

// Size returns the number of questions (N).
func (c *Catalog) Size() int { return len(c.questions) }

// Question returns the question at the given 1-based ordinal.
func (c *Catalog) Question(ordinal int) (domain.Question, bool) {
	if ordinal < 1 || ordinal > len(c.questions) {
		return domain.Question{}, false
	}
	return c.questions[ordinal-1], true
}

// QuestionByID looks a question up by identifier.
func (c *Catalog) QuestionByID(id string) (domain.Question, bool) {
	q, ok := c.byID[id]
	return q, ok
}

// Questions returns a copy of the ordered question list.
func (c *Catalog) Questions() []domain.Question {
	out := make([]domain.Question, len(c.questions))
	copy(out, c.questions)
	return out
}

// Weight returns the scoring weight for a category.
func (c *Catalog) Weight(cat domain.Category) float64 { return c.weights[cat] }

// MaxPoints returns the maximum attainable point total for a category.
func (c *Catalog) MaxPoints(cat domain.Category) int { return c.maxima[cat] }

// CategoriesInOrder returns the categories that appear in the catalog,
// preserving the fixed domain order.
func (c *Catalog) CategoriesInOrder() []domain.Category {
	out := make([]domain.Category, 0, len(c.maxima))
	for _, cat := range domain.Categories() {
		if _, ok := c.maxima[cat]; ok {
			out = append(out, cat)
		}
	}
	return out
}

// Resolve validates a submitted (question id, answer label) pair against the
// catalog and returns the matched category and point value. Pure lookup, no
// side effects.
func (c *Catalog) Resolve(questionID, label string) (domain.Category, int, error) {
	q, ok := c.byID[questionID]
	if !ok {
		return "", 0, fmt.Errorf("question %q: %w", questionID, domain.ErrUnknownQuestion)
	}
	for _, opt := range q.Options {
		if opt.Label == label {
			return q.Category, opt.Points, nil
		}
	}
	legal := make([]string, len(q.Options))
	for i, opt := range q.Options {
		legal[i] = opt.Label
	}
	return "", 0, &domain.InvalidOptionError{QuestionID: questionID, Label: label, LegalLabels: legal}
}
