package catalog

import "health-risk-service/internal/domain"

// Document is the serialized form of a catalog, as stored in Postgres jsonb
// and cached in Redis.
type Document struct {
	Questions []domain.Question           `json:"questions"`
	Weights   map[domain.Category]float64 `json:"weights"`
}

// FromDocument validates and builds a Catalog from its serialized form.
func FromDocument(doc Document) (*Catalog, error) {
	return New(doc.Questions, doc.Weights)
}

// Document returns the serialized form of the catalog.
func (c *Catalog) Document() Document {
	ws := make(map[domain.Category]float64, len(c.weights))
	for cat, w := range c.weights {
		ws[cat] = w
	}
	return Document{Questions: c.Questions(), Weights: ws}
}
