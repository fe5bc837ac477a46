package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"health-risk-service/internal/catalog"
)

// DefaultCatalogID names the catalog row the service loads.
const DefaultCatalogID = "default"

// CatalogLoader loads the catalog document from Postgres jsonb.
type CatalogLoader struct {
	pool *pgxpool.Pool
	id   string
}

func NewCatalogLoader(pool *pgxpool.Pool, id string) *CatalogLoader {
	if id == "" {
		id = DefaultCatalogID
	}
	return &CatalogLoader{pool: pool, id: id}
}

func (l *CatalogLoader) LoadCatalog(ctx context.Context) (catalog.Document, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM catalogs WHERE id=$1`, l.id).Scan(&raw)
	if err != nil {
		return catalog.Document{}, fmt.Errorf("load catalog: %w", err)
	}
	var doc catalog.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return catalog.Document{}, fmt.Errorf("unmarshal catalog: %w", err)
	}
	return doc, nil
}
