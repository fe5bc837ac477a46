package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"health-risk-service/internal/catalog"
)

const catalogKey = "catalog:current"

// CatalogLoader fetches catalog content from a backing store (e.g., Postgres).
type CatalogLoader interface {
	LoadCatalog(ctx context.Context) (catalog.Document, error)
}

// CatalogCache caches the catalog document in Redis so instances share one
// source of truth and falls back to the loader on cache miss.
type CatalogCache struct {
	client *redis.Client
	loader CatalogLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewCatalogCache(client *redis.Client, loader CatalogLoader, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *CatalogCache) Catalog(ctx context.Context) (*catalog.Catalog, error) {
	if cat, ok, err := c.fromCache(ctx); err == nil && ok {
		return cat, nil
	}

	result, err, _ := c.sf.Do(catalogKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if cat, ok, err := c.fromCache(ctx); err == nil && ok {
			return cat, nil
		}

		doc, err := c.loader.LoadCatalog(ctx)
		if err != nil {
			return nil, err
		}
		cat, err := catalog.FromDocument(doc)
		if err != nil {
			return nil, err
		}

		data, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("marshal catalog: %w", err)
		}
		_ = c.client.Set(ctx, catalogKey, data, c.ttlWithJitter()).Err()
		return cat, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*catalog.Catalog), nil
}

func (c *CatalogCache) fromCache(ctx context.Context) (*catalog.Catalog, bool, error) {
	data, err := c.client.Get(ctx, catalogKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var doc catalog.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, false, err
	}
	cat, err := catalog.FromDocument(doc)
	if err != nil {
		return nil, false, err
	}
	return cat, true, nil
}

func (c *CatalogCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
