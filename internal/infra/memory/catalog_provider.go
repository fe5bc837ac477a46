package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"health-risk-service/internal/catalog"
)

// CatalogLoader fetches catalog content from a backing store (e.g., Postgres).
type CatalogLoader interface {
	LoadCatalog(ctx context.Context) (catalog.Document, error)
}

// StaticCatalogProvider serves a fixed catalog value (the builtin catalog, or
// a test fixture).
type StaticCatalogProvider struct {
	cat *catalog.Catalog
}

func NewStaticCatalogProvider(cat *catalog.Catalog) *StaticCatalogProvider {
	return &StaticCatalogProvider{cat: cat}
}

func (p *StaticCatalogProvider) Catalog(_ context.Context) (*catalog.Catalog, error) {
	return p.cat, nil
}

// CatalogCache caches the loaded catalog with TTL to avoid repeated DB hits.
type CatalogCache struct {
	loader CatalogLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	cached    *catalog.Catalog
	expiresAt time.Time
}

func NewCatalogCache(loader CatalogLoader, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *CatalogCache) Catalog(ctx context.Context) (*catalog.Catalog, error) {
	now := c.clock()

	c.mu.RLock()
	if c.cached != nil && c.expiresAt.After(now) {
		cached := c.cached
		c.mu.RUnlock()
		return cached, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do("catalog", func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if c.cached != nil && c.expiresAt.After(now) {
			cached := c.cached
			c.mu.RUnlock()
			return cached, nil
		}
		c.mu.RUnlock()

		doc, err := c.loader.LoadCatalog(ctx)
		if err != nil {
			return nil, err
		}
		cat, err := catalog.FromDocument(doc)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cached = cat
		c.expiresAt = now.Add(c.ttlWithJitter())
		c.mu.Unlock()
		return cat, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*catalog.Catalog), nil
}

func (c *CatalogCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
