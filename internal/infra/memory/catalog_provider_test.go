package memory

import (
	"context"
	"testing"
	"time"

	"health-risk-service/internal/catalog"
)

type countingLoader struct {
	calls int
}

func (l *countingLoader) LoadCatalog(context.Context) (catalog.Document, error) {
	l.calls++
	return catalog.Builtin().Document(), nil
}

func TestCatalogCacheCaches(t *testing.T) {
	loader := &countingLoader{}
	cache := NewCatalogCache(loader, time.Minute)

	cat, err := cache.Catalog(context.Background())
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if cat.Size() != 12 {
		t.Fatalf("expected 12 questions, got %d", cat.Size())
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}

	if _, err := cache.Catalog(context.Background()); err != nil {
		t.Fatalf("catalog 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
}

func TestCatalogCacheExpires(t *testing.T) {
	loader := &countingLoader{}
	cache := NewCatalogCache(loader, time.Minute)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cache.clock = func() time.Time { return now }

	_, _ = cache.Catalog(context.Background())
	now = now.Add(2 * time.Minute)
	_, _ = cache.Catalog(context.Background())
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, loader calls=%d", loader.calls)
	}
}

func TestStaticCatalogProvider(t *testing.T) {
	provider := NewStaticCatalogProvider(catalog.Builtin())
	cat, err := provider.Catalog(context.Background())
	if err != nil || cat.Size() != 12 {
		t.Fatalf("static provider: size=%d err=%v", cat.Size(), err)
	}
}
