package rules

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"sheet-sync/internal/storage"
)

const DefaultTTL = 300 * time.Second

type Loader interface {
	Load(ctx context.Context, docID string) ([]storage.Rule, error)
}

type LoaderFunc func(ctx context.Context, docID string) ([]storage.Rule, error)

func (f LoaderFunc) Load(ctx context.Context, docID string) ([]storage.Rule, error) {
	return f(ctx, docID)
}

type entry struct {
	rules    []storage.Rule
	loadedAt time.Time
}

// Cache хранит правила по документам с ограниченным временем жизни.
// Если перечитать правила не удалось, отдается прежний набор, даже устаревший.
// Загрузка идет без удержания блокировки: два одновременных обновления
// просто перечитают лист дважды.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
	loader  Loader
	log     *slog.Logger
}

func NewCache(loader Loader, ttl time.Duration, log *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
		loader:  loader,
		log:     log,
	}
}

// EnsureFresh возвращает правила документа, перечитывая их по истечении TTL
func (c *Cache) EnsureFresh(ctx context.Context, docID string) ([]storage.Rule, error) {
	c.mu.Lock()
	cached, ok := c.entries[docID]
	c.mu.Unlock()

	if ok && c.now().Sub(cached.loadedAt) < c.ttl {
		return cached.rules, nil
	}

	return c.refresh(ctx, docID, cached, ok)
}

// Reload перечитывает правила независимо от TTL
func (c *Cache) Reload(ctx context.Context, docID string) ([]storage.Rule, error) {
	c.mu.Lock()
	cached, ok := c.entries[docID]
	c.mu.Unlock()

	return c.refresh(ctx, docID, cached, ok)
}

func (c *Cache) Invalidate(docID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, docID)
}

// LoadedAt - время последней удачной загрузки правил документа
func (c *Cache) LoadedAt(docID string) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[docID]
	return e.loadedAt, ok
}

func (c *Cache) refresh(ctx context.Context, docID string, cached entry, hasCached bool) ([]storage.Rule, error) {
	const op = "service.rules.Cache.refresh"

	rules, err := c.loader.Load(ctx, docID)
	if err != nil {
		if hasCached {
			c.log.Warn("failed to reload sync rules, using cached set",
				slog.String("op", op),
				slog.String("doc", docID),
				slog.Int("count", len(cached.rules)),
				slog.String("error", err.Error()),
			)
			return cached.rules, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c.mu.Lock()
	c.entries[docID] = entry{rules: rules, loadedAt: c.now()}
	c.mu.Unlock()

	c.log.Info("sync rules loaded", slog.String("doc", docID), slog.Int("count", len(rules)))
	return rules, nil
}
