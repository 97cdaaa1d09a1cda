package memory

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"academy-service/internal/app"
	"academy-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// CatalogLoader fetches content definitions from a backing store.
type CatalogLoader interface {
	LoadItem(ctx context.Context, itemID string) (domain.CatalogItem, error)
	LoadByGrade(ctx context.Context, grade string) ([]domain.CatalogItem, error)
}

// CatalogRepository caches catalog items with TTL to avoid repeated store
// hits; grade listings are passed through since they change with authoring.
type CatalogRepository struct {
	loader CatalogLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedItem
}

type cachedItem struct {
	item      domain.CatalogItem
	expiresAt time.Time
}

func NewCatalogRepository(loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedItem),
	}
}

var _ app.CatalogRepository = (*CatalogRepository)(nil)

func (r *CatalogRepository) GetItem(ctx context.Context, itemID string) (domain.CatalogItem, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[itemID]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.item, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(itemID, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[itemID]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.item, nil
		}
		r.mu.RUnlock()

		item, err := r.loader.LoadItem(ctx, itemID)
		if err != nil {
			return domain.CatalogItem{}, err
		}

		r.mu.Lock()
		r.cache[itemID] = cachedItem{
			item:      item,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return item, nil
	})
	if err != nil {
		return domain.CatalogItem{}, err
	}
	return result.(domain.CatalogItem), nil
}

func (r *CatalogRepository) ListByGrade(ctx context.Context, grade string) ([]domain.CatalogItem, error) {
	return r.loader.LoadByGrade(ctx, grade)
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations; rand.Rand is not
	// goroutine-safe and fills for different items run concurrently
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	jitter := r.rnd.Int63n(jitterMax + 1)
	r.rndMu.Unlock()
	return r.ttl + time.Duration(jitter)
}

// StaticCatalogLoader is a loader backed by an in-memory map (tests/demos).
type StaticCatalogLoader struct {
	items map[string]domain.CatalogItem
}

func NewStaticCatalogLoader(items map[string]domain.CatalogItem) *StaticCatalogLoader {
	return &StaticCatalogLoader{items: items}
}

func (l *StaticCatalogLoader) LoadItem(_ context.Context, itemID string) (domain.CatalogItem, error) {
	if item, ok := l.items[itemID]; ok {
		return item, nil
	}
	return domain.CatalogItem{}, domain.ErrItemNotFound
}

func (l *StaticCatalogLoader) LoadByGrade(_ context.Context, grade string) ([]domain.CatalogItem, error) {
	out := make([]domain.CatalogItem, 0)
	for _, item := range l.items {
		if grade == "" || item.Grade == grade {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
