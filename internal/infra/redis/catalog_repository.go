package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"academy-service/internal/app"
	"academy-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// CatalogLoader fetches catalog content from a backing store.
type CatalogLoader interface {
	LoadItem(ctx context.Context, itemID string) (domain.CatalogItem, error)
	LoadByGrade(ctx context.Context, grade string) ([]domain.CatalogItem, error)
}

// CatalogRepository caches whole catalog items as JSON under
// catalog:item:{id} and falls back to a loader on cache miss. The full item
// is cached (not just answer keys) because grading needs prompts and choice
// lists.
type CatalogRepository struct {
	client *redis.Client
	loader CatalogLoader
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewCatalogRepository(client *redis.Client, loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

var _ app.CatalogRepository = (*CatalogRepository)(nil)

func (r *CatalogRepository) GetItem(ctx context.Context, itemID string) (domain.CatalogItem, error) {
	key := r.itemKey(itemID)

	if item, ok := r.cached(ctx, key); ok {
		return item, nil
	}

	result, err, _ := r.sf.Do(itemID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if item, ok := r.cached(ctx, key); ok {
			return item, nil
		}

		item, err := r.loader.LoadItem(ctx, itemID)
		if err != nil {
			return domain.CatalogItem{}, err
		}

		if data, err := json.Marshal(item); err == nil {
			_ = r.client.Set(ctx, key, data, r.ttlWithJitter()).Err()
		}
		return item, nil
	})
	if err != nil {
		return domain.CatalogItem{}, err
	}
	return result.(domain.CatalogItem), nil
}

// ListByGrade bypasses the cache; listings follow content authoring too
// closely to be worth the staleness.
func (r *CatalogRepository) ListByGrade(ctx context.Context, grade string) ([]domain.CatalogItem, error) {
	return r.loader.LoadByGrade(ctx, grade)
}

func (r *CatalogRepository) cached(ctx context.Context, key string) (domain.CatalogItem, bool) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil || len(raw) == 0 {
		return domain.CatalogItem{}, false
	}
	var item domain.CatalogItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return domain.CatalogItem{}, false
	}
	return item, true
}

func (r *CatalogRepository) itemKey(itemID string) string {
	return "catalog:item:" + itemID
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// rand.Rand is not goroutine-safe; fills for different items run
	// concurrently
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	jitter := r.rnd.Int63n(jitterMax + 1)
	r.rndMu.Unlock()
	return r.ttl + time.Duration(jitter)
}
