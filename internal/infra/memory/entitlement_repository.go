package memory

import (
	"context"
	"sort"
	"sync"

	"academy-service/internal/app"
	"academy-service/internal/domain"
)

// EntitlementRepository is an in-memory implementation of
// app.EntitlementRepository keyed by (student, item).
type EntitlementRepository struct {
	mu      sync.RWMutex
	granted map[string]map[string]domain.Entitlement
}

func NewEntitlementRepository() *EntitlementRepository {
	return &EntitlementRepository{granted: make(map[string]map[string]domain.Entitlement)}
}

var _ app.EntitlementRepository = (*EntitlementRepository)(nil)

// Grant keeps the first record for a (student, item) pair; regrants are
// no-op successes.
func (r *EntitlementRepository) Grant(_ context.Context, e domain.Entitlement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	items, ok := r.granted[e.StudentID]
	if !ok {
		items = make(map[string]domain.Entitlement)
		r.granted[e.StudentID] = items
	}
	if _, ok := items[e.ItemID]; ok {
		return nil
	}
	items[e.ItemID] = e
	return nil
}

func (r *EntitlementRepository) Has(_ context.Context, studentID, itemID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.granted[studentID][itemID]
	return ok, nil
}

func (r *EntitlementRepository) ListByStudent(_ context.Context, studentID string) ([]domain.Entitlement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := r.granted[studentID]
	out := make([]domain.Entitlement, 0, len(items))
	for _, e := range items {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GrantedAt.Before(out[j].GrantedAt) })
	return out, nil
}
