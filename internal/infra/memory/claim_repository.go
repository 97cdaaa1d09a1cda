package memory

import (
	"context"
	"sort"
	"sync"

	"academy-service/internal/app"
	"academy-service/internal/domain"
)

// ClaimRepository is an in-memory implementation of app.ClaimRepository.
type ClaimRepository struct {
	mu     sync.RWMutex
	claims map[string]domain.TopupClaim
}

func NewClaimRepository() *ClaimRepository {
	return &ClaimRepository{claims: make(map[string]domain.TopupClaim)}
}

var _ app.ClaimRepository = (*ClaimRepository)(nil)

func (r *ClaimRepository) Create(_ context.Context, c domain.TopupClaim) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.claims[c.ID] = c
	return nil
}

func (r *ClaimRepository) Get(_ context.Context, id string) (domain.TopupClaim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.claims[id]
	if !ok {
		return domain.TopupClaim{}, domain.ErrClaimNotFound
	}
	return c, nil
}

func (r *ClaimRepository) Update(_ context.Context, c domain.TopupClaim) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.claims[c.ID]; !ok {
		return domain.ErrClaimNotFound
	}
	r.claims[c.ID] = c
	return nil
}

func (r *ClaimRepository) ListPending(_ context.Context) ([]domain.TopupClaim, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.TopupClaim, 0)
	for _, c := range r.claims {
		if c.Status == domain.ClaimPending {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
