package memory

import (
	"context"
	"sync"

	"academy-service/internal/app"
	"academy-service/internal/domain"
)

// WalletRepository is the in-memory append-only wallet history.
type WalletRepository struct {
	mu      sync.RWMutex
	entries map[string][]domain.WalletEntry
}

func NewWalletRepository() *WalletRepository {
	return &WalletRepository{entries: make(map[string][]domain.WalletEntry)}
}

var _ app.WalletRepository = (*WalletRepository)(nil)

func (r *WalletRepository) Append(_ context.Context, e domain.WalletEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[e.StudentID] = append(r.entries[e.StudentID], e)
	return nil
}

func (r *WalletRepository) ListByStudent(_ context.Context, studentID string) ([]domain.WalletEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src := r.entries[studentID]
	out := make([]domain.WalletEntry, len(src))
	copy(out, src)
	return out, nil
}

// RedemptionRepository is the in-memory append-only redemption log.
type RedemptionRepository struct {
	mu          sync.RWMutex
	redemptions map[string][]domain.Redemption
}

func NewRedemptionRepository() *RedemptionRepository {
	return &RedemptionRepository{redemptions: make(map[string][]domain.Redemption)}
}

var _ app.RedemptionRepository = (*RedemptionRepository)(nil)

func (r *RedemptionRepository) Append(_ context.Context, red domain.Redemption) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.redemptions[red.StudentID] = append(r.redemptions[red.StudentID], red)
	return nil
}

func (r *RedemptionRepository) ListByStudent(_ context.Context, studentID string) ([]domain.Redemption, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src := r.redemptions[studentID]
	out := make([]domain.Redemption, len(src))
	copy(out, src)
	return out, nil
}
