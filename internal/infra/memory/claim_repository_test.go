package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"academy-service/internal/domain"
)

func TestClaimRepositoryPendingOrdering(t *testing.T) {
	repo := NewClaimRepository()
	ctx := context.Background()
	base := time.Now()

	claims := []domain.TopupClaim{
		{ID: "c2", StudentID: "s1", Amount: 20, Status: domain.ClaimPending, CreatedAt: base.Add(time.Minute)},
		{ID: "c1", StudentID: "s1", Amount: 10, Status: domain.ClaimPending, CreatedAt: base},
		{ID: "c3", StudentID: "s2", Amount: 30, Status: domain.ClaimApproved, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, c := range claims {
		if err := repo.Create(ctx, c); err != nil {
			t.Fatalf("create %s: %v", c.ID, err)
		}
	}

	pending, err := repo.ListPending(ctx)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending claims, got %d", len(pending))
	}
	if pending[0].ID != "c1" || pending[1].ID != "c2" {
		t.Fatalf("expected oldest first, got %s then %s", pending[0].ID, pending[1].ID)
	}
}

func TestClaimRepositoryUpdate(t *testing.T) {
	repo := NewClaimRepository()
	ctx := context.Background()

	claim := domain.TopupClaim{ID: "c1", StudentID: "s1", Amount: 10, Status: domain.ClaimPending, CreatedAt: time.Now()}
	if err := repo.Create(ctx, claim); err != nil {
		t.Fatalf("create: %v", err)
	}

	claim.Status = domain.ClaimRejected
	claim.Reason = "no proof"
	if err := repo.Update(ctx, claim); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.Get(ctx, "c1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.ClaimRejected || got.Reason != "no proof" {
		t.Fatalf("update not persisted: %+v", got)
	}

	if err := repo.Update(ctx, domain.TopupClaim{ID: "ghost"}); !errors.Is(err, domain.ErrClaimNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := repo.Get(ctx, "ghost"); !errors.Is(err, domain.ErrClaimNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
