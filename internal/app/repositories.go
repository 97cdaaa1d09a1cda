package app

import (
	"context"

	"academy-service/internal/domain"
)

// StudentRepository stores student accounts. Adjust methods apply a signed
// delta and must refuse to drive the counter negative.
type StudentRepository interface {
	Get(ctx context.Context, id string) (domain.Student, error)
	GetByNumber(ctx context.Context, studentNumber string) (domain.Student, error)
	Create(ctx context.Context, student domain.Student) error
	// AdjustBalance returns the new balance. Fails with
	// domain.ErrInsufficientBalance instead of going below zero.
	AdjustBalance(ctx context.Context, id string, delta int64) (int64, error)
	// AdjustPoints returns the new points total. Fails with
	// domain.ErrInsufficientPoints instead of going below zero.
	AdjustPoints(ctx context.Context, id string, delta int64) (int64, error)
	SetBanned(ctx context.Context, id string, banned bool, reason string) error
}

// EntitlementRepository is the per-student set of unlocked item IDs.
type EntitlementRepository interface {
	// Grant is idempotent: granting an already-held entitlement succeeds
	// without creating a second record.
	Grant(ctx context.Context, e domain.Entitlement) error
	Has(ctx context.Context, studentID, itemID string) (bool, error)
	ListByStudent(ctx context.Context, studentID string) ([]domain.Entitlement, error)
}

// AttemptRepository stores per-(student, lesson) exam history.
type AttemptRepository interface {
	Get(ctx context.Context, studentID, lessonID string) (domain.Attempt, bool, error)
	Upsert(ctx context.Context, a domain.Attempt) error
}

// ClaimRepository stores topup claims.
type ClaimRepository interface {
	Create(ctx context.Context, c domain.TopupClaim) error
	Get(ctx context.Context, id string) (domain.TopupClaim, error)
	Update(ctx context.Context, c domain.TopupClaim) error
	ListPending(ctx context.Context) ([]domain.TopupClaim, error)
}

// RedemptionRepository is the append-only redemption log.
type RedemptionRepository interface {
	Append(ctx context.Context, r domain.Redemption) error
	ListByStudent(ctx context.Context, studentID string) ([]domain.Redemption, error)
}

// WalletRepository is the append-only wallet history.
type WalletRepository interface {
	Append(ctx context.Context, e domain.WalletEntry) error
	ListByStudent(ctx context.Context, studentID string) ([]domain.WalletEntry, error)
}

// CatalogRepository is a read-only view over content definitions
// (cache/backing store behind it).
type CatalogRepository interface {
	GetItem(ctx context.Context, itemID string) (domain.CatalogItem, error)
	ListByGrade(ctx context.Context, grade string) ([]domain.CatalogItem, error)
}

// Notifier delivers events to students. Fire-and-forget: implementations
// must not block the caller and failures never roll back the mutation that
// produced the event.
type Notifier interface {
	Emit(studentID, kind string, payload map[string]any)
}

// MultiNotifier fans events out to several sinks.
type MultiNotifier []Notifier

func (m MultiNotifier) Emit(studentID, kind string, payload map[string]any) {
	for _, n := range m {
		n.Emit(studentID, kind, payload)
	}
}
