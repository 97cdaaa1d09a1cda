package app

import (
	"context"
	"time"

	"academy-service/internal/domain"
	"github.com/google/uuid"
)

// TopupService handles student-submitted balance-increase claims. A claim
// carries an untrusted proof reference and stays pending until a staff
// member resolves it; the balance credit happens exactly once, at approval.
type TopupService struct {
	students StudentRepository
	claims   ClaimRepository
	ledger   *Ledger
	locks    *StudentLocks
	notifier Notifier
	clock    func() time.Time
	newID    func() string
}

func NewTopupService(
	students StudentRepository,
	claims ClaimRepository,
	ledger *Ledger,
	locks *StudentLocks,
	notifier Notifier,
) *TopupService {
	return &TopupService{
		students: students,
		claims:   claims,
		ledger:   ledger,
		locks:    locks,
		notifier: notifier,
		clock:    time.Now,
		newID:    func() string { return uuid.NewString() },
	}
}

// SubmitClaim records a pending claim. No ledger effect until approval.
func (s *TopupService) SubmitClaim(ctx context.Context, studentID string, amount int64, proofRef string) (domain.TopupClaim, error) {
	if amount <= 0 {
		return domain.TopupClaim{}, domain.ErrInvalidAmount
	}
	if _, err := s.students.Get(ctx, studentID); err != nil {
		return domain.TopupClaim{}, err
	}

	claim := domain.TopupClaim{
		ID:        s.newID(),
		StudentID: studentID,
		Amount:    amount,
		ProofRef:  proofRef,
		Status:    domain.ClaimPending,
		CreatedAt: s.clock(),
	}
	if err := s.claims.Create(ctx, claim); err != nil {
		return domain.TopupClaim{}, err
	}
	return claim, nil
}

// Approve credits the claimed amount and marks the claim approved. Approved
// and rejected are terminal: a second resolution attempt fails with
// domain.ErrAlreadyResolved and leaves the balance untouched.
func (s *TopupService) Approve(ctx context.Context, claimID, resolvedBy string) (domain.TopupClaim, error) {
	return s.resolve(ctx, claimID, resolvedBy, "", true)
}

// Reject marks the claim rejected with a reason. No ledger effect.
func (s *TopupService) Reject(ctx context.Context, claimID, resolvedBy, reason string) (domain.TopupClaim, error) {
	return s.resolve(ctx, claimID, resolvedBy, reason, false)
}

func (s *TopupService) resolve(ctx context.Context, claimID, resolvedBy, reason string, approve bool) (domain.TopupClaim, error) {
	claim, err := s.claims.Get(ctx, claimID)
	if err != nil {
		return domain.TopupClaim{}, err
	}

	defer s.locks.Lock(claim.StudentID).Unlock()

	// Re-read under the lock: a concurrent resolver may have won the race.
	claim, err = s.claims.Get(ctx, claimID)
	if err != nil {
		return domain.TopupClaim{}, err
	}
	if claim.Status != domain.ClaimPending {
		return domain.TopupClaim{}, domain.ErrAlreadyResolved
	}

	now := s.clock()
	claim.ResolvedBy = resolvedBy
	claim.ResolvedAt = &now

	if !approve {
		claim.Status = domain.ClaimRejected
		claim.Reason = reason
		if err := s.claims.Update(ctx, claim); err != nil {
			return domain.TopupClaim{}, err
		}
		s.notifier.Emit(claim.StudentID, domain.NotifyTopupRejected, map[string]any{
			"claimId": claim.ID,
			"amount":  claim.Amount,
			"reason":  reason,
		})
		return claim, nil
	}

	newBalance, err := s.ledger.Credit(ctx, claim.StudentID, claim.Amount, "topup:"+claim.ID)
	if err != nil {
		return domain.TopupClaim{}, err
	}
	claim.Status = domain.ClaimApproved
	if err := s.claims.Update(ctx, claim); err != nil {
		// Claw the credit back rather than leave money without an approval.
		_, _ = s.ledger.Debit(ctx, claim.StudentID, claim.Amount, "topup-revert:"+claim.ID)
		return domain.TopupClaim{}, err
	}

	s.notifier.Emit(claim.StudentID, domain.NotifyTopupApproved, map[string]any{
		"claimId": claim.ID,
		"amount":  claim.Amount,
		"balance": newBalance,
	})
	return claim, nil
}

// GetClaim returns a claim by ID.
func (s *TopupService) GetClaim(ctx context.Context, claimID string) (domain.TopupClaim, error) {
	return s.claims.Get(ctx, claimID)
}

// ListPending returns all unresolved claims, oldest first.
func (s *TopupService) ListPending(ctx context.Context) ([]domain.TopupClaim, error) {
	return s.claims.ListPending(ctx)
}
