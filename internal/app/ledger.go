package app

import (
	"context"
	"time"

	"academy-service/internal/domain"
	"github.com/google/uuid"
)

// Ledger is the only writer of student balance and point counters. Every
// mutation lands as one row in the append-only wallet history. Callers are
// responsible for holding the student's lock when a ledger call is part of
// a larger unit.
type Ledger struct {
	students StudentRepository
	wallet   WalletRepository
	clock    func() time.Time
	newID    func() string
}

func NewLedger(students StudentRepository, wallet WalletRepository) *Ledger {
	return &Ledger{
		students: students,
		wallet:   wallet,
		clock:    time.Now,
		newID:    func() string { return uuid.NewString() },
	}
}

// Credit increases the student's balance and returns the new balance.
func (l *Ledger) Credit(ctx context.Context, studentID string, amount int64, reference string) (int64, error) {
	return l.applyBalance(ctx, studentID, amount, domain.WalletCredit, reference)
}

// Debit decreases the student's balance and returns the new balance. Fails
// with domain.ErrInsufficientBalance if the balance would go negative.
func (l *Ledger) Debit(ctx context.Context, studentID string, amount int64, reference string) (int64, error) {
	return l.applyBalance(ctx, studentID, -amount, domain.WalletDebit, reference)
}

// AwardPoints increases the student's points and returns the new total.
func (l *Ledger) AwardPoints(ctx context.Context, studentID string, amount int64, reference string) (int64, error) {
	return l.applyPoints(ctx, studentID, amount, domain.WalletPointsAward, reference)
}

// RedeemPoints decreases the student's points and returns the new total.
// Fails with domain.ErrInsufficientPoints if points would go negative.
func (l *Ledger) RedeemPoints(ctx context.Context, studentID string, amount int64, reference string) (int64, error) {
	return l.applyPoints(ctx, studentID, -amount, domain.WalletPointsRedeem, reference)
}

func (l *Ledger) applyBalance(ctx context.Context, studentID string, delta int64, kind domain.WalletEntryKind, reference string) (int64, error) {
	if delta == 0 || (kind == domain.WalletCredit && delta < 0) || (kind == domain.WalletDebit && delta > 0) {
		return 0, domain.ErrInvalidAmount
	}
	newBalance, err := l.students.AdjustBalance(ctx, studentID, delta)
	if err != nil {
		return 0, err
	}
	if err := l.appendEntry(ctx, studentID, kind, delta, newBalance, reference); err != nil {
		// Undo the counter change so a failed unit leaves no trace.
		_, _ = l.students.AdjustBalance(ctx, studentID, -delta)
		return 0, err
	}
	return newBalance, nil
}

func (l *Ledger) applyPoints(ctx context.Context, studentID string, delta int64, kind domain.WalletEntryKind, reference string) (int64, error) {
	if delta == 0 || (kind == domain.WalletPointsAward && delta < 0) || (kind == domain.WalletPointsRedeem && delta > 0) {
		return 0, domain.ErrInvalidAmount
	}
	newPoints, err := l.students.AdjustPoints(ctx, studentID, delta)
	if err != nil {
		return 0, err
	}
	if err := l.appendEntry(ctx, studentID, kind, delta, newPoints, reference); err != nil {
		_, _ = l.students.AdjustPoints(ctx, studentID, -delta)
		return 0, err
	}
	return newPoints, nil
}

func (l *Ledger) appendEntry(ctx context.Context, studentID string, kind domain.WalletEntryKind, delta, after int64, reference string) error {
	amount := delta
	if amount < 0 {
		amount = -amount
	}
	return l.wallet.Append(ctx, domain.WalletEntry{
		ID:           l.newID(),
		StudentID:    studentID,
		Kind:         kind,
		Amount:       amount,
		Reference:    reference,
		BalanceAfter: after,
		CreatedAt:    l.clock(),
	})
}
