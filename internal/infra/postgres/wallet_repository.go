package postgres

import (
	"context"
	"fmt"

	"academy-service/internal/app"
	"academy-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// WalletRepository appends wallet history rows. Insert-only: corrections
// are new entries, never edits.
type WalletRepository struct {
	pool *pgxpool.Pool
}

func NewWalletRepository(pool *pgxpool.Pool) *WalletRepository {
	return &WalletRepository{pool: pool}
}

var _ app.WalletRepository = (*WalletRepository)(nil)

func (r *WalletRepository) Append(ctx context.Context, e domain.WalletEntry) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO wallet_entries (id, student_id, kind, amount, reference, balance_after, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		e.ID, e.StudentID, e.Kind, e.Amount, e.Reference, e.BalanceAfter, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert wallet entry: %w", err)
	}
	return nil
}

func (r *WalletRepository) ListByStudent(ctx context.Context, studentID string) ([]domain.WalletEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, student_id, kind, amount, reference, balance_after, created_at
		 FROM wallet_entries WHERE student_id=$1 ORDER BY created_at`, studentID)
	if err != nil {
		return nil, fmt.Errorf("list wallet entries: %w", err)
	}
	defer rows.Close()

	out := make([]domain.WalletEntry, 0)
	for rows.Next() {
		var e domain.WalletEntry
		if err := rows.Scan(&e.ID, &e.StudentID, &e.Kind, &e.Amount, &e.Reference, &e.BalanceAfter, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan wallet entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// RedemptionRepository appends redemption rows.
type RedemptionRepository struct {
	pool *pgxpool.Pool
}

func NewRedemptionRepository(pool *pgxpool.Pool) *RedemptionRepository {
	return &RedemptionRepository{pool: pool}
}

var _ app.RedemptionRepository = (*RedemptionRepository)(nil)

func (r *RedemptionRepository) Append(ctx context.Context, red domain.Redemption) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO redemptions (id, student_id, reward_id, point_cost, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		red.ID, red.StudentID, red.RewardID, red.PointCost, red.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert redemption: %w", err)
	}
	return nil
}

func (r *RedemptionRepository) ListByStudent(ctx context.Context, studentID string) ([]domain.Redemption, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, student_id, reward_id, point_cost, created_at
		 FROM redemptions WHERE student_id=$1 ORDER BY created_at`, studentID)
	if err != nil {
		return nil, fmt.Errorf("list redemptions: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Redemption, 0)
	for rows.Next() {
		var red domain.Redemption
		if err := rows.Scan(&red.ID, &red.StudentID, &red.RewardID, &red.PointCost, &red.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan redemption: %w", err)
		}
		out = append(out, red)
	}
	return out, rows.Err()
}
