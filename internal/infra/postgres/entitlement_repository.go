package postgres

import (
	"context"
	"fmt"

	"academy-service/internal/app"
	"academy-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// EntitlementRepository stores entitlement rows keyed by (student, item).
// ON CONFLICT DO NOTHING makes Grant idempotent and preserves the original
// grant record.
type EntitlementRepository struct {
	pool *pgxpool.Pool
}

func NewEntitlementRepository(pool *pgxpool.Pool) *EntitlementRepository {
	return &EntitlementRepository{pool: pool}
}

var _ app.EntitlementRepository = (*EntitlementRepository)(nil)

func (r *EntitlementRepository) Grant(ctx context.Context, e domain.Entitlement) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO entitlements (student_id, item_id, source, granted_at)
		 VALUES ($1,$2,$3,$4)
		 ON CONFLICT (student_id, item_id) DO NOTHING`,
		e.StudentID, e.ItemID, e.Source, e.GrantedAt)
	if err != nil {
		return fmt.Errorf("grant entitlement: %w", err)
	}
	return nil
}

func (r *EntitlementRepository) Has(ctx context.Context, studentID, itemID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM entitlements WHERE student_id=$1 AND item_id=$2)`,
		studentID, itemID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check entitlement: %w", err)
	}
	return exists, nil
}

func (r *EntitlementRepository) ListByStudent(ctx context.Context, studentID string) ([]domain.Entitlement, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT student_id, item_id, source, granted_at FROM entitlements
		 WHERE student_id=$1 ORDER BY granted_at`, studentID)
	if err != nil {
		return nil, fmt.Errorf("list entitlements: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Entitlement, 0)
	for rows.Next() {
		var e domain.Entitlement
		if err := rows.Scan(&e.StudentID, &e.ItemID, &e.Source, &e.GrantedAt); err != nil {
			return nil, fmt.Errorf("scan entitlement: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
