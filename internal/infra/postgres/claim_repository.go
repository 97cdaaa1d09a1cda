package postgres

import (
	"context"
	"errors"
	"fmt"

	"academy-service/internal/app"
	"academy-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ClaimRepository stores topup claims.
type ClaimRepository struct {
	pool *pgxpool.Pool
}

func NewClaimRepository(pool *pgxpool.Pool) *ClaimRepository {
	return &ClaimRepository{pool: pool}
}

var _ app.ClaimRepository = (*ClaimRepository)(nil)

const claimColumns = `id, student_id, amount, proof_ref, status, resolved_by, reason, created_at, resolved_at`

func (r *ClaimRepository) Create(ctx context.Context, c domain.TopupClaim) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO topup_claims (`+claimColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		c.ID, c.StudentID, c.Amount, c.ProofRef, c.Status, c.ResolvedBy, c.Reason, c.CreatedAt, c.ResolvedAt)
	if err != nil {
		return fmt.Errorf("insert claim: %w", err)
	}
	return nil
}

func (r *ClaimRepository) Get(ctx context.Context, id string) (domain.TopupClaim, error) {
	var c domain.TopupClaim
	err := r.pool.QueryRow(ctx,
		`SELECT `+claimColumns+` FROM topup_claims WHERE id=$1`, id).
		Scan(&c.ID, &c.StudentID, &c.Amount, &c.ProofRef, &c.Status, &c.ResolvedBy, &c.Reason, &c.CreatedAt, &c.ResolvedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.TopupClaim{}, domain.ErrClaimNotFound
	}
	if err != nil {
		return domain.TopupClaim{}, fmt.Errorf("load claim: %w", err)
	}
	return c, nil
}

func (r *ClaimRepository) Update(ctx context.Context, c domain.TopupClaim) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE topup_claims SET status=$2, resolved_by=$3, reason=$4, resolved_at=$5 WHERE id=$1`,
		c.ID, c.Status, c.ResolvedBy, c.Reason, c.ResolvedAt)
	if err != nil {
		return fmt.Errorf("update claim: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrClaimNotFound
	}
	return nil
}

func (r *ClaimRepository) ListPending(ctx context.Context) ([]domain.TopupClaim, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+claimColumns+` FROM topup_claims WHERE status=$1 ORDER BY created_at`,
		domain.ClaimPending)
	if err != nil {
		return nil, fmt.Errorf("list pending claims: %w", err)
	}
	defer rows.Close()

	out := make([]domain.TopupClaim, 0)
	for rows.Next() {
		var c domain.TopupClaim
		if err := rows.Scan(&c.ID, &c.StudentID, &c.Amount, &c.ProofRef, &c.Status, &c.ResolvedBy, &c.Reason, &c.CreatedAt, &c.ResolvedAt); err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
