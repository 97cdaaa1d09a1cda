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

// StudentRepository stores student rows in Postgres. The adjust queries are
// conditional updates, so the non-negative invariants hold at the row level
// even with multiple service instances.
type StudentRepository struct {
	pool *pgxpool.Pool
}

func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

var _ app.StudentRepository = (*StudentRepository)(nil)

const studentColumns = `id, full_name, student_number, parent_number, grade, balance, points, banned, ban_reason, created_at`

func (r *StudentRepository) Get(ctx context.Context, id string) (domain.Student, error) {
	return r.scanOne(r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id=$1`, id))
}

func (r *StudentRepository) GetByNumber(ctx context.Context, studentNumber string) (domain.Student, error) {
	return r.scanOne(r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE student_number=$1`, studentNumber))
}

func (r *StudentRepository) scanOne(row pgx.Row) (domain.Student, error) {
	var s domain.Student
	err := row.Scan(&s.ID, &s.FullName, &s.StudentNumber, &s.ParentNumber, &s.Grade,
		&s.Balance, &s.Points, &s.Banned, &s.BanReason, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Student{}, domain.ErrStudentNotFound
	}
	if err != nil {
		return domain.Student{}, fmt.Errorf("load student: %w", err)
	}
	return s, nil
}

func (r *StudentRepository) Create(ctx context.Context, s domain.Student) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO students (`+studentColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		s.ID, s.FullName, s.StudentNumber, s.ParentNumber, s.Grade,
		s.Balance, s.Points, s.Banned, s.BanReason, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert student: %w", err)
	}
	return nil
}

func (r *StudentRepository) AdjustBalance(ctx context.Context, id string, delta int64) (int64, error) {
	var balance int64
	err := r.pool.QueryRow(ctx,
		`UPDATE students SET balance = balance + $2 WHERE id=$1 AND balance + $2 >= 0 RETURNING balance`,
		id, delta).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, r.adjustFailure(ctx, id, domain.ErrInsufficientBalance)
	}
	if err != nil {
		return 0, fmt.Errorf("adjust balance: %w", err)
	}
	return balance, nil
}

func (r *StudentRepository) AdjustPoints(ctx context.Context, id string, delta int64) (int64, error) {
	var points int64
	err := r.pool.QueryRow(ctx,
		`UPDATE students SET points = points + $2 WHERE id=$1 AND points + $2 >= 0 RETURNING points`,
		id, delta).Scan(&points)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, r.adjustFailure(ctx, id, domain.ErrInsufficientPoints)
	}
	if err != nil {
		return 0, fmt.Errorf("adjust points: %w", err)
	}
	return points, nil
}

// adjustFailure tells an unknown student apart from a shortfall after a
// conditional update matched no row.
func (r *StudentRepository) adjustFailure(ctx context.Context, id string, shortfall error) error {
	var exists bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM students WHERE id=$1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check student: %w", err)
	}
	if !exists {
		return domain.ErrStudentNotFound
	}
	return shortfall
}

func (r *StudentRepository) SetBanned(ctx context.Context, id string, banned bool, reason string) error {
	if !banned {
		reason = ""
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE students SET banned=$2, ban_reason=$3 WHERE id=$1`, id, banned, reason)
	if err != nil {
		return fmt.Errorf("set banned: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStudentNotFound
	}
	return nil
}
