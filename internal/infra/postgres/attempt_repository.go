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

// AttemptRepository stores one row per (student, lesson) exam history.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

var _ app.AttemptRepository = (*AttemptRepository)(nil)

func (r *AttemptRepository) Get(ctx context.Context, studentID, lessonID string) (domain.Attempt, bool, error) {
	var a domain.Attempt
	err := r.pool.QueryRow(ctx,
		`SELECT student_id, lesson_id, attempt_count, best_score_percent, passed, updated_at
		 FROM attempts WHERE student_id=$1 AND lesson_id=$2`,
		studentID, lessonID).
		Scan(&a.StudentID, &a.LessonID, &a.AttemptCount, &a.BestScorePercent, &a.Passed, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Attempt{}, false, nil
	}
	if err != nil {
		return domain.Attempt{}, false, fmt.Errorf("load attempt: %w", err)
	}
	return a, true, nil
}

func (r *AttemptRepository) Upsert(ctx context.Context, a domain.Attempt) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO attempts (student_id, lesson_id, attempt_count, best_score_percent, passed, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (student_id, lesson_id) DO UPDATE SET
		   attempt_count=EXCLUDED.attempt_count,
		   best_score_percent=EXCLUDED.best_score_percent,
		   passed=EXCLUDED.passed,
		   updated_at=EXCLUDED.updated_at`,
		a.StudentID, a.LessonID, a.AttemptCount, a.BestScorePercent, a.Passed, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert attempt: %w", err)
	}
	return nil
}
