package memory

import (
	"context"
	"sync"

	"academy-service/internal/app"
	"academy-service/internal/domain"
)

// AttemptRepository is an in-memory implementation of app.AttemptRepository.
type AttemptRepository struct {
	mu       sync.RWMutex
	attempts map[attemptKey]domain.Attempt
}

type attemptKey struct {
	studentID string
	lessonID  string
}

func NewAttemptRepository() *AttemptRepository {
	return &AttemptRepository{attempts: make(map[attemptKey]domain.Attempt)}
}

var _ app.AttemptRepository = (*AttemptRepository)(nil)

func (r *AttemptRepository) Get(_ context.Context, studentID, lessonID string) (domain.Attempt, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.attempts[attemptKey{studentID, lessonID}]
	return a, ok, nil
}

func (r *AttemptRepository) Upsert(_ context.Context, a domain.Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts[attemptKey{a.StudentID, a.LessonID}] = a
	return nil
}
