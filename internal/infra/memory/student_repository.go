package memory

import (
	"context"
	"sync"

	"academy-service/internal/app"
	"academy-service/internal/domain"
)

// StudentRepository is an in-memory implementation of app.StudentRepository.
type StudentRepository struct {
	mu       sync.RWMutex
	students map[string]domain.Student
}

func NewStudentRepository() *StudentRepository {
	return &StudentRepository{students: make(map[string]domain.Student)}
}

var _ app.StudentRepository = (*StudentRepository)(nil)

func (r *StudentRepository) Get(_ context.Context, id string) (domain.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	student, ok := r.students[id]
	if !ok {
		return domain.Student{}, domain.ErrStudentNotFound
	}
	return student, nil
}

func (r *StudentRepository) GetByNumber(_ context.Context, studentNumber string) (domain.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, student := range r.students {
		if student.StudentNumber == studentNumber {
			return student, nil
		}
	}
	return domain.Student{}, domain.ErrStudentNotFound
}

func (r *StudentRepository) Create(_ context.Context, student domain.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.students[student.ID]; ok {
		return domain.ErrStudentExists
	}
	r.students[student.ID] = student
	return nil
}

func (r *StudentRepository) AdjustBalance(_ context.Context, id string, delta int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	student, ok := r.students[id]
	if !ok {
		return 0, domain.ErrStudentNotFound
	}
	if student.Balance+delta < 0 {
		return 0, domain.ErrInsufficientBalance
	}
	student.Balance += delta
	r.students[id] = student
	return student.Balance, nil
}

func (r *StudentRepository) AdjustPoints(_ context.Context, id string, delta int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	student, ok := r.students[id]
	if !ok {
		return 0, domain.ErrStudentNotFound
	}
	if student.Points+delta < 0 {
		return 0, domain.ErrInsufficientPoints
	}
	student.Points += delta
	r.students[id] = student
	return student.Points, nil
}

func (r *StudentRepository) SetBanned(_ context.Context, id string, banned bool, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	student, ok := r.students[id]
	if !ok {
		return domain.ErrStudentNotFound
	}
	student.Banned = banned
	student.BanReason = reason
	if !banned {
		student.BanReason = ""
	}
	r.students[id] = student
	return nil
}
