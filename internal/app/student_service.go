package app

import (
	"context"
	"time"

	"academy-service/internal/domain"
	"github.com/google/uuid"
)

// StudentService covers account lifecycle operations that sit next to the
// commerce core: registration, lookup, the ban toggle and wallet history.
// Credentials and sessions live with the external auth collaborator.
type StudentService struct {
	students     StudentRepository
	entitlements EntitlementRepository
	wallet       WalletRepository
	clock        func() time.Time
	newID        func() string
}

func NewStudentService(students StudentRepository, entitlements EntitlementRepository, wallet WalletRepository) *StudentService {
	return &StudentService{
		students:     students,
		entitlements: entitlements,
		wallet:       wallet,
		clock:        time.Now,
		newID:        func() string { return uuid.NewString() },
	}
}

// Register creates an account with zero balance and points.
func (s *StudentService) Register(ctx context.Context, fullName, studentNumber, parentNumber, grade string) (domain.Student, error) {
	if fullName == "" || studentNumber == "" || grade == "" {
		return domain.Student{}, domain.ErrInvalidInput
	}
	if _, err := s.students.GetByNumber(ctx, studentNumber); err == nil {
		return domain.Student{}, domain.ErrStudentExists
	}

	student := domain.Student{
		ID:            s.newID(),
		FullName:      fullName,
		StudentNumber: studentNumber,
		ParentNumber:  parentNumber,
		Grade:         grade,
		CreatedAt:     s.clock(),
	}
	if err := s.students.Create(ctx, student); err != nil {
		return domain.Student{}, err
	}
	return student, nil
}

// Get returns the student account.
func (s *StudentService) Get(ctx context.Context, studentID string) (domain.Student, error) {
	return s.students.Get(ctx, studentID)
}

// SetBanned toggles the ban flag. A banned student is rejected by the
// purchase and exam paths until unbanned.
func (s *StudentService) SetBanned(ctx context.Context, studentID string, banned bool, reason string) error {
	return s.students.SetBanned(ctx, studentID, banned, reason)
}

// Entitlements lists everything the student has unlocked.
func (s *StudentService) Entitlements(ctx context.Context, studentID string) ([]domain.Entitlement, error) {
	return s.entitlements.ListByStudent(ctx, studentID)
}

// WalletHistory returns the student's wallet entries, oldest first.
func (s *StudentService) WalletHistory(ctx context.Context, studentID string) ([]domain.WalletEntry, error) {
	if _, err := s.students.Get(ctx, studentID); err != nil {
		return nil, err
	}
	return s.wallet.ListByStudent(ctx, studentID)
}
