package app

import (
	"context"
	"time"

	"academy-service/internal/domain"
)

// ProgressionService owns exam submission: grading, attempt tracking, the
// one-time point award and the free successor unlock.
type ProgressionService struct {
	students     StudentRepository
	catalog      CatalogRepository
	entitlements EntitlementRepository
	attempts     AttemptRepository
	ledger       *Ledger
	locks        *StudentLocks
	notifier     Notifier
	clock        func() time.Time
}

func NewProgressionService(
	students StudentRepository,
	catalog CatalogRepository,
	entitlements EntitlementRepository,
	attempts AttemptRepository,
	ledger *Ledger,
	locks *StudentLocks,
	notifier Notifier,
) *ProgressionService {
	return &ProgressionService{
		students:     students,
		catalog:      catalog,
		entitlements: entitlements,
		attempts:     attempts,
		ledger:       ledger,
		locks:        locks,
		notifier:     notifier,
		clock:        time.Now,
	}
}

// SubmitExam grades answers against the lesson's question set and updates
// the attempt record. The pass transition happens at most once per
// (student, lesson): re-submission after a pass is rejected, never
// re-graded. On first pass the student earns PassPointAward points and, if
// the lesson names a successor, a free entitlement to it.
func (s *ProgressionService) SubmitExam(ctx context.Context, studentID, lessonID string, answers []int) (domain.ExamResult, error) {
	defer s.locks.Lock(studentID).Unlock()

	student, err := s.students.Get(ctx, studentID)
	if err != nil {
		return domain.ExamResult{}, err
	}
	if student.Banned {
		return domain.ExamResult{}, domain.ErrStudentBanned
	}

	entitled, err := s.entitlements.Has(ctx, studentID, lessonID)
	if err != nil {
		return domain.ExamResult{}, err
	}
	if !entitled {
		return domain.ExamResult{}, domain.ErrNotEntitled
	}

	lesson, err := s.catalog.GetItem(ctx, lessonID)
	if err != nil {
		return domain.ExamResult{}, err
	}

	attempt, found, err := s.attempts.Get(ctx, studentID, lessonID)
	if err != nil {
		return domain.ExamResult{}, err
	}
	if found && attempt.Passed {
		return domain.ExamResult{}, domain.ErrAlreadyPassed
	}
	if !found {
		attempt = domain.Attempt{StudentID: studentID, LessonID: lessonID}
	}

	score, passed, err := Grade(lesson.Questions, answers)
	if err != nil {
		return domain.ExamResult{}, err
	}

	attempt.AttemptCount++
	if score > attempt.BestScorePercent {
		attempt.BestScorePercent = score
	}
	attempt.Passed = passed
	attempt.UpdatedAt = s.clock()

	result := domain.ExamResult{
		Passed:       passed,
		ScorePercent: score,
		AttemptCount: attempt.AttemptCount,
		TotalPoints:  student.Points,
	}

	if passed {
		// Award and unlock run before the attempt record is frozen as
		// passed, so a storage failure anywhere in the unit leaves the
		// submission fully retryable instead of locked out with the award
		// lost. A granted successor entitlement is never revoked; on retry
		// the regrant is an idempotent no-op.
		total, err := s.ledger.AwardPoints(ctx, studentID, PassPointAward, "exam-pass:"+lessonID)
		if err != nil {
			return domain.ExamResult{}, err
		}
		result.TotalPoints = total

		if lesson.SuccessorID != "" {
			unlock := domain.Entitlement{
				StudentID: studentID,
				ItemID:    lesson.SuccessorID,
				Source:    domain.EntitlementUnlocked,
				GrantedAt: s.clock(),
			}
			if err := s.entitlements.Grant(ctx, unlock); err != nil {
				_, _ = s.ledger.RedeemPoints(ctx, studentID, PassPointAward, "exam-pass-revert:"+lessonID)
				return domain.ExamResult{}, err
			}
			result.UnlockedID = lesson.SuccessorID
		}
	}

	if err := s.attempts.Upsert(ctx, attempt); err != nil {
		if passed {
			_, _ = s.ledger.RedeemPoints(ctx, studentID, PassPointAward, "exam-pass-revert:"+lessonID)
		}
		return domain.ExamResult{}, err
	}

	if passed && result.UnlockedID != "" {
		s.notifier.Emit(studentID, domain.NotifyLessonUnlocked, map[string]any{
			"lessonId":   lessonID,
			"unlockedId": result.UnlockedID,
		})
	}
	s.notifier.Emit(studentID, domain.NotifyExamResult, map[string]any{
		"lessonId":     lessonID,
		"passed":       passed,
		"scorePercent": score,
		"attemptCount": attempt.AttemptCount,
	})
	return result, nil
}

// History returns the attempt record for a (student, lesson) pair.
func (s *ProgressionService) History(ctx context.Context, studentID, lessonID string) (domain.Attempt, bool, error) {
	return s.attempts.Get(ctx, studentID, lessonID)
}
