package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"academy-service/internal/app"
	"academy-service/internal/domain"
	"academy-service/internal/infra/memory"
	"github.com/stretchr/testify/require"
)

// recordingNotifier captures emitted events for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	studentID string
	kind      string
	payload   map[string]any
}

func (r *recordingNotifier) Emit(studentID, kind string, payload map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{studentID, kind, payload})
}

func (r *recordingNotifier) kinds(studentID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		if e.studentID == studentID {
			out = append(out, e.kind)
		}
	}
	return out
}

// testCore wires the full service stack over in-memory repositories.
type testCore struct {
	students     *memory.StudentRepository
	entitlements *memory.EntitlementRepository
	attempts     *memory.AttemptRepository
	claims       *memory.ClaimRepository
	redemptions  *memory.RedemptionRepository
	wallet       *memory.WalletRepository
	notifier     *recordingNotifier

	ledger      *app.Ledger
	studentSvc  *app.StudentService
	commerce    *app.CommerceService
	progression *app.ProgressionService
	topups      *app.TopupService
}

func newTestCore(items map[string]domain.CatalogItem) *testCore {
	c := &testCore{
		students:     memory.NewStudentRepository(),
		entitlements: memory.NewEntitlementRepository(),
		attempts:     memory.NewAttemptRepository(),
		claims:       memory.NewClaimRepository(),
		redemptions:  memory.NewRedemptionRepository(),
		wallet:       memory.NewWalletRepository(),
		notifier:     &recordingNotifier{},
	}
	catalog := memory.NewCatalogRepository(memory.NewStaticCatalogLoader(items), 5*time.Minute)
	locks := app.NewStudentLocks()
	c.ledger = app.NewLedger(c.students, c.wallet)
	c.studentSvc = app.NewStudentService(c.students, c.entitlements, c.wallet)
	c.commerce = app.NewCommerceService(c.students, catalog, c.entitlements, c.redemptions, c.ledger, locks, c.notifier)
	c.progression = app.NewProgressionService(c.students, catalog, c.entitlements, c.attempts, c.ledger, locks, c.notifier)
	c.topups = app.NewTopupService(c.students, c.claims, c.ledger, locks, c.notifier)
	return c
}

func (c *testCore) addStudent(t *testing.T, id string, balance, points int64) {
	t.Helper()
	require.NoError(t, c.students.Create(context.Background(), domain.Student{
		ID:            id,
		FullName:      "Student " + id,
		StudentNumber: "num-" + id,
		Grade:         "grade-10",
		Balance:       balance,
		Points:        points,
		CreatedAt:     time.Now(),
	}))
}

func (c *testCore) balance(t *testing.T, id string) int64 {
	t.Helper()
	s, err := c.students.Get(context.Background(), id)
	require.NoError(t, err)
	return s.Balance
}

func (c *testCore) points(t *testing.T, id string) int64 {
	t.Helper()
	s, err := c.students.Get(context.Background(), id)
	require.NoError(t, err)
	return s.Points
}

func lessonCatalog() map[string]domain.CatalogItem {
	return map[string]domain.CatalogItem{
		"lesson-1": {
			ID:          "lesson-1",
			Kind:        domain.ItemLesson,
			Title:       "Lesson One",
			Price:       100,
			Grade:       "grade-10",
			SuccessorID: "lesson-2",
			Questions: []domain.Question{
				{Prompt: "q1", Choices: []string{"a", "b"}, CorrectIndex: 0},
				{Prompt: "q2", Choices: []string{"a", "b"}, CorrectIndex: 1},
				{Prompt: "q3", Choices: []string{"a", "b"}, CorrectIndex: 0},
				{Prompt: "q4", Choices: []string{"a", "b"}, CorrectIndex: 1},
			},
		},
		"lesson-2": {
			ID:    "lesson-2",
			Kind:  domain.ItemLesson,
			Title: "Lesson Two",
			Price: 100,
			Grade: "grade-10",
			Questions: []domain.Question{
				{Prompt: "q1", Choices: []string{"a", "b"}, CorrectIndex: 0},
			},
		},
	}
}
