package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"academy-service/internal/app"
	"academy-service/internal/domain"
	pginfra "academy-service/internal/infra/postgres"
	pgmigrations "academy-service/internal/infra/postgres/migrations"
	infraredis "academy-service/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestCommerceFlowEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedCatalog(t, ctx, pgURL, sampleLesson(), successorLesson())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	students := pginfra.NewStudentRepository(pool)
	entitlements := pginfra.NewEntitlementRepository(pool)
	attempts := pginfra.NewAttemptRepository(pool)
	claims := pginfra.NewClaimRepository(pool)
	redemptions := pginfra.NewRedemptionRepository(pool)
	wallet := pginfra.NewWalletRepository(pool)
	catalog := infraredis.NewCatalogRepository(redisClient, pginfra.NewCatalogLoader(pool), 5*time.Minute)
	notifier := infraredis.NewNotifier(redisClient, log)

	locks := app.NewStudentLocks()
	ledger := app.NewLedger(students, wallet)
	studentSvc := app.NewStudentService(students, entitlements, wallet)
	commerce := app.NewCommerceService(students, catalog, entitlements, redemptions, ledger, locks, notifier)
	progression := app.NewProgressionService(students, catalog, entitlements, attempts, ledger, locks, notifier)
	topups := app.NewTopupService(students, claims, ledger, locks, notifier)

	student, err := studentSvc.Register(ctx, "Aisha Karim", "2024-0117", "+77010000000", "grade-10")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	// Fund through the topup lifecycle.
	claim, err := topups.SubmitClaim(ctx, student.ID, 100, "receipt-001")
	if err != nil {
		t.Fatalf("submit claim: %v", err)
	}
	if _, err := topups.Approve(ctx, claim.ID, "staff-1"); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := topups.Approve(ctx, claim.ID, "staff-2"); err == nil {
		t.Fatal("expected second approval to fail")
	}

	if _, err := commerce.Purchase(ctx, student.ID, "lesson-1"); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if _, err := commerce.Purchase(ctx, student.ID, "lesson-1"); err == nil {
		t.Fatal("expected repeat purchase to fail")
	}

	result, err := progression.SubmitExam(ctx, student.ID, "lesson-1", []int{1, 0})
	if err != nil {
		t.Fatalf("exam: %v", err)
	}
	if !result.Passed || result.UnlockedID != "lesson-2" {
		t.Fatalf("unexpected exam result: %+v", result)
	}

	got, err := students.Get(ctx, student.ID)
	if err != nil {
		t.Fatalf("get student: %v", err)
	}
	if got.Balance != 0 {
		t.Fatalf("expected balance drained, got %d", got.Balance)
	}
	if got.Points != 10 {
		t.Fatalf("expected 10 points, got %d", got.Points)
	}

	owned, err := entitlements.Has(ctx, student.ID, "lesson-2")
	if err != nil {
		t.Fatalf("has: %v", err)
	}
	if !owned {
		t.Fatal("successor lesson not unlocked")
	}

	entries, err := wallet.ListByStudent(ctx, student.ID)
	if err != nil {
		t.Fatalf("wallet: %v", err)
	}
	// topup credit, purchase debit, pass award
	if len(entries) != 3 {
		t.Fatalf("expected 3 wallet entries, got %+v", entries)
	}

	history, err := notifier.History(ctx, student.ID, 10)
	if err != nil {
		t.Fatalf("notification history: %v", err)
	}
	if len(history) < 3 {
		t.Fatalf("expected notifications for topup, purchase and exam, got %d", len(history))
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "academy", "POSTGRES_PASSWORD": "academypass", "POSTGRES_DB": "academydb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://academy:academypass@%s:%s/academydb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedCatalog(t *testing.T, ctx context.Context, dsn string, items ...domain.CatalogItem) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			t.Fatalf("marshal item: %v", err)
		}
		if _, err := db.ExecContext(ctx, `INSERT INTO catalog_items (id, data) VALUES (? , ?::jsonb) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`, item.ID, string(data)); err != nil {
			t.Fatalf("insert item: %v", err)
		}
	}
}

func sampleLesson() domain.CatalogItem {
	return domain.CatalogItem{
		ID:          "lesson-1",
		Kind:        domain.ItemLesson,
		Title:       "Lesson One",
		Price:       100,
		Grade:       "grade-10",
		SuccessorID: "lesson-2",
		Questions: []domain.Question{
			{Prompt: "What is 2 + 2?", Choices: []string{"3", "4"}, CorrectIndex: 1},
			{Prompt: "What is 3 - 3?", Choices: []string{"0", "1"}, CorrectIndex: 0},
		},
	}
}

func successorLesson() domain.CatalogItem {
	return domain.CatalogItem{
		ID:    "lesson-2",
		Kind:  domain.ItemLesson,
		Title: "Lesson Two",
		Price: 120,
		Grade: "grade-10",
		Questions: []domain.Question{
			{Prompt: "What is 2 * 2?", Choices: []string{"4", "5"}, CorrectIndex: 0},
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
