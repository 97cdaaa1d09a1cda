package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"academy-service/internal/app"
	"academy-service/internal/config"
	"academy-service/internal/domain"
	"academy-service/internal/infra/jobs"
	"academy-service/internal/infra/logger"
	"academy-service/internal/infra/memory"
	pginfra "academy-service/internal/infra/postgres"
	redisinfra "academy-service/internal/infra/redis"
	transport "academy-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the academy server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	// Repositories: Postgres when configured, in-memory otherwise.
	var (
		students     app.StudentRepository
		entitlements app.EntitlementRepository
		attempts     app.AttemptRepository
		claims       app.ClaimRepository
		redemptions  app.RedemptionRepository
		wallet       app.WalletRepository
		loader       memory.CatalogLoader
	)
	if pool != nil {
		students = pginfra.NewStudentRepository(pool)
		entitlements = pginfra.NewEntitlementRepository(pool)
		attempts = pginfra.NewAttemptRepository(pool)
		claims = pginfra.NewClaimRepository(pool)
		redemptions = pginfra.NewRedemptionRepository(pool)
		wallet = pginfra.NewWalletRepository(pool)
		loader = pginfra.NewCatalogLoader(pool)
	} else {
		log.Warn("postgres not configured, using in-memory storage")
		students = memory.NewStudentRepository()
		entitlements = memory.NewEntitlementRepository()
		attempts = memory.NewAttemptRepository()
		claims = memory.NewClaimRepository()
		redemptions = memory.NewRedemptionRepository()
		wallet = memory.NewWalletRepository()
		loader = memory.NewStaticCatalogLoader(sampleCatalog())
	}

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
	var catalog app.CatalogRepository
	if redisClient != nil {
		catalog = redisinfra.NewCatalogRepository(redisClient, loader, catalogTTL)
	} else {
		catalog = memory.NewCatalogRepository(loader, catalogTTL)
	}

	hub := app.NewHub()
	var notifier app.Notifier = hub
	if redisClient != nil {
		notifier = app.MultiNotifier{hub, redisinfra.NewNotifier(redisClient, log)}
	}

	locks := app.NewStudentLocks()
	ledger := app.NewLedger(students, wallet)
	studentSvc := app.NewStudentService(students, entitlements, wallet)
	commerceSvc := app.NewCommerceService(students, catalog, entitlements, redemptions, ledger, locks, notifier)
	progressionSvc := app.NewProgressionService(students, catalog, entitlements, attempts, ledger, locks, notifier)
	topupSvc := app.NewTopupService(students, claims, ledger, locks, notifier)

	digestSpec := cfg.Jobs.TopupDigest
	if digestSpec == "" {
		digestSpec = "0 * * * *"
	}
	digest := jobs.NewTopupDigest(topupSvc, notifier, log, digestSpec)
	if err := digest.Start(); err != nil {
		return err
	}
	defer digest.Stop()

	handler := transport.NewHandler(studentSvc, commerceSvc, progressionSvc, topupSvc, catalog, hub, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	handler.Register(mux)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.WithField("port", finalPort).Info("starting academy service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server...")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleCatalog seeds the in-memory loader so the service is usable without
// Postgres; content authoring owns the real rows.
func sampleCatalog() map[string]domain.CatalogItem {
	return map[string]domain.CatalogItem{
		"lesson-1": {
			ID:          "lesson-1",
			Kind:        domain.ItemLesson,
			Title:       "Algebra I: Linear Equations",
			Price:       100,
			Grade:       "grade-10",
			SuccessorID: "lesson-2",
			Questions: []domain.Question{
				{Prompt: "Solve: 2x + 3 = 7", Choices: []string{"x = 1", "x = 2", "x = 3"}, CorrectIndex: 1},
				{Prompt: "Solve: x - 5 = 0", Choices: []string{"x = -5", "x = 0", "x = 5"}, CorrectIndex: 2},
			},
		},
		"lesson-2": {
			ID:    "lesson-2",
			Kind:  domain.ItemLesson,
			Title: "Algebra I: Quadratic Equations",
			Price: 100,
			Grade: "grade-10",
			Questions: []domain.Question{
				{Prompt: "Roots of x^2 - 1 = 0?", Choices: []string{"±1", "0", "±2"}, CorrectIndex: 0},
			},
		},
		"sub-term-1": {
			ID:    "sub-term-1",
			Kind:  domain.ItemSubscription,
			Title: "Term 1 Subscription",
			Price: 500,
			Grade: "grade-10",
		},
	}
}
