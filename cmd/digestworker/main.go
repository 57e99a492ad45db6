package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	pgRepo "newsdigest/internal/infra/adapter/persistence/postgres"
	"newsdigest/internal/infra/db"
	"newsdigest/internal/infra/mailer"
	"newsdigest/internal/infra/newsapi"
	"newsdigest/internal/observability/logging"

	"newsdigest/internal/domain/entity"
	digestUC "newsdigest/internal/usecase/digest"
	newsUC "newsdigest/internal/usecase/news"
)

// workerConfig holds the schedules and limits of the digest worker.
type workerConfig struct {
	DailySchedule  string
	WeeklySchedule string
	Timezone       string
	RunTimeout     time.Duration
	HealthAddr     string
}

func loadWorkerConfig() workerConfig {
	cfg := workerConfig{
		DailySchedule:  "0 8 * * *",
		WeeklySchedule: "0 8 * * 1",
		Timezone:       "UTC",
		RunTimeout:     10 * time.Minute,
		HealthAddr:     ":8081",
	}
	if v := os.Getenv("DIGEST_DAILY_SCHEDULE"); v != "" {
		cfg.DailySchedule = v
	}
	if v := os.Getenv("DIGEST_WEEKLY_SCHEDULE"); v != "" {
		cfg.WeeklySchedule = v
	}
	if v := os.Getenv("DIGEST_TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv("DIGEST_RUN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.RunTimeout = d
		}
	}
	if v := os.Getenv("DIGEST_HEALTH_ADDR"); v != "" {
		cfg.HealthAddr = v
	}
	return cfg
}

func main() {
	logger := initLogger()
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	cfg := loadWorkerConfig()
	logger.Info("worker configuration loaded",
		slog.String("daily_schedule", cfg.DailySchedule),
		slog.String("weekly_schedule", cfg.WeeklySchedule),
		slog.String("timezone", cfg.Timezone),
		slog.Duration("run_timeout", cfg.RunTimeout),
		slog.String("health_addr", cfg.HealthAddr))

	svc := setupDigestService(logger, database)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runWorker(ctx, logger, svc, cfg)
}

// initLogger initializes and returns a structured logger based on environment configuration.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens the database connection and waits for the API's
// migrations to complete.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	waitForMigrations(logger, database)
	return database
}

func waitForMigrations(logger *slog.Logger, db *sql.DB) {
	const probe = "SELECT 1 FROM users LIMIT 1"
	for i := 0; i < 10; i++ {
		if _, err := db.Exec(probe); err == nil {
			return
		}
		logger.Info("waiting for migrations, retrying in 3s", slog.Int("attempt", i+1))
		time.Sleep(3 * time.Second)
	}
	logger.Error("migrations did not complete in time")
	os.Exit(1)
}

// setupDigestService wires the digest engine with its news provider and mailer.
func setupDigestService(logger *slog.Logger, database *sql.DB) *digestUC.Service {
	userRepo := pgRepo.NewUserRepo(database)

	newsCfg, err := newsapi.ConfigFromEnv()
	if err != nil {
		logger.Error("failed to load news provider configuration", slog.Any("error", err))
		os.Exit(1)
	}
	newsClient, err := newsapi.NewClient(newsCfg)
	if err != nil {
		logger.Error("failed to create news provider client", slog.Any("error", err))
		os.Exit(1)
	}

	mailCfg, err := mailer.ConfigFromEnv()
	if err != nil {
		logger.Error("failed to load SMTP configuration", slog.Any("error", err))
		os.Exit(1)
	}
	smtpMailer, err := mailer.NewSMTPMailer(mailCfg)
	if err != nil {
		logger.Error("failed to create SMTP mailer", slog.Any("error", err))
		os.Exit(1)
	}

	return digestUC.NewService(userRepo, newsUC.NewService(newsClient), smtpMailer)
}

// runWorker starts the cron scheduler and the health server and blocks
// until the context is cancelled.
func runWorker(ctx context.Context, logger *slog.Logger, svc *digestUC.Service, cfg workerConfig) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}

	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc(cfg.DailySchedule, func() {
		runSweep(logger, svc, entity.FrequencyDaily, cfg.RunTimeout)
	}); err != nil {
		logger.Error("failed to schedule daily sweep", slog.Any("error", err))
		os.Exit(1)
	}
	if _, err := c.AddFunc(cfg.WeeklySchedule, func() {
		runSweep(logger, svc, entity.FrequencyWeekly, cfg.RunTimeout)
	}); err != nil {
		logger.Error("failed to schedule weekly sweep", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()
	logger.Info("worker started",
		slog.String("daily_schedule", cfg.DailySchedule),
		slog.String("weekly_schedule", cfg.WeeklySchedule),
		slog.String("timezone", cfg.Timezone))

	healthSrv := &http.Server{
		Addr:              cfg.HealthAddr,
		Handler:           healthMux(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()

		cronCtx := c.Stop()
		<-cronCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return healthSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("worker failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker stopped")
}

func healthMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("alive"))
	})
	return mux
}

// runSweep executes a single cadence sweep with a timeout.
func runSweep(logger *slog.Logger, svc *digestUC.Service, freq entity.EmailFrequency, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	logger.Info("digest sweep started", slog.String("frequency", freq.String()))
	run, err := svc.RunForFrequency(ctx, freq)
	if err != nil {
		logger.Error("digest sweep failed",
			slog.String("frequency", freq.String()),
			slog.Any("error", err))
		return
	}

	logger.Info("digest sweep finished",
		slog.String("frequency", freq.String()),
		slog.Int("total_users", run.TotalUsers),
		slog.Int("sent", run.SentCount),
		slog.Int("errors", len(run.Errors)))
}
