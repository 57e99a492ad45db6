package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	pgRepo "newsdigest/internal/infra/adapter/persistence/postgres"
	"newsdigest/internal/infra/db"
	"newsdigest/internal/infra/mailer"
	"newsdigest/internal/infra/newsapi"
	"newsdigest/internal/observability/logging"

	collUC "newsdigest/internal/usecase/collection"
	digestUC "newsdigest/internal/usecase/digest"
	newsUC "newsdigest/internal/usecase/news"

	hhttp "newsdigest/internal/handler/http"
	authservice "newsdigest/internal/service/auth"
)

func main() {
	logger := initLogger()
	jwtSecret := validateJWTSecret(logger)
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	version := getVersion()
	handler := setupServer(logger, database, jwtSecret, version)

	runServer(logger, handler, version)
}

// initLogger initializes and returns a structured logger based on environment configuration.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// validateJWTSecret validates the JWT_SECRET environment variable for security requirements.
func validateJWTSecret(logger *slog.Logger) []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logger.Error("JWT_SECRET must be set")
		os.Exit(1)
	}
	if len(secret) < 32 {
		logger.Error("JWT_SECRET must be at least 32 characters (256 bits)")
		os.Exit(1)
	}
	weakSecrets := []string{"secret", "password", "test", "admin", "default"}
	for _, weak := range weakSecrets {
		if secret == weak || secret == weak+"123" {
			logger.Error("JWT_SECRET must not be a common weak value", slog.String("weak_value", weak))
			os.Exit(1)
		}
	}
	return []byte(secret)
}

// initDatabase opens the database connection and runs migrations.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// setupServer wires repositories, services and handlers into the router.
func setupServer(logger *slog.Logger, database *sql.DB, jwtSecret []byte, version string) http.Handler {
	userRepo := pgRepo.NewUserRepo(database)
	collectionRepo := pgRepo.NewCollectionRepo(database)

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

	authSvc := authservice.NewService(userRepo, jwtSecret)
	newsSvc := newsUC.NewService(newsClient)
	collectionSvc := collUC.NewService(collectionRepo)
	digestSvc := digestUC.NewService(userRepo, newsSvc, smtpMailer)

	cronSecret := os.Getenv("DIGEST_CRON_SECRET")
	if cronSecret == "" {
		logger.Warn("DIGEST_CRON_SECRET not set, the sweep trigger endpoint is disabled")
	}

	return hhttp.NewRouter(hhttp.RouterConfig{
		Logger:      logger,
		DB:          database,
		Version:     version,
		CronSecret:  cronSecret,
		Auth:        authSvc,
		Users:       userRepo,
		News:        newsSvc,
		Collections: collectionSvc,
		Digest:      digestSvc,
	})
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(logger *slog.Logger, handler http.Handler, version string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
