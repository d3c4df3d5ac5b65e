package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lexicon/internal/api"
	"lexicon/internal/config"
	"lexicon/internal/handler"
	"lexicon/internal/middleware"
	"lexicon/internal/repository/postgres"
	"lexicon/internal/scheduler"
	"lexicon/internal/service"

	"github.com/golang-migrate/migrate/v4"
	postgresdb "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Lexicon Bot")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	location, err := cfg.Location()
	if err != nil {
		logger.Fatal("Failed to load statistics timezone", zap.Error(err))
	}

	logger.Info("Configuration loaded successfully",
		zap.String("timezone", location.String()),
		zap.String("http_addr", cfg.HTTPAddr),
	)

	// Connect to database with retries
	db, err := connectDatabase(cfg.DSN(), logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connection established")

	// Run migrations
	if err := runMigrations(db, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	logger.Info("Database migrations completed")

	// Initialize repositories
	txManager := postgres.NewTxManager(db)
	userRepo := postgres.NewUserRepo(db)
	entryRepo := postgres.NewEntryRepo(db, location.String())
	exampleRepo := postgres.NewExampleRepo(db)
	folderRepo := postgres.NewFolderRepo(db)
	statsRepo := postgres.NewStatisticsRepo(db)

	// Initialize services
	statsService := service.NewStatisticsService(statsRepo, txManager, location, logger)
	authService := service.NewAuthService(userRepo, statsService, cfg.BotPassword)
	entryService := service.NewEntryService(entryRepo, exampleRepo, folderRepo, statsService, txManager)
	exampleService := service.NewExampleService(entryRepo, exampleRepo, statsService, txManager)
	folderService := service.NewFolderService(folderRepo, entryRepo, exampleRepo, statsService, txManager)

	// Initialize Telegram bot
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.BotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			logger.Error("Bot handler failed", zap.Error(err))
		},
	})
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	logger.Info("Telegram bot initialized")

	// Initialize handler
	bot.Use(middleware.AuthMiddleware(authService, logger))
	h := handler.NewHandler(bot, authService, entryService, exampleService, folderService, statsService,
		cfg.Statistics.LeaderboardLimit, logger)
	h.RegisterHandlers()

	logger.Info("Handlers registered")

	// Schedule weekly statistics reset
	sched := scheduler.New(location, logger)
	if _, err := sched.AddWeeklyReset(cfg.Statistics.ResetSchedule, statsService); err != nil {
		logger.Fatal("Failed to schedule weekly reset", zap.Error(err))
	}
	sched.Start()

	// Start leaderboard API in background
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.New(statsService, db, cfg.Statistics.LeaderboardLimit, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("HTTP server started", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Start bot in background
	go func() {
		logger.Info("Bot started successfully")
		bot.Start()
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	logger.Info("Shutdown signal received, stopping...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	bot.Stop()
	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("HTTP server shutdown failed", zap.Error(err))
	}
	sched.Stop(ctx)

	logger.Info("Stopped gracefully")
}

// connectDatabase connects to PostgreSQL with retries
func connectDatabase(dsn string, logger *zap.Logger) (*sql.DB, error) {
	var db *sql.DB
	var err error

	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			logger.Warn("Failed to open database connection",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			time.Sleep(retryDelay)
			continue
		}

		// Test connection
		if err = db.Ping(); err != nil {
			logger.Warn("Failed to ping database",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			db.Close()
			time.Sleep(retryDelay)
			continue
		}

		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		return db, nil
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}

// runMigrations runs database migrations
func runMigrations(db *sql.DB, logger *zap.Logger) error {
	driver, err := postgresdb.WithInstance(db, &postgresdb.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("No new migrations to apply")
	case err != nil:
		return fmt.Errorf("failed to run migrations: %w", err)
	default:
		logger.Info("Migrations applied successfully")
	}

	return nil
}
