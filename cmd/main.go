package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/promptarena/prompt-arena/cache"
	"github.com/promptarena/prompt-arena/config"
	"github.com/promptarena/prompt-arena/db"
	"github.com/promptarena/prompt-arena/handlers"
	"github.com/promptarena/prompt-arena/live"
	"github.com/promptarena/prompt-arena/llm"
	"github.com/promptarena/prompt-arena/repositories"
	api "github.com/promptarena/prompt-arena/routes"
	"github.com/promptarena/prompt-arena/services"
	"github.com/promptarena/prompt-arena/storage"
)

const profileCacheSweepInterval = time.Minute

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Инициализация загрузчика файлов (Cloudflare R2). Опционально.
	var uploader storage.FileUploader
	if cfg.R2AccountID != "" {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Info("R2 archiving disabled: R2_ACCOUNT_ID not set")
	}

	// Инициализация WebSocket Hub
	wsHub := live.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Кэш профилей пользователей
	profileCache := cache.NewProfileCache(cfg.ProfileCacheTTL)
	sweeperStop := make(chan struct{})
	profileCache.StartSweeper(profileCacheSweepInterval, sweeperStop)
	defer close(sweeperStop)

	// Инициализация репозиториев
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	competitionRepo := repositories.NewPostgresCompetitionRepository(dbConn)
	challengeRepo := repositories.NewPostgresChallengeRepository(dbConn)
	submissionRepo := repositories.NewPostgresSubmissionRepository(dbConn)
	assignmentRepo := repositories.NewPostgresAssignmentRepository(dbConn)
	participantRepo := repositories.NewPostgresParticipantRepository(dbConn)
	leaderboardRepo := repositories.NewPostgresLeaderboardRepository(dbConn)
	logger.Info("Repositories initialized")

	// Автоматические оценщики. Пустой ключ отключает автооценку.
	var scorers []llm.Scorer
	if cfg.OpenAIAPIKey != "" {
		scorer, err := llm.NewOpenAIScorer(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		if err != nil {
			logger.Error("failed to initialize OpenAI scorer", slog.Any("error", err))
			os.Exit(1)
		}
		scorers = append(scorers, scorer)
		logger.Info("automated scorer initialized", slog.String("model", cfg.OpenAIModel))
	} else {
		logger.Warn("automated scoring disabled: OPENAI_API_KEY not set")
	}

	// Email. Пустой SMTP_HOST отключает уведомления.
	var emailService *services.EmailService
	if cfg.SMTPHost != "" {
		emailService = services.NewEmailService(cfg)
		logger.Info("email notifications enabled", slog.String("host", cfg.SMTPHost))
	} else {
		logger.Info("email notifications disabled: SMTP_HOST not set")
	}

	// Инициализация сервисов
	authService := services.NewAuthService(userRepo)
	userService := services.NewUserService(userRepo, profileCache)
	competitionService := services.NewCompetitionService(competitionRepo, challengeRepo, logger)
	challengeService := services.NewChallengeService(challengeRepo, competitionRepo)
	submissionService := services.NewSubmissionService(dbConn, submissionRepo, challengeRepo, competitionRepo, participantRepo)
	evaluationService := services.NewEvaluationService(submissionRepo, challengeRepo, scorers, logger)
	assignmentService := services.NewAssignmentService(
		dbConn,
		assignmentRepo,
		submissionRepo,
		competitionRepo,
		userRepo,
		emailService,
		wsHub,
		cfg.MaxPerJudgePerChallenge,
		logger,
	)
	reviewService := services.NewReviewService(submissionRepo, challengeRepo, assignmentRepo, wsHub, logger)
	leaderboardService := services.NewLeaderboardService(dbConn, leaderboardRepo, submissionRepo, competitionRepo, wsHub, logger)
	exportService := services.NewExportService(submissionRepo, participantRepo, userRepo, uploader, logger)
	logger.Info("Services initialized")

	// Планировщик периодической пересборки лидербордов активных
	// соревнований. Выключен при нулевом интервале.
	if cfg.LeaderboardRebuildInterval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.LeaderboardRebuildInterval)
			defer ticker.Stop()
			logger.Info("leaderboard rebuild scheduler started", slog.Duration("interval", cfg.LeaderboardRebuildInterval))

			for range ticker.C {
				active := true
				competitions, err := competitionService.List(context.Background(), repositories.ListCompetitionsFilter{Active: &active})
				if err != nil {
					logger.Error("scheduler: failed to list active competitions", slog.Any("error", err))
					continue
				}
				for _, competition := range competitions {
					if _, err := leaderboardService.Build(context.Background(), competition.ID); err != nil {
						logger.Error("scheduler: leaderboard rebuild failed",
							slog.Int("competition_id", competition.ID),
							slog.Any("error", err),
						)
					}
				}
			}
		}()
	}

	// Инициализация обработчиков HTTP
	authHandler := handlers.NewAuthHandler(authService, emailService, cfg.JWTSecretKey)
	userHandler := handlers.NewUserHandler(userService)
	competitionHandler := handlers.NewCompetitionHandler(competitionService)
	challengeHandler := handlers.NewChallengeHandler(challengeService)
	submissionHandler := handlers.NewSubmissionHandler(submissionService)
	judgeHandler := handlers.NewJudgeHandler(assignmentService, reviewService)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService)
	adminHandler := handlers.NewAdminHandler(userService, assignmentService, evaluationService, submissionService, exportService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		authHandler,
		userHandler,
		competitionHandler,
		challengeHandler,
		submissionHandler,
		judgeHandler,
		leaderboardHandler,
		adminHandler,
		webSocketHandler,
	)
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
