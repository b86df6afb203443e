package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/akadimia/academy-backend/internal/config"
	"github.com/akadimia/academy-backend/internal/database"
	"github.com/akadimia/academy-backend/internal/discord"
	"github.com/akadimia/academy-backend/internal/handler"
	"github.com/akadimia/academy-backend/internal/logger"
	"github.com/akadimia/academy-backend/internal/repository"
	"github.com/akadimia/academy-backend/internal/router"
	"github.com/akadimia/academy-backend/internal/service"
	"github.com/akadimia/academy-backend/internal/validator"
	"github.com/akadimia/academy-backend/internal/worker"
	"github.com/rs/zerolog"
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting academy backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Discord Integration ───────────────────────────────────────────
	bot := discord.NewClient(cfg.DiscordAPIBase, cfg.DiscordBotToken, cfg.DiscordGuildID, log)
	oauth := discord.NewOAuth(cfg.DiscordAPIBase, cfg.DiscordClientID, cfg.DiscordClientSecret, cfg.DiscordRedirectURI)

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	appRepo := repository.NewApplicationRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)
	notifRepo := repository.NewNotificationRepository(pool)
	evalRepo := repository.NewEvaluationRepository(pool)
	settingRepo := repository.NewSettingRepository(pool)

	// ─── Initialize Services ───────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)
	auditService := service.NewAuditService(auditRepo, bot, cfg.DiscordLogChannelID, log)
	examService := service.NewExamService(cfg, appRepo, sessionRepo, questionRepo, settingRepo, rdb, auditService, log)
	intakeService := service.NewIntakeService(cfg, appRepo, settingRepo, sessionRepo, oauth, authService, rdb, auditService, log)
	userService := service.NewUserService(userRepo, authService, auditService, log)
	reviewService := service.NewReviewService(cfg, appRepo, sessionRepo, questionRepo, settingRepo, userRepo, examService, authService, bot, auditService, log)
	questionService := service.NewQuestionService(questionRepo, sessionRepo, log)
	messagingService := service.NewMessagingService(messageRepo, notifRepo, evalRepo, userRepo, rdb, log)
	evaluationService := service.NewEvaluationService(evalRepo, userRepo, messagingService, log)

	// ─── Start Background Workers ──────────────────────────────────────
	expiryWorker := worker.NewExpiryWorker(examService, log)
	go expiryWorker.Start(ctx)

	// ─── Initialize Handlers ───────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(userService),
		Apply:      handler.NewApplyHandler(cfg, intakeService),
		Exam:       handler.NewExamHandler(examService),
		Review:     handler.NewReviewHandler(reviewService, userService),
		Question:   handler.NewQuestionHandler(questionService),
		User:       handler.NewUserHandler(userService),
		Messaging:  handler.NewMessagingHandler(messagingService, userService),
		Evaluation: handler.NewEvaluationHandler(evaluationService, userService),
		Audit:      handler.NewAuditHandler(auditService),
		WS:         handler.NewWSHandler(messagingService, userService, log, cfg.AllowedOrigins),
		System:     handler.NewSystemHandler(rdb, log),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}
