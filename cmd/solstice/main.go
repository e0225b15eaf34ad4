package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/solstice-id/solstice/internal/account"
	"github.com/solstice-id/solstice/internal/app"
	"github.com/solstice-id/solstice/internal/auth"
	"github.com/solstice-id/solstice/internal/mail"
	"github.com/solstice-id/solstice/internal/observability"
	"github.com/solstice-id/solstice/internal/platform/cache"
	"github.com/solstice-id/solstice/internal/platform/db"
	"github.com/solstice-id/solstice/internal/token"
	"github.com/solstice-id/solstice/internal/verification"
	"github.com/solstice-id/solstice/jobs"

	"github.com/hibiken/asynq"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	tokens, err := token.NewManager(token.Config{
		Secret:       cfg.JWTSecret,
		Issuer:       cfg.JWTIssuer,
		Audience:     cfg.JWTAudience,
		Lifetime:     cfg.TokenLifetime,
		RefreshGrace: cfg.RefreshGrace,
	})
	if err != nil {
		logger.Error("init token manager", slog.Any("error", err))
		os.Exit(1)
	}

	sender := mail.NewSMTPSender(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})

	queue := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := queue.Close(); err != nil {
			logger.Warn("queue close", slog.Any("error", err))
		}
	}()

	codes := verification.NewRedisStore(redisClient)
	accountRepo := account.NewRepository(pool)

	metrics := observability.NewMetrics()

	authMiddleware := auth.NewMiddleware(logger, tokens)
	authService := auth.NewService(logger, accountRepo, codes, tokens, sender, queue)
	authHandler := auth.NewHandler(logger, authService, authMiddleware, metrics)

	accountService := account.NewService(accountRepo)
	accountHandler := account.NewHandler(logger, accountService,
		authMiddleware.RequireAuth, authMiddleware.RequireRole(account.RoleAdmin))

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		AuthHandler:    authHandler,
		AccountHandler: accountHandler,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
