package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/inklet/inklet/config"
	"github.com/inklet/inklet/internal/api"
	"github.com/inklet/inklet/internal/api/handler"
	"github.com/inklet/inklet/internal/cache"
	"github.com/inklet/inklet/internal/metrics"
	"github.com/inklet/inklet/internal/repository"
	"github.com/inklet/inklet/internal/service"
	"github.com/inklet/inklet/pkg/database"
	"github.com/inklet/inklet/pkg/logger"
	"github.com/inklet/inklet/pkg/tracing"
)

// @title Inklet API
// @version 1.0
// @description JSON API for the inklet blog.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Server.Mode); err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	shutdownTracing, err := tracing.Init(ctx, cfg)
	if err != nil {
		logger.Error("tracing init failed", zap.Error(err))
	} else {
		defer func() { _ = shutdownTracing(context.Background()) }()
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Error("database init failed", zap.Error(err))
		return
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	reactionRepo := repository.NewReactionRepository(db)

	// The reaction count cache is optional; without Redis every count read
	// goes to the database.
	var (
		counts    *cache.ReactionCounts
		refresher *cache.CountRefresher
	)
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		counts = cache.NewReactionCounts(rdb, time.Duration(cfg.Redis.CacheTTL)*time.Second)
		refresher = cache.NewCountRefresher(counts, reactionRepo, 1024)
		stopRefresher := refresher.Start(2)
		defer func() { _ = stopRefresher(context.Background()) }()
	}

	authSvc := service.NewAuthService(userRepo, cfg.Auth.BcryptCost)
	postSvc := service.NewPostService(postRepo)
	reactionSvc := service.NewReactionService(reactionRepo, postRepo, counts, refresher)

	m := metrics.New(prometheus.DefaultRegisterer)

	store := sessions.NewCookieStore([]byte(cfg.Session.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.Session.MaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	h := handler.New(
		authSvc, postSvc, reactionSvc, store, m,
		cfg.Auth.TokenSecret, time.Duration(cfg.Auth.TokenTTL)*time.Minute,
	)
	router := api.NewRouter(api.RouterOptions{
		Config:  cfg,
		Handler: h,
		Auth:    authSvc,
		Store:   store,
		Metrics: m,
		Tracing: cfg.Tracing.OTLPEndpoint != "",
		Sentry:  cfg.Sentry.DSN != "",
	})

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: router}
	go func() {
		logger.Info("server starting", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
