package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/peladahub/pelada-service/internal/ai"
	"github.com/peladahub/pelada-service/internal/config"
	"github.com/peladahub/pelada-service/internal/export"
	"github.com/peladahub/pelada-service/internal/handler"
	"github.com/peladahub/pelada-service/internal/logger"
	"github.com/peladahub/pelada-service/internal/repository"
	"github.com/peladahub/pelada-service/internal/repository/filestore"
	"github.com/peladahub/pelada-service/internal/repository/postgres"
	"github.com/peladahub/pelada-service/internal/service"
)

func main() {
	// Local overrides for development; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("config loading failed: %v", err)
	}

	appLogger, err := logger.New(&cfg.Logger)
	if err != nil {
		log.Fatalf("logger initialization failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store repository.Store
	switch cfg.Storage.Backend {
	case "postgres":
		pg, err := repository.NewPostgres(ctx, cfg, &appLogger)
		if err != nil {
			appLogger.Fatal().Err(err).Msg("postgres connection failed")
		}
		defer pg.Close()
		store, err = postgres.NewStore(ctx, pg.Pool(), appLogger)
		if err != nil {
			appLogger.Fatal().Err(err).Msg("postgres store init failed")
		}
	case "file":
		store, err = filestore.New(cfg.Storage.DataDir, appLogger)
		if err != nil {
			appLogger.Fatal().Err(err).Msg("filestore init failed")
		}
	default:
		appLogger.Fatal().Str("backend", cfg.Storage.Backend).Msg("unknown storage backend")
	}

	// The AI collaborator is optional; without a key the deterministic
	// balancer handles everything.
	var assistant service.BalanceAssistant
	if cfg.Gemini.APIKey != "" {
		client, err := ai.NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model,
			time.Duration(cfg.Gemini.Timeout)*time.Second, appLogger)
		if err != nil {
			appLogger.Warn().Err(err).Msg("gemini client init failed, assisted balancing disabled")
		} else {
			defer client.Close()
			assistant = client
		}
	}

	svcs := handler.Services{
		Players:    service.NewPlayerService(store, nil, appLogger),
		Attendance: service.NewAttendanceService(store, appLogger),
		Match:      service.NewMatchService(store, assistant, nil, appLogger),
		Ranking:    service.NewRankingService(store, appLogger),
		Settings:   service.NewSettingsService(store, appLogger),
		Export:     export.NewService(store, appLogger),
	}

	if cfg.Logger.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	handler.Register(engine, store, svcs)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		appLogger.Info().Str("addr", cfg.Server.Addr).Str("backend", cfg.Storage.Backend).Msg("service started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	appLogger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
