package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arnavshah/shiftplan-api/pkg/auth"
	"github.com/arnavshah/shiftplan-api/pkg/config"
	"github.com/arnavshah/shiftplan-api/pkg/database"
	"github.com/arnavshah/shiftplan-api/pkg/handlers"
	"github.com/arnavshah/shiftplan-api/pkg/jobs"
	"github.com/arnavshah/shiftplan-api/pkg/logger"
	"github.com/arnavshah/shiftplan-api/pkg/metrics"
	"github.com/arnavshah/shiftplan-api/pkg/planner"
	"github.com/arnavshah/shiftplan-api/pkg/store"
)

const shutdownTimeout = 15 * time.Second

func main() {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	l, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("could not build logger: %v", err)
	}
	defer func() { _ = l.Sync() }()

	if cfg.GinMode == "" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(cfg.GinMode)
	}

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		l.Fatal("could not open database", zap.Error(err))
	}

	authSvc := auth.NewService(db, cfg.Auth, l)
	if err := authSvc.EnsureAdminExists(context.Background(), cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
		l.Error("could not ensure admin user", zap.Error(err))
	}

	m := metrics.New()
	repo := store.New(db)
	p := planner.New(repo, l, m)

	var auto *jobs.AutoProposer
	if cfg.Jobs.AutoProposeCron != "" {
		auto, err = jobs.NewAutoProposer(p, cfg.Jobs.AutoProposeCron, cfg.Jobs.AutoProposeSeed, l)
		if err != nil {
			l.Fatal("invalid auto-propose schedule", zap.Error(err))
		}
		auto.Start()
	}

	router := handlers.NewRouter(&handlers.Handler{
		Store:   repo,
		Planner: p,
		Auth:    authSvc,
		Log:     l,
		Metrics: m,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		l.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("could not run server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	l.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if auto != nil {
		auto.Stop(ctx)
	}
	if err := srv.Shutdown(ctx); err != nil {
		l.Error("forced shutdown", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
