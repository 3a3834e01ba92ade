package handler

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/arnavshah/shiftplan-api/pkg/auth"
	"github.com/arnavshah/shiftplan-api/pkg/config"
	"github.com/arnavshah/shiftplan-api/pkg/database"
	"github.com/arnavshah/shiftplan-api/pkg/handlers"
	"github.com/arnavshah/shiftplan-api/pkg/logger"
	"github.com/arnavshah/shiftplan-api/pkg/metrics"
	"github.com/arnavshah/shiftplan-api/pkg/planner"
	"github.com/arnavshah/shiftplan-api/pkg/store"
)

var r *gin.Engine

func init() {
	// Load .env if it exists (for local testing with vercel dev)
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	l, err := logger.New(config.EnvProduction, cfg.LogLevel)
	if err != nil {
		log.Fatalf("could not build logger: %v", err)
	}

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		log.Fatalf("could not open database: %v", err)
	}
	authSvc := auth.NewService(db, cfg.Auth, l)
	_ = authSvc.EnsureAdminExists(context.Background(), cfg.Auth.AdminUsername, cfg.Auth.AdminPassword)

	m := metrics.New()
	repo := store.New(db)

	gin.SetMode(gin.ReleaseMode)
	// Serverless instances do not run the auto-proposer; schedule it externally
	r = handlers.NewRouter(&handlers.Handler{
		Store:   repo,
		Planner: planner.New(repo, l, m),
		Auth:    authSvc,
		Log:     l,
		Metrics: m,
	})
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	r.ServeHTTP(w, req)
}
