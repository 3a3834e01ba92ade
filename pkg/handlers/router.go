package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arnavshah/shiftplan-api/pkg/logger"
)

// Version is reported by the index route
const Version = "3.0.0"

// NewRouter wires every route onto a fresh gin engine
func NewRouter(h *Handler) *gin.Engine {
	h.Log = logger.OrNop(h.Log)
	if err := RegisterValidators(); err != nil {
		h.Log.Error("could not register validators", zap.Error(err))
	}

	r := gin.New()
	r.Use(gin.Recovery(), logger.GinMiddleware(h.Log), h.Metrics.GinMiddleware())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Shift Planner API",
			"version": Version,
		})
	})
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(h.Metrics.Handler()))

	r.POST("/admin/login", h.Login)

	// Admin Endpoints
	admin := r.Group("/admin")
	admin.Use(h.AuthMiddleware())
	{
		admin.POST("/keys", h.GenerateKey)
		admin.GET("/keys", h.ListKeys)
		admin.PUT("/keys/:id", h.UpdateKeyLimit)
		admin.DELETE("/keys/:id", h.RevokeKey)
		admin.GET("/usage/:id", h.GetUsage)
	}

	// Planner Endpoints
	api := r.Group("/api")
	api.Use(h.APIKeyMiddleware())
	{
		api.GET("/commitments", h.ListCommitments)
		api.POST("/commitments", h.CreateCommitment)
		api.GET("/commitments/:id", h.GetCommitment)
		api.PATCH("/commitments/:id", h.UpdateCommitment)
		api.DELETE("/commitments/:id", h.DeleteCommitment)
		api.GET("/calendar/:year/:month", h.MonthView)

		api.GET("/availability", h.ListAvailability)
		api.POST("/availability", h.AddAvailability)
		api.DELETE("/availability/:id", h.DeleteAvailability)
		api.GET("/templates", h.GetTemplates)
		api.PUT("/templates", h.PutTemplates)
		api.GET("/wages", h.ListWages)
		api.PUT("/wages/:workplace", h.PutWage)
		api.DELETE("/wages/:workplace", h.DeleteWage)
		api.GET("/policy", h.GetPolicy)
		api.PUT("/policy", h.PutPolicy)

		api.POST("/proposals/week", h.ProposeWeek)
		api.POST("/proposals/month", h.ProposeMonth)
		api.POST("/proposals/promote", h.PromoteProposals)
		api.DELETE("/proposals", h.ClearProposals)
		api.GET("/proposals/export", h.ExportProposals)

		api.POST("/propose", h.Propose)
		api.POST("/validate", h.ValidateInput)
		api.GET("/usage", h.GetMyUsage)
	}

	return r
}
