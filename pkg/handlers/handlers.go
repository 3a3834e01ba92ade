package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/arnavshah/shiftplan-api/pkg/apperrors"
	"github.com/arnavshah/shiftplan-api/pkg/auth"
	"github.com/arnavshah/shiftplan-api/pkg/database"
	"github.com/arnavshah/shiftplan-api/pkg/metrics"
	"github.com/arnavshah/shiftplan-api/pkg/planner"
	"github.com/arnavshah/shiftplan-api/pkg/store"
)

const (
	ctxAPIKey   = "apiKey"
	ctxUserID   = "userID"
	ctxUsername = "username"
)

// Handler contains dependencies for the route handlers
type Handler struct {
	Store   store.Repository
	Planner *planner.Planner
	Auth    *auth.Service
	Log     *zap.Logger
	Metrics *metrics.Metrics
}

func bearer(c *gin.Context) string {
	return strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
}

// AuthMiddleware verifies the JWT token for admin routes
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearer(c)
		if token == "" {
			respondError(c, apperrors.Clone(apperrors.ErrUnauthorized, "Authorization header required"))
			return
		}
		claims, err := h.Auth.VerifyToken(token)
		if err != nil {
			respondError(c, apperrors.Clone(apperrors.ErrUnauthorized, "Invalid token"))
			return
		}
		c.Set(ctxUsername, claims.Username)
		c.Next()
	}
}

// APIKeyMiddleware verifies the HMAC API key and enforces its daily limit
func (h *Handler) APIKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := bearer(c)
		if key == "" {
			respondError(c, apperrors.Clone(apperrors.ErrUnauthorized, "API Key required"))
			return
		}
		apiKey, err := h.Auth.ResolveAPIKey(c.Request.Context(), key)
		if errors.Is(err, auth.ErrInvalidKeyFormat) || errors.Is(err, auth.ErrInvalidSignature) {
			respondError(c, apperrors.Clone(apperrors.ErrUnauthorized, "Invalid API Key signature"))
			return
		}
		if err != nil {
			respondError(c, err)
			return
		}
		ok, err := h.Auth.WithinLimit(c.Request.Context(), apiKey)
		if err != nil {
			respondError(c, err)
			return
		}
		if !ok {
			respondError(c, apperrors.ErrRateLimited)
			return
		}
		c.Set(ctxAPIKey, apiKey)
		c.Set(ctxUserID, apiKey.Name)
		c.Next()
	}
}

// recordUsage counts one request against the caller's key
func (h *Handler) recordUsage(c *gin.Context, candidates, blocks int) {
	raw, exists := c.Get(ctxAPIKey)
	if !exists {
		return
	}
	apiKey := raw.(*database.APIKey)
	if err := h.Auth.RecordUsage(c.Request.Context(), apiKey.ID, candidates, blocks); err != nil {
		h.Log.Warn("could not record usage", zap.Uint("key_id", apiKey.ID), zap.Error(err))
	}
}

// respondError renders err as {"error", "code"} with the matching status
func respondError(c *gin.Context, err error) {
	e := apperrors.FromError(err)
	if e.Status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(e.Status, gin.H{"error": e.Message, "code": e.Code})
}

// bindError turns a binding failure into a validation error
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fieldMessage(fe))
		}
		return apperrors.Clone(apperrors.ErrValidation, strings.Join(msgs, "; "))
	}
	return apperrors.Validation(err)
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "hhmm":
		return field + " must be a time in HH:MM format"
	case "isodate":
		return field + " must be a date in YYYY-MM-DD format"
	case "category":
		return field + " must be one of class, job, private, work, proposal"
	case "oneof":
		return field + " must be one of " + fe.Param()
	default:
		return field + " failed " + fe.Tag() + " validation"
	}
}

func idParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.Clone(apperrors.ErrValidation, "invalid id")
	}
	return uint(id), nil
}
