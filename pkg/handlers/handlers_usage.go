package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/shiftplan-api/pkg/apperrors"
	"github.com/arnavshah/shiftplan-api/pkg/database"
)

const usageDays = 30

type usageTotals struct {
	Requests   int64 `json:"requests"`
	Candidates int64 `json:"candidates"`
	Blocks     int64 `json:"blocks"`
}

func totals(usage []database.APIUsage) usageTotals {
	var t usageTotals
	for _, u := range usage {
		t.Requests += int64(u.RequestCount)
		t.Candidates += int64(u.TotalCandidates)
		t.Blocks += int64(u.TotalBlocks)
	}
	return t
}

// GetMyUsage returns usage stats for the authenticated API key
func (h *Handler) GetMyUsage(c *gin.Context) {
	apiKeyRaw, exists := c.Get(ctxAPIKey)
	if !exists {
		respondError(c, apperrors.Clone(apperrors.ErrInternal, "API Key context missing"))
		return
	}
	apiKey := apiKeyRaw.(*database.APIKey)

	usage, err := h.Auth.Usage(c.Request.Context(), apiKey.ID, usageDays)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"key_name":      apiKey.Name,
		"rate_limit":    apiKey.RateLimit,
		"usage_history": usage,
		"totals":        totals(usage),
	})
}

// GetUsage returns usage stats for any key (admin)
func (h *Handler) GetUsage(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	usage, err := h.Auth.Usage(c.Request.Context(), id, usageDays)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"usage": usage, "totals": totals(usage)})
}
