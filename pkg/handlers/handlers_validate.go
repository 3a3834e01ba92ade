package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/shiftplan-api/pkg/calendar"
	"github.com/arnavshah/shiftplan-api/pkg/models"
	"github.com/arnavshah/shiftplan-api/pkg/planner"
)

// Propose runs the scheduler on a fully supplied payload without touching storage
func (h *Handler) Propose(c *gin.Context) {
	var input models.ProposeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, bindError(err))
		return
	}
	resp, err := h.Planner.Compute(input)
	if err != nil {
		respondError(c, err)
		return
	}
	h.recordUsage(c, resp.CandidateCount, len(resp.Blocks))
	c.JSON(http.StatusOK, resp)
}

// ValidateInput checks a stateless payload and reports what it contains
func (h *Handler) ValidateInput(c *gin.Context) {
	var input models.ProposeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	if err := planner.ValidateInput(input); err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": err.Error()})
		return
	}

	var warnings []string
	if len(input.Wages) == 0 {
		warnings = append(warnings, "no wages: nothing will be proposed")
	}
	if len(input.Rules) == 0 && input.Templates.Empty() {
		warnings = append(warnings, "no availability rules or templates: nothing will be proposed")
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":    true,
		"warnings": warnings,
		"stats": gin.H{
			"days":             len(calendar.DatesBetween(input.HorizonStart, input.HorizonEnd)),
			"availability":     len(input.Rules),
			"workplaces":       len(input.Wages),
			"commitment_count": len(input.Commitments),
		},
	})
}
