package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/shiftplan-api/pkg/apperrors"
	"github.com/arnavshah/shiftplan-api/pkg/models"
)

// ListAvailability returns the rules, optionally filtered by ?workplace=
func (h *Handler) ListAvailability(c *gin.Context) {
	rules, err := h.Store.ListRules(c.Request.Context(), strings.TrimSpace(c.Query("workplace")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"availability": rules})
}

func (h *Handler) AddAvailability(c *gin.Context) {
	var req models.AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	rule, err := req.ToRule()
	if err != nil {
		respondError(c, apperrors.Validation(err))
		return
	}
	if err := h.Store.AddRule(c.Request.Context(), &rule); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rule)
}

func (h *Handler) DeleteAvailability(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.Store.DeleteRule(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Availability rule deleted"})
}

// GetTemplates returns the saved shift template catalog; null when none is saved
func (h *Handler) GetTemplates(c *gin.Context) {
	catalog, err := h.Store.Templates(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": catalog})
}

func (h *Handler) PutTemplates(c *gin.Context) {
	var catalog models.ShiftTemplateCatalog
	if err := c.ShouldBindJSON(&catalog); err != nil {
		respondError(c, bindError(err))
		return
	}
	if err := h.Store.SetTemplates(c.Request.Context(), &catalog); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": catalog})
}

func (h *Handler) ListWages(c *gin.Context) {
	wages, err := h.Store.Wages(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wages": wages})
}

// PutWage creates or replaces the hourly wage of :workplace
func (h *Handler) PutWage(c *gin.Context) {
	var req models.WageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	workplace := strings.TrimSpace(c.Param("workplace"))
	if err := h.Store.SetWage(c.Request.Context(), workplace, req.HourlyWage); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workplace": workplace, "hourly_wage": req.HourlyWage})
}

func (h *Handler) DeleteWage(c *gin.Context) {
	if err := h.Store.DeleteWage(c.Request.Context(), c.Param("workplace")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Wage deleted"})
}

func (h *Handler) GetPolicy(c *gin.Context) {
	p, err := h.Store.GetPolicy(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// PutPolicy merges the body over the current policy, so callers may send only the caps
func (h *Handler) PutPolicy(c *gin.Context) {
	p, err := h.Store.GetPolicy(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if err := c.ShouldBindJSON(&p); err != nil {
		respondError(c, bindError(err))
		return
	}
	if err := h.Store.SetPolicy(c.Request.Context(), p); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
