package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/shiftplan-api/pkg/apperrors"
	"github.com/arnavshah/shiftplan-api/pkg/calendar"
	"github.com/arnavshah/shiftplan-api/pkg/models"
)

// CommitmentView is a commitment with its calendar label
type CommitmentView struct {
	models.Commitment
	Label string `json:"label"`
}

func views(cs []models.Commitment) []CommitmentView {
	out := make([]CommitmentView, 0, len(cs))
	for _, c := range cs {
		out = append(out, CommitmentView{Commitment: c, Label: c.Label()})
	}
	return out
}

func bindRange(c *gin.Context) (calendar.Date, calendar.Date, error) {
	var req models.RangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		return calendar.Date{}, calendar.Date{}, bindError(err)
	}
	from, to, err := req.Parse()
	if err != nil {
		return calendar.Date{}, calendar.Date{}, apperrors.Validation(err)
	}
	return from, to, nil
}

// ListCommitments returns every commitment in ?from=..&to=..
func (h *Handler) ListCommitments(c *gin.Context) {
	from, to, err := bindRange(c)
	if err != nil {
		respondError(c, err)
		return
	}
	cs, err := h.Store.ListCommitments(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"commitments": views(cs)})
}

// MonthView groups a month's commitments by date, one entry per day
func (h *Handler) MonthView(c *gin.Context) {
	year, yErr := strconv.Atoi(c.Param("year"))
	month, mErr := strconv.Atoi(c.Param("month"))
	if yErr != nil || mErr != nil || month < 1 || month > 12 {
		respondError(c, apperrors.Clone(apperrors.ErrValidation, "year and month must be numeric, month in 1..12"))
		return
	}
	from, to := calendar.MonthBounds(year, time.Month(month))
	cs, err := h.Store.ListCommitments(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	days := make(map[string][]CommitmentView, to.Day)
	for _, d := range calendar.DatesBetween(from, to) {
		days[d.String()] = []CommitmentView{}
	}
	for _, v := range views(cs) {
		key := v.Date.String()
		days[key] = append(days[key], v)
	}
	c.JSON(http.StatusOK, gin.H{
		"year":  year,
		"month": month,
		"days":  days,
	})
}

// CreateCommitment stores a manually entered commitment
func (h *Handler) CreateCommitment(c *gin.Context) {
	var req models.CommitmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	cm, err := req.ToCommitment()
	if err != nil {
		respondError(c, apperrors.Validation(err))
		return
	}
	if err := h.Store.InsertCommitment(c.Request.Context(), &cm); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, CommitmentView{Commitment: cm, Label: cm.Label()})
}

func (h *Handler) GetCommitment(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	cm, err := h.Store.GetCommitment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, CommitmentView{Commitment: cm, Label: cm.Label()})
}

// UpdateCommitment applies a partial edit; omitted fields stay unchanged
func (h *Handler) UpdateCommitment(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var u models.CommitmentUpdate
	if err := c.ShouldBindJSON(&u); err != nil {
		respondError(c, bindError(err))
		return
	}
	cm, err := h.Store.UpdateCommitment(c.Request.Context(), id, u)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, CommitmentView{Commitment: cm, Label: cm.Label()})
}

func (h *Handler) DeleteCommitment(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.Store.DeleteCommitment(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Commitment deleted"})
}
