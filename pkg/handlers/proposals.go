package handlers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/shiftplan-api/pkg/apperrors"
	"github.com/arnavshah/shiftplan-api/pkg/calendar"
	"github.com/arnavshah/shiftplan-api/pkg/models"
	"github.com/arnavshah/shiftplan-api/pkg/planner"
)

// ProposeWeek fills the week containing week_of with proposals. An empty body
// proposes the current week.
func (h *Handler) ProposeWeek(c *gin.Context) {
	var req models.ProposeWeekRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, bindError(err))
		return
	}
	var weekOf calendar.Date
	if req.WeekOf != "" {
		d, err := calendar.ParseDate(req.WeekOf)
		if err != nil {
			respondError(c, apperrors.Validation(err))
			return
		}
		weekOf = d
	}
	resp, err := h.Planner.ProposeWeek(c.Request.Context(), planner.WeekRequest{
		WeekOf:    weekOf,
		Seed:      req.Seed,
		Templates: req.Templates,
		DryRun:    req.DryRun,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.recordUsage(c, resp.CandidateCount, len(resp.Blocks))
	c.JSON(http.StatusOK, resp)
}

// ProposeMonth fills every week of year/month with proposals
func (h *Handler) ProposeMonth(c *gin.Context) {
	var req models.ProposeMonthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	resp, err := h.Planner.ProposeMonth(c.Request.Context(), planner.MonthRequest{
		Year:      req.Year,
		Month:     time.Month(req.Month),
		Seed:      req.Seed,
		Templates: req.Templates,
		DryRun:    req.DryRun,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.recordUsage(c, resp.CandidateCount, len(resp.Blocks))
	c.JSON(http.StatusOK, resp)
}

// PromoteProposals turns the proposals in {"from","to"} into confirmed work
func (h *Handler) PromoteProposals(c *gin.Context) {
	var req models.RangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}
	from, to, err := req.Parse()
	if err != nil {
		respondError(c, apperrors.Validation(err))
		return
	}
	n, err := h.Planner.Promote(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"promoted": n})
}

// ClearProposals deletes the proposals in ?from=..&to=..
func (h *Handler) ClearProposals(c *gin.Context) {
	from, to, err := bindRange(c)
	if err != nil {
		respondError(c, err)
		return
	}
	n, err := h.Planner.ClearProposals(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

// ExportProposals writes the proposals in ?from=..&to=.. as CSV
func (h *Handler) ExportProposals(c *gin.Context) {
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

	var out bytes.Buffer
	writer := csv.NewWriter(&out)
	_ = writer.Write([]string{"date", "start", "end", "workplace", "hours", "label", "generation"})
	for _, cm := range cs {
		if cm.Category != models.CategoryProposal {
			continue
		}
		w, ok := cm.Window()
		if !ok {
			continue
		}
		_ = writer.Write([]string{
			cm.Date.String(),
			w.Start.String(),
			w.End.String(),
			cm.Place,
			fmt.Sprintf("%.2f", w.Hours()),
			cm.Label(),
			cm.Generation,
		})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("proposals_%s_%s.csv", from, to)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", out.Bytes())
}
