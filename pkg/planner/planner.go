package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arnavshah/shiftplan-api/pkg/apperrors"
	"github.com/arnavshah/shiftplan-api/pkg/calendar"
	"github.com/arnavshah/shiftplan-api/pkg/logger"
	"github.com/arnavshah/shiftplan-api/pkg/metrics"
	"github.com/arnavshah/shiftplan-api/pkg/models"
	"github.com/arnavshah/shiftplan-api/pkg/scheduler"
	"github.com/arnavshah/shiftplan-api/pkg/store"
)

// Horizon labels used in logs and metrics
const (
	HorizonWeek      = "week"
	HorizonMonth     = "month"
	HorizonStateless = "stateless"
)

// Planner runs the scheduler against stored data and persists the result
type Planner struct {
	Store   store.Repository
	Log     *zap.Logger
	Metrics *metrics.Metrics
	NewID   func() string
}

func New(repo store.Repository, log *zap.Logger, m *metrics.Metrics) *Planner {
	return &Planner{
		Store:   repo,
		Log:     logger.OrNop(log),
		Metrics: m,
		NewID:   uuid.NewString,
	}
}

// WeekRequest asks for proposals for the Monday-anchored week containing WeekOf
type WeekRequest struct {
	WeekOf    calendar.Date
	Seed      int64
	Templates *models.ShiftTemplateCatalog
	DryRun    bool
}

// MonthRequest asks for proposals tiled over every week of a month
type MonthRequest struct {
	Year      int
	Month     time.Month
	Seed      int64
	Templates *models.ShiftTemplateCatalog
	DryRun    bool
}

// snapshot is the stored state one run reads
type snapshot struct {
	policy      models.Policy
	wages       models.WageTable
	avail       scheduler.Availability
	commitments []models.Commitment
}

func (p *Planner) load(ctx context.Context, from, to calendar.Date, templates *models.ShiftTemplateCatalog) (*snapshot, error) {
	policy, err := p.Store.GetPolicy(ctx)
	if err != nil {
		return nil, err
	}
	wages, err := p.Store.Wages(ctx)
	if err != nil {
		return nil, err
	}
	rules, err := p.Store.ListRules(ctx, "")
	if err != nil {
		return nil, err
	}
	if templates == nil {
		if templates, err = p.Store.Templates(ctx); err != nil {
			return nil, err
		}
	} else if err := templates.Validate(); err != nil {
		return nil, apperrors.Validation(err)
	}
	// whole weeks, so a boundary week's weekly cap sees its days outside the horizon
	all, err := p.Store.ListCommitments(ctx, calendar.WeekStart(from), calendar.WeekStart(to).AddDays(6))
	if err != nil {
		return nil, err
	}

	avail := scheduler.NewAvailability(rules, templates)
	switch {
	case avail == nil && len(wages) == 0:
		return nil, apperrors.Clone(apperrors.ErrNothingToPropose, "add availability and wages before proposing shifts")
	case avail == nil:
		return nil, apperrors.Clone(apperrors.ErrNothingToPropose, "add availability rules or shift templates before proposing shifts")
	case len(wages) == 0:
		return nil, apperrors.Clone(apperrors.ErrNothingToPropose, "set at least one hourly wage before proposing shifts")
	}

	// the run replaces the horizon's proposals, so they must not block it
	commitments := make([]models.Commitment, 0, len(all))
	for _, c := range all {
		if c.Category != models.CategoryProposal || c.Date.Before(from) || c.Date.After(to) {
			commitments = append(commitments, c)
		}
	}
	return &snapshot{policy: policy, wages: wages, avail: avail, commitments: commitments}, nil
}

// ProposeWeek generates proposals for one week and, unless DryRun, replaces the
// week's previous proposals with them
func (p *Planner) ProposeWeek(ctx context.Context, req WeekRequest) (*models.ProposeResponse, error) {
	if req.WeekOf.IsZero() {
		req.WeekOf = calendar.Today()
	}
	from := calendar.WeekStart(req.WeekOf)
	to := from.AddDays(6)

	snap, err := p.load(ctx, from, to, req.Templates)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := scheduler.Propose(scheduler.Input{
		HorizonStart: from,
		HorizonEnd:   to,
		Policy:       snap.policy,
		Wages:        snap.wages,
		Availability: snap.avail,
		Commitments:  snap.commitments,
		Seed:         req.Seed,
	})
	if err != nil {
		return nil, apperrors.Validation(err)
	}
	return p.finish(ctx, HorizonWeek, from, to, req.Seed, snap.policy, res, req.DryRun, time.Since(start))
}

// ProposeMonth generates proposals for every week of a month and, unless
// DryRun, replaces the month's previous proposals with them
func (p *Planner) ProposeMonth(ctx context.Context, req MonthRequest) (*models.ProposeResponse, error) {
	if req.Month < time.January || req.Month > time.December {
		return nil, apperrors.Clone(apperrors.ErrValidation, fmt.Sprintf("month %d out of range", req.Month))
	}
	from, to := calendar.MonthBounds(req.Year, req.Month)

	snap, err := p.load(ctx, from, to, req.Templates)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := scheduler.ProposeMonth(req.Year, req.Month, scheduler.Input{
		Policy:       snap.policy,
		Wages:        snap.wages,
		Availability: snap.avail,
		Commitments:  snap.commitments,
		Seed:         req.Seed,
	})
	if err != nil {
		return nil, apperrors.Validation(err)
	}
	return p.finish(ctx, HorizonMonth, from, to, req.Seed, snap.policy, res, req.DryRun, time.Since(start))
}

func (p *Planner) finish(
	ctx context.Context,
	horizon string,
	from, to calendar.Date,
	seed int64,
	policy models.Policy,
	res *scheduler.Result,
	dryRun bool,
	elapsed time.Duration,
) (*models.ProposeResponse, error) {
	resp := response(from, to, seed, policy, res)

	outcome := "dry_run"
	if !dryRun {
		resp.Generation = p.NewID()
		proposals := make([]models.Commitment, 0, len(res.Blocks))
		for _, b := range res.Blocks {
			proposals = append(proposals, b.AsCommitment(resp.Generation))
		}
		if err := p.Store.ReplaceProposals(ctx, from, to, proposals); err != nil {
			p.Log.Error("failed to persist proposals",
				zap.String("horizon", horizon),
				zap.Stringer("from", from),
				zap.Error(err),
			)
			p.observe(horizon, "error", elapsed, res)
			return nil, err
		}
		outcome = "proposed"
	}
	if len(res.Blocks) == 0 {
		outcome = "empty"
		resp.Message = "no feasible shifts in this horizon"
	}

	p.observe(horizon, outcome, elapsed, res)
	p.Log.Info("proposal run",
		zap.String("horizon", horizon),
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.Int64("seed", seed),
		zap.Int("candidates", res.CandidateCount),
		zap.Int("blocks", len(res.Blocks)),
		zap.Float64("hours", res.TotalHours),
		zap.Bool("dry_run", dryRun),
		zap.String("generation", resp.Generation),
	)
	return resp, nil
}

func (p *Planner) observe(horizon, outcome string, elapsed time.Duration, res *scheduler.Result) {
	workplaces := make([]string, 0, len(res.Blocks))
	for _, b := range res.Blocks {
		workplaces = append(workplaces, b.Workplace)
	}
	p.Metrics.ObserveRun(metrics.Run{
		Horizon:    horizon,
		Outcome:    outcome,
		Duration:   elapsed,
		Candidates: res.CandidateCount,
		Hours:      res.TotalHours,
		Workplaces: workplaces,
	})
}

func response(from, to calendar.Date, seed int64, policy models.Policy, res *scheduler.Result) *models.ProposeResponse {
	return &models.ProposeResponse{
		HorizonStart:   from,
		HorizonEnd:     to,
		Seed:           seed,
		Strategy:       policy.Strategy,
		Blocks:         res.Blocks,
		TotalHours:     res.TotalHours,
		TotalIncome:    res.TotalIncome,
		CandidateCount: res.CandidateCount,
		Rejections:     res.Rejections,
	}
}

// Promote turns every proposal in [from, to] into confirmed work
func (p *Planner) Promote(ctx context.Context, from, to calendar.Date) (int64, error) {
	n, err := p.Store.PromoteCategory(ctx, from, to, models.CategoryProposal, models.CategoryWork)
	if err != nil {
		return 0, err
	}
	p.Log.Info("proposals promoted", zap.Stringer("from", from), zap.Stringer("to", to), zap.Int64("count", n))
	return n, nil
}

// ClearProposals deletes every proposal in [from, to]
func (p *Planner) ClearProposals(ctx context.Context, from, to calendar.Date) (int64, error) {
	n, err := p.Store.DeleteCommitments(ctx, from, to, models.CategoryProposal)
	if err != nil {
		return 0, err
	}
	p.Log.Info("proposals cleared", zap.Stringer("from", from), zap.Stringer("to", to), zap.Int64("count", n))
	return n, nil
}

// ValidateInput checks a stateless payload without running the scheduler
func ValidateInput(in models.ProposeInput) error {
	var errs []error
	if in.HorizonStart.IsZero() || in.HorizonEnd.IsZero() {
		errs = append(errs, errors.New("horizon_start and horizon_end are required"))
	} else if in.HorizonEnd.Before(in.HorizonStart) {
		errs = append(errs, fmt.Errorf("horizon_end %s is before horizon_start %s", in.HorizonEnd, in.HorizonStart))
	}
	if in.Policy != nil {
		if err := in.Policy.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("policy: %w", err))
		}
	}
	for i, r := range in.Rules {
		if err := r.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("availability[%d]: %w", i, err))
		}
	}
	if err := in.Templates.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("templates: %w", err))
	}
	for i, c := range in.Commitments {
		if err := c.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("commitments[%d]: %w", i, err))
		}
	}
	for wp, w := range in.Wages {
		if w < 0 {
			errs = append(errs, fmt.Errorf("wages[%s]: negative wage", wp))
		}
	}
	return errors.Join(errs...)
}

// Compute runs the scheduler on a fully supplied payload; nothing is read or written
func (p *Planner) Compute(in models.ProposeInput) (*models.ProposeResponse, error) {
	if err := ValidateInput(in); err != nil {
		return nil, apperrors.Validation(err)
	}
	policy := models.DefaultPolicy()
	if in.Policy != nil {
		policy = *in.Policy
	}

	start := time.Now()
	res, err := scheduler.Propose(scheduler.Input{
		HorizonStart: in.HorizonStart,
		HorizonEnd:   in.HorizonEnd,
		Policy:       policy,
		Wages:        in.Wages,
		Availability: scheduler.NewAvailability(in.Rules, in.Templates),
		Commitments:  in.Commitments,
		Seed:         in.Seed,
	})
	if err != nil {
		return nil, apperrors.Validation(err)
	}

	resp := response(in.HorizonStart, in.HorizonEnd, in.Seed, policy, res)
	outcome := "computed"
	if len(res.Blocks) == 0 {
		outcome = "empty"
		resp.Message = "nothing to propose"
	}
	p.observe(HorizonStateless, outcome, time.Since(start), res)
	return resp, nil
}
