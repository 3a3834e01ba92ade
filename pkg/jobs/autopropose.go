package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/arnavshah/shiftplan-api/pkg/apperrors"
	"github.com/arnavshah/shiftplan-api/pkg/calendar"
	"github.com/arnavshah/shiftplan-api/pkg/logger"
	"github.com/arnavshah/shiftplan-api/pkg/models"
	"github.com/arnavshah/shiftplan-api/pkg/planner"
)

// runTimeout bounds one scheduled run
const runTimeout = 30 * time.Second

// WeekProposer is the part of the planner the job drives
type WeekProposer interface {
	ProposeWeek(ctx context.Context, req planner.WeekRequest) (*models.ProposeResponse, error)
}

// AutoProposer regenerates next week's proposals on a cron schedule.
// Specs use six fields, seconds first: "0 0 18 * * SUN".
type AutoProposer struct {
	proposer WeekProposer
	schedule cron.Schedule
	seed     int64
	log      *zap.Logger
	cron     *cron.Cron
	now      func() time.Time
}

var parser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// NewAutoProposer validates spec and prepares the job without starting it
func NewAutoProposer(p WeekProposer, spec string, seed int64, log *zap.Logger) (*AutoProposer, error) {
	schedule, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	log = logger.OrNop(log).Named("autopropose")
	a := &AutoProposer{
		proposer: p,
		schedule: schedule,
		seed:     seed,
		log:      log,
		now:      time.Now,
	}
	a.cron = cron.New(
		cron.WithParser(parser),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	a.cron.Schedule(schedule, cron.FuncJob(func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		_, _ = a.RunOnce(ctx)
	}))
	return a, nil
}

// Next returns the first scheduled run after t
func (a *AutoProposer) Next(t time.Time) time.Time {
	return a.schedule.Next(t)
}

// TargetWeek is the Monday of the week after the one containing t
func TargetWeek(t time.Time) calendar.Date {
	return calendar.WeekStart(calendar.DateOf(t)).AddDays(7)
}

// RunOnce proposes the upcoming week. Missing availability or wages are
// logged and reported as a nil response, not an error.
func (a *AutoProposer) RunOnce(ctx context.Context) (*models.ProposeResponse, error) {
	week := TargetWeek(a.now())
	resp, err := a.proposer.ProposeWeek(ctx, planner.WeekRequest{WeekOf: week, Seed: a.seed})
	if errors.Is(err, apperrors.ErrNothingToPropose) {
		a.log.Info("skipped automatic proposal", zap.Stringer("week", week), zap.Error(err))
		return nil, nil
	}
	if err != nil {
		a.log.Error("automatic proposal failed", zap.Stringer("week", week), zap.Error(err))
		return nil, err
	}
	a.log.Info("automatic proposal stored",
		zap.Stringer("week", week),
		zap.String("generation", resp.Generation),
		zap.Float64("hours", resp.TotalHours),
	)
	return resp, nil
}

// Start runs the schedule in the background
func (a *AutoProposer) Start() {
	a.cron.Start()
	a.log.Info("auto proposer started", zap.Time("next_run", a.Next(a.now())))
}

// Stop halts the schedule and waits for a running job or ctx, whichever ends first
func (a *AutoProposer) Stop(ctx context.Context) {
	done := a.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		a.log.Warn("auto proposer stop timed out")
	}
}
