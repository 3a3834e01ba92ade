package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/shiftplan-api/pkg/apperrors"
	"github.com/arnavshah/shiftplan-api/pkg/calendar"
	"github.com/arnavshah/shiftplan-api/pkg/models"
	"github.com/arnavshah/shiftplan-api/pkg/planner"
)

type fakeProposer struct {
	calls []planner.WeekRequest
	err   error
}

func (f *fakeProposer) ProposeWeek(ctx context.Context, req planner.WeekRequest) (*models.ProposeResponse, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	return &models.ProposeResponse{Generation: "gen", HorizonStart: calendar.WeekStart(req.WeekOf)}, nil
}

func TestNewAutoProposer_RejectsBadSpec(t *testing.T) {
	_, err := NewAutoProposer(&fakeProposer{}, "every sunday", 0, nil)
	assert.Error(t, err)

	_, err = NewAutoProposer(&fakeProposer{}, "0 18 * * SUN", 0, nil)
	assert.Error(t, err, "five-field specs lack the seconds column")
}

func TestNext(t *testing.T) {
	a, err := NewAutoProposer(&fakeProposer{}, "0 0 18 * * SUN", 0, nil)
	require.NoError(t, err)

	from := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 10, 18, 18, 0, 0, 0, time.UTC), a.Next(from))
}

func TestRunOnce_TargetsNextWeek(t *testing.T) {
	fake := &fakeProposer{}
	a, err := NewAutoProposer(fake, "@weekly", 9, nil)
	require.NoError(t, err)
	a.now = func() time.Time { return time.Date(2026, 10, 18, 18, 0, 0, 0, time.UTC) }

	resp, err := a.RunOnce(context.Background())
	require.NoError(t, err)
	require.NotNil(t, resp)
	require.Len(t, fake.calls, 1)
	assert.Equal(t, calendar.NewDate(2026, 10, 19), fake.calls[0].WeekOf)
	assert.Equal(t, int64(9), fake.calls[0].Seed)
	assert.False(t, fake.calls[0].DryRun)
}

func TestRunOnce_NothingToProposeIsNotAnError(t *testing.T) {
	fake := &fakeProposer{err: apperrors.Clone(apperrors.ErrNothingToPropose, "no wages")}
	a, err := NewAutoProposer(fake, "@daily", 0, nil)
	require.NoError(t, err)

	resp, err := a.RunOnce(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, resp)

	fake.err = errors.New("database is locked")
	_, err = a.RunOnce(context.Background())
	assert.Error(t, err)
}

func TestStartStop(t *testing.T) {
	a, err := NewAutoProposer(&fakeProposer{}, "@hourly", 0, nil)
	require.NoError(t, err)
	a.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	a.Stop(ctx)
}
