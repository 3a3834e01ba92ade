package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/arnavshah/shiftplan-api/pkg/apperrors"
	"github.com/arnavshah/shiftplan-api/pkg/calendar"
	"github.com/arnavshah/shiftplan-api/pkg/database"
	"github.com/arnavshah/shiftplan-api/pkg/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return New(db)
}

var monday = calendar.NewDate(2026, 10, 19)

func timed(d calendar.Date, start, end string, cat models.Category, title string) models.Commitment {
	s, e := calendar.MustClock(start), calendar.MustClock(end)
	return models.Commitment{Date: d, Start: &s, End: &e, Category: cat, Title: title}
}

func TestCommitments_CRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	class := timed(monday, "09:00", "10:30", models.CategoryClass, "Stats")
	require.NoError(t, s.InsertCommitment(ctx, &class))
	require.NotZero(t, class.ID)

	trip := models.Commitment{Date: monday, Category: models.CategoryPrivate, Title: "Trip"}
	require.NoError(t, s.InsertCommitment(ctx, &trip))

	late := timed(monday.AddDays(1), "18:00", "20:00", models.CategoryJob, "Shift")
	require.NoError(t, s.InsertCommitment(ctx, &late))

	got, err := s.ListCommitments(ctx, monday, monday)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Trip", got[0].Title, "all-day first")
	assert.Equal(t, calendar.MustClock("10:30"), *got[1].End)

	one, err := s.GetCommitment(ctx, late.ID)
	require.NoError(t, err)
	assert.Equal(t, "18:00-20:00 Shift", one.Label())

	title := "Statistics"
	end := calendar.MustClock("11:00")
	updated, err := s.UpdateCommitment(ctx, class.ID, models.CommitmentUpdate{Title: &title, End: &end})
	require.NoError(t, err)
	assert.Equal(t, "Statistics", updated.Title)

	reloaded, err := s.GetCommitment(ctx, class.ID)
	require.NoError(t, err)
	assert.Equal(t, end, *reloaded.End)

	allDay := true
	cleared, err := s.UpdateCommitment(ctx, class.ID, models.CommitmentUpdate{AllDay: &allDay})
	require.NoError(t, err)
	assert.True(t, cleared.AllDay())
	reloaded, err = s.GetCommitment(ctx, class.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.AllDay())

	bad := calendar.MustClock("08:00")
	_, err = s.UpdateCommitment(ctx, late.ID, models.CommitmentUpdate{End: &bad})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	require.NoError(t, s.DeleteCommitment(ctx, trip.ID))
	_, err = s.GetCommitment(ctx, trip.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, s.DeleteCommitment(ctx, trip.ID), apperrors.ErrNotFound)
}

func TestCommitments_InsertRejectsInvalid(t *testing.T) {
	s := newTestStore(t)
	c := timed(monday, "10:00", "09:00", models.CategoryClass, "Backwards")
	err := s.InsertCommitment(context.Background(), &c)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestReplaceProposals(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	sunday := monday.AddDays(6)

	keep := timed(monday, "09:00", "10:00", models.CategoryClass, "Stats")
	require.NoError(t, s.InsertCommitment(ctx, &keep))
	outside := timed(sunday.AddDays(1), "18:00", "22:00", models.CategoryProposal, models.ProposalTitle)
	require.NoError(t, s.InsertCommitment(ctx, &outside))

	first := []models.Commitment{
		timed(monday, "18:00", "22:00", models.CategoryProposal, models.ProposalTitle),
		timed(monday.AddDays(1), "18:00", "22:00", models.CategoryProposal, models.ProposalTitle),
	}
	require.NoError(t, s.ReplaceProposals(ctx, monday, sunday, first))

	second := []models.Commitment{
		timed(monday.AddDays(2), "18:00", "21:00", models.CategoryProposal, models.ProposalTitle),
	}
	require.NoError(t, s.ReplaceProposals(ctx, monday, sunday, second))

	week, err := s.ListCommitments(ctx, monday, sunday)
	require.NoError(t, err)
	require.Len(t, week, 2)
	assert.Equal(t, models.CategoryClass, week[0].Category)
	assert.Equal(t, monday.AddDays(2), week[1].Date)

	next, err := s.ListCommitments(ctx, sunday.AddDays(1), sunday.AddDays(1))
	require.NoError(t, err)
	assert.Len(t, next, 1, "proposals outside the horizon survive")
}

func TestReplaceProposals_RollsBackOnInvalidInput(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	sunday := monday.AddDays(6)

	existing := []models.Commitment{timed(monday, "18:00", "22:00", models.CategoryProposal, models.ProposalTitle)}
	require.NoError(t, s.ReplaceProposals(ctx, monday, sunday, existing))

	mixed := []models.Commitment{
		timed(monday.AddDays(1), "18:00", "22:00", models.CategoryProposal, models.ProposalTitle),
		timed(monday.AddDays(2), "18:00", "22:00", models.CategoryWork, "not a proposal"),
	}
	err := s.ReplaceProposals(ctx, monday, sunday, mixed)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	week, err := s.ListCommitments(ctx, monday, sunday)
	require.NoError(t, err)
	require.Len(t, week, 1)
	assert.Equal(t, monday, week[0].Date, "previous generation intact")
}

func TestPromoteAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	sunday := monday.AddDays(6)

	proposals := []models.Commitment{
		timed(monday, "18:00", "22:00", models.CategoryProposal, models.ProposalTitle),
		timed(monday.AddDays(1), "18:00", "22:00", models.CategoryProposal, models.ProposalTitle),
	}
	proposals[0].Generation = "gen-1"
	require.NoError(t, s.ReplaceProposals(ctx, monday, sunday, proposals))

	n, err := s.PromoteCategory(ctx, monday, monday, models.CategoryProposal, models.CategoryWork)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = s.DeleteCommitments(ctx, monday, sunday, models.CategoryProposal)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	week, err := s.ListCommitments(ctx, monday, sunday)
	require.NoError(t, err)
	require.Len(t, week, 1)
	assert.Equal(t, models.CategoryWork, week[0].Category)
	assert.Empty(t, week[0].Generation)
}

func TestAvailabilityRules(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	sat := 5

	rules := []models.AvailabilityRule{
		{Workplace: "store", DayType: models.DayTypeWeekday, Start: calendar.MustClock("10:00"), End: calendar.MustClock("16:00")},
		{Workplace: "cafe", DayType: models.DayTypeWeekend, Start: calendar.MustClock("09:00"), End: calendar.MustClock("13:00")},
		{Workplace: "cafe", DayType: models.DayTypeDOW, DOW: &sat, Start: calendar.MustClock("17:00"), End: calendar.MustClock("21:00")},
	}
	for i := range rules {
		require.NoError(t, s.AddRule(ctx, &rules[i]))
	}

	all, err := s.ListRules(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, models.DayTypeDOW, all[0].DayType, "ordered by workplace then day type")
	assert.Equal(t, 5, *all[0].DOW)
	assert.Equal(t, "store", all[2].Workplace)

	cafe, err := s.ListRules(ctx, "cafe")
	require.NoError(t, err)
	assert.Len(t, cafe, 2)

	require.NoError(t, s.DeleteRule(ctx, rules[0].ID))
	assert.ErrorIs(t, s.DeleteRule(ctx, rules[0].ID), apperrors.ErrNotFound)

	bad := models.AvailabilityRule{Workplace: "x", DayType: models.DayTypeDOW, Start: calendar.MustClock("10:00"), End: calendar.MustClock("11:00")}
	assert.ErrorIs(t, s.AddRule(ctx, &bad), apperrors.ErrValidation)
}

func TestWages(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.SetWage(ctx, "cafe", 1200))
	require.NoError(t, s.SetWage(ctx, "store", 1100))
	require.NoError(t, s.SetWage(ctx, "cafe", 1250))

	w, err := s.GetWage(ctx, "cafe")
	require.NoError(t, err)
	assert.Equal(t, 1250, w)

	table, err := s.Wages(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.WageTable{"cafe": 1250, "store": 1100}, table)

	_, err = s.GetWage(ctx, "tutor")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, s.SetWage(ctx, "tutor", -1), apperrors.ErrValidation)

	require.NoError(t, s.DeleteWage(ctx, "store"))
	table, err = s.Wages(ctx)
	require.NoError(t, err)
	assert.Len(t, table, 1)
}

func TestPolicyAndTemplates(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	p, err := s.GetPolicy(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, p.MaxHoursPerDay)
	assert.Equal(t, 20, p.MaxHoursPerWeek)

	catalog := &models.ShiftTemplateCatalog{
		Templates: map[string][]calendar.Window{
			"cafe": {{Start: calendar.MustClock("07:00"), End: calendar.MustClock("11:00")}},
		},
		Enabled: map[string][7]bool{"cafe": {true, true, true, true, true, false, false}},
	}
	require.NoError(t, s.SetTemplates(ctx, catalog))

	p.MaxHoursPerDay = 8
	p.WorkplaceCommitmentPenalty = map[string]int{"cafe": 100}
	require.NoError(t, s.SetPolicy(ctx, p))

	got, err := s.GetPolicy(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, got.MaxHoursPerDay)
	assert.Equal(t, 100, got.CommitmentPenaltyFor("cafe"))

	saved, err := s.Templates(ctx)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, catalog.Templates, saved.Templates)
	assert.False(t, saved.EnabledOn("cafe", 6))

	p.MaxHoursPerWeek = 500
	assert.ErrorIs(t, s.SetPolicy(ctx, p), apperrors.ErrValidation)
}
