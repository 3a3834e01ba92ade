package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/shiftplan-api/pkg/calendar"
	"github.com/arnavshah/shiftplan-api/pkg/models"
)

// monday is the first day of the week used throughout these tests
var monday = calendar.NewDate(2026, 10, 19)

func clock(s string) calendar.Clock { return calendar.MustClock(s) }

func window(start, end string) calendar.Window {
	return calendar.Window{Start: clock(start), End: clock(end)}
}

func timed(d calendar.Date, start, end string, cat models.Category) models.Commitment {
	s, e := clock(start), clock(end)
	return models.Commitment{Date: d, Start: &s, End: &e, Category: cat, Title: string(cat)}
}

func candidate(d calendar.Date, w calendar.Window, workplace string, wage int) Candidate {
	return Candidate{
		Date:      d,
		Window:    w,
		Workplace: workplace,
		Wage:      wage,
		Hours:     w.Hours(),
		Income:    w.Hours() * float64(wage),
	}
}

func TestCommitmentIndex_IsBlocked(t *testing.T) {
	ix := NewCommitmentIndex([]models.Commitment{
		timed(monday, "19:00", "20:00", models.CategoryClass),
		{Date: monday.AddDays(1), Category: models.CategoryPrivate, Title: "trip"},
		timed(monday.AddDays(2), "12:00", "13:00", models.CategoryProposal),
	}, false)

	assert.True(t, ix.IsBlocked(monday, window("18:00", "19:00"), 30))
	assert.False(t, ix.IsBlocked(monday, window("18:00", "19:00"), 0), "touching endpoints do not overlap")
	assert.True(t, ix.IsBlocked(monday, window("20:00", "21:00"), 30))
	assert.False(t, ix.IsBlocked(monday, window("21:00", "22:00"), 30))

	assert.True(t, ix.IsBlocked(monday.AddDays(1), window("06:00", "07:00"), 0), "all-day commitment blocks the date")
	assert.False(t, ix.IsBlocked(monday.AddDays(2), window("12:00", "13:00"), 0), "proposals ignored")

	withProposals := NewCommitmentIndex([]models.Commitment{
		timed(monday.AddDays(2), "12:00", "13:00", models.CategoryProposal),
	}, true)
	assert.True(t, withProposals.IsBlocked(monday.AddDays(2), window("12:00", "13:00"), 0))
	assert.True(t, withProposals.HasCommitment(monday.AddDays(2)))
	assert.False(t, withProposals.HasCommitment(monday))
}

func TestAvailability_Rules(t *testing.T) {
	sat := 5
	rules := RuleSet{
		{Workplace: "B", DayType: models.DayTypeWeekday, Start: clock("09:00"), End: clock("12:00")},
		{Workplace: "A", DayType: models.DayTypeWeekday, Start: clock("18:00"), End: clock("22:00")},
		{Workplace: "A", DayType: models.DayTypeWeekend, Start: clock("10:00"), End: clock("14:00")},
		{Workplace: "C", DayType: models.DayTypeDOW, DOW: &sat, Start: clock("08:00"), End: clock("10:00")},
	}

	got := rules.Windows(monday)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Workplace)
	assert.Equal(t, "B", got[1].Workplace)
	assert.False(t, got[0].Verbatim)

	saturday := rules.Windows(monday.AddDays(5))
	require.Len(t, saturday, 2)
	assert.Equal(t, window("10:00", "14:00"), saturday[0].Window)
	assert.Equal(t, "C", saturday[1].Workplace)

	assert.Len(t, rules.Windows(monday.AddDays(6)), 1)
}

func TestAvailability_Templates(t *testing.T) {
	catalog := &models.ShiftTemplateCatalog{
		Templates: map[string][]calendar.Window{
			"cafe":  {window("07:00", "11:00"), window("17:00", "21:30")},
			"store": {window("10:00", "15:00")},
		},
		Enabled: map[string][7]bool{
			"store": {false, true, true, true, true, true, false},
		},
		Suppressed: []models.TemplateSuppression{
			{Workplace: "cafe", DOW: 2, Window: window("17:00", "21:30")},
		},
	}
	ts := TemplateSet{Catalog: catalog}

	mon := ts.Windows(monday)
	require.Len(t, mon, 2, "store is disabled on Monday")
	for _, w := range mon {
		assert.Equal(t, "cafe", w.Workplace)
		assert.True(t, w.Verbatim)
	}

	wed := ts.Windows(monday.AddDays(2))
	require.Len(t, wed, 2)
	assert.Equal(t, window("07:00", "11:00"), wed[0].Window)
	assert.Equal(t, "store", wed[1].Workplace)

	assert.Nil(t, NewAvailability(nil, nil))
	assert.Nil(t, NewAvailability(nil, &models.ShiftTemplateCatalog{}))
	assert.IsType(t, Combined{}, NewAvailability(RuleSet{{Workplace: "A", DayType: models.DayTypeWeekday, Start: clock("09:00"), End: clock("10:00")}}, catalog))
}

func TestGenerateCandidates(t *testing.T) {
	avail := RuleSet{{Workplace: "A", DayType: models.DayTypeWeekday, Start: clock("18:00"), End: clock("22:30")}}
	ix := NewCommitmentIndex(nil, false)

	got := GenerateCandidates([]calendar.Date{monday}, avail, ix, models.WageTable{"A": 1000}, 60, 30)
	require.Len(t, got, 4, "the trailing half hour never forms a full slot")
	assert.Equal(t, window("18:00", "19:00"), got[0].Window)
	assert.Equal(t, window("21:00", "22:00"), got[3].Window)
	assert.Equal(t, 1000.0, got[0].Income)

	unpaid := GenerateCandidates([]calendar.Date{monday}, avail, ix, models.WageTable{"B": 900}, 60, 30)
	require.Len(t, unpaid, 4, "missing wage still yields candidates")
	assert.Zero(t, unpaid[0].Wage)

	verbatim := TemplateSet{Catalog: &models.ShiftTemplateCatalog{
		Templates: map[string][]calendar.Window{"cafe": {window("17:00", "21:30")}},
	}}
	tpl := GenerateCandidates([]calendar.Date{monday}, verbatim, ix, models.WageTable{"cafe": 1200}, 60, 0)
	require.Len(t, tpl, 1)
	assert.Equal(t, 4.5, tpl[0].Hours)
	assert.Equal(t, 5400.0, tpl[0].Income)
}

func TestScheduler_Feasibility(t *testing.T) {
	p := models.DefaultPolicy()
	p.MaxHoursPerDay = 3
	p.MaxHoursPerWeek = 4
	s := NewScheduler(p, nil, nil)

	s.accept(candidate(monday, window("09:00", "11:00"), "A", 1000))

	_, ok := s.feasible(candidate(monday, window("11:00", "12:00"), "A", 1000))
	assert.True(t, ok)

	reason, ok := s.feasible(candidate(monday, window("10:00", "11:00"), "A", 1000))
	assert.False(t, ok)
	assert.Equal(t, ReasonOverlap, reason)

	reason, ok = s.feasible(candidate(monday, window("11:15", "12:00"), "B", 1000))
	assert.False(t, ok)
	assert.Equal(t, ReasonTravelGap, reason)

	_, ok = s.feasible(candidate(monday, window("11:30", "12:00"), "B", 1000))
	assert.True(t, ok, "exactly the travel gap clears")

	reason, ok = s.feasible(candidate(monday, window("13:00", "15:00"), "A", 1000))
	assert.False(t, ok)
	assert.Equal(t, ReasonDayCap, reason)

	s.accept(candidate(monday.AddDays(1), window("09:00", "10:00"), "A", 1000))
	reason, ok = s.feasible(candidate(monday.AddDays(2), window("09:00", "11:00"), "A", 1000))
	assert.False(t, ok)
	assert.Equal(t, ReasonWeekCap, reason)
	assert.Equal(t, 3.0, s.TotalHours())
	assert.Equal(t, 2.0, s.HoursOn(monday))
}

func TestScheduler_ZeroTravelGapOnlyForbidsOverlap(t *testing.T) {
	p := models.SinglePassPolicy(8, 20)
	s := NewScheduler(p, nil, nil)
	s.accept(candidate(monday, window("09:00", "11:00"), "A", 1000))

	assert.True(t, s.Allows(candidate(monday, window("11:00", "12:00"), "B", 900)))
	assert.False(t, s.Allows(candidate(monday, window("10:00", "12:00"), "B", 900)))
}

func TestScheduler_Prefill(t *testing.T) {
	p := models.DefaultPolicy()
	s := NewScheduler(p, nil, nil)
	s.Prefill([]models.Commitment{
		timed(monday, "09:00", "13:00", models.CategoryWork),
		timed(monday, "14:00", "15:00", models.CategoryClass),
		timed(monday.AddDays(8), "09:00", "13:00", models.CategoryWork),
		{Date: monday.AddDays(1), Category: models.CategoryWork, Title: "all day"},
	}, monday, monday.AddDays(6))

	assert.Equal(t, 4.0, s.TotalHours())
	assert.Equal(t, 4.0, s.HoursOn(monday))
	assert.True(t, s.workdays[monday])
	assert.False(t, s.workdays[monday.AddDays(1)])
}

func TestAssignSinglePass_AcceptsInCandidateOrderOnTies(t *testing.T) {
	var cs []Candidate
	for i := 0; i < 5; i++ {
		d := monday.AddDays(i)
		for h := 18; h < 22; h++ {
			w := calendar.Window{Start: calendar.Clock(h * 60), End: calendar.Clock((h + 1) * 60)}
			cs = append(cs, candidate(d, w, "A", 1000))
		}
	}

	s := NewScheduler(models.SinglePassPolicy(6, 10), cs, nil)
	s.Assign()

	blocks := MergeBlocks(BlocksFromCandidates(s.Picked))
	require.Len(t, blocks, 3)
	assert.Equal(t, monday, blocks[0].Date)
	assert.Equal(t, window("18:00", "22:00"), blocks[0].Window())
	assert.Equal(t, monday.AddDays(2), blocks[2].Date)
	assert.Equal(t, window("18:00", "20:00"), blocks[2].Window())
	assert.Equal(t, 10.0, s.TotalHours())
	assert.Equal(t, 10, s.Rejections[ReasonWeekCap])
}

func TestAssignIterative_PrefersHigherIncome(t *testing.T) {
	cs := []Candidate{
		candidate(monday, window("09:00", "10:00"), "low", 800),
		candidate(monday, window("09:00", "10:00"), "high", 1500),
		candidate(monday, window("10:00", "11:00"), "high", 1500),
	}
	p := models.DefaultPolicy()
	p.MaxHoursPerWeek = 2
	p.Jitter = 0
	s := NewScheduler(p, cs, nil)
	s.Assign()

	require.Len(t, s.Picked, 2)
	for _, c := range s.Picked {
		assert.Equal(t, "high", c.Workplace)
	}
}

func TestAssignIterative_ConsolidatesWorkdays(t *testing.T) {
	var cs []Candidate
	for i := 0; i < 3; i++ {
		d := monday.AddDays(i)
		cs = append(cs,
			candidate(d, window("09:00", "10:00"), "A", 1000),
			candidate(d, window("10:00", "11:00"), "A", 1000),
		)
	}
	p := models.DefaultPolicy()
	p.MaxHoursPerWeek = 2
	p.Jitter = 0
	s := NewScheduler(p, cs, nil)
	s.Assign()

	require.Len(t, s.Picked, 2)
	assert.Equal(t, s.Picked[0].Date, s.Picked[1].Date, "the workday penalty keeps hours on one day")
}

func TestAssignIterative_CommitmentPenaltyPerWorkplace(t *testing.T) {
	ix := NewCommitmentIndex([]models.Commitment{timed(monday, "07:00", "08:00", models.CategoryClass)}, false)
	cs := []Candidate{
		candidate(monday, window("12:00", "13:00"), "A", 1000),
		candidate(monday.AddDays(1), window("12:00", "13:00"), "A", 900),
	}
	p := models.DefaultPolicy()
	p.MaxHoursPerWeek = 1
	p.Jitter = 0

	s := NewScheduler(p, cs, ix)
	s.Assign()
	require.Len(t, s.Picked, 1)
	assert.Equal(t, monday.AddDays(1), s.Picked[0].Date)

	p.WorkplaceCommitmentPenalty = map[string]int{"A": 0}
	s = NewScheduler(p, cs, ix)
	s.Assign()
	require.Len(t, s.Picked, 1)
	assert.Equal(t, monday, s.Picked[0].Date)
}

func TestMergeBlocks(t *testing.T) {
	in := BlocksFromCandidates([]Candidate{
		candidate(monday, window("20:00", "21:00"), "A", 1000),
		candidate(monday, window("18:00", "19:00"), "A", 1000),
		candidate(monday, window("19:00", "20:00"), "A", 1000),
		candidate(monday, window("21:00", "22:00"), "B", 1000),
		candidate(monday, window("23:00", "23:30"), "A", 1000),
		candidate(monday.AddDays(1), window("09:00", "10:00"), "A", 1000),
	})

	merged := MergeBlocks(in)
	require.Len(t, merged, 4)
	assert.Equal(t, window("18:00", "21:00"), merged[0].Window())
	assert.Equal(t, 3.0, merged[0].Hours)
	assert.Equal(t, 3000, merged[0].Income)
	assert.Equal(t, window("23:00", "23:30"), merged[1].Window())
	assert.Equal(t, 500, merged[1].Income)
	assert.Equal(t, "B", merged[2].Workplace)
	assert.Equal(t, monday.AddDays(1), merged[3].Date)

	assert.Equal(t, merged, MergeBlocks(merged), "merging twice is a no-op")
	assert.Equal(t, window("20:00", "21:00"), in[0].Window(), "input untouched")
	assert.NotNil(t, MergeBlocks(nil))
}

func TestMergeBlocks_DifferentWagesStaySplit(t *testing.T) {
	merged := MergeBlocks([]models.ProposedBlock{
		newBlock(monday, clock("09:00"), clock("10:00"), "A", 1000),
		newBlock(monday, clock("10:00"), clock("11:00"), "A", 1100),
	})
	assert.Len(t, merged, 2)
}
