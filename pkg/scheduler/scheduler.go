package scheduler

import (
	"sort"

	"github.com/arnavshah/shiftplan-api/pkg/calendar"
	"github.com/arnavshah/shiftplan-api/pkg/models"
)

// Rejection reasons reported in Scheduler.Rejections
const (
	ReasonWeekCap   = "week_cap"
	ReasonDayCap    = "day_cap"
	ReasonOverlap   = "overlap"
	ReasonTravelGap = "travel_gap"
)

// capEpsilon absorbs float drift when summing fractional template hours
const capEpsilon = 1e-9

// Scheduler handles the logic of picking candidate slots under the policy caps
type Scheduler struct {
	Policy     models.Policy
	Candidates []Candidate
	Index      *CommitmentIndex
	Picked     []Candidate
	Rejections map[string]int

	hoursPerDay  map[calendar.Date]float64
	totalHours   float64
	workdays     map[calendar.Date]bool
	pickedByDate map[calendar.Date][]Candidate
}

// NewScheduler creates a new scheduler instance
func NewScheduler(policy models.Policy, candidates []Candidate, ix *CommitmentIndex) *Scheduler {
	if ix == nil {
		ix = NewCommitmentIndex(nil, false)
	}
	return &Scheduler{
		Policy:       policy,
		Candidates:   candidates,
		Index:        ix,
		Rejections:   make(map[string]int),
		hoursPerDay:  make(map[calendar.Date]float64),
		workdays:     make(map[calendar.Date]bool),
		pickedByDate: make(map[calendar.Date][]Candidate),
	}
}

// Prefill records confirmed work in [from, to] so it counts toward the caps
func (s *Scheduler) Prefill(commitments []models.Commitment, from, to calendar.Date) {
	for _, c := range commitments {
		if c.Category != models.CategoryWork || c.Date.Before(from) || c.Date.After(to) {
			continue
		}
		w, ok := c.Window()
		if !ok {
			continue
		}
		s.hoursPerDay[c.Date] += w.Hours()
		s.totalHours += w.Hours()
		s.workdays[c.Date] = true
	}
}

// PrefillProposals records proposals in [from, to] that lie outside the
// horizon. They belong to a neighbouring run that shares the week, so they
// count toward the weekly cap.
func (s *Scheduler) PrefillProposals(commitments []models.Commitment, from, to, horizonStart, horizonEnd calendar.Date) {
	for _, c := range commitments {
		if c.Category != models.CategoryProposal || c.Date.Before(from) || c.Date.After(to) {
			continue
		}
		if !c.Date.Before(horizonStart) && !c.Date.After(horizonEnd) {
			continue
		}
		w, ok := c.Window()
		if !ok {
			continue
		}
		s.hoursPerDay[c.Date] += w.Hours()
		s.totalHours += w.Hours()
	}
}

// TotalHours returns the hours accumulated so far, prefilled work included
func (s *Scheduler) TotalHours() float64 {
	return s.totalHours
}

// HoursOn returns the hours accumulated on date d
func (s *Scheduler) HoursOn(d calendar.Date) float64 {
	return s.hoursPerDay[d]
}

// WouldOverlap checks if a picked slot at the same workplace overlaps the candidate
func (s *Scheduler) WouldOverlap(c Candidate) bool {
	for _, p := range s.pickedByDate[c.Date] {
		if p.Workplace == c.Workplace && p.Window.Overlaps(c.Window) {
			return true
		}
	}
	return false
}

// Allows checks the travel gap against picks at other workplaces the same day.
// A pick is in conflict when neither the gap before nor the gap after the
// candidate reaches TravelGapMinutes; with a zero gap this reduces to overlap.
func (s *Scheduler) Allows(c Candidate) bool {
	gap := calendar.Clock(s.Policy.TravelGapMinutes)
	for _, p := range s.pickedByDate[c.Date] {
		if p.Workplace == c.Workplace {
			continue
		}
		before := c.Window.Start - p.Window.End
		after := p.Window.Start - c.Window.End
		if before < gap && after < gap {
			return false
		}
	}
	return true
}

// feasible returns the first constraint the candidate violates, if any
func (s *Scheduler) feasible(c Candidate) (string, bool) {
	if s.totalHours+c.Hours > float64(s.Policy.MaxHoursPerWeek)+capEpsilon {
		return ReasonWeekCap, false
	}
	if s.hoursPerDay[c.Date]+c.Hours > float64(s.Policy.MaxHoursPerDay)+capEpsilon {
		return ReasonDayCap, false
	}
	if s.WouldOverlap(c) {
		return ReasonOverlap, false
	}
	if !s.Allows(c) {
		return ReasonTravelGap, false
	}
	return "", true
}

// adjacent reports whether a same-workplace pick ends where c starts or starts where c ends
func (s *Scheduler) adjacent(c Candidate) bool {
	for _, p := range s.pickedByDate[c.Date] {
		if p.Workplace == c.Workplace && (p.Window.End == c.Window.Start || c.Window.End == p.Window.Start) {
			return true
		}
	}
	return false
}

// score rates a candidate against the current state; higher is better
func (s *Scheduler) score(c Candidate) float64 {
	dayHours := s.hoursPerDay[c.Date]
	if s.Policy.Strategy == models.StrategySinglePass {
		sc := float64(c.Wage) - float64(s.Policy.DayHoursPenalty)*dayHours
		if s.adjacent(c) {
			sc += float64(s.Policy.AdjacencyBonus)
		}
		return sc
	}

	sc := c.Income
	if s.Index.HasCommitment(c.Date) {
		sc -= float64(s.Policy.CommitmentPenaltyFor(c.Workplace))
	}
	if !s.workdays[c.Date] {
		sc -= float64(s.Policy.WorkdayPenalty)
	}
	sc -= float64(s.Policy.DayHoursPenalty) * dayHours
	return sc + c.jitter
}

func (s *Scheduler) accept(c Candidate) {
	s.Picked = append(s.Picked, c)
	s.pickedByDate[c.Date] = append(s.pickedByDate[c.Date], c)
	s.hoursPerDay[c.Date] += c.Hours
	s.totalHours += c.Hours
	s.workdays[c.Date] = true
}

// Assign runs the strategy named by the policy
func (s *Scheduler) Assign() {
	if s.Policy.Strategy == models.StrategySinglePass {
		s.AssignSinglePass()
		return
	}
	s.AssignIterative()
}

// AssignIterative re-scores every remaining feasible candidate after each pick
// and accepts the single best one (earliest on ties) until nothing fits.
// Feasibility only tightens as picks accumulate, so infeasible candidates are
// dropped from the pool for good.
func (s *Scheduler) AssignIterative() {
	pool := append([]Candidate(nil), s.Candidates...)
	for len(pool) > 0 {
		best := -1
		var bestScore float64
		kept := pool[:0]
		for _, c := range pool {
			if reason, ok := s.feasible(c); !ok {
				s.Rejections[reason]++
				continue
			}
			sc := s.score(c)
			if best < 0 || sc > bestScore {
				best = len(kept)
				bestScore = sc
			}
			kept = append(kept, c)
		}
		if best < 0 {
			return
		}
		s.accept(kept[best])
		pool = append(kept[:best], kept[best+1:]...)
	}
}

// AssignSinglePass scores all candidates once against the initial state, sorts
// them by score descending, and accepts in that order subject to feasibility
func (s *Scheduler) AssignSinglePass() {
	type scored struct {
		c     Candidate
		score float64
	}
	ranked := make([]scored, len(s.Candidates))
	for i, c := range s.Candidates {
		ranked[i] = scored{c: c, score: s.score(c)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	for _, r := range ranked {
		if reason, ok := s.feasible(r.c); !ok {
			s.Rejections[reason]++
			continue
		}
		s.accept(r.c)
	}
}
