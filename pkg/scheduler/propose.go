package scheduler

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/arnavshah/shiftplan-api/pkg/calendar"
	"github.com/arnavshah/shiftplan-api/pkg/models"
)

// ErrInvalidInput wraps every malformed-input error returned by Propose
var ErrInvalidInput = errors.New("invalid scheduler input")

// Input is an immutable snapshot for one proposal run
type Input struct {
	HorizonStart calendar.Date
	HorizonEnd   calendar.Date
	Policy       models.Policy
	Wages        models.WageTable
	Availability Availability
	Commitments  []models.Commitment
	Seed         int64

	// CapStart and CapEnd bound the week whose committed hours count toward the
	// weekly cap. Zero means the horizon itself.
	CapStart calendar.Date
	CapEnd   calendar.Date
}

func (in Input) capSpan() (calendar.Date, calendar.Date) {
	if in.CapStart.IsZero() || in.CapEnd.IsZero() {
		return in.HorizonStart, in.HorizonEnd
	}
	return in.CapStart, in.CapEnd
}

// Result is the outcome of a proposal run
type Result struct {
	Blocks         []models.ProposedBlock
	Accepted       []Candidate
	CandidateCount int
	TotalHours     float64
	TotalIncome    int
	Rejections     map[string]int
}

func emptyResult() *Result {
	return &Result{Blocks: []models.ProposedBlock{}, Rejections: map[string]int{}}
}

func (in Input) validate() error {
	if in.HorizonStart.IsZero() || in.HorizonEnd.IsZero() {
		return fmt.Errorf("%w: horizon start and end are required", ErrInvalidInput)
	}
	if in.HorizonEnd.Before(in.HorizonStart) {
		return fmt.Errorf("%w: horizon ends %s before it starts %s", ErrInvalidInput, in.HorizonEnd, in.HorizonStart)
	}
	if err := in.Policy.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// Propose selects a feasible, high-income set of slots for the horizon and
// returns them merged into blocks. The same input and seed always produce the
// same blocks.
func Propose(in Input) (*Result, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.Availability == nil || len(in.Wages) == 0 {
		return emptyResult(), nil
	}

	ix := NewCommitmentIndex(in.Commitments, in.Policy.ProposalsBlock)
	candidates := GenerateCandidates(
		calendar.DatesBetween(in.HorizonStart, in.HorizonEnd),
		in.Availability,
		ix,
		in.Wages,
		in.Policy.SlotMinutes,
		in.Policy.BufferMinutes,
	)

	rng := rand.New(rand.NewSource(in.Seed))
	for i := range candidates {
		candidates[i].jitter = rng.Float64() * in.Policy.Jitter
	}

	s := NewScheduler(in.Policy, candidates, ix)
	capFrom, capTo := in.capSpan()
	if in.Policy.CountConfirmedWork {
		s.Prefill(in.Commitments, capFrom, capTo)
	}
	s.PrefillProposals(in.Commitments, capFrom, capTo, in.HorizonStart, in.HorizonEnd)
	s.Assign()

	res := &Result{
		Blocks:         MergeBlocks(BlocksFromCandidates(s.Picked)),
		Accepted:       s.Picked,
		CandidateCount: len(candidates),
		Rejections:     s.Rejections,
	}
	for _, b := range res.Blocks {
		res.TotalHours += b.Hours
		res.TotalIncome += b.Income
	}
	return res, nil
}

// ProposeMonth tiles the month into Monday-anchored weekly passes clipped to
// the month. Each pass has its own derived seed and sees the proposals of
// earlier passes as commitments. The weekly cap covers the whole Monday-Sunday
// week, so work and proposals on days of a boundary week outside the month
// count against it.
func ProposeMonth(year int, month time.Month, in Input) (*Result, error) {
	first, last := calendar.MonthBounds(year, month)
	total := emptyResult()
	commitments := append([]models.Commitment(nil), in.Commitments...)

	for i, monday := range calendar.WeekStartsCovering(year, month) {
		pass := in
		pass.HorizonStart = latest(monday, first)
		pass.HorizonEnd = earliest(monday.AddDays(6), last)
		pass.CapStart = monday
		pass.CapEnd = monday.AddDays(6)
		pass.Seed = weekSeed(in.Seed, i)
		pass.Commitments = commitments

		res, err := Propose(pass)
		if err != nil {
			return nil, err
		}
		for _, b := range res.Blocks {
			commitments = append(commitments, b.AsCommitment(""))
		}
		total.Blocks = append(total.Blocks, res.Blocks...)
		total.Accepted = append(total.Accepted, res.Accepted...)
		total.CandidateCount += res.CandidateCount
		total.TotalHours += res.TotalHours
		total.TotalIncome += res.TotalIncome
		for reason, n := range res.Rejections {
			total.Rejections[reason] += n
		}
	}
	return total, nil
}

// weekSeed derives a distinct, reproducible seed for each weekly pass
func weekSeed(seed int64, week int) int64 {
	return seed*1_000_003 + int64(week)
}

func latest(a, b calendar.Date) calendar.Date {
	if a.After(b) {
		return a
	}
	return b
}

func earliest(a, b calendar.Date) calendar.Date {
	if a.Before(b) {
		return a
	}
	return b
}
