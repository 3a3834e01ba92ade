package models

import (
	"errors"
	"fmt"
)

// Strategy selects the greedy selection variant
type Strategy string

const (
	// StrategyIterative re-scores the remaining pool after every pick
	StrategyIterative Strategy = "iterative"
	// StrategySinglePass scores once, sorts, and accepts in order
	StrategySinglePass Strategy = "single_pass"
)

// Policy holds the hour caps and the scheduler's tuning constants
type Policy struct {
	MaxHoursPerDay  int `json:"max_hours_per_day"`
	MaxHoursPerWeek int `json:"max_hours_per_week"`

	Strategy         Strategy `json:"strategy"`
	SlotMinutes      int      `json:"slot_minutes"`
	BufferMinutes    int      `json:"buffer_minutes"`
	TravelGapMinutes int      `json:"travel_gap_minutes"`

	WorkdayPenalty             int            `json:"workday_penalty"`
	CommitmentPenalty          int            `json:"commitment_penalty"`
	WorkplaceCommitmentPenalty map[string]int `json:"workplace_commitment_penalty,omitempty"`
	DayHoursPenalty            int            `json:"day_hours_penalty"`
	AdjacencyBonus             int            `json:"adjacency_bonus"`
	Jitter                     float64        `json:"jitter"`

	ProposalsBlock     bool `json:"proposals_block"`
	CountConfirmedWork bool `json:"count_confirmed_work"`
}

// DefaultPolicy returns the caps the settings table starts with (6h/day, 20h/week)
// and the tuning the iterative strategy was calibrated with
func DefaultPolicy() Policy {
	return Policy{
		MaxHoursPerDay:     6,
		MaxHoursPerWeek:    20,
		Strategy:           StrategyIterative,
		SlotMinutes:        60,
		BufferMinutes:      30,
		TravelGapMinutes:   30,
		WorkdayPenalty:     300,
		CommitmentPenalty:  500,
		DayHoursPenalty:    50,
		AdjacencyBonus:     200,
		Jitter:             1,
		ProposalsBlock:     true,
		CountConfirmedWork: true,
	}
}

// SinglePassPolicy mirrors the early sort-then-accept behaviour: no buffer, no
// travel gap, proposals ignored, lighter day-hours penalty
func SinglePassPolicy(maxDay, maxWeek int) Policy {
	p := DefaultPolicy()
	p.MaxHoursPerDay = maxDay
	p.MaxHoursPerWeek = maxWeek
	p.Strategy = StrategySinglePass
	p.BufferMinutes = 0
	p.TravelGapMinutes = 0
	p.DayHoursPenalty = 20
	p.Jitter = 0
	p.ProposalsBlock = false
	p.CountConfirmedWork = false
	return p
}

// CommitmentPenaltyFor returns the same-day commitment penalty for a workplace
func (p Policy) CommitmentPenaltyFor(workplace string) int {
	if v, ok := p.WorkplaceCommitmentPenalty[workplace]; ok {
		return v
	}
	return p.CommitmentPenalty
}

// Validate rejects caps and tuning the scheduler cannot work with
func (p Policy) Validate() error {
	if p.MaxHoursPerDay < 0 || p.MaxHoursPerDay > 24 {
		return fmt.Errorf("max_hours_per_day must be between 0 and 24, got %d", p.MaxHoursPerDay)
	}
	if p.MaxHoursPerWeek < 0 || p.MaxHoursPerWeek > 168 {
		return fmt.Errorf("max_hours_per_week must be between 0 and 168, got %d", p.MaxHoursPerWeek)
	}
	switch p.Strategy {
	case StrategyIterative, StrategySinglePass:
	default:
		return fmt.Errorf("unknown strategy %q", p.Strategy)
	}
	if p.SlotMinutes <= 0 || p.SlotMinutes > 24*60 {
		return fmt.Errorf("slot_minutes must be between 1 and 1440, got %d", p.SlotMinutes)
	}
	if p.BufferMinutes < 0 || p.TravelGapMinutes < 0 {
		return errors.New("buffer and travel gap minutes cannot be negative")
	}
	if p.Jitter < 0 {
		return errors.New("jitter cannot be negative")
	}
	return nil
}
