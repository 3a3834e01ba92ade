package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/arnavshah/shiftplan-api/pkg/calendar"
)

// ProposeInput is the data structure for the stateless scheduling endpoint.
// Everything the engine needs travels in the payload; nothing is read or persisted.
type ProposeInput struct {
	HorizonStart calendar.Date         `json:"horizon_start"`
	HorizonEnd   calendar.Date         `json:"horizon_end"`
	Policy       *Policy               `json:"policy,omitempty"`
	Wages        WageTable             `json:"wages"`
	Rules        []AvailabilityRule    `json:"availability"`
	Templates    *ShiftTemplateCatalog `json:"templates,omitempty"`
	Commitments  []Commitment          `json:"commitments"`
	Seed         int64                 `json:"seed"`
}

// UnmarshalJSON decodes a supplied policy over DefaultPolicy, so a payload may
// carry only the fields it changes.
func (in *ProposeInput) UnmarshalJSON(b []byte) error {
	type plain ProposeInput
	aux := struct {
		*plain
		Policy json.RawMessage `json:"policy"`
	}{plain: (*plain)(in)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	in.Policy = nil
	if len(aux.Policy) == 0 || bytes.Equal(bytes.TrimSpace(aux.Policy), []byte("null")) {
		return nil
	}
	p := DefaultPolicy()
	if err := json.Unmarshal(aux.Policy, &p); err != nil {
		return err
	}
	in.Policy = &p
	return nil
}

// ProposeWeekRequest asks for proposals for the week containing WeekOf (today when empty)
type ProposeWeekRequest struct {
	WeekOf    string                `json:"week_of" binding:"omitempty,isodate"`
	Seed      int64                 `json:"seed"`
	Templates *ShiftTemplateCatalog `json:"templates,omitempty"`
	DryRun    bool                  `json:"dry_run"`
}

// ProposeMonthRequest asks for proposals tiled over every week of a month
type ProposeMonthRequest struct {
	Year      int                   `json:"year" binding:"required,min=2000,max=2100"`
	Month     int                   `json:"month" binding:"required,min=1,max=12"`
	Seed      int64                 `json:"seed"`
	Templates *ShiftTemplateCatalog `json:"templates,omitempty"`
	DryRun    bool                  `json:"dry_run"`
}

// ProposeResponse is the data structure for the scheduling result
type ProposeResponse struct {
	Generation     string          `json:"generation,omitempty"`
	HorizonStart   calendar.Date   `json:"horizon_start"`
	HorizonEnd     calendar.Date   `json:"horizon_end"`
	Seed           int64           `json:"seed"`
	Strategy       Strategy        `json:"strategy"`
	Blocks         []ProposedBlock `json:"blocks"`
	TotalHours     float64         `json:"total_hours"`
	TotalIncome    int             `json:"total_income"`
	CandidateCount int             `json:"candidate_count"`
	Rejections     map[string]int  `json:"rejections,omitempty"`
	Message        string          `json:"message,omitempty"`
}

// ErrRangeOrder is returned when a range ends before it starts
var ErrRangeOrder = errors.New("to must not be before from")

// RangeRequest selects an inclusive date range
type RangeRequest struct {
	From string `json:"from" form:"from" binding:"required,isodate"`
	To   string `json:"to" form:"to" binding:"required,isodate"`
}

// Parse converts the range into dates and checks its order
func (r RangeRequest) Parse() (calendar.Date, calendar.Date, error) {
	from, err := calendar.ParseDate(r.From)
	if err != nil {
		return calendar.Date{}, calendar.Date{}, err
	}
	to, err := calendar.ParseDate(r.To)
	if err != nil {
		return calendar.Date{}, calendar.Date{}, err
	}
	if to.Before(from) {
		return calendar.Date{}, calendar.Date{}, ErrRangeOrder
	}
	return from, to, nil
}

// CommitmentRequest is the manual-entry payload for a calendar event.
// Leaving both start and end empty creates an all-day commitment.
type CommitmentRequest struct {
	Date     string `json:"date" binding:"required,isodate"`
	Start    string `json:"start" binding:"omitempty,hhmm"`
	End      string `json:"end" binding:"omitempty,hhmm"`
	Category string `json:"category" binding:"required,category"`
	Title    string `json:"title" binding:"required"`
	Place    string `json:"place"`
}

// ToCommitment parses and validates the request
func (r CommitmentRequest) ToCommitment() (Commitment, error) {
	d, err := calendar.ParseDate(r.Date)
	if err != nil {
		return Commitment{}, err
	}
	cat, err := ParseCategory(r.Category)
	if err != nil {
		return Commitment{}, err
	}
	c := Commitment{
		Date:     d,
		Category: cat,
		Title:    strings.TrimSpace(r.Title),
		Place:    strings.TrimSpace(r.Place),
	}
	if r.Start != "" {
		s, err := calendar.ParseClock(r.Start)
		if err != nil {
			return Commitment{}, err
		}
		c.Start = &s
	}
	if r.End != "" {
		e, err := calendar.ParseClock(r.End)
		if err != nil {
			return Commitment{}, err
		}
		c.End = &e
	}
	return c, c.Validate()
}

// AvailabilityRequest is the payload for adding an availability rule
type AvailabilityRequest struct {
	Workplace string `json:"workplace" binding:"required"`
	DayType   string `json:"day_type" binding:"required,oneof=weekday weekend dow"`
	DOW       *int   `json:"dow" binding:"omitempty,min=0,max=6"`
	Start     string `json:"start" binding:"required,hhmm"`
	End       string `json:"end" binding:"required,hhmm"`
}

// ToRule parses and validates the request
func (r AvailabilityRequest) ToRule() (AvailabilityRule, error) {
	w, err := calendar.ParseWindow(r.Start, r.End)
	if err != nil {
		return AvailabilityRule{}, err
	}
	rule := AvailabilityRule{
		Workplace: strings.TrimSpace(r.Workplace),
		DayType:   DayType(r.DayType),
		Start:     w.Start,
		End:       w.End,
	}
	if rule.DayType == DayTypeDOW {
		rule.DOW = r.DOW
	}
	return rule, rule.Validate()
}

// WageRequest sets a workplace's hourly wage
type WageRequest struct {
	HourlyWage int `json:"hourly_wage" binding:"min=0,max=100000"`
}
