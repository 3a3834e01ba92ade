package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/arnavshah/shiftplan-api/pkg/calendar"
)

// Category classifies a commitment on the calendar
type Category string

const (
	CategoryClass    Category = "class"
	CategoryJob      Category = "job"
	CategoryPrivate  Category = "private"
	CategoryWork     Category = "work"
	CategoryProposal Category = "proposal"
)

// Categories lists every accepted category in display order
var Categories = []Category{CategoryClass, CategoryJob, CategoryPrivate, CategoryWork, CategoryProposal}

// ErrUnknownCategory is returned for category strings outside the closed set
var ErrUnknownCategory = errors.New("unknown category")

// ParseCategory validates a raw category string
func ParseCategory(s string) (Category, error) {
	c := Category(strings.TrimSpace(s))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// Valid reports whether c is one of the five known categories
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Commitment is an occupied (or tentatively occupied) span on one date.
// A commitment without Start and End blocks the whole day.
type Commitment struct {
	ID         uint            `json:"id"`
	Date       calendar.Date   `json:"date"`
	Start      *calendar.Clock `json:"start"`
	End        *calendar.Clock `json:"end"`
	Category   Category        `json:"category"`
	Title      string          `json:"title"`
	Place      string          `json:"place,omitempty"`
	Generation string          `json:"generation,omitempty"`
}

// AllDay reports whether the commitment blocks the entire date
func (c Commitment) AllDay() bool {
	return c.Start == nil && c.End == nil
}

// Window returns the timed span; ok is false for all-day commitments
func (c Commitment) Window() (calendar.Window, bool) {
	if c.Start == nil || c.End == nil {
		return calendar.Window{}, false
	}
	return calendar.Window{Start: *c.Start, End: *c.End}, true
}

// Validate rejects malformed commitments before they reach a store or the scheduler
func (c Commitment) Validate() error {
	if c.Date.IsZero() {
		return errors.New("date is required")
	}
	if !c.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, c.Category)
	}
	if strings.TrimSpace(c.Title) == "" {
		return errors.New("title is required")
	}
	if (c.Start == nil) != (c.End == nil) {
		return errors.New("start and end must both be set or both be empty")
	}
	if w, ok := c.Window(); ok {
		return w.Validate()
	}
	return nil
}

// Label formats the commitment the way calendar cells show it
func (c Commitment) Label() string {
	if w, ok := c.Window(); ok {
		return w.String() + " " + c.Title
	}
	return c.Title
}

// CommitmentUpdate carries the fields a manual edit may change; nil means unchanged
type CommitmentUpdate struct {
	Date     *calendar.Date  `json:"date"`
	Start    *calendar.Clock `json:"start"`
	End      *calendar.Clock `json:"end"`
	AllDay   *bool           `json:"all_day"`
	Category *Category       `json:"category"`
	Title    *string         `json:"title"`
	Place    *string         `json:"place"`
}

// Apply returns a copy of c with the update applied
func (u CommitmentUpdate) Apply(c Commitment) Commitment {
	if u.Date != nil {
		c.Date = *u.Date
	}
	if u.AllDay != nil && *u.AllDay {
		c.Start, c.End = nil, nil
	} else {
		if u.Start != nil {
			s := *u.Start
			c.Start = &s
		}
		if u.End != nil {
			e := *u.End
			c.End = &e
		}
	}
	if u.Category != nil {
		c.Category = *u.Category
	}
	if u.Title != nil {
		c.Title = strings.TrimSpace(*u.Title)
	}
	if u.Place != nil {
		c.Place = strings.TrimSpace(*u.Place)
	}
	return c
}

// WageTable maps workplace to integer hourly wage
type WageTable map[string]int

// Wage returns the hourly wage for a workplace; unknown workplaces price at 0
func (w WageTable) Wage(workplace string) int {
	return w[workplace]
}

// ProposedBlock is a contiguous run of accepted slots at one workplace
type ProposedBlock struct {
	Date      calendar.Date  `json:"date"`
	Start     calendar.Clock `json:"start"`
	End       calendar.Clock `json:"end"`
	Workplace string         `json:"workplace"`
	Wage      int            `json:"wage"`
	Hours     float64        `json:"hours"`
	Income    int            `json:"income"`
}

// Window returns the block's time span
func (b ProposedBlock) Window() calendar.Window {
	return calendar.Window{Start: b.Start, End: b.End}
}

// ProposalTitle is the title given to persisted proposal commitments
const ProposalTitle = "Proposed shift"

// AsCommitment converts a block into the proposal commitment the caller persists
func (b ProposedBlock) AsCommitment(generation string) Commitment {
	start, end := b.Start, b.End
	return Commitment{
		Date:       b.Date,
		Start:      &start,
		End:        &end,
		Category:   CategoryProposal,
		Title:      ProposalTitle,
		Place:      b.Workplace,
		Generation: generation,
	}
}
