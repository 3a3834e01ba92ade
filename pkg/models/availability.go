package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/arnavshah/shiftplan-api/pkg/calendar"
)

// DayType selects which dates an availability rule applies to
type DayType string

const (
	DayTypeWeekday DayType = "weekday"
	DayTypeWeekend DayType = "weekend"
	DayTypeDOW     DayType = "dow"
)

// Valid reports whether t is a known day type
func (t DayType) Valid() bool {
	switch t {
	case DayTypeWeekday, DayTypeWeekend, DayTypeDOW:
		return true
	}
	return false
}

// AvailabilityRule opens a daily time window at a workplace on matching days
type AvailabilityRule struct {
	ID        uint           `json:"id"`
	Workplace string         `json:"workplace"`
	DayType   DayType        `json:"day_type"`
	DOW       *int           `json:"dow"`
	Start     calendar.Clock `json:"start"`
	End       calendar.Clock `json:"end"`
}

// Window returns the rule's time span
func (r AvailabilityRule) Window() calendar.Window {
	return calendar.Window{Start: r.Start, End: r.End}
}

// Matches reports whether the rule applies to date d
func (r AvailabilityRule) Matches(d calendar.Date) bool {
	switch r.DayType {
	case DayTypeWeekday:
		return !d.IsWeekend()
	case DayTypeWeekend:
		return d.IsWeekend()
	case DayTypeDOW:
		return r.DOW != nil && *r.DOW == d.Weekday()
	}
	return false
}

// Validate rejects rules that could never produce a slot
func (r AvailabilityRule) Validate() error {
	if strings.TrimSpace(r.Workplace) == "" {
		return errors.New("workplace is required")
	}
	if !r.DayType.Valid() {
		return fmt.Errorf("unknown day_type %q", r.DayType)
	}
	if r.DayType == DayTypeDOW {
		if r.DOW == nil || *r.DOW < 0 || *r.DOW > 6 {
			return errors.New("dow must be between 0 (Monday) and 6 (Sunday) for day_type dow")
		}
	}
	return r.Window().Validate()
}

// TemplateSuppression hard-excludes one template pair on one weekday
type TemplateSuppression struct {
	Workplace string          `json:"workplace"`
	DOW       int             `json:"dow"`
	Window    calendar.Window `json:"window"`
}

// ShiftTemplateCatalog is the fixed-shift alternative to availability rules.
// Enabled holds a Monday-first on/off vector per workplace; workplaces without
// an entry are enabled every day.
type ShiftTemplateCatalog struct {
	Templates  map[string][]calendar.Window `json:"templates"`
	Enabled    map[string][7]bool           `json:"enabled,omitempty"`
	Suppressed []TemplateSuppression        `json:"suppressed,omitempty"`
}

// Empty reports whether the catalog defines no templates
func (c *ShiftTemplateCatalog) Empty() bool {
	if c == nil {
		return true
	}
	for _, windows := range c.Templates {
		if len(windows) > 0 {
			return false
		}
	}
	return true
}

// EnabledOn reports whether the workplace takes shifts on weekday index dow
func (c *ShiftTemplateCatalog) EnabledOn(workplace string, dow int) bool {
	flags, ok := c.Enabled[workplace]
	if !ok {
		return true
	}
	return flags[dow]
}

// IsSuppressed reports whether a template pair is excluded on weekday dow
func (c *ShiftTemplateCatalog) IsSuppressed(workplace string, dow int, w calendar.Window) bool {
	for _, s := range c.Suppressed {
		if s.Workplace == workplace && s.DOW == dow && s.Window == w {
			return true
		}
	}
	return false
}

// Validate checks every template pair and suppression
func (c *ShiftTemplateCatalog) Validate() error {
	if c == nil {
		return nil
	}
	for workplace, windows := range c.Templates {
		if strings.TrimSpace(workplace) == "" {
			return errors.New("template workplace is required")
		}
		for _, w := range windows {
			if err := w.Validate(); err != nil {
				return fmt.Errorf("template %s: %w", workplace, err)
			}
		}
	}
	for _, s := range c.Suppressed {
		if s.DOW < 0 || s.DOW > 6 {
			return fmt.Errorf("suppression for %s: dow %d out of range", s.Workplace, s.DOW)
		}
	}
	return nil
}
