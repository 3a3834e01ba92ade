package scheduler

import (
	"sort"

	"github.com/arnavshah/shiftplan-api/pkg/calendar"
	"github.com/arnavshah/shiftplan-api/pkg/models"
)

// WorkplaceWindow is an open window at one workplace on one date.
// Verbatim windows become a single slot; others are walked in fixed steps.
type WorkplaceWindow struct {
	Workplace string
	Window    calendar.Window
	Verbatim  bool
}

// Availability resolves the open windows for a date
type Availability interface {
	Windows(d calendar.Date) []WorkplaceWindow
}

// RuleSet resolves day-type availability rules
type RuleSet []models.AvailabilityRule

func (rs RuleSet) Windows(d calendar.Date) []WorkplaceWindow {
	var out []WorkplaceWindow
	for _, r := range rs {
		if r.Matches(d) {
			out = append(out, WorkplaceWindow{Workplace: r.Workplace, Window: r.Window()})
		}
	}
	sortByWorkplace(out)
	return out
}

// TemplateSet resolves a shift template catalog
type TemplateSet struct {
	Catalog *models.ShiftTemplateCatalog
}

func (ts TemplateSet) Windows(d calendar.Date) []WorkplaceWindow {
	if ts.Catalog.Empty() {
		return nil
	}
	workplaces := make([]string, 0, len(ts.Catalog.Templates))
	for wp := range ts.Catalog.Templates {
		workplaces = append(workplaces, wp)
	}
	sort.Strings(workplaces)

	dow := d.Weekday()
	var out []WorkplaceWindow
	for _, wp := range workplaces {
		if !ts.Catalog.EnabledOn(wp, dow) {
			continue
		}
		for _, w := range ts.Catalog.Templates[wp] {
			if ts.Catalog.IsSuppressed(wp, dow, w) {
				continue
			}
			out = append(out, WorkplaceWindow{Workplace: wp, Window: w, Verbatim: true})
		}
	}
	return out
}

// Combined merges several sources, keeping each source's window order per workplace
type Combined []Availability

func (c Combined) Windows(d calendar.Date) []WorkplaceWindow {
	var out []WorkplaceWindow
	for _, a := range c {
		out = append(out, a.Windows(d)...)
	}
	sortByWorkplace(out)
	return out
}

// NewAvailability builds the availability model from whichever sources are present.
// It returns nil when neither rules nor templates define anything.
func NewAvailability(rules []models.AvailabilityRule, catalog *models.ShiftTemplateCatalog) Availability {
	var sources Combined
	if len(rules) > 0 {
		sources = append(sources, RuleSet(rules))
	}
	if !catalog.Empty() {
		sources = append(sources, TemplateSet{Catalog: catalog})
	}
	switch len(sources) {
	case 0:
		return nil
	case 1:
		return sources[0]
	}
	return sources
}

func sortByWorkplace(ws []WorkplaceWindow) {
	sort.SliceStable(ws, func(i, j int) bool {
		return ws[i].Workplace < ws[j].Workplace
	})
}
