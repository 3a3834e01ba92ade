package scheduler

import (
	"github.com/arnavshah/shiftplan-api/pkg/calendar"
	"github.com/arnavshah/shiftplan-api/pkg/models"
)

// Candidate is a schedulable slot that has not been accepted yet
type Candidate struct {
	Date      calendar.Date
	Window    calendar.Window
	Workplace string
	Wage      int
	Hours     float64
	Income    float64

	jitter float64
}

// GenerateCandidates walks every date of the horizon and emits each open slot
// that does not collide with a commitment. Order is stable: date, workplace,
// window, step.
func GenerateCandidates(
	dates []calendar.Date,
	avail Availability,
	ix *CommitmentIndex,
	wages models.WageTable,
	slotMinutes int,
	bufferMinutes int,
) []Candidate {
	if avail == nil || slotMinutes <= 0 {
		return nil
	}

	var out []Candidate
	emit := func(d calendar.Date, workplace string, w calendar.Window) {
		if ix.IsBlocked(d, w, bufferMinutes) {
			return
		}
		wage := wages.Wage(workplace)
		hours := w.Hours()
		out = append(out, Candidate{
			Date:      d,
			Window:    w,
			Workplace: workplace,
			Wage:      wage,
			Hours:     hours,
			Income:    hours * float64(wage),
		})
	}

	step := calendar.Clock(slotMinutes)
	for _, d := range dates {
		for _, ww := range avail.Windows(d) {
			if ww.Verbatim {
				emit(d, ww.Workplace, ww.Window)
				continue
			}
			for cur := ww.Window.Start; cur+step <= ww.Window.End; cur += step {
				emit(d, ww.Workplace, calendar.Window{Start: cur, End: cur + step})
			}
		}
	}
	return out
}
