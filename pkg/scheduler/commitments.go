package scheduler

import (
	"github.com/arnavshah/shiftplan-api/pkg/calendar"
	"github.com/arnavshah/shiftplan-api/pkg/models"
)

// CommitmentIndex answers occupancy questions for a commitment snapshot
type CommitmentIndex struct {
	timed  map[calendar.Date][]calendar.Window
	allDay map[calendar.Date]bool
}

// NewCommitmentIndex indexes commitments by date. Proposal commitments are
// indexed only when includeProposals is set.
func NewCommitmentIndex(commitments []models.Commitment, includeProposals bool) *CommitmentIndex {
	ix := &CommitmentIndex{
		timed:  make(map[calendar.Date][]calendar.Window),
		allDay: make(map[calendar.Date]bool),
	}
	for _, c := range commitments {
		if c.Category == models.CategoryProposal && !includeProposals {
			continue
		}
		if w, ok := c.Window(); ok {
			ix.timed[c.Date] = append(ix.timed[c.Date], w)
		} else {
			ix.allDay[c.Date] = true
		}
	}
	return ix
}

// IsBlocked reports whether w on date d, padded by bufferMinutes on both ends,
// touches any commitment. An all-day commitment blocks everything that day.
func (ix *CommitmentIndex) IsBlocked(d calendar.Date, w calendar.Window, bufferMinutes int) bool {
	if ix.allDay[d] {
		return true
	}
	padded := w.Expand(bufferMinutes)
	for _, busy := range ix.timed[d] {
		if padded.Overlaps(busy) {
			return true
		}
	}
	return false
}

// HasCommitment reports whether anything is already on the calendar for d
func (ix *CommitmentIndex) HasCommitment(d calendar.Date) bool {
	return ix.allDay[d] || len(ix.timed[d]) > 0
}
