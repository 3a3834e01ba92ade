package scheduler

import (
	"math"
	"sort"

	"github.com/arnavshah/shiftplan-api/pkg/calendar"
	"github.com/arnavshah/shiftplan-api/pkg/models"
)

// BlocksFromCandidates turns each accepted slot into a one-slot block
func BlocksFromCandidates(cs []Candidate) []models.ProposedBlock {
	blocks := make([]models.ProposedBlock, 0, len(cs))
	for _, c := range cs {
		blocks = append(blocks, newBlock(c.Date, c.Window.Start, c.Window.End, c.Workplace, c.Wage))
	}
	return blocks
}

// MergeBlocks consolidates contiguous blocks with the same date, workplace and
// wage. The input is not modified. Merging an already merged list is a no-op.
func MergeBlocks(in []models.ProposedBlock) []models.ProposedBlock {
	if len(in) == 0 {
		return []models.ProposedBlock{}
	}
	sorted := append([]models.ProposedBlock(nil), in...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Date != b.Date {
			return a.Date.Before(b.Date)
		}
		if a.Workplace != b.Workplace {
			return a.Workplace < b.Workplace
		}
		return a.Start < b.Start
	})

	merged := make([]models.ProposedBlock, 0, len(sorted))
	cur := sorted[0]
	for _, next := range sorted[1:] {
		if next.Date == cur.Date && next.Workplace == cur.Workplace && next.Wage == cur.Wage && next.Start == cur.End {
			cur.End = next.End
			continue
		}
		merged = append(merged, newBlock(cur.Date, cur.Start, cur.End, cur.Workplace, cur.Wage))
		cur = next
	}
	merged = append(merged, newBlock(cur.Date, cur.Start, cur.End, cur.Workplace, cur.Wage))
	return merged
}

func newBlock(d calendar.Date, start, end calendar.Clock, workplace string, wage int) models.ProposedBlock {
	hours := float64(end-start) / 60
	return models.ProposedBlock{
		Date:      d,
		Start:     start,
		End:       end,
		Workplace: workplace,
		Wage:      wage,
		Hours:     hours,
		Income:    int(math.Round(hours * float64(wage))),
	}
}
