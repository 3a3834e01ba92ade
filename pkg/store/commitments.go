package store

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/arnavshah/shiftplan-api/pkg/apperrors"
	"github.com/arnavshah/shiftplan-api/pkg/calendar"
	"github.com/arnavshah/shiftplan-api/pkg/database"
	"github.com/arnavshah/shiftplan-api/pkg/models"
)

func toEvent(c models.Commitment) database.Event {
	e := database.Event{
		ID:         c.ID,
		Date:       c.Date.String(),
		Category:   string(c.Category),
		Title:      c.Title,
		Place:      c.Place,
		Generation: c.Generation,
	}
	if w, ok := c.Window(); ok {
		start, end := w.Start.String(), w.End.String()
		e.StartTime, e.EndTime = &start, &end
	}
	return e
}

func fromEvent(e database.Event) (models.Commitment, error) {
	d, err := calendar.ParseDate(e.Date)
	if err != nil {
		return models.Commitment{}, fmt.Errorf("event %d: %w", e.ID, err)
	}
	c := models.Commitment{
		ID:         e.ID,
		Date:       d,
		Category:   models.Category(e.Category),
		Title:      e.Title,
		Place:      e.Place,
		Generation: e.Generation,
	}
	if e.StartTime != nil && e.EndTime != nil {
		w, err := calendar.ParseWindow(*e.StartTime, *e.EndTime)
		if err != nil {
			return models.Commitment{}, fmt.Errorf("event %d: %w", e.ID, err)
		}
		c.Start, c.End = &w.Start, &w.End
	}
	return c, nil
}

// sortCommitments orders by date, all-day first, then start time, then id
func sortCommitments(cs []models.Commitment) {
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if a.Date != b.Date {
			return a.Date.Before(b.Date)
		}
		if a.AllDay() != b.AllDay() {
			return a.AllDay()
		}
		if !a.AllDay() && *a.Start != *b.Start {
			return *a.Start < *b.Start
		}
		return a.ID < b.ID
	})
}

func inRange(db *gorm.DB, from, to calendar.Date) *gorm.DB {
	return db.Where("date >= ? AND date <= ?", from.String(), to.String())
}

func (s *Store) ListCommitments(ctx context.Context, from, to calendar.Date) ([]models.Commitment, error) {
	var events []database.Event
	if err := inRange(s.db.WithContext(ctx), from, to).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list commitments: %w", err)
	}
	out := make([]models.Commitment, 0, len(events))
	for _, e := range events {
		c, err := fromEvent(e)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	sortCommitments(out)
	return out, nil
}

func (s *Store) GetCommitment(ctx context.Context, id uint) (models.Commitment, error) {
	var e database.Event
	if err := s.db.WithContext(ctx).First(&e, id).Error; err != nil {
		return models.Commitment{}, notFound(err, "commitment %d not found", id)
	}
	return fromEvent(e)
}

func (s *Store) InsertCommitment(ctx context.Context, c *models.Commitment) error {
	if err := c.Validate(); err != nil {
		return apperrors.Validation(err)
	}
	e := toEvent(*c)
	e.ID = 0
	if err := s.db.WithContext(ctx).Create(&e).Error; err != nil {
		return fmt.Errorf("insert commitment: %w", err)
	}
	c.ID = e.ID
	return nil
}

func (s *Store) UpdateCommitment(ctx context.Context, id uint, u models.CommitmentUpdate) (models.Commitment, error) {
	var updated models.Commitment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var e database.Event
		if err := tx.First(&e, id).Error; err != nil {
			return notFound(err, "commitment %d not found", id)
		}
		current, err := fromEvent(e)
		if err != nil {
			return err
		}
		updated = u.Apply(current)
		if err := updated.Validate(); err != nil {
			return apperrors.Validation(err)
		}
		next := toEvent(updated)
		next.CreatedAt = e.CreatedAt
		return tx.Save(&next).Error
	})
	if err != nil {
		return models.Commitment{}, err
	}
	return updated, nil
}

func (s *Store) DeleteCommitment(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&database.Event{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete commitment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.Clone(apperrors.ErrNotFound, fmt.Sprintf("commitment %d not found", id))
	}
	return nil
}

func (s *Store) DeleteCommitments(ctx context.Context, from, to calendar.Date, category models.Category) (int64, error) {
	res := inRange(s.db.WithContext(ctx), from, to).
		Where("category = ?", string(category)).
		Delete(&database.Event{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete %s commitments: %w", category, res.Error)
	}
	return res.RowsAffected, nil
}

func (s *Store) PromoteCategory(ctx context.Context, from, to calendar.Date, fromCat, toCat models.Category) (int64, error) {
	res := inRange(s.db.WithContext(ctx).Model(&database.Event{}), from, to).
		Where("category = ?", string(fromCat)).
		Updates(map[string]any{"category": string(toCat), "generation": ""})
	if res.Error != nil {
		return 0, fmt.Errorf("promote %s to %s: %w", fromCat, toCat, res.Error)
	}
	return res.RowsAffected, nil
}

func (s *Store) ReplaceProposals(ctx context.Context, from, to calendar.Date, proposals []models.Commitment) error {
	events := make([]database.Event, 0, len(proposals))
	for _, p := range proposals {
		if p.Category != models.CategoryProposal {
			return apperrors.Validation(fmt.Errorf("commitment on %s is %q, not a proposal", p.Date, p.Category))
		}
		if p.Date.Before(from) || p.Date.After(to) {
			return apperrors.Validation(fmt.Errorf("proposal on %s outside %s..%s", p.Date, from, to))
		}
		if err := p.Validate(); err != nil {
			return apperrors.Validation(err)
		}
		e := toEvent(p)
		e.ID = 0
		events = append(events, e)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := inRange(tx, from, to).
			Where("category = ?", string(models.CategoryProposal)).
			Delete(&database.Event{}).Error; err != nil {
			return fmt.Errorf("clear proposals: %w", err)
		}
		if len(events) == 0 {
			return nil
		}
		if err := tx.Create(&events).Error; err != nil {
			return fmt.Errorf("insert proposals: %w", err)
		}
		return nil
	})
}
