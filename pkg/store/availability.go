package store

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"github.com/arnavshah/shiftplan-api/pkg/apperrors"
	"github.com/arnavshah/shiftplan-api/pkg/calendar"
	"github.com/arnavshah/shiftplan-api/pkg/database"
	"github.com/arnavshah/shiftplan-api/pkg/models"
)

func fromAvailability(r database.AvailabilityRecord) (models.AvailabilityRule, error) {
	w, err := calendar.ParseWindow(r.StartTime, r.EndTime)
	if err != nil {
		return models.AvailabilityRule{}, fmt.Errorf("availability %d: %w", r.ID, err)
	}
	return models.AvailabilityRule{
		ID:        r.ID,
		Workplace: r.Workplace,
		DayType:   models.DayType(r.DayType),
		DOW:       r.DOW,
		Start:     w.Start,
		End:       w.End,
	}, nil
}

// ListRules returns rules ordered by workplace, day type, dow and start.
// An empty workplace lists every rule.
func (s *Store) ListRules(ctx context.Context, workplace string) ([]models.AvailabilityRule, error) {
	q := s.db.WithContext(ctx).Order("workplace, day_type, dow, start_time, id")
	if workplace != "" {
		q = q.Where("workplace = ?", workplace)
	}
	var records []database.AvailabilityRecord
	if err := q.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list availability: %w", err)
	}
	out := make([]models.AvailabilityRule, 0, len(records))
	for _, r := range records {
		rule, err := fromAvailability(r)
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, nil
}

func (s *Store) AddRule(ctx context.Context, r *models.AvailabilityRule) error {
	if err := r.Validate(); err != nil {
		return apperrors.Validation(err)
	}
	rec := database.AvailabilityRecord{
		Workplace: r.Workplace,
		DayType:   string(r.DayType),
		DOW:       r.DOW,
		StartTime: r.Start.String(),
		EndTime:   r.End.String(),
	}
	if r.DayType != models.DayTypeDOW {
		rec.DOW = nil
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("add availability: %w", err)
	}
	r.ID = rec.ID
	return nil
}

func (s *Store) DeleteRule(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&database.AvailabilityRecord{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete availability: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.Clone(apperrors.ErrNotFound, fmt.Sprintf("availability rule %d not found", id))
	}
	return nil
}

// Templates returns the saved catalog, or nil when none was saved
func (s *Store) Templates(ctx context.Context) (*models.ShiftTemplateCatalog, error) {
	setting, err := s.setting(ctx)
	if err != nil {
		return nil, err
	}
	return setting.Templates, nil
}

func (s *Store) SetTemplates(ctx context.Context, catalog *models.ShiftTemplateCatalog) error {
	if err := catalog.Validate(); err != nil {
		return apperrors.Validation(err)
	}
	row := database.Setting{ID: database.SettingsID, Policy: models.DefaultPolicy(), Templates: catalog}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"templates", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save templates: %w", err)
	}
	return nil
}
