package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/arnavshah/shiftplan-api/pkg/apperrors"
	"github.com/arnavshah/shiftplan-api/pkg/database"
	"github.com/arnavshah/shiftplan-api/pkg/models"
)

// setting loads the settings row, falling back to the defaults when it is missing
func (s *Store) setting(ctx context.Context) (database.Setting, error) {
	var row database.Setting
	err := s.db.WithContext(ctx).First(&row, database.SettingsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return database.Setting{ID: database.SettingsID, Policy: models.DefaultPolicy()}, nil
	}
	if err != nil {
		return database.Setting{}, fmt.Errorf("load settings: %w", err)
	}
	return row, nil
}

// GetPolicy returns the saved policy; a fresh database yields the 6h/day, 20h/week defaults
func (s *Store) GetPolicy(ctx context.Context) (models.Policy, error) {
	row, err := s.setting(ctx)
	if err != nil {
		return models.Policy{}, err
	}
	return row.Policy, nil
}

func (s *Store) SetPolicy(ctx context.Context, p models.Policy) error {
	if err := p.Validate(); err != nil {
		return apperrors.Validation(err)
	}
	row := database.Setting{ID: database.SettingsID, Policy: p}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"policy", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save policy: %w", err)
	}
	return nil
}

func (s *Store) Wages(ctx context.Context) (models.WageTable, error) {
	var rows []database.Wage
	if err := s.db.WithContext(ctx).Order("workplace").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list wages: %w", err)
	}
	table := make(models.WageTable, len(rows))
	for _, r := range rows {
		table[r.Workplace] = r.HourlyWage
	}
	return table, nil
}

// GetWage returns the workplace's wage; unknown workplaces are not found
func (s *Store) GetWage(ctx context.Context, workplace string) (int, error) {
	var row database.Wage
	if err := s.db.WithContext(ctx).First(&row, "workplace = ?", workplace).Error; err != nil {
		return 0, notFound(err, "no wage for workplace %q", workplace)
	}
	return row.HourlyWage, nil
}

func (s *Store) SetWage(ctx context.Context, workplace string, wage int) error {
	workplace = strings.TrimSpace(workplace)
	if workplace == "" {
		return apperrors.Validation(errors.New("workplace is required"))
	}
	if wage < 0 {
		return apperrors.Validation(errors.New("hourly wage cannot be negative"))
	}
	row := database.Wage{Workplace: workplace, HourlyWage: wage}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "workplace"}},
		DoUpdates: clause.AssignmentColumns([]string{"hourly_wage", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save wage: %w", err)
	}
	return nil
}

func (s *Store) DeleteWage(ctx context.Context, workplace string) error {
	res := s.db.WithContext(ctx).Delete(&database.Wage{}, "workplace = ?", workplace)
	if res.Error != nil {
		return fmt.Errorf("delete wage: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.Clone(apperrors.ErrNotFound, fmt.Sprintf("no wage for workplace %q", workplace))
	}
	return nil
}
