package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/arnavshah/shiftplan-api/pkg/apperrors"
	"github.com/arnavshah/shiftplan-api/pkg/calendar"
	"github.com/arnavshah/shiftplan-api/pkg/models"
)

// CommitmentStore persists calendar commitments
type CommitmentStore interface {
	ListCommitments(ctx context.Context, from, to calendar.Date) ([]models.Commitment, error)
	GetCommitment(ctx context.Context, id uint) (models.Commitment, error)
	InsertCommitment(ctx context.Context, c *models.Commitment) error
	UpdateCommitment(ctx context.Context, id uint, u models.CommitmentUpdate) (models.Commitment, error)
	DeleteCommitment(ctx context.Context, id uint) error
	DeleteCommitments(ctx context.Context, from, to calendar.Date, category models.Category) (int64, error)
	PromoteCategory(ctx context.Context, from, to calendar.Date, fromCat, toCat models.Category) (int64, error)
	// ReplaceProposals deletes every proposal in [from, to] and inserts proposals
	// in one transaction
	ReplaceProposals(ctx context.Context, from, to calendar.Date, proposals []models.Commitment) error
}

// AvailabilityStore persists availability rules and the saved template catalog
type AvailabilityStore interface {
	ListRules(ctx context.Context, workplace string) ([]models.AvailabilityRule, error)
	AddRule(ctx context.Context, r *models.AvailabilityRule) error
	DeleteRule(ctx context.Context, id uint) error
	Templates(ctx context.Context) (*models.ShiftTemplateCatalog, error)
	SetTemplates(ctx context.Context, catalog *models.ShiftTemplateCatalog) error
}

// WageStore persists hourly wages per workplace
type WageStore interface {
	Wages(ctx context.Context) (models.WageTable, error)
	GetWage(ctx context.Context, workplace string) (int, error)
	SetWage(ctx context.Context, workplace string, wage int) error
	DeleteWage(ctx context.Context, workplace string) error
}

// PolicyStore persists the caps and scheduler tuning
type PolicyStore interface {
	GetPolicy(ctx context.Context) (models.Policy, error)
	SetPolicy(ctx context.Context, p models.Policy) error
}

// Repository is everything the planner and handlers need from storage
type Repository interface {
	CommitmentStore
	AvailabilityStore
	WageStore
	PolicyStore
}

// Store implements Repository on gorm
type Store struct {
	db *gorm.DB
}

var _ Repository = (*Store)(nil)

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the handle for callers that share the connection
func (s *Store) DB() *gorm.DB {
	return s.db
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		e := apperrors.Clone(apperrors.ErrNotFound, fmt.Sprintf(format, args...))
		e.Err = err
		return e
	}
	return err
}
