package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/arnavshah/shiftplan-api/pkg/config"
	"github.com/arnavshah/shiftplan-api/pkg/models"
)

// Event represents the events table. Dates and times are stored as
// YYYY-MM-DD and HH:MM strings; a row with no times is all-day.
type Event struct {
	ID         uint    `gorm:"primaryKey"`
	Date       string  `gorm:"index;not null"`
	StartTime  *string `gorm:"size:5"`
	EndTime    *string `gorm:"size:5"`
	Category   string  `gorm:"index;not null"`
	Title      string  `gorm:"not null"`
	Place      string
	Generation string `gorm:"index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AvailabilityRecord represents the availability table
type AvailabilityRecord struct {
	ID        uint   `gorm:"primaryKey"`
	Workplace string `gorm:"index;not null"`
	DayType   string `gorm:"not null"`
	DOW       *int
	StartTime string `gorm:"size:5;not null"`
	EndTime   string `gorm:"size:5;not null"`
	CreatedAt time.Time
}

func (AvailabilityRecord) TableName() string { return "availability" }

// Wage represents the wages table
type Wage struct {
	Workplace  string `gorm:"primaryKey"`
	HourlyWage int    `gorm:"not null"`
	UpdatedAt  time.Time
}

// SettingsID is the primary key of the single settings row
const SettingsID = 1

// Setting represents the single-row settings table holding the policy and
// the saved shift template catalog
type Setting struct {
	ID        uint                         `gorm:"primaryKey"`
	Policy    models.Policy                `gorm:"serializer:json"`
	Templates *models.ShiftTemplateCatalog `gorm:"serializer:json"`
	UpdatedAt time.Time
}

// APIKey represents the api_keys table
type APIKey struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Key        string     `gorm:"unique;not null" json:"-"`
	KeyPreview string     `json:"key_preview"`
	Name       string     `gorm:"not null" json:"name"`
	RateLimit  int        `gorm:"default:10000" json:"rate_limit"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsed   *time.Time `json:"last_used"`
}

// APIUsage represents the api_usage table
type APIUsage struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	KeyID           uint   `gorm:"uniqueIndex:idx_key_date;not null" json:"key_id"`
	Date            string `gorm:"uniqueIndex:idx_key_date;not null" json:"date"`
	RequestCount    int    `gorm:"default:0" json:"request_count"`
	TotalCandidates int    `gorm:"default:0" json:"total_candidates"`
	TotalBlocks     int    `gorm:"default:0" json:"total_blocks"`
}

// MasterUser represents the master_users table
type MasterUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Open connects to postgres when a URL is configured, otherwise to a sqlite file
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}

	var (
		db  *gorm.DB
		err error
	)
	if cfg.URL != "" {
		gormCfg.PrepareStmt = false
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  cfg.URL,
			PreferSimpleProtocol: true,
		}), gormCfg)
	} else {
		db, err = gorm.Open(sqlite.Open(cfg.Path), gormCfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates every table
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Event{},
		&AvailabilityRecord{},
		&Wage{},
		&Setting{},
		&APIKey{},
		&APIUsage{},
		&MasterUser{},
	)
}

// InitDB opens and migrates the configured database
func InitDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}
