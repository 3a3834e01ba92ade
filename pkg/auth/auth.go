package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/arnavshah/shiftplan-api/pkg/apperrors"
	"github.com/arnavshah/shiftplan-api/pkg/config"
	"github.com/arnavshah/shiftplan-api/pkg/database"
	"github.com/arnavshah/shiftplan-api/pkg/logger"
)

// DefaultCost is the bcrypt cost for admin passwords
const DefaultCost = 14

// DefaultRateLimit is the daily request allowance of a new API key
const DefaultRateLimit = 10000

var jwtAlgorithm = jwt.SigningMethodHS256

var (
	ErrInvalidKeyFormat = errors.New("invalid key format")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidToken     = errors.New("invalid token")
)

// Claims represents the JWT claims
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service handles admin accounts, admin tokens and API keys
type Service struct {
	DB           *gorm.DB
	JWTSecret    []byte
	MasterSecret []byte
	TokenTTL     time.Duration
	Cost         int
	Log          *zap.Logger
	Now          func() time.Time
}

// NewService builds a Service from the auth configuration
func NewService(db *gorm.DB, cfg config.AuthConfig, log *zap.Logger) *Service {
	return &Service{
		DB:           db,
		JWTSecret:    []byte(cfg.JWTSecret),
		MasterSecret: []byte(cfg.MasterSecret),
		TokenTTL:     cfg.TokenTTL,
		Cost:         DefaultCost,
		Log:          logger.OrNop(log),
		Now:          time.Now,
	}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// HashPassword hashes a password using bcrypt
func (s *Service) HashPassword(password string) (string, error) {
	cost := s.Cost
	if cost == 0 {
		cost = DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

// CheckPasswordHash compares a password with its hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CreateToken creates a new JWT token for a user
func (s *Service) CreateToken(username string) (string, error) {
	ttl := s.TokenTTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(s.now().Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwtAlgorithm, claims)
	return token.SignedString(s.JWTSecret)
}

// VerifyToken verifies a JWT token
func (s *Service) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwtAlgorithm {
			return nil, ErrInvalidToken
		}
		return s.JWTSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Login checks admin credentials and returns a signed token
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	invalid := apperrors.Clone(apperrors.ErrUnauthorized, "invalid credentials")

	var user database.MasterUser
	if err := s.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", invalid
		}
		return "", err
	}
	if !CheckPasswordHash(password, user.PasswordHash) {
		return "", invalid
	}
	return s.CreateToken(user.Username)
}

// EnsureAdminExists creates the first admin when the table is empty
func (s *Service) EnsureAdminExists(ctx context.Context, username, password string) error {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&database.MasterUser{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return err
	}
	user := database.MasterUser{Username: username, PasswordHash: hash}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		return err
	}
	s.Log.Info("default admin user created", zap.String("username", username))
	return nil
}

func (s *Service) sign(userID string) string {
	h := hmac.New(sha256.New, s.MasterSecret)
	h.Write([]byte(userID))
	return hex.EncodeToString(h.Sum(nil))
}

// GenerateHMACKey creates a signed API key of the form userID.signature
func (s *Service) GenerateHMACKey(userID string) string {
	return userID + "." + s.sign(userID)
}

// VerifyHMACKey validates an HMAC-signed API key and returns its user id
func (s *Service) VerifyHMACKey(key string) (string, error) {
	userID, provided, ok := strings.Cut(key, ".")
	if !ok || userID == "" || strings.Contains(provided, ".") {
		return "", ErrInvalidKeyFormat
	}
	if !hmac.Equal([]byte(provided), []byte(s.sign(userID))) {
		return "", ErrInvalidSignature
	}
	return userID, nil
}

// Preview masks a key for listings
func Preview(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:3] + "..." + key[len(key)-4:]
}

// ResolveAPIKey verifies key and returns its record, creating one the first
// time a validly signed key is seen
func (s *Service) ResolveAPIKey(ctx context.Context, key string) (*database.APIKey, error) {
	userID, err := s.VerifyHMACKey(key)
	if err != nil {
		return nil, err
	}
	var apiKey database.APIKey
	err = s.DB.WithContext(ctx).Where(database.APIKey{Key: key}).FirstOrCreate(&apiKey, database.APIKey{
		Key:        key,
		KeyPreview: Preview(key),
		Name:       userID,
		RateLimit:  DefaultRateLimit,
	}).Error
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := s.DB.WithContext(ctx).Model(&apiKey).Update("last_used", now).Error; err != nil {
		s.Log.Warn("could not update key last_used", zap.Uint("key_id", apiKey.ID), zap.Error(err))
	}
	apiKey.LastUsed = &now
	return &apiKey, nil
}

// CreateKey issues and stores a new key for name
func (s *Service) CreateKey(ctx context.Context, name string, rateLimit int) (string, *database.APIKey, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, ".") {
		return "", nil, apperrors.Clone(apperrors.ErrValidation, "name is required and may not contain '.'")
	}
	if rateLimit <= 0 {
		rateLimit = DefaultRateLimit
	}
	key := s.GenerateHMACKey(name)
	apiKey := database.APIKey{
		Key:        key,
		Name:       name,
		KeyPreview: Preview(key),
		RateLimit:  rateLimit,
	}
	if err := s.DB.WithContext(ctx).Create(&apiKey).Error; err != nil {
		return "", nil, apperrors.Wrap(err, apperrors.ErrConflict.Code, apperrors.ErrConflict.Status, "could not create key record")
	}
	return key, &apiKey, nil
}

func (s *Service) ListKeys(ctx context.Context) ([]database.APIKey, error) {
	var keys []database.APIKey
	err := s.DB.WithContext(ctx).Order("id").Find(&keys).Error
	return keys, err
}

func (s *Service) RevokeKey(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&database.APIKey{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.Clone(apperrors.ErrNotFound, "key not found")
	}
	return nil
}

func (s *Service) UpdateKeyLimit(ctx context.Context, id uint, rateLimit int) error {
	if rateLimit <= 0 {
		return apperrors.Clone(apperrors.ErrValidation, "invalid rate limit")
	}
	res := s.DB.WithContext(ctx).Model(&database.APIKey{}).Where("id = ?", id).Update("rate_limit", rateLimit)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.Clone(apperrors.ErrNotFound, "key not found")
	}
	return nil
}

// RecordUsage upserts today's usage row for the key
func (s *Service) RecordUsage(ctx context.Context, keyID uint, candidates, blocks int) error {
	today := s.now().Format("2006-01-02")
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"request_count":    gorm.Expr("request_count + ?", 1),
			"total_candidates": gorm.Expr("total_candidates + ?", candidates),
			"total_blocks":     gorm.Expr("total_blocks + ?", blocks),
		}),
	}).Create(&database.APIUsage{
		KeyID:           keyID,
		Date:            today,
		RequestCount:    1,
		TotalCandidates: candidates,
		TotalBlocks:     blocks,
	}).Error
}

// Usage returns the most recent days of usage for a key, newest first
func (s *Service) Usage(ctx context.Context, keyID uint, days int) ([]database.APIUsage, error) {
	var usage []database.APIUsage
	err := s.DB.WithContext(ctx).Where("key_id = ?", keyID).Order("date desc").Limit(days).Find(&usage).Error
	return usage, err
}

// WithinLimit reports whether the key still has requests left today
func (s *Service) WithinLimit(ctx context.Context, key *database.APIKey) (bool, error) {
	var usage database.APIUsage
	err := s.DB.WithContext(ctx).
		Where("key_id = ? AND date = ?", key.ID, s.now().Format("2006-01-02")).
		First(&usage).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return usage.RequestCount < key.RateLimit, nil
}
