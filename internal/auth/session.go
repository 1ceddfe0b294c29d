package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"interiors-erp/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SuperAdminTokenPrefix marks console tokens, which are not JWTs.
const SuperAdminTokenPrefix = "super_admin_token_"

var ErrSessionNotFound = errors.New("super admin session not found or expired")

type SessionStore interface {
	Create(ctx context.Context, email string, ttl time.Duration) (string, error)
	Lookup(ctx context.Context, token string) (*models.SuperAdminSession, error)
	Delete(ctx context.Context, token string) error
	PurgeExpired(ctx context.Context) (int64, error)
}

type GormSessionStore struct {
	db *gorm.DB
}

func NewSessionStore(db *gorm.DB) *GormSessionStore {
	return &GormSessionStore{db: db}
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func newOpaqueToken() string {
	return SuperAdminTokenPrefix +
		strings.ReplaceAll(uuid.NewString(), "-", "") +
		strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *GormSessionStore) Create(ctx context.Context, email string, ttl time.Duration) (string, error) {
	token := newOpaqueToken()
	session := models.SuperAdminSession{
		TokenHash: hashToken(token),
		Email:     email,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := s.db.WithContext(ctx).Create(&session).Error; err != nil {
		return "", err
	}
	return token, nil
}

func (s *GormSessionStore) Lookup(ctx context.Context, token string) (*models.SuperAdminSession, error) {
	var session models.SuperAdminSession
	err := s.db.WithContext(ctx).
		Where("token_hash = ? AND expires_at > ?", hashToken(token), time.Now()).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *GormSessionStore) Delete(ctx context.Context, token string) error {
	return s.db.WithContext(ctx).
		Where("token_hash = ?", hashToken(token)).
		Delete(&models.SuperAdminSession{}).Error
}

func (s *GormSessionStore) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at <= ?", time.Now()).
		Delete(&models.SuperAdminSession{})
	return res.RowsAffected, res.Error
}
