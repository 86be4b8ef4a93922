package postgres

import (
	"context"
	"time"

	"github.com/dom/personal-blog/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *sessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *domain.UserSession) error {
	session.ExpiresAt = session.ExpiresAt.UTC()
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) FindIdentity(ctx context.Context, tokenHash string, now time.Time) (*domain.Identity, error) {
	var row struct {
		ID       uuid.UUID
		Username string
		Name     string
		Email    string
		Role     domain.Role
	}
	err := r.db.WithContext(ctx).
		Table("user_sessions AS s").
		Select("u.id, u.username, u.name, u.email, u.role").
		Joins("JOIN users AS u ON u.id = s.user_id").
		Where("s.token_hash = ?", tokenHash).
		Where("s.expires_at > ?", now.UTC()).
		Where("u.is_active = ? AND u.deleted_at IS NULL", true).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &domain.Identity{
		UserID:   row.ID,
		Username: row.Username,
		Name:     row.Name,
		Email:    row.Email,
		Role:     row.Role,
	}, nil
}

func (r *sessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	return r.db.WithContext(ctx).Delete(&domain.UserSession{}, "token_hash = ?", tokenHash).Error
}

func (r *sessionRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.UserSession{}, "user_id = ?", userID).Error
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&domain.UserSession{}, "expires_at <= ?", now.UTC())
	return result.RowsAffected, result.Error
}
