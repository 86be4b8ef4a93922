package postgres

import (
	"context"

	"github.com/dom/personal-blog/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) *likeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Add(ctx context.Context, slug string, userID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.PostLike{PostSlug: slug, UserID: userID})
	return result.RowsAffected == 1, result.Error
}

func (r *likeRepository) Remove(ctx context.Context, slug string, userID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Delete(&domain.PostLike{}, "post_slug = ? AND user_id = ?", slug, userID)
	return result.RowsAffected > 0, result.Error
}

func (r *likeRepository) Exists(ctx context.Context, slug string, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.PostLike{}).
		Where("post_slug = ? AND user_id = ?", slug, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *likeRepository) CountVisible(ctx context.Context, slug string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.PostLike{}).
		Joins("JOIN users AS u ON u.id = post_likes.user_id").
		Where("post_likes.post_slug = ?", slug).
		Where("u.is_active = ? AND u.deleted_at IS NULL", true).
		Count(&count).Error
	return count, err
}
