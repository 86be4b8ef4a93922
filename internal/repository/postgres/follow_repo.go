package postgres

import (
	"context"

	"github.com/dom/personal-blog/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) *followRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Follow(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	changed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&domain.Follow{FollowerID: followerID, FollowingID: followingID})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		changed = true
		return adjustFollowCounters(tx, followerID, followingID, 1)
	})
	return changed, err
}

func (r *followRepository) Unfollow(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	changed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&domain.Follow{}, "follower_id = ? AND following_id = ?", followerID, followingID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		changed = true
		return adjustFollowCounters(tx, followerID, followingID, -1)
	})
	return changed, err
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	return count > 0, err
}

func adjustFollowCounters(tx *gorm.DB, followerID, followingID uuid.UUID, delta int64) error {
	err := tx.Model(&domain.User{}).Where("id = ?", followerID).
		UpdateColumn("following_count", clampedAdd("following_count", delta)).Error
	if err != nil {
		return err
	}
	return tx.Model(&domain.User{}).Where("id = ?", followingID).
		UpdateColumn("followers_count", clampedAdd("followers_count", delta)).Error
}
