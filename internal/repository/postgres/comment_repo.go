package postgres

import (
	"context"

	"github.com/dom/personal-blog/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *commentRepository {
	return &commentRepository{db: db}
}

// visibleComments limits a query to approved comments from active,
// undeleted users.
func visibleComments(db *gorm.DB) *gorm.DB {
	return db.
		Joins("JOIN users AS u ON u.id = comments.user_id").
		Where("comments.is_approved = ?", true).
		Where("u.is_active = ? AND u.deleted_at IS NULL", true)
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	return r.db.WithContext(ctx).Omit("User").Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	var comment domain.Comment
	err := r.db.WithContext(ctx).First(&comment, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ListVisibleBySlug(ctx context.Context, slug string) ([]*domain.Comment, error) {
	var comments []*domain.Comment
	err := r.db.WithContext(ctx).
		Scopes(visibleComments).
		Where("comments.post_slug = ?", slug).
		Preload("User").
		Order("comments.created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) RecentVisible(ctx context.Context, limit int) ([]*domain.Comment, error) {
	var comments []*domain.Comment
	err := r.db.WithContext(ctx).
		Scopes(visibleComments).
		Preload("User").
		Order("comments.created_at DESC").
		Limit(limit).
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) CountVisibleBySlug(ctx context.Context) ([]domain.CommentCount, error) {
	var counts []domain.CommentCount
	err := r.db.WithContext(ctx).Model(&domain.Comment{}).
		Scopes(visibleComments).
		Select("comments.post_slug AS post_slug, COUNT(*) AS count").
		Group("comments.post_slug").
		Scan(&counts).Error
	return counts, err
}
