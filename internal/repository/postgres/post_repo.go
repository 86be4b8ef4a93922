package postgres

import (
	"context"

	"github.com/dom/personal-blog/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *postRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *domain.Post) error {
	return r.db.WithContext(ctx).Omit("Author").Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	var post domain.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		First(&post, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	var post domain.Post
	err := r.db.WithContext(ctx).
		Joins("JOIN users AS u ON u.id = user_posts.author_id").
		Where("user_posts.slug = ?", slug).
		Where("u.is_active = ? AND u.deleted_at IS NULL", true).
		Preload("Author").
		First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Post{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

func (r *postRepository) Update(ctx context.Context, post *domain.Post) error {
	return r.db.WithContext(ctx).Omit("Author").Save(post).Error
}

// List hides posts by inactive or deleted authors, matching GetBySlug.
func (r *postRepository) List(ctx context.Context, filter domain.PostFilter) ([]*domain.Post, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Post{}).
		Joins("JOIN users AS u ON u.id = user_posts.author_id").
		Where("u.is_active = ? AND u.deleted_at IS NULL", true)

	if filter.Status != "" {
		query = query.Where("user_posts.status = ?", filter.Status)
	} else {
		query = query.Where("user_posts.status <> ?", domain.PostStatusDeleted)
	}
	if filter.AuthorID != nil {
		query = query.Where("user_posts.author_id = ?", *filter.AuthorID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []*domain.Post
	err := query.
		Preload("Author").
		Order("user_posts.created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// ListNotDeleted is the admin view: every author, any non-deleted status.
func (r *postRepository) ListNotDeleted(ctx context.Context, limit int) ([]*domain.Post, error) {
	var posts []*domain.Post
	err := r.db.WithContext(ctx).
		Preload("Author", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Where("status <> ?", domain.PostStatusDeleted).
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}
