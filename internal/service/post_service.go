package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dom/personal-blog/internal/domain"
	"github.com/dom/personal-blog/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrPostNotFound  = errors.New("post not found")
	ErrPostInvalid   = errors.New("title and content are required")
	ErrAuthRequired  = errors.New("authentication required")
	ErrSlugExhausted = errors.New("could not allocate a unique slug")
)

const (
	maxSlugAttempts     = 1000
	defaultPostPageSize = 10
	maxPostPageSize     = 50
)

type PostService struct {
	postRepo  repository.PostRepository
	statsRepo repository.StatsRepository
	policy    domain.AdminPolicy
	now       func() time.Time
}

func NewPostService(postRepo repository.PostRepository, statsRepo repository.StatsRepository, policy domain.AdminPolicy) *PostService {
	return &PostService{
		postRepo:  postRepo,
		statsRepo: statsRepo,
		policy:    policy,
		now:       time.Now,
	}
}

type CreatePostInput struct {
	Title   string
	Content string
	Status  domain.PostStatus
}

// UpdatePostInput leaves fields that are nil unchanged.
type UpdatePostInput struct {
	Title   *string
	Content *string
	Status  *domain.PostStatus
}

type PostPage struct {
	Posts      []*domain.Post `json:"posts"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"totalPages"`
}

func (s *PostService) Create(ctx context.Context, author *domain.Identity, input CreatePostInput) (*domain.Post, error) {
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || content == "" {
		return nil, ErrPostInvalid
	}

	status := input.Status
	if status == "" {
		status = domain.PostStatusDraft
	}
	if status != domain.PostStatusDraft && status != domain.PostStatusPublished {
		return nil, domain.ErrInvalidStatus
	}

	slug, err := s.uniqueSlug(ctx, Slugify(title))
	if err != nil {
		return nil, err
	}

	post := &domain.Post{
		Slug:       slug,
		Title:      title,
		Content:    content,
		Excerpt:    Excerpt(content),
		AuthorID:   author.UserID,
		Status:     status,
		IsOfficial: s.policy.IsAdmin(author),
	}
	now := s.now().UTC()
	if status == domain.PostStatusPublished {
		post.PublishedAt = &now
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	if status == domain.PostStatusPublished {
		if err := s.statsRepo.IncrementSiteCounter(ctx, domain.CounterUserPosts, 1, now); err != nil {
			return nil, err
		}
	}
	return post, nil
}

func (s *PostService) Update(ctx context.Context, actor *domain.Identity, id uuid.UUID, input UpdatePostInput) (*domain.Post, error) {
	post, err := s.getEditable(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrPostInvalid
		}
		post.Title = title
	}
	if input.Content != nil {
		content := strings.TrimSpace(*input.Content)
		if content == "" {
			return nil, ErrPostInvalid
		}
		post.Content = content
		post.Excerpt = Excerpt(content)
	}

	wasPublished := post.Status == domain.PostStatusPublished
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, domain.ErrInvalidStatus
		}
		post.Status = *input.Status
	}
	isPublished := post.Status == domain.PostStatusPublished

	now := s.now().UTC()
	switch {
	case isPublished && !wasPublished:
		post.PublishedAt = &now
	case !isPublished && wasPublished:
		post.PublishedAt = nil
	}

	post.Author = nil
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	if err := s.adjustPublishedTotal(ctx, wasPublished, isPublished, now); err != nil {
		return nil, err
	}
	return post, nil
}

// Delete is a soft delete; the row stays with status deleted.
func (s *PostService) Delete(ctx context.Context, actor *domain.Identity, id uuid.UUID) error {
	post, err := s.getEditable(ctx, actor, id)
	if err != nil {
		return err
	}
	return s.markDeleted(ctx, post)
}

// AdminDelete removes any post regardless of author.
func (s *PostService) AdminDelete(ctx context.Context, id uuid.UUID) error {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	if post.Status == domain.PostStatusDeleted {
		return ErrPostNotFound
	}
	return s.markDeleted(ctx, post)
}

func (s *PostService) markDeleted(ctx context.Context, post *domain.Post) error {
	wasPublished := post.Status == domain.PostStatusPublished
	post.Status = domain.PostStatusDeleted
	post.Author = nil
	if err := s.postRepo.Update(ctx, post); err != nil {
		return err
	}
	return s.adjustPublishedTotal(ctx, wasPublished, false, s.now())
}

// List serves published posts to anyone. Any other listing needs a caller:
// admins see every author, other users only their own posts.
func (s *PostService) List(ctx context.Context, viewer *domain.Identity, status domain.PostStatus, page, limit int) (*PostPage, error) {
	if status != "" && !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPostPageSize
	}
	if limit > maxPostPageSize {
		limit = maxPostPageSize
	}

	filter := domain.PostFilter{
		Status: status,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	if status != domain.PostStatusPublished {
		if viewer == nil {
			return nil, ErrAuthRequired
		}
		if !s.policy.IsAdmin(viewer) {
			filter.AuthorID = &viewer.UserID
		}
	}

	posts, total, err := s.postRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &PostPage{
		Posts:      posts,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
	}, nil
}

// GetBySlug returns published posts to everyone; drafts and deleted posts
// only to their author or an admin.
func (s *PostService) GetBySlug(ctx context.Context, viewer *domain.Identity, slug string) (*domain.Post, error) {
	post, err := s.postRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if post.Status == domain.PostStatusPublished {
		return post, nil
	}
	if viewer == nil {
		return nil, ErrAuthRequired
	}
	if post.AuthorID != viewer.UserID && !s.policy.IsAdmin(viewer) {
		return nil, domain.ErrForbidden
	}
	return post, nil
}

func (s *PostService) ListForAdmin(ctx context.Context, limit int) ([]*domain.Post, error) {
	return s.postRepo.ListNotDeleted(ctx, limit)
}

func (s *PostService) getEditable(ctx context.Context, actor *domain.Identity, id uuid.UUID) (*domain.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if post.Status == domain.PostStatusDeleted {
		return nil, ErrPostNotFound
	}
	if post.AuthorID != actor.UserID && !s.policy.IsAdmin(actor) {
		return nil, domain.ErrForbidden
	}
	return post, nil
}

func (s *PostService) adjustPublishedTotal(ctx context.Context, wasPublished, isPublished bool, now time.Time) error {
	switch {
	case isPublished && !wasPublished:
		return s.statsRepo.IncrementSiteCounter(ctx, domain.CounterUserPosts, 1, now)
	case wasPublished && !isPublished:
		return s.statsRepo.IncrementSiteCounter(ctx, domain.CounterUserPosts, -1, now)
	}
	return nil
}

func (s *PostService) uniqueSlug(ctx context.Context, base string) (string, error) {
	candidate := base
	for i := 1; i <= maxSlugAttempts; i++ {
		exists, err := s.postRepo.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", ErrSlugExhausted
}
