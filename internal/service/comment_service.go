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
	ErrCommentEmpty    = errors.New("comment content is required")
	ErrCommentTooLong  = errors.New("comment must be at most 1000 characters")
	ErrParentNotFound  = errors.New("parent comment not found")
	ErrParentWrongPost = errors.New("parent comment belongs to another post")
)

const (
	maxCommentRunes     = 1000
	notificationExcerpt = 100
)

type CommentService struct {
	commentRepo   repository.CommentRepository
	postRepo      repository.PostRepository
	statsRepo     repository.StatsRepository
	notifications *NotificationService
	now           func() time.Time
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository, statsRepo repository.StatsRepository, notifications *NotificationService) *CommentService {
	return &CommentService{
		commentRepo:   commentRepo,
		postRepo:      postRepo,
		statsRepo:     statsRepo,
		notifications: notifications,
		now:           time.Now,
	}
}

// CommentNode is a comment with its visible replies.
type CommentNode struct {
	*domain.Comment
	Replies []*CommentNode `json:"replies"`
}

type CreateCommentInput struct {
	Content  string
	ParentID *uuid.UUID
}

// ListTree arranges the visible comments of a post into threads, oldest
// first. Replies to comments that are not visible are dropped.
func (s *CommentService) ListTree(ctx context.Context, slug string) ([]*CommentNode, error) {
	comments, err := s.commentRepo.ListVisibleBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return BuildCommentTree(comments), nil
}

func BuildCommentTree(comments []*domain.Comment) []*CommentNode {
	nodes := make(map[uuid.UUID]*CommentNode, len(comments))
	for _, c := range comments {
		nodes[c.ID] = &CommentNode{Comment: c, Replies: []*CommentNode{}}
	}

	roots := []*CommentNode{}
	for _, c := range comments {
		node := nodes[c.ID]
		if c.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[*c.ParentID]; ok {
			parent.Replies = append(parent.Replies, node)
		}
	}
	return roots
}

func (s *CommentService) Create(ctx context.Context, author *domain.Identity, slug string, input CreateCommentInput) (*domain.Comment, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrCommentEmpty
	}
	if runeLen(content) > maxCommentRunes {
		return nil, ErrCommentTooLong
	}

	var parent *domain.Comment
	if input.ParentID != nil {
		p, err := s.commentRepo.GetByID(ctx, *input.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, err
		}
		if p.PostSlug != slug {
			return nil, ErrParentWrongPost
		}
		parent = p
	}

	comment := &domain.Comment{
		PostSlug:   slug,
		UserID:     author.UserID,
		ParentID:   input.ParentID,
		Content:    content,
		IsApproved: true,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.statsRepo.IncrementPostCounter(ctx, slug, domain.CounterPostComments, 1, now); err != nil {
		return nil, err
	}
	if err := s.statsRepo.IncrementSiteCounter(ctx, domain.CounterComments, 1, now); err != nil {
		return nil, err
	}

	s.notify(ctx, author, slug, comment, parent)

	comment.User = &domain.User{
		ID:       author.UserID,
		Username: author.Username,
		Name:     author.Name,
		Role:     author.Role,
		IsActive: true,
	}
	return comment, nil
}

// notify tells the parent comment's author about a reply and the post's
// author about a comment. Nobody is notified of their own action and nobody
// gets two notifications for one comment.
func (s *CommentService) notify(ctx context.Context, author *domain.Identity, slug string, comment, parent *domain.Comment) {
	preview := comment.Content
	if runeLen(preview) > notificationExcerpt {
		preview = string([]rune(preview)[:notificationExcerpt]) + "..."
	}

	notified := map[uuid.UUID]bool{author.UserID: true}
	var out []*domain.Notification
	add := func(recipient uuid.UUID, title string) {
		if notified[recipient] {
			return
		}
		notified[recipient] = true
		sourceUser := author.UserID
		postSlug := slug
		out = append(out, &domain.Notification{
			UserID:         recipient,
			Type:           domain.NotificationTypeComment,
			Title:          title,
			Content:        preview,
			SourceUserID:   &sourceUser,
			SourcePostSlug: &postSlug,
			Metadata: map[string]interface{}{
				"commentId": comment.ID.String(),
			},
		})
	}

	if parent != nil {
		add(parent.UserID, fmt.Sprintf("%s replied to your comment", author.DisplayName()))
	}
	if post, err := s.postRepo.GetBySlug(ctx, slug); err == nil {
		add(post.AuthorID, fmt.Sprintf("%s commented on %q", author.DisplayName(), post.Title))
	}

	s.notifications.Send(ctx, out...)
}
