package repository

import (
	"context"
	"time"

	"github.com/dom/personal-blog/internal/domain"
	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	UsernameTaken(ctx context.Context, username string, exceptID uuid.UUID) (bool, error)
	EmailTaken(ctx context.Context, email string, exceptID uuid.UUID) (bool, error)
	Update(ctx context.Context, user *domain.User) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	ListAll(ctx context.Context) ([]*domain.User, error)
	// SoftDelete removes the user's sessions, deactivates the account and
	// marks it deleted in one transaction.
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.UserSession) error
	// FindIdentity returns gorm.ErrRecordNotFound unless a session with the
	// digest exists, expires after now and belongs to an active, undeleted user.
	FindIdentity(ctx context.Context, tokenHash string, now time.Time) (*domain.Identity, error)
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// ViewRecordRepository persists per-visitor view pressure.
type ViewRecordRepository interface {
	// RecordView accepts a view in a single atomic statement: a first view
	// inserts count=1; a later view increments only when the last accepted
	// view is at least cooldown old and the count is below limit. It reports
	// whether the view was accepted.
	RecordView(ctx context.Context, slug string, visitor domain.VisitorKey, now time.Time, cooldown time.Duration, limit int) (bool, error)
	Get(ctx context.Context, slug string, visitor domain.VisitorKey) (*domain.ViewRecord, error)
}

type PostAggregate struct {
	TotalPosts    int64 `json:"total_posts"`
	TotalViews    int64 `json:"total_views"`
	TotalComments int64 `json:"total_post_comments"`
	TotalLikes    int64 `json:"total_post_likes"`
}

type StatsRepository interface {
	GetOrCreatePostStats(ctx context.Context, slug string) (*domain.PostStats, error)
	FindPostStats(ctx context.Context, slugs []string) (map[string]*domain.PostStats, error)
	IncrementPostCounter(ctx context.Context, slug string, counter domain.PostStatsCounter, delta int64, now time.Time) error
	SetCommentCount(ctx context.Context, slug string, count int64, now time.Time) error
	ListPostStats(ctx context.Context) ([]*domain.PostStats, error)
	TopPostsByViews(ctx context.Context, limit int) ([]*domain.PostStats, error)
	PostAggregates(ctx context.Context) (*PostAggregate, error)
	GetSiteStats(ctx context.Context) (*domain.SiteStats, error)
	IncrementSiteCounter(ctx context.Context, counter domain.SiteStatsCounter, delta int64, now time.Time) error
}

type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	// GetBySlug only finds posts whose author is active and not deleted.
	GetBySlug(ctx context.Context, slug string) (*domain.Post, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Update(ctx context.Context, post *domain.Post) error
	List(ctx context.Context, filter domain.PostFilter) ([]*domain.Post, int64, error)
	ListNotDeleted(ctx context.Context, limit int) ([]*domain.Post, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	ListVisibleBySlug(ctx context.Context, slug string) ([]*domain.Comment, error)
	RecentVisible(ctx context.Context, limit int) ([]*domain.Comment, error)
	CountVisibleBySlug(ctx context.Context) ([]domain.CommentCount, error)
}

type LikeRepository interface {
	// Add and Remove report whether a row actually changed.
	Add(ctx context.Context, slug string, userID uuid.UUID) (bool, error)
	Remove(ctx context.Context, slug string, userID uuid.UUID) (bool, error)
	Exists(ctx context.Context, slug string, userID uuid.UUID) (bool, error)
	CountVisible(ctx context.Context, slug string) (int64, error)
}

type FollowRepository interface {
	// Follow and Unfollow keep both users' counters in step with the
	// follows table and report whether anything changed.
	Follow(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	Unfollow(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
	IsFollowing(ctx context.Context, followerID, followingID uuid.UUID) (bool, error)
}

type NotificationRepository interface {
	CreateMany(ctx context.Context, notifications []*domain.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, onlyUnread bool, limit, offset int) ([]*domain.Notification, int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)
}

type ChatRepository interface {
	Create(ctx context.Context, message *domain.ChatMessage) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ChatMessage, error)
	// ListByRoom returns the newest messages first.
	ListByRoom(ctx context.Context, roomID string, limit, offset int) ([]*domain.ChatMessage, error)
	SoftDelete(ctx context.Context, id, deletedBy uuid.UUID, at time.Time) error
}

type Repositories struct {
	User         UserRepository
	Session      SessionRepository
	ViewRecord   ViewRecordRepository
	Stats        StatsRepository
	Post         PostRepository
	Comment      CommentRepository
	Like         LikeRepository
	Follow       FollowRepository
	Notification NotificationRepository
	Chat         ChatRepository
}
