package service

import (
	"log/slog"

	"github.com/dom/personal-blog/internal/config"
	"github.com/dom/personal-blog/internal/domain"
	"github.com/dom/personal-blog/internal/repository"
)

type Services struct {
	Gate          *SessionGate
	Auth          *AuthService
	Stats         *StatsService
	Posts         *PostService
	Comments      *CommentService
	Likes         *LikeService
	Follows       *FollowService
	Notifications *NotificationService
	Chat          *ChatService
	Admin         *AdminService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, guard *LoginGuard, broadcaster ChatBroadcaster, logger *slog.Logger) *Services {
	policy := domain.AdminPolicy{SuperUsername: cfg.SuperUsername}

	throttle := NewViewThrottle(repos.ViewRecord, cfg.ViewCooldown, cfg.ViewCap, logger)
	notifications := NewNotificationService(repos.Notification, logger)
	stats := NewStatsService(repos.Stats, repos.Comment, throttle, logger)
	posts := NewPostService(repos.Post, repos.Stats, policy)

	return &Services{
		Gate:          NewSessionGate(repos.Session, policy),
		Auth:          NewAuthService(repos.User, repos.Session, guard, cfg),
		Stats:         stats,
		Posts:         posts,
		Comments:      NewCommentService(repos.Comment, repos.Post, repos.Stats, notifications),
		Likes:         NewLikeService(repos.Like, repos.Stats),
		Follows:       NewFollowService(repos.Follow, repos.User, notifications),
		Notifications: notifications,
		Chat:          NewChatService(repos.Chat, policy, broadcaster),
		Admin:         NewAdminService(repos.User, repos.Stats, posts, stats, policy, logger),
	}
}
