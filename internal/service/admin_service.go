package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dom/personal-blog/internal/domain"
	"github.com/dom/personal-blog/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNothingToUpdate  = errors.New("nothing to update")
	ErrCannotModifySelf = errors.New("you cannot change your own account here")
)

const adminPostListLimit = 50

type AdminService struct {
	userRepo  repository.UserRepository
	statsRepo repository.StatsRepository
	posts     *PostService
	stats     *StatsService
	policy    domain.AdminPolicy
	logger    *slog.Logger
}

func NewAdminService(userRepo repository.UserRepository, statsRepo repository.StatsRepository, posts *PostService, stats *StatsService, policy domain.AdminPolicy, logger *slog.Logger) *AdminService {
	return &AdminService{
		userRepo:  userRepo,
		statsRepo: statsRepo,
		posts:     posts,
		stats:     stats,
		policy:    policy,
		logger:    logger,
	}
}

type UpdateUserInput struct {
	UserID   uuid.UUID
	Role     *domain.Role
	IsActive *bool
}

type AdminPost struct {
	*domain.Post
	Stats *domain.PostStats `json:"stats"`
}

func (s *AdminService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.userRepo.ListAll(ctx)
}

// UpdateUser changes activation or role. Only the super admin assigns
// roles, and super_admin itself is never assignable.
func (s *AdminService) UpdateUser(ctx context.Context, actor *domain.Identity, input UpdateUserInput) (*domain.User, error) {
	if input.Role == nil && input.IsActive == nil {
		return nil, ErrNothingToUpdate
	}
	if input.UserID == actor.UserID {
		return nil, ErrCannotModifySelf
	}
	if input.Role != nil {
		if !s.policy.IsSuperAdmin(actor) {
			return nil, domain.ErrForbidden
		}
		if *input.Role != domain.RoleUser && *input.Role != domain.RoleAdmin {
			return nil, domain.ErrInvalidRole
		}
	}

	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if input.Role != nil {
		user.Role = *input.Role
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user updated by admin",
		"admin", actor.Username,
		"user_id", user.ID,
		"role", user.Role,
		"is_active", user.IsActive,
	)
	return user, nil
}

// DeleteUser revokes every session of the user and soft-deletes the account.
func (s *AdminService) DeleteUser(ctx context.Context, actor *domain.Identity, userID uuid.UUID) error {
	if !s.policy.IsSuperAdmin(actor) {
		return domain.ErrForbidden
	}
	if userID == actor.UserID {
		return ErrCannotModifySelf
	}
	if err := s.userRepo.SoftDelete(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	s.logger.Info("user deleted by admin", "admin", actor.Username, "user_id", userID)
	return nil
}

func (s *AdminService) ListPosts(ctx context.Context) ([]*AdminPost, error) {
	posts, err := s.posts.ListForAdmin(ctx, adminPostListLimit)
	if err != nil {
		return nil, err
	}

	slugs := make([]string, 0, len(posts))
	for _, p := range posts {
		slugs = append(slugs, p.Slug)
	}
	stats, err := s.statsRepo.FindPostStats(ctx, slugs)
	if err != nil {
		return nil, err
	}

	out := make([]*AdminPost, 0, len(posts))
	for _, p := range posts {
		st, ok := stats[p.Slug]
		if !ok {
			st = &domain.PostStats{PostSlug: p.Slug}
		}
		out = append(out, &AdminPost{Post: p, Stats: st})
	}
	return out, nil
}

func (s *AdminService) DeletePost(ctx context.Context, id uuid.UUID) error {
	return s.posts.AdminDelete(ctx, id)
}

func (s *AdminService) SyncComments(ctx context.Context) (*SyncResult, error) {
	return s.stats.SyncCommentCounts(ctx)
}
