package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dom/personal-blog/internal/domain"
	"github.com/dom/personal-blog/internal/repository"
	"gorm.io/gorm"
)

var ErrFollowSelf = errors.New("you cannot follow yourself")

type FollowService struct {
	followRepo    repository.FollowRepository
	userRepo      repository.UserRepository
	notifications *NotificationService
}

func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository, notifications *NotificationService) *FollowService {
	return &FollowService{
		followRepo:    followRepo,
		userRepo:      userRepo,
		notifications: notifications,
	}
}

type FollowStatus struct {
	User        *domain.User `json:"user"`
	IsFollowing bool         `json:"isFollowing"`
	CanFollow   bool         `json:"canFollow"`
}

type ToggleFollowResult struct {
	Following bool         `json:"isFollowing"`
	User      *domain.User `json:"user"`
}

func (s *FollowService) Status(ctx context.Context, viewer *domain.Identity, username string) (*FollowStatus, error) {
	target, err := s.activeUser(ctx, username)
	if err != nil {
		return nil, err
	}

	status := &FollowStatus{User: target, CanFollow: target.ID != viewer.UserID}
	if status.CanFollow {
		status.IsFollowing, err = s.followRepo.IsFollowing(ctx, viewer.UserID, target.ID)
		if err != nil {
			return nil, err
		}
	}
	return status, nil
}

// Toggle follows the user, or unfollows when already following. A new
// follow notifies the target.
func (s *FollowService) Toggle(ctx context.Context, viewer *domain.Identity, username string) (*ToggleFollowResult, error) {
	target, err := s.activeUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if target.ID == viewer.UserID {
		return nil, ErrFollowSelf
	}

	following, err := s.followRepo.IsFollowing(ctx, viewer.UserID, target.ID)
	if err != nil {
		return nil, err
	}

	if following {
		if _, err := s.followRepo.Unfollow(ctx, viewer.UserID, target.ID); err != nil {
			return nil, err
		}
	} else {
		changed, err := s.followRepo.Follow(ctx, viewer.UserID, target.ID)
		if err != nil {
			return nil, err
		}
		if changed {
			source := viewer.UserID
			s.notifications.Send(ctx, &domain.Notification{
				UserID:       target.ID,
				Type:         domain.NotificationTypeFollow,
				Title:        fmt.Sprintf("%s started following you", viewer.DisplayName()),
				SourceUserID: &source,
			})
		}
	}

	refreshed, err := s.userRepo.GetByID(ctx, target.ID)
	if err != nil {
		return nil, err
	}
	return &ToggleFollowResult{Following: !following, User: refreshed}, nil
}

func (s *FollowService) activeUser(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserNotFound
	}
	return user, nil
}
