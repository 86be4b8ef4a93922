package service

import (
	"context"
	"time"

	"github.com/dom/personal-blog/internal/domain"
	"github.com/dom/personal-blog/internal/repository"
	"github.com/google/uuid"
)

const (
	LikeActionLiked   = "liked"
	LikeActionUnliked = "unliked"
)

type LikeService struct {
	likeRepo  repository.LikeRepository
	statsRepo repository.StatsRepository
	now       func() time.Time
}

func NewLikeService(likeRepo repository.LikeRepository, statsRepo repository.StatsRepository) *LikeService {
	return &LikeService{
		likeRepo:  likeRepo,
		statsRepo: statsRepo,
		now:       time.Now,
	}
}

type LikeStatus struct {
	LikeCount int64 `json:"likeCount"`
	UserLiked bool  `json:"userLiked"`
}

type ToggleLikeResult struct {
	Action    string `json:"action"`
	LikeCount int64  `json:"likeCount"`
}

// Status reports userLiked only for a known viewer.
func (s *LikeService) Status(ctx context.Context, slug string, viewer *domain.Identity) (*LikeStatus, error) {
	count, err := s.likeRepo.CountVisible(ctx, slug)
	if err != nil {
		return nil, err
	}
	status := &LikeStatus{LikeCount: count}
	if viewer != nil {
		liked, err := s.likeRepo.Exists(ctx, slug, viewer.UserID)
		if err != nil {
			return nil, err
		}
		status.UserLiked = liked
	}
	return status, nil
}

func (s *LikeService) Toggle(ctx context.Context, slug string, userID uuid.UUID) (*ToggleLikeResult, error) {
	liked, err := s.likeRepo.Exists(ctx, slug, userID)
	if err != nil {
		return nil, err
	}

	action := LikeActionLiked
	var changed bool
	var delta int64 = 1
	if liked {
		action = LikeActionUnliked
		delta = -1
		changed, err = s.likeRepo.Remove(ctx, slug, userID)
	} else {
		changed, err = s.likeRepo.Add(ctx, slug, userID)
	}
	if err != nil {
		return nil, err
	}

	if changed {
		now := s.now()
		if err := s.statsRepo.IncrementPostCounter(ctx, slug, domain.CounterPostLikes, delta, now); err != nil {
			return nil, err
		}
		if err := s.statsRepo.IncrementSiteCounter(ctx, domain.CounterLikes, delta, now); err != nil {
			return nil, err
		}
	}

	count, err := s.likeRepo.CountVisible(ctx, slug)
	if err != nil {
		return nil, err
	}
	return &ToggleLikeResult{Action: action, LikeCount: count}, nil
}
