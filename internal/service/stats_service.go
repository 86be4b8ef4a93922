package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/dom/personal-blog/internal/domain"
	"github.com/dom/personal-blog/internal/repository"
)

const (
	topPostsLimit       = 5
	recentCommentsLimit = 5
)

type StatsService struct {
	statsRepo   repository.StatsRepository
	commentRepo repository.CommentRepository
	throttle    *ViewThrottle
	logger      *slog.Logger
	now         func() time.Time
}

func NewStatsService(statsRepo repository.StatsRepository, commentRepo repository.CommentRepository, throttle *ViewThrottle, logger *slog.Logger) *StatsService {
	return &StatsService{
		statsRepo:   statsRepo,
		commentRepo: commentRepo,
		throttle:    throttle,
		logger:      logger,
		now:         time.Now,
	}
}

type ViewResult struct {
	*domain.PostStats
	Counted bool `json:"counted"`
}

type SiteOverview struct {
	SiteStats      *domain.SiteStats         `json:"siteStats"`
	PostStats      *repository.PostAggregate `json:"postStats"`
	TopPosts       []*domain.PostStats       `json:"topPosts"`
	RecentComments []*domain.Comment         `json:"recentComments"`
}

type SyncResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Reset   int `json:"reset"`
}

func (s *StatsService) GetPostStats(ctx context.Context, slug string) (*domain.PostStats, error) {
	return s.statsRepo.GetOrCreatePostStats(ctx, slug)
}

// RecordView moves the public view counter only when the throttle accepts
// the view. The current counters are returned either way.
func (s *StatsService) RecordView(ctx context.Context, slug string, visitor domain.VisitorKey) (*ViewResult, error) {
	now := s.now()
	counted := s.throttle.ShouldCount(ctx, slug, visitor, now)
	if counted {
		if err := s.statsRepo.IncrementPostCounter(ctx, slug, domain.CounterPostViews, 1, now); err != nil {
			return nil, err
		}
		if err := s.statsRepo.IncrementSiteCounter(ctx, domain.CounterVisits, 1, now); err != nil {
			s.logger.Warn("failed to bump site visits", "error", err)
		}
	}

	stats, err := s.statsRepo.GetOrCreatePostStats(ctx, slug)
	if err != nil {
		return nil, err
	}
	return &ViewResult{PostStats: stats, Counted: counted}, nil
}

func (s *StatsService) SiteOverview(ctx context.Context) (*SiteOverview, error) {
	site, err := s.statsRepo.GetSiteStats(ctx)
	if err != nil {
		return nil, err
	}
	agg, err := s.statsRepo.PostAggregates(ctx)
	if err != nil {
		return nil, err
	}
	top, err := s.statsRepo.TopPostsByViews(ctx, topPostsLimit)
	if err != nil {
		return nil, err
	}
	recent, err := s.commentRepo.RecentVisible(ctx, recentCommentsLimit)
	if err != nil {
		return nil, err
	}
	return &SiteOverview{
		SiteStats:      site,
		PostStats:      agg,
		TopPosts:       top,
		RecentComments: recent,
	}, nil
}

// SyncCommentCounts rebuilds every post's comment counter from the visible
// comments. Posts with no visible comments are reset to zero.
func (s *StatsService) SyncCommentCounts(ctx context.Context) (*SyncResult, error) {
	counts, err := s.commentRepo.CountVisibleBySlug(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := s.statsRepo.ListPostStats(ctx)
	if err != nil {
		return nil, err
	}

	bySlug := make(map[string]*domain.PostStats, len(existing))
	for _, row := range existing {
		bySlug[row.PostSlug] = row
	}

	now := s.now()
	result := &SyncResult{}
	seen := make(map[string]bool, len(counts))
	for _, c := range counts {
		seen[c.PostSlug] = true
		row, ok := bySlug[c.PostSlug]
		if ok && row.CommentCount == c.Count {
			continue
		}
		if err := s.statsRepo.SetCommentCount(ctx, c.PostSlug, c.Count, now); err != nil {
			return nil, err
		}
		if ok {
			result.Updated++
		} else {
			result.Created++
		}
	}

	for _, row := range existing {
		if seen[row.PostSlug] || row.CommentCount == 0 {
			continue
		}
		if err := s.statsRepo.SetCommentCount(ctx, row.PostSlug, 0, now); err != nil {
			return nil, err
		}
		result.Reset++
	}

	s.logger.Info("comment counts synchronised",
		"created", result.Created,
		"updated", result.Updated,
		"reset", result.Reset,
	)
	return result, nil
}
