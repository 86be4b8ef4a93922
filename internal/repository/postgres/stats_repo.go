package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/dom/personal-blog/internal/domain"
	"github.com/dom/personal-blog/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type statsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *statsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) GetOrCreatePostStats(ctx context.Context, slug string) (*domain.PostStats, error) {
	stats := &domain.PostStats{PostSlug: slug}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(stats).Error
	if err != nil {
		return nil, err
	}

	var stored domain.PostStats
	if err := r.db.WithContext(ctx).First(&stored, "post_slug = ?", slug).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *statsRepository) FindPostStats(ctx context.Context, slugs []string) (map[string]*domain.PostStats, error) {
	result := make(map[string]*domain.PostStats, len(slugs))
	if len(slugs) == 0 {
		return result, nil
	}

	var rows []*domain.PostStats
	if err := r.db.WithContext(ctx).Where("post_slug IN ?", slugs).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.PostSlug] = row
	}
	return result, nil
}

// IncrementPostCounter creates the row on first use. Negative deltas never
// take a counter below zero.
func (r *statsRepository) IncrementPostCounter(ctx context.Context, slug string, counter domain.PostStatsCounter, delta int64, now time.Time) error {
	column, err := postCounterColumn(counter)
	if err != nil {
		return err
	}

	initial := &domain.PostStats{PostSlug: slug, UpdatedAt: now.UTC()}
	switch counter {
	case domain.CounterPostViews:
		initial.ViewCount = clampZero(delta)
	case domain.CounterPostComments:
		initial.CommentCount = clampZero(delta)
	case domain.CounterPostLikes:
		initial.LikeCount = clampZero(delta)
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "post_slug"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			column:       clampedAdd("post_stats."+column, delta),
			"updated_at": now.UTC(),
		}),
	}).Create(initial).Error
}

func (r *statsRepository) SetCommentCount(ctx context.Context, slug string, count int64, now time.Time) error {
	row := &domain.PostStats{PostSlug: slug, CommentCount: count, UpdatedAt: now.UTC()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "post_slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"comment_count", "updated_at"}),
	}).Create(row).Error
}

func (r *statsRepository) ListPostStats(ctx context.Context) ([]*domain.PostStats, error) {
	var rows []*domain.PostStats
	err := r.db.WithContext(ctx).Order("post_slug").Find(&rows).Error
	return rows, err
}

func (r *statsRepository) TopPostsByViews(ctx context.Context, limit int) ([]*domain.PostStats, error) {
	var rows []*domain.PostStats
	err := r.db.WithContext(ctx).
		Order("view_count DESC").
		Order("post_slug").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *statsRepository) PostAggregates(ctx context.Context) (*repository.PostAggregate, error) {
	var agg repository.PostAggregate
	err := r.db.WithContext(ctx).Model(&domain.PostStats{}).
		Select("COUNT(*) AS total_posts, " +
			"COALESCE(SUM(view_count), 0) AS total_views, " +
			"COALESCE(SUM(comment_count), 0) AS total_comments, " +
			"COALESCE(SUM(like_count), 0) AS total_likes").
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}
	return &agg, nil
}

func (r *statsRepository) GetSiteStats(ctx context.Context) (*domain.SiteStats, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.SiteStats{ID: domain.SiteStatsID}).Error
	if err != nil {
		return nil, err
	}

	var stats domain.SiteStats
	if err := r.db.WithContext(ctx).First(&stats, "id = ?", domain.SiteStatsID).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *statsRepository) IncrementSiteCounter(ctx context.Context, counter domain.SiteStatsCounter, delta int64, now time.Time) error {
	column, err := siteCounterColumn(counter)
	if err != nil {
		return err
	}

	initial := &domain.SiteStats{ID: domain.SiteStatsID, UpdatedAt: now.UTC()}
	switch counter {
	case domain.CounterVisits:
		initial.TotalVisits = clampZero(delta)
	case domain.CounterComments:
		initial.TotalComments = clampZero(delta)
	case domain.CounterLikes:
		initial.TotalLikes = clampZero(delta)
	case domain.CounterUserPosts:
		initial.TotalUserPosts = clampZero(delta)
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			column:       clampedAdd("site_stats."+column, delta),
			"updated_at": now.UTC(),
		}),
	}).Create(initial).Error
}

// Column names are whitelisted before they are interpolated into SQL.
func postCounterColumn(counter domain.PostStatsCounter) (string, error) {
	switch counter {
	case domain.CounterPostViews, domain.CounterPostComments, domain.CounterPostLikes:
		return string(counter), nil
	}
	return "", fmt.Errorf("unknown post counter %q", counter)
}

func siteCounterColumn(counter domain.SiteStatsCounter) (string, error) {
	switch counter {
	case domain.CounterVisits, domain.CounterComments, domain.CounterLikes, domain.CounterUserPosts:
		return string(counter), nil
	}
	return "", fmt.Errorf("unknown site counter %q", counter)
}

// clampedAdd uses CASE rather than GREATEST so the same SQL runs on SQLite.
func clampedAdd(qualified string, delta int64) clause.Expr {
	return gorm.Expr(
		fmt.Sprintf("CASE WHEN %[1]s + ? < 0 THEN 0 ELSE %[1]s + ? END", qualified),
		delta, delta,
	)
}

func clampZero(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
