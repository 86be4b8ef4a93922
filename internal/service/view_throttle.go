package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/dom/personal-blog/internal/domain"
	"github.com/dom/personal-blog/internal/repository"
)

const (
	DefaultViewCooldown = 10 * time.Second
	DefaultViewCap      = 5
)

// ViewThrottle decides whether a view of a content item should move its
// public counter. A visitor is counted at most once per cooldown and at most
// limit times per item, ever.
type ViewThrottle struct {
	views    repository.ViewRecordRepository
	cooldown time.Duration
	limit    int
	logger   *slog.Logger
}

func NewViewThrottle(views repository.ViewRecordRepository, cooldown time.Duration, limit int, logger *slog.Logger) *ViewThrottle {
	if cooldown <= 0 {
		cooldown = DefaultViewCooldown
	}
	if limit <= 0 {
		limit = DefaultViewCap
	}
	return &ViewThrottle{
		views:    views,
		cooldown: cooldown,
		limit:    limit,
		logger:   logger,
	}
}

// ShouldCount records the view and reports whether it counts. Storage errors
// suppress the count.
func (t *ViewThrottle) ShouldCount(ctx context.Context, slug string, visitor domain.VisitorKey, now time.Time) bool {
	counted, err := t.views.RecordView(ctx, slug, visitor, now, t.cooldown, t.limit)
	if err != nil {
		t.logger.Warn("view throttle failed closed",
			"slug", slug,
			"visitor", string(visitor),
			"error", err,
		)
		return false
	}
	return counted
}
