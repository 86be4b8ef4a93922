package postgres

import (
	"context"
	"time"

	"github.com/dom/personal-blog/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type viewRecordRepository struct {
	db *gorm.DB
}

func NewViewRecordRepository(db *gorm.DB) *viewRecordRepository {
	return &viewRecordRepository{db: db}
}

// RecordView is one INSERT ... ON CONFLICT DO UPDATE ... WHERE statement. The
// conflict update is guarded by the cooldown and cap, so concurrent callers
// for the same pair serialize on the row and at most one of them wins per
// cooldown window. A suppressed update affects no rows.
func (r *viewRecordRepository) RecordView(ctx context.Context, slug string, visitor domain.VisitorKey, now time.Time, cooldown time.Duration, limit int) (bool, error) {
	now = now.UTC()
	cutoff := now.Add(-cooldown)

	record := &domain.ViewRecord{
		ContentSlug:  slug,
		VisitorKey:   visitor,
		ViewCount:    1,
		LastViewedAt: now,
		CreatedAt:    now,
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "content_slug"}, {Name: "visitor_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"view_count":     gorm.Expr("view_records.view_count + 1"),
			"last_viewed_at": now,
		}),
		Where: clause.Where{Exprs: []clause.Expression{
			gorm.Expr("view_records.last_viewed_at <= ?", cutoff),
			gorm.Expr("view_records.view_count < ?", limit),
		}},
	}).Create(record)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *viewRecordRepository) Get(ctx context.Context, slug string, visitor domain.VisitorKey) (*domain.ViewRecord, error) {
	var record domain.ViewRecord
	err := r.db.WithContext(ctx).
		Where("content_slug = ? AND visitor_key = ?", slug, visitor).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}
