package postgres

import (
	"context"
	"time"

	"github.com/dom/personal-blog/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type chatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *chatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Create(ctx context.Context, message *domain.ChatMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *chatRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ChatMessage, error) {
	var message domain.ChatMessage
	err := r.db.WithContext(ctx).First(&message, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *chatRepository) ListByRoom(ctx context.Context, roomID string, limit, offset int) ([]*domain.ChatMessage, error) {
	var messages []*domain.ChatMessage
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND deleted_at IS NULL", roomID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	return messages, err
}

// SoftDelete blanks the content so removed messages cannot be recovered
// through the API.
func (r *chatRepository) SoftDelete(ctx context.Context, id, deletedBy uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&domain.ChatMessage{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(map[string]interface{}{
			"content":    "",
			"deleted_at": at.UTC(),
			"deleted_by": deletedBy,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
