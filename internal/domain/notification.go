package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotificationTypeComment NotificationType = "comment"
	NotificationTypeFollow  NotificationType = "follow"
	NotificationTypeSystem  NotificationType = "system"
)

type Notification struct {
	ID             uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID         `json:"userId" gorm:"type:uuid;not null;index"`
	Type           NotificationType  `json:"type" gorm:"size:16;not null"`
	Title          string            `json:"title" gorm:"size:255;not null"`
	Content        string            `json:"content" gorm:"type:text"`
	SourceUserID   *uuid.UUID        `json:"sourceUserId" gorm:"type:uuid"`
	SourcePostSlug *string           `json:"postSlug" gorm:"size:255"`
	IsRead         bool              `json:"isRead" gorm:"not null;index"`
	Metadata       datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`

	// Relations
	SourceUser *User `json:"sourceUser,omitempty" gorm:"foreignKey:SourceUserID"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
