package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatMessageType string

const (
	ChatMessageTypeText   ChatMessageType = "text"
	ChatMessageTypeSystem ChatMessageType = "system"
)

const DefaultChatRoom = "1"

// ChatMessage keeps a snapshot of the author's names so history survives
// profile edits and account removal.
type ChatMessage struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	RoomID      string          `json:"roomId" gorm:"size:64;not null;index:idx_chat_room_created"`
	UserID      uuid.UUID       `json:"userId" gorm:"type:uuid;not null"`
	Username    string          `json:"username" gorm:"size:32;not null"`
	UserName    string          `json:"userName" gorm:"size:64"`
	Content     string          `json:"content" gorm:"type:text;not null"`
	MessageType ChatMessageType `json:"messageType" gorm:"size:16;not null"`
	IsEdited    bool            `json:"isEdited" gorm:"not null"`
	CreatedAt   time.Time       `json:"createdAt" gorm:"index:idx_chat_room_created"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	DeletedAt   *time.Time      `json:"deletedAt"`
	DeletedBy   *uuid.UUID      `json:"deletedBy" gorm:"type:uuid"`
}

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

type ChatEventType string

const (
	ChatEventMessage ChatEventType = "message"
	ChatEventDeleted ChatEventType = "deleted"
)

// ChatEvent is pushed to live subscribers of a room.
type ChatEvent struct {
	Type    ChatEventType `json:"type"`
	RoomID  string        `json:"roomId"`
	Message *ChatMessage  `json:"message"`
}
