package websocket

import (
	"encoding/json"
	"time"

	"github.com/dom/personal-blog/internal/domain"
)

type MessageType string

const (
	// Server to Client
	MessageTypeChatMessage MessageType = "CHAT_MESSAGE"
	MessageTypeChatDeleted MessageType = "CHAT_DELETED"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		Payload:   payloadBytes,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

func messageTypeFor(event domain.ChatEventType) MessageType {
	if event == domain.ChatEventDeleted {
		return MessageTypeChatDeleted
	}
	return MessageTypeChatMessage
}
