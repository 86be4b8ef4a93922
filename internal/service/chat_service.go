package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dom/personal-blog/internal/domain"
	"github.com/dom/personal-blog/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrChatMessageEmpty    = errors.New("message content is required")
	ErrChatMessageTooLong  = errors.New("message must be at most 500 characters")
	ErrChatMessageNotFound = errors.New("message not found")
	ErrChatMessageDeleted  = errors.New("message already deleted")
	ErrChatMessageType     = errors.New("invalid message type")
)

const (
	maxChatRunes         = 500
	defaultChatPageLimit = 50
	maxChatPageLimit     = 100
)

// ChatBroadcaster delivers chat events to live subscribers of a room.
type ChatBroadcaster interface {
	Broadcast(event domain.ChatEvent)
}

type ChatService struct {
	repo        repository.ChatRepository
	policy      domain.AdminPolicy
	broadcaster ChatBroadcaster
	now         func() time.Time
}

func NewChatService(repo repository.ChatRepository, policy domain.AdminPolicy, broadcaster ChatBroadcaster) *ChatService {
	return &ChatService{
		repo:        repo,
		policy:      policy,
		broadcaster: broadcaster,
		now:         time.Now,
	}
}

type ChatPage struct {
	Messages []*domain.ChatMessage `json:"messages"`
	HasMore  bool                  `json:"hasMore"`
	Limit    int                   `json:"limit"`
	Offset   int                   `json:"offset"`
}

type PostChatInput struct {
	RoomID      string
	Content     string
	MessageType domain.ChatMessageType
}

func NormalizeRoomID(roomID string) string {
	if roomID = strings.TrimSpace(roomID); roomID == "" {
		return domain.DefaultChatRoom
	}
	return roomID
}

// List returns a page of the newest messages in chronological order.
func (s *ChatService) List(ctx context.Context, roomID string, limit, offset int) (*ChatPage, error) {
	if limit < 1 {
		limit = defaultChatPageLimit
	}
	if limit > maxChatPageLimit {
		limit = maxChatPageLimit
	}
	if offset < 0 {
		offset = 0
	}

	messages, err := s.repo.ListByRoom(ctx, NormalizeRoomID(roomID), limit, offset)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return &ChatPage{
		Messages: messages,
		HasMore:  len(messages) == limit,
		Limit:    limit,
		Offset:   offset,
	}, nil
}

func (s *ChatService) Post(ctx context.Context, author *domain.Identity, input PostChatInput) (*domain.ChatMessage, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrChatMessageEmpty
	}
	if runeLen(content) > maxChatRunes {
		return nil, ErrChatMessageTooLong
	}

	messageType := input.MessageType
	switch messageType {
	case "":
		messageType = domain.ChatMessageTypeText
	case domain.ChatMessageTypeText:
	case domain.ChatMessageTypeSystem:
		if !s.policy.IsAdmin(author) {
			return nil, domain.ErrForbidden
		}
	default:
		return nil, ErrChatMessageType
	}

	message := &domain.ChatMessage{
		RoomID:      NormalizeRoomID(input.RoomID),
		UserID:      author.UserID,
		Username:    author.Username,
		UserName:    author.DisplayName(),
		Content:     content,
		MessageType: messageType,
	}
	if err := s.repo.Create(ctx, message); err != nil {
		return nil, err
	}

	s.publish(domain.ChatEventMessage, message)
	return message, nil
}

// Delete hides a message. Only its author or an admin may do so.
func (s *ChatService) Delete(ctx context.Context, actor *domain.Identity, id uuid.UUID) error {
	message, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrChatMessageNotFound
		}
		return err
	}
	if message.DeletedAt != nil {
		return ErrChatMessageDeleted
	}
	if message.UserID != actor.UserID && !s.policy.IsAdmin(actor) {
		return domain.ErrForbidden
	}

	now := s.now().UTC()
	if err := s.repo.SoftDelete(ctx, id, actor.UserID, now); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrChatMessageDeleted
		}
		return err
	}

	message.Content = ""
	message.DeletedAt = &now
	deletedBy := actor.UserID
	message.DeletedBy = &deletedBy
	s.publish(domain.ChatEventDeleted, message)
	return nil
}

func (s *ChatService) publish(eventType domain.ChatEventType, message *domain.ChatMessage) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.Broadcast(domain.ChatEvent{
		Type:    eventType,
		RoomID:  message.RoomID,
		Message: message,
	})
}
