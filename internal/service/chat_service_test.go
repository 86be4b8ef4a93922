package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/dom/personal-blog/internal/domain"
	"github.com/dom/personal-blog/internal/service"
	"github.com/dom/personal-blog/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatService_Post(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().WithName("Alice").Build(t, f.db)
	admin, _ := testutil.NewUserBuilder().WithRole(domain.RoleAdmin).Build(t, f.db)

	tests := []struct {
		name     string
		author   *domain.User
		input    service.PostChatInput
		wantErr  error
		wantRoom string
		wantType domain.ChatMessageType
	}{
		{name: "defaults room and type", author: user, input: service.PostChatInput{Content: " hi "}, wantRoom: domain.DefaultChatRoom, wantType: domain.ChatMessageTypeText},
		{name: "explicit room", author: user, input: service.PostChatInput{RoomID: "lounge", Content: "hi"}, wantRoom: "lounge", wantType: domain.ChatMessageTypeText},
		{name: "system message by admin", author: admin, input: service.PostChatInput{Content: "maintenance", MessageType: domain.ChatMessageTypeSystem}, wantRoom: domain.DefaultChatRoom, wantType: domain.ChatMessageTypeSystem},
		{name: "system message by user", author: user, input: service.PostChatInput{Content: "x", MessageType: domain.ChatMessageTypeSystem}, wantErr: domain.ErrForbidden},
		{name: "unknown type", author: user, input: service.PostChatInput{Content: "x", MessageType: "image"}, wantErr: service.ErrChatMessageType},
		{name: "empty", author: user, input: service.PostChatInput{Content: "  "}, wantErr: service.ErrChatMessageEmpty},
		{name: "too long", author: user, input: service.PostChatInput{Content: strings.Repeat("a", 501)}, wantErr: service.ErrChatMessageTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(f.broadcaster.Events())
			msg, err := f.services.Chat.Post(ctx, identityOf(tt.author), tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Len(t, f.broadcaster.Events(), before, "failed posts are not broadcast")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRoom, msg.RoomID)
			assert.Equal(t, tt.wantType, msg.MessageType)
			assert.Equal(t, strings.TrimSpace(tt.input.Content), msg.Content)
			assert.Equal(t, tt.author.DisplayName(), msg.UserName)

			events := f.broadcaster.Events()
			require.Len(t, events, before+1)
			last := events[len(events)-1]
			assert.Equal(t, domain.ChatEventMessage, last.Type)
			assert.Equal(t, tt.wantRoom, last.RoomID)
			assert.Equal(t, msg.ID, last.Message.ID)
		})
	}
}

func TestChatService_ListIsChronological(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, f.db)
	for _, content := range []string{"one", "two", "three"} {
		_, err := f.services.Chat.Post(ctx, identityOf(user), service.PostChatInput{Content: content})
		require.NoError(t, err)
	}

	page, err := f.services.Chat.List(ctx, "", 2, 0)
	require.NoError(t, err)
	require.Len(t, page.Messages, 2)
	assert.Equal(t, "two", page.Messages[0].Content)
	assert.Equal(t, "three", page.Messages[1].Content)
	assert.True(t, page.HasMore)

	rest, err := f.services.Chat.List(ctx, "", 2, 2)
	require.NoError(t, err)
	require.Len(t, rest.Messages, 1)
	assert.Equal(t, "one", rest.Messages[0].Content)
	assert.False(t, rest.HasMore)
}

func TestChatService_Delete(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, f.db)
	other, _ := testutil.NewUserBuilder().Build(t, f.db)
	admin, _ := testutil.NewUserBuilder().WithRole(domain.RoleAdmin).Build(t, f.db)

	first, err := f.services.Chat.Post(ctx, identityOf(owner), service.PostChatInput{Content: "first"})
	require.NoError(t, err)
	second, err := f.services.Chat.Post(ctx, identityOf(owner), service.PostChatInput{Content: "second"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.services.Chat.Delete(ctx, identityOf(other), first.ID), domain.ErrForbidden)
	assert.ErrorIs(t, f.services.Chat.Delete(ctx, identityOf(owner), uuid.New()), service.ErrChatMessageNotFound)

	require.NoError(t, f.services.Chat.Delete(ctx, identityOf(owner), first.ID))
	events := f.broadcaster.Events()
	last := events[len(events)-1]
	assert.Equal(t, domain.ChatEventDeleted, last.Type)
	assert.Equal(t, first.ID, last.Message.ID)
	assert.Empty(t, last.Message.Content)
	require.NotNil(t, last.Message.DeletedBy)
	assert.Equal(t, owner.ID, *last.Message.DeletedBy)

	assert.ErrorIs(t, f.services.Chat.Delete(ctx, identityOf(owner), first.ID), service.ErrChatMessageDeleted)

	require.NoError(t, f.services.Chat.Delete(ctx, identityOf(admin), second.ID))

	page, err := f.services.Chat.List(ctx, "", 10, 0)
	require.NoError(t, err)
	for _, m := range page.Messages {
		assert.Empty(t, m.Content)
		assert.NotNil(t, m.DeletedAt)
	}
}
