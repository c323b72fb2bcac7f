package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landonharris622-gif/Primal-live/internal/domain"
	"github.com/landonharris622-gif/Primal-live/internal/hub"
)

func newChatFixture(stream *domain.Stream) (ChatService, *fakeChatRepo, *hub.Router) {
	chats := &fakeChatRepo{}
	streams := newFakeStreamRepo(stream)
	router := hub.NewRouter(hub.NewRegistry())
	return NewChatService(chats, streams, router), chats, router
}

func TestChatService_Send(t *testing.T) {
	ctx := context.Background()
	live := &domain.Stream{ID: "s1", CreatorID: "u1", IsLive: true}

	t.Run("persists and returns the message", func(t *testing.T) {
		svc, chats, _ := newChatFixture(live)

		msg, err := svc.Send(ctx, "s1", "u2", "alice", domain.RoleViewer, "hello")
		require.NoError(t, err)

		assert.NotEmpty(t, msg.ID)
		assert.Equal(t, "hello", msg.Message)
		assert.Equal(t, "alice", msg.UsernameSnapshot)
		assert.Empty(t, msg.Badge)
		assert.Len(t, chats.messages, 1)
	})

	t.Run("whitespace is trimmed", func(t *testing.T) {
		svc, _, _ := newChatFixture(live)

		msg, err := svc.Send(ctx, "s1", "u2", "alice", domain.RoleViewer, "  hey  ")
		require.NoError(t, err)
		assert.Equal(t, "hey", msg.Message)
	})

	t.Run("staff get badges", func(t *testing.T) {
		svc, _, _ := newChatFixture(live)

		msg, err := svc.Send(ctx, "s1", "u1", "creator", domain.RoleCreator, "hi chat")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleCreator, msg.Badge)

		msg, err = svc.Send(ctx, "s1", "u3", "admin", domain.RoleAdmin, "behave")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, msg.Badge)
	})

	t.Run("broadcasts a chat event to the room", func(t *testing.T) {
		svc, _, router := newChatFixture(live)
		viewer := &testConn{}
		router.Registry().Join(viewer, "s1", "v1")

		msg, err := svc.Send(ctx, "s1", "u2", "alice", domain.RoleViewer, "hello room")
		require.NoError(t, err)

		received := viewer.getReceived()
		require.Len(t, received, 1)

		var event domain.ChatEvent
		require.NoError(t, json.Unmarshal(received[0], &event))
		assert.Equal(t, domain.MsgTypeChat, event.Type)
		assert.Equal(t, "s1", event.StreamID)
		assert.Equal(t, msg.ID, event.ID)
		assert.Equal(t, "alice", event.Username)
		assert.Equal(t, "hello room", event.Message)
	})

	t.Run("empty message", func(t *testing.T) {
		svc, chats, _ := newChatFixture(live)

		_, err := svc.Send(ctx, "s1", "u2", "alice", domain.RoleViewer, "   ")
		assert.ErrorIs(t, err, ErrEmptyMessage)
		assert.Empty(t, chats.messages)
	})

	t.Run("message at the cap is accepted", func(t *testing.T) {
		svc, _, _ := newChatFixture(live)

		_, err := svc.Send(ctx, "s1", "u2", "alice", domain.RoleViewer, strings.Repeat("a", domain.MaxChatMessageLength))
		assert.NoError(t, err)
	})

	t.Run("message over the cap", func(t *testing.T) {
		svc, chats, _ := newChatFixture(live)

		_, err := svc.Send(ctx, "s1", "u2", "alice", domain.RoleViewer, strings.Repeat("a", domain.MaxChatMessageLength+1))
		assert.ErrorIs(t, err, ErrMessageTooLong)
		assert.Empty(t, chats.messages)
	})

	t.Run("offline stream", func(t *testing.T) {
		svc, _, _ := newChatFixture(&domain.Stream{ID: "s1", CreatorID: "u1", IsLive: false})

		_, err := svc.Send(ctx, "s1", "u2", "alice", domain.RoleViewer, "hello")
		assert.ErrorIs(t, err, ErrStreamNotLive)
	})

	t.Run("unknown stream", func(t *testing.T) {
		svc, _, _ := newChatFixture(live)

		_, err := svc.Send(ctx, "missing", "u2", "alice", domain.RoleViewer, "hello")
		assert.ErrorIs(t, err, ErrStreamNotFound)
	})
}

func TestChatService_History(t *testing.T) {
	ctx := context.Background()

	t.Run("returns messages in send order", func(t *testing.T) {
		svc, _, _ := newChatFixture(&domain.Stream{ID: "s1", CreatorID: "u1", IsLive: true})

		for _, text := range []string{"first", "second", "third"} {
			_, err := svc.Send(ctx, "s1", "u2", "alice", domain.RoleViewer, text)
			require.NoError(t, err)
		}

		history, err := svc.History(ctx, "s1")
		require.NoError(t, err)
		require.Len(t, history, 3)
		assert.Equal(t, "first", history[0].Message)
		assert.Equal(t, "third", history[2].Message)
	})

	t.Run("unknown stream", func(t *testing.T) {
		svc, _, _ := newChatFixture(&domain.Stream{ID: "s1", CreatorID: "u1", IsLive: true})

		_, err := svc.History(ctx, "missing")
		assert.ErrorIs(t, err, ErrStreamNotFound)
	})
}
