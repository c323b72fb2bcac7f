package service

import (
	"context"
	"errors"
	"strings"

	"github.com/landonharris622-gif/Primal-live/internal/domain"
	"github.com/landonharris622-gif/Primal-live/internal/hub"
	"github.com/landonharris622-gif/Primal-live/internal/repository"
	"github.com/landonharris622-gif/Primal-live/pkg/log"
)

var (
	ErrEmptyMessage   = errors.New("message is empty")
	ErrMessageTooLong = errors.New("message exceeds maximum length")
)

const chatHistoryLimit = 200

// chatServiceImpl implements ChatService interface.
type chatServiceImpl struct {
	chats   repository.ChatRepository
	streams repository.StreamRepository
	router  *hub.Router
}

// NewChatService creates a new chat service.
func NewChatService(chats repository.ChatRepository, streams repository.StreamRepository, router *hub.Router) ChatService {
	return &chatServiceImpl{
		chats:   chats,
		streams: streams,
		router:  router,
	}
}

// History returns a stream's chat messages in send order.
func (s *chatServiceImpl) History(ctx context.Context, streamID string) ([]domain.ChatMessage, error) {
	if _, err := s.getStream(ctx, streamID); err != nil {
		return nil, err
	}
	return s.chats.ListByStream(ctx, streamID, chatHistoryLimit)
}

// Send persists a chat message for a live stream and broadcasts it to
// the stream's room.
func (s *chatServiceImpl) Send(ctx context.Context, streamID, userID, username, role, message string) (*domain.ChatMessage, error) {
	l := log.Ctx(ctx)

	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if len(message) > domain.MaxChatMessageLength {
		return nil, ErrMessageTooLong
	}

	stream, err := s.getStream(ctx, streamID)
	if err != nil {
		return nil, err
	}
	if !stream.IsLive {
		return nil, ErrStreamNotLive
	}

	msg := &domain.ChatMessage{
		StreamID:         streamID,
		UserID:           userID,
		UsernameSnapshot: username,
		Message:          message,
	}
	if err := s.chats.Create(ctx, msg, role); err != nil {
		l.Error().Err(err).Str(log.FieldStreamID, streamID).Msg("failed to persist chat message")
		return nil, err
	}

	event := &domain.ChatEvent{
		Type:      domain.MsgTypeChat,
		StreamID:  streamID,
		ID:        msg.ID,
		Username:  msg.UsernameSnapshot,
		Badge:     msg.Badge,
		Message:   msg.Message,
		CreatedAt: msg.CreatedAt.UnixMilli(),
	}
	if err := s.router.BroadcastSystem(streamID, event); err != nil {
		l.Warn().Err(err).Str(log.FieldStreamID, streamID).Msg("failed to broadcast chat message")
	}

	return msg, nil
}

func (s *chatServiceImpl) getStream(ctx context.Context, streamID string) (*domain.Stream, error) {
	stream, err := s.streams.GetByID(ctx, streamID)
	if err != nil {
		if errors.Is(err, repository.ErrStreamNotFound) {
			return nil, ErrStreamNotFound
		}
		return nil, err
	}
	return stream, nil
}
