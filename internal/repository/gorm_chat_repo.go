package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/landonharris622-gif/Primal-live/internal/domain"
	"github.com/landonharris622-gif/Primal-live/pkg/log"
)

// GormChatRepository implements ChatRepository using GORM.
type GormChatRepository struct {
	db *gorm.DB
}

// NewGormChatRepository creates a new GORM-based chat repository.
func NewGormChatRepository(db *gorm.DB) *GormChatRepository {
	return &GormChatRepository{db: db}
}

// Create inserts a chat message. The sender's role at send time only
// determines the badge on the returned message; it is not persisted.
func (r *GormChatRepository) Create(ctx context.Context, msg *domain.ChatMessage, role string) error {
	l := log.Ctx(ctx)

	msg.ID = uuid.New().String()
	model := &domain.ChatMessageModel{
		ID:               msg.ID,
		StreamID:         msg.StreamID,
		UserID:           msg.UserID,
		UsernameSnapshot: msg.UsernameSnapshot,
		Message:          msg.Message,
	}

	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldStreamID, msg.StreamID).Msg("failed to create chat message in db")
		return result.Error
	}

	msg.CreatedAt = model.CreatedAt
	msg.Badge = domain.StaffBadge(role)
	return nil
}

// chatMessageRow is a chat message joined with the sender's current role.
type chatMessageRow struct {
	ID               string
	StreamID         string
	UserID           string
	UsernameSnapshot string
	Message          string
	CreatedAt        time.Time
	Role             string
}

// ListByStream retrieves the oldest messages of a stream in ascending order.
// Badges are derived from each sender's current role, so a role change
// updates the badge on past messages.
func (r *GormChatRepository) ListByStream(ctx context.Context, streamID string, limit int) ([]domain.ChatMessage, error) {
	var rows []chatMessageRow
	result := r.db.WithContext(ctx).
		Model(&domain.ChatMessageModel{}).
		Select("chat_messages.id, chat_messages.stream_id, chat_messages.user_id, chat_messages.username_snapshot, chat_messages.message, chat_messages.created_at, users.role").
		Joins("JOIN users ON users.id = chat_messages.user_id").
		Where("chat_messages.stream_id = ?", streamID).
		Order("chat_messages.created_at ASC").
		Limit(limit).
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	messages := make([]domain.ChatMessage, len(rows))
	for i, row := range rows {
		messages[i] = domain.ChatMessage{
			ID:               row.ID,
			StreamID:         row.StreamID,
			UserID:           row.UserID,
			UsernameSnapshot: row.UsernameSnapshot,
			Badge:            domain.StaffBadge(row.Role),
			Message:          row.Message,
			CreatedAt:        row.CreatedAt,
		}
	}
	return messages, nil
}
