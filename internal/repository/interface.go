package repository

import (
	"context"
	"errors"
	"time"

	"github.com/landonharris622-gif/Primal-live/internal/domain"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrStreamNotFound = errors.New("stream not found")
	ErrDuplicateUser  = errors.New("email or username already used")
)

// UserRepository persists user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, limit int) ([]domain.User, error)
	UpdateRole(ctx context.Context, id, role string) error
}

// StreamRepository persists stream records.
type StreamRepository interface {
	Create(ctx context.Context, stream *domain.Stream) error
	GetByID(ctx context.Context, id string) (*domain.Stream, error)
	ListLive(ctx context.Context) ([]domain.Stream, error)
	ListAll(ctx context.Context, limit int) ([]domain.Stream, error)
	SetLive(ctx context.Context, id string, startedAt time.Time) error
	SetEnded(ctx context.Context, id string, endedAt time.Time) error
	UpdateViewerCount(ctx context.Context, id string, count int) error
	UpdateThumbnail(ctx context.Context, id, thumbnailPath string) error
	UpdateIngest(ctx context.Context, id, ingestType, muxLiveStreamID, muxPlaybackID string) error
}

// ChatRepository persists chat messages.
type ChatRepository interface {
	Create(ctx context.Context, msg *domain.ChatMessage, role string) error
	ListByStream(ctx context.Context, streamID string, limit int) ([]domain.ChatMessage, error)
}

// VodRepository persists VOD records.
type VodRepository interface {
	Create(ctx context.Context, vod *domain.Vod) error
	List(ctx context.Context, limit int) ([]domain.Vod, error)
}
