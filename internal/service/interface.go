package service

import (
	"context"
	"io"

	"github.com/landonharris622-gif/Primal-live/internal/domain"
)

// UserService defines the interface for account and auth business logic.
type UserService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.AuthResponse, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error)
	RefreshToken(ctx context.Context, req *domain.RefreshTokenRequest) (*domain.AuthResponse, error)
	Logout(ctx context.Context, userID string) error
	GetUser(ctx context.Context, userID string) (*domain.UserResponse, error)
	ListUsers(ctx context.Context, limit int) ([]domain.UserResponse, error)
	UpdateRole(ctx context.Context, actorID, targetID, role string) (*domain.UserResponse, error)
}

// StreamService defines the interface for stream lifecycle business logic.
type StreamService interface {
	Create(ctx context.Context, creatorID, creatorUsername string, req *domain.CreateStreamRequest) (*domain.Stream, error)
	Get(ctx context.Context, id string) (*domain.Stream, error)
	ListLive(ctx context.Context) ([]domain.Stream, error)
	ListAll(ctx context.Context, limit int) ([]domain.Stream, error)
	Start(ctx context.Context, actorID, actorRole, streamID string) (*domain.Stream, error)
	End(ctx context.Context, actorID, actorRole, streamID string) error
	ForceEnd(ctx context.Context, adminID, streamID string) error
	UploadThumbnail(ctx context.Context, actorID, actorRole, streamID string, r io.Reader, size int64, contentType string) (*domain.Stream, error)
	ProvisionIngest(ctx context.Context, actorID, actorRole, streamID string) (*domain.ProvisionIngestResponse, error)
}

// PresenceService defines the interface for viewer presence tracking.
type PresenceService interface {
	// Heartbeat records a viewing session pulse for a live stream and
	// returns the refreshed viewer count.
	Heartbeat(ctx context.Context, streamID, sessionID, userID string) (*domain.HeartbeatResponse, error)
}

// ChatService defines the interface for stream chat business logic.
type ChatService interface {
	History(ctx context.Context, streamID string) ([]domain.ChatMessage, error)
	Send(ctx context.Context, streamID, userID, username, role, message string) (*domain.ChatMessage, error)
}

// VodService defines the interface for VOD upload business logic.
type VodService interface {
	Upload(ctx context.Context, creatorID, creatorUsername, title, streamID string, r io.Reader, size int64, contentType string) (*domain.UploadVodResponse, error)
	List(ctx context.Context) ([]domain.Vod, error)
}
