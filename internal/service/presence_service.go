package service

import (
	"context"
	"errors"

	"github.com/landonharris622-gif/Primal-live/internal/cache"
	"github.com/landonharris622-gif/Primal-live/internal/domain"
	"github.com/landonharris622-gif/Primal-live/internal/repository"
	"github.com/landonharris622-gif/Primal-live/internal/store"
	"github.com/landonharris622-gif/Primal-live/pkg/log"
)

// ErrStreamNotLive is returned for presence and chat writes against
// offline streams.
var ErrStreamNotLive = errors.New("stream is not live")

// presenceServiceImpl implements PresenceService interface.
type presenceServiceImpl struct {
	streams  repository.StreamRepository
	presence store.PresenceStore
	cache    cache.StreamCache
}

// NewPresenceService creates a new presence service.
func NewPresenceService(streams repository.StreamRepository, presence store.PresenceStore, streamCache cache.StreamCache) PresenceService {
	return &presenceServiceImpl{
		streams:  streams,
		presence: presence,
		cache:    streamCache,
	}
}

// Heartbeat records a viewing session pulse, recomputes the live viewer
// count, and persists it so stream listings stay current.
func (s *presenceServiceImpl) Heartbeat(ctx context.Context, streamID, sessionID, userID string) (*domain.HeartbeatResponse, error) {
	l := log.Ctx(ctx)

	stream, err := s.streams.GetByID(ctx, streamID)
	if err != nil {
		if errors.Is(err, repository.ErrStreamNotFound) {
			return nil, ErrStreamNotFound
		}
		return nil, err
	}
	if !stream.IsLive {
		return nil, ErrStreamNotLive
	}

	count := s.presence.Heartbeat(streamID, sessionID, userID)

	if err := s.streams.UpdateViewerCount(ctx, streamID, count); err != nil {
		l.Warn().Err(err).Str(log.FieldStreamID, streamID).Msg("failed to persist viewer count")
	}
	if err := s.cache.Delete(ctx, s.cache.BuildKeyByID(streamID)); err != nil {
		l.Warn().Err(err).Str(log.FieldStreamID, streamID).Msg("failed to invalidate stream cache after heartbeat")
	}

	return &domain.HeartbeatResponse{ViewerCount: count}, nil
}
