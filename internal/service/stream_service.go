package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/landonharris622-gif/Primal-live/internal/audit"
	"github.com/landonharris622-gif/Primal-live/internal/cache"
	"github.com/landonharris622-gif/Primal-live/internal/domain"
	"github.com/landonharris622-gif/Primal-live/internal/hub"
	"github.com/landonharris622-gif/Primal-live/internal/ingest"
	"github.com/landonharris622-gif/Primal-live/internal/repository"
	"github.com/landonharris622-gif/Primal-live/internal/store"
	"github.com/landonharris622-gif/Primal-live/pkg/log"
	"github.com/landonharris622-gif/Primal-live/pkg/storage"
)

var (
	ErrStreamNotFound     = errors.New("stream not found")
	ErrNotStreamOwner     = errors.New("not the stream owner")
	ErrIngestNotAvailable = errors.New("rtmp ingest is not configured")
)

const (
	streamCacheTTL = 30 * time.Second
	listAllLimit   = 100
)

// streamServiceImpl implements StreamService interface.
type streamServiceImpl struct {
	repo        repository.StreamRepository
	cache       cache.StreamCache
	presence    store.PresenceStore
	router      *hub.Router
	files       storage.Storage
	provisioner ingest.Provisioner
}

// NewStreamService creates a new stream service.
func NewStreamService(
	repo repository.StreamRepository,
	streamCache cache.StreamCache,
	presence store.PresenceStore,
	router *hub.Router,
	files storage.Storage,
	provisioner ingest.Provisioner,
) StreamService {
	return &streamServiceImpl{
		repo:        repo,
		cache:       streamCache,
		presence:    presence,
		router:      router,
		files:       files,
		provisioner: provisioner,
	}
}

// Create registers a new stream owned by the caller.
func (s *streamServiceImpl) Create(ctx context.Context, creatorID, creatorUsername string, req *domain.CreateStreamRequest) (*domain.Stream, error) {
	l := log.Ctx(ctx)

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = creatorUsername + "'s stream"
	}

	stream := &domain.Stream{
		CreatorID:       creatorID,
		CreatorUsername: creatorUsername,
		Title:           title,
		IngestType:      domain.IngestWebRTC,
	}

	if err := s.repo.Create(ctx, stream); err != nil {
		l.Error().Err(err).Msg("failed to create stream")
		return nil, err
	}

	audit.LogWithTarget(ctx, audit.ActionStreamCreate, creatorID, stream.ID, "stream created")
	return stream, nil
}

// Get retrieves a stream, consulting the cache first.
func (s *streamServiceImpl) Get(ctx context.Context, id string) (*domain.Stream, error) {
	l := log.Ctx(ctx)

	key := s.cache.BuildKeyByID(id)
	if cached, err := s.cache.Get(ctx, key); err == nil && cached != nil {
		return &cached.Stream, nil
	}

	stream, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrStreamNotFound) {
			return nil, ErrStreamNotFound
		}
		return nil, err
	}

	if err := s.cache.Set(ctx, key, &cache.StreamCacheResult{Stream: *stream}, streamCacheTTL); err != nil {
		l.Warn().Err(err).Str(log.FieldStreamID, id).Msg("failed to cache stream")
	}
	return stream, nil
}

// ListLive returns live streams, most watched first.
func (s *streamServiceImpl) ListLive(ctx context.Context) ([]domain.Stream, error) {
	return s.repo.ListLive(ctx)
}

// ListAll returns recent streams regardless of state.
func (s *streamServiceImpl) ListAll(ctx context.Context, limit int) ([]domain.Stream, error) {
	if limit <= 0 || limit > listAllLimit {
		limit = listAllLimit
	}
	return s.repo.ListAll(ctx, limit)
}

// Start marks a stream live and resets its viewer count. Admins may
// start any stream, creators only their own.
func (s *streamServiceImpl) Start(ctx context.Context, actorID, actorRole, streamID string) (*domain.Stream, error) {
	l := log.Ctx(ctx)

	stream, err := s.getOwned(ctx, actorID, actorRole, streamID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetLive(ctx, stream.ID, time.Now()); err != nil {
		l.Error().Err(err).Str(log.FieldStreamID, stream.ID).Msg("failed to mark stream live")
		return nil, err
	}
	s.invalidate(ctx, stream.ID)

	audit.LogWithTarget(ctx, audit.ActionStreamStart, actorID, stream.ID, "stream went live")
	return s.repo.GetByID(ctx, stream.ID)
}

// End stops a stream. Admins may end any stream, creators only their own.
func (s *streamServiceImpl) End(ctx context.Context, actorID, actorRole, streamID string) error {
	stream, err := s.getOwned(ctx, actorID, actorRole, streamID)
	if err != nil {
		return err
	}

	if err := s.end(ctx, stream); err != nil {
		return err
	}

	audit.LogWithTarget(ctx, audit.ActionStreamEnd, actorID, stream.ID, "stream ended")
	return nil
}

// ForceEnd stops any stream. Callers must be admins.
func (s *streamServiceImpl) ForceEnd(ctx context.Context, adminID, streamID string) error {
	stream, err := s.repo.GetByID(ctx, streamID)
	if err != nil {
		if errors.Is(err, repository.ErrStreamNotFound) {
			return ErrStreamNotFound
		}
		return err
	}

	if err := s.end(ctx, stream); err != nil {
		return err
	}

	audit.LogWithTarget(ctx, audit.ActionStreamForceEnd, adminID, stream.ID, "stream force-ended")
	return nil
}

// end flips a stream offline, drops its presence records, and tells
// everyone in the room.
func (s *streamServiceImpl) end(ctx context.Context, stream *domain.Stream) error {
	l := log.Ctx(ctx)

	if err := s.repo.SetEnded(ctx, stream.ID, time.Now()); err != nil {
		l.Error().Err(err).Str(log.FieldStreamID, stream.ID).Msg("failed to mark stream ended")
		return err
	}

	s.presence.Clear(stream.ID)
	s.invalidate(ctx, stream.ID)

	if err := s.router.BroadcastSystem(stream.ID, domain.NewStreamEndedEvent(stream.ID)); err != nil {
		l.Warn().Err(err).Str(log.FieldStreamID, stream.ID).Msg("failed to broadcast stream end")
	}
	return nil
}

// UploadThumbnail stores a thumbnail image and records its path.
func (s *streamServiceImpl) UploadThumbnail(ctx context.Context, actorID, actorRole, streamID string, r io.Reader, size int64, contentType string) (*domain.Stream, error) {
	l := log.Ctx(ctx)

	stream, err := s.getOwned(ctx, actorID, actorRole, streamID)
	if err != nil {
		return nil, err
	}

	key := "thumbnails/" + stream.ID + thumbnailExt(contentType)
	if err := s.files.Write(ctx, key, r, size, contentType); err != nil {
		l.Error().Err(err).Str(log.FieldStreamID, stream.ID).Msg("failed to store thumbnail")
		return nil, err
	}

	if err := s.repo.UpdateThumbnail(ctx, stream.ID, key); err != nil {
		return nil, err
	}
	s.invalidate(ctx, stream.ID)

	return s.repo.GetByID(ctx, stream.ID)
}

// ProvisionIngest provisions RTMP ingest credentials for the caller's
// stream and flips it to RTMP ingest.
func (s *streamServiceImpl) ProvisionIngest(ctx context.Context, actorID, actorRole, streamID string) (*domain.ProvisionIngestResponse, error) {
	l := log.Ctx(ctx)

	if s.provisioner == nil {
		return nil, ErrIngestNotAvailable
	}

	stream, err := s.getOwned(ctx, actorID, actorRole, streamID)
	if err != nil {
		return nil, err
	}

	ls, err := s.provisioner.CreateLiveStream(ctx, stream.ID)
	if err != nil {
		l.Error().Err(err).Str(log.FieldStreamID, stream.ID).Msg("failed to provision rtmp ingest")
		return nil, err
	}

	if err := s.repo.UpdateIngest(ctx, stream.ID, domain.IngestRTMP, ls.ID, ls.PlaybackID); err != nil {
		return nil, err
	}
	s.invalidate(ctx, stream.ID)

	audit.LogWithTarget(ctx, audit.ActionIngestProvision, actorID, stream.ID, "rtmp ingest provisioned")

	return &domain.ProvisionIngestResponse{
		RTMPUrl:    ls.RTMPUrl,
		StreamKey:  ls.StreamKey,
		PlaybackID: ls.PlaybackID,
	}, nil
}

// getOwned loads a stream and checks the actor may manage it: admins
// may manage any stream, everyone else only their own.
func (s *streamServiceImpl) getOwned(ctx context.Context, actorID, actorRole, streamID string) (*domain.Stream, error) {
	stream, err := s.repo.GetByID(ctx, streamID)
	if err != nil {
		if errors.Is(err, repository.ErrStreamNotFound) {
			return nil, ErrStreamNotFound
		}
		return nil, err
	}
	if actorRole != domain.RoleAdmin && stream.CreatorID != actorID {
		return nil, ErrNotStreamOwner
	}
	return stream, nil
}

func (s *streamServiceImpl) invalidate(ctx context.Context, streamID string) {
	if err := s.cache.Delete(ctx, s.cache.BuildKeyByID(streamID)); err != nil {
		logger := log.Ctx(ctx)
		logger.Warn().Err(err).Str(log.FieldStreamID, streamID).Msg("failed to invalidate stream cache")
	}
}

func thumbnailExt(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
