package service

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/landonharris622-gif/Primal-live/internal/audit"
	"github.com/landonharris622-gif/Primal-live/internal/domain"
	"github.com/landonharris622-gif/Primal-live/internal/repository"
	"github.com/landonharris622-gif/Primal-live/pkg/log"
	"github.com/landonharris622-gif/Primal-live/pkg/storage"
)

const (
	vodListLimit = 50
	vodURLExpiry = 24 * time.Hour
)

// vodServiceImpl implements VodService interface.
type vodServiceImpl struct {
	repo  repository.VodRepository
	files storage.Storage
}

// NewVodService creates a new VOD service.
func NewVodService(repo repository.VodRepository, files storage.Storage) VodService {
	return &vodServiceImpl{repo: repo, files: files}
}

// Upload stores a recording file and registers a VOD record pointing at it.
func (s *vodServiceImpl) Upload(ctx context.Context, creatorID, creatorUsername, title, streamID string, r io.Reader, size int64, contentType string) (*domain.UploadVodResponse, error) {
	l := log.Ctx(ctx)

	title = strings.TrimSpace(title)
	if title == "" {
		title = creatorUsername + "'s recording"
	}

	vod := &domain.Vod{
		ID:              uuid.New().String(),
		StreamID:        streamID,
		CreatorID:       creatorID,
		CreatorUsername: creatorUsername,
		Title:           title,
	}
	vod.FilePath = "vods/" + vod.ID + vodExt(contentType)

	if err := s.files.Write(ctx, vod.FilePath, r, size, contentType); err != nil {
		l.Error().Err(err).Msg("failed to store vod file")
		return nil, err
	}

	if err := s.repo.Create(ctx, vod); err != nil {
		return nil, err
	}

	url, err := s.files.GetURL(ctx, vod.FilePath, vodURLExpiry)
	if err != nil {
		l.Warn().Err(err).Str("vod_id", vod.ID).Msg("failed to build vod url")
		url = vod.FilePath
	}

	audit.LogWithTarget(ctx, audit.ActionVodUpload, creatorID, vod.ID, "vod uploaded")

	return &domain.UploadVodResponse{VodID: vod.ID, URL: url}, nil
}

// List returns the most recent VODs.
func (s *vodServiceImpl) List(ctx context.Context) ([]domain.Vod, error) {
	return s.repo.List(ctx, vodListLimit)
}

func vodExt(contentType string) string {
	switch contentType {
	case "video/mp4":
		return ".mp4"
	default:
		return ".webm"
	}
}
