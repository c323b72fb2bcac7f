package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/landonharris622-gif/Primal-live/internal/domain"
	"github.com/landonharris622-gif/Primal-live/pkg/log"
)

// GormStreamRepository implements StreamRepository using GORM.
type GormStreamRepository struct {
	db *gorm.DB
}

// NewGormStreamRepository creates a new GORM-based stream repository.
func NewGormStreamRepository(db *gorm.DB) *GormStreamRepository {
	return &GormStreamRepository{db: db}
}

// Create inserts a new stream record.
func (r *GormStreamRepository) Create(ctx context.Context, stream *domain.Stream) error {
	l := log.Ctx(ctx)

	stream.ID = uuid.New().String()
	if stream.IngestType == "" {
		stream.IngestType = domain.IngestWebRTC
	}

	model := domain.StreamToModel(stream)
	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		l.Error().Err(result.Error).Msg("failed to create stream in db")
		return result.Error
	}

	stream.CreatedAt = model.CreatedAt
	l.Debug().Str(log.FieldStreamID, stream.ID).Msg("stream created in db")
	return nil
}

// GetByID retrieves a stream by id.
func (r *GormStreamRepository) GetByID(ctx context.Context, id string) (*domain.Stream, error) {
	var model domain.StreamModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrStreamNotFound
		}
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// ListLive retrieves live streams, most watched first.
func (r *GormStreamRepository) ListLive(ctx context.Context) ([]domain.Stream, error) {
	l := log.Ctx(ctx)

	var models []domain.StreamModel
	result := r.db.WithContext(ctx).
		Where("is_live = ?", true).
		Order("viewer_count DESC").
		Order("started_at DESC").
		Find(&models)
	if result.Error != nil {
		l.Error().Err(result.Error).Msg("failed to list live streams from db")
		return nil, result.Error
	}

	streams := make([]domain.Stream, len(models))
	for i, model := range models {
		streams[i] = *model.ToDomain()
	}
	return streams, nil
}

// ListAll retrieves recent streams regardless of state.
func (r *GormStreamRepository) ListAll(ctx context.Context, limit int) ([]domain.Stream, error) {
	var models []domain.StreamModel
	result := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	streams := make([]domain.Stream, len(models))
	for i, model := range models {
		streams[i] = *model.ToDomain()
	}
	return streams, nil
}

// SetLive marks a stream live and resets its viewer count.
func (r *GormStreamRepository) SetLive(ctx context.Context, id string, startedAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&domain.StreamModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_live":      true,
			"started_at":   startedAt,
			"ended_at":     nil,
			"viewer_count": 0,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStreamNotFound
	}
	return nil
}

// SetEnded marks a stream offline and resets its viewer count.
func (r *GormStreamRepository) SetEnded(ctx context.Context, id string, endedAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&domain.StreamModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_live":      false,
			"ended_at":     endedAt,
			"viewer_count": 0,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStreamNotFound
	}
	return nil
}

// UpdateViewerCount persists the presence-derived viewer count.
func (r *GormStreamRepository) UpdateViewerCount(ctx context.Context, id string, count int) error {
	return r.db.WithContext(ctx).Model(&domain.StreamModel{}).
		Where("id = ?", id).
		Update("viewer_count", count).Error
}

// UpdateThumbnail records the stored thumbnail path.
func (r *GormStreamRepository) UpdateThumbnail(ctx context.Context, id, thumbnailPath string) error {
	result := r.db.WithContext(ctx).Model(&domain.StreamModel{}).
		Where("id = ?", id).
		Update("thumbnail_path", thumbnailPath)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStreamNotFound
	}
	return nil
}

// UpdateIngest records provisioned ingest details.
func (r *GormStreamRepository) UpdateIngest(ctx context.Context, id, ingestType, muxLiveStreamID, muxPlaybackID string) error {
	result := r.db.WithContext(ctx).Model(&domain.StreamModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"ingest_type":        ingestType,
			"mux_live_stream_id": muxLiveStreamID,
			"mux_playback_id":    muxPlaybackID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStreamNotFound
	}
	return nil
}
