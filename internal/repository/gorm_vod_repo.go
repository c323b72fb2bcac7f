package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/landonharris622-gif/Primal-live/internal/domain"
	"github.com/landonharris622-gif/Primal-live/pkg/log"
)

// GormVodRepository implements VodRepository using GORM.
type GormVodRepository struct {
	db *gorm.DB
}

// NewGormVodRepository creates a new GORM-based VOD repository.
func NewGormVodRepository(db *gorm.DB) *GormVodRepository {
	return &GormVodRepository{db: db}
}

// Create inserts a VOD record.
func (r *GormVodRepository) Create(ctx context.Context, vod *domain.Vod) error {
	l := log.Ctx(ctx)

	if vod.ID == "" {
		vod.ID = uuid.New().String()
	}

	model := &domain.VodModel{
		ID:              vod.ID,
		StreamID:        vod.StreamID,
		CreatorID:       vod.CreatorID,
		CreatorUsername: vod.CreatorUsername,
		Title:           vod.Title,
		FilePath:        vod.FilePath,
	}

	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		l.Error().Err(result.Error).Msg("failed to create vod in db")
		return result.Error
	}

	vod.CreatedAt = model.CreatedAt
	return nil
}

// List retrieves the most recent VODs.
func (r *GormVodRepository) List(ctx context.Context, limit int) ([]domain.Vod, error) {
	var models []domain.VodModel
	result := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	vods := make([]domain.Vod, len(models))
	for i, model := range models {
		vods[i] = *model.ToDomain()
	}
	return vods, nil
}
