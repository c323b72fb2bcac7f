package cache

import (
	"context"
	"time"

	"github.com/landonharris622-gif/Primal-live/internal/domain"
)

// StreamCacheResult wraps a cached stream record.
type StreamCacheResult struct {
	Stream domain.Stream `json:"stream"`
}

// StreamCache caches stream records in front of the database.
type StreamCache interface {
	Get(ctx context.Context, key string) (*StreamCacheResult, error)
	Set(ctx context.Context, key string, result *StreamCacheResult, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	BuildKeyByID(streamID string) string
	Close() error
}
