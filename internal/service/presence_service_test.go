package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landonharris622-gif/Primal-live/internal/domain"
)

func TestPresenceService_Heartbeat(t *testing.T) {
	ctx := context.Background()

	t.Run("live stream returns refreshed count", func(t *testing.T) {
		repo := newFakeStreamRepo(&domain.Stream{ID: "s1", CreatorID: "u1", IsLive: true})
		presence := newFakePresence()
		streamCache := newFakeCache()
		svc := NewPresenceService(repo, presence, streamCache)

		resp, err := svc.Heartbeat(ctx, "s1", "sess-a", "")
		require.NoError(t, err)
		assert.Equal(t, 1, resp.ViewerCount)

		resp, err = svc.Heartbeat(ctx, "s1", "sess-b", "u2")
		require.NoError(t, err)
		assert.Equal(t, 2, resp.ViewerCount)
	})

	t.Run("count is persisted on the stream", func(t *testing.T) {
		repo := newFakeStreamRepo(&domain.Stream{ID: "s1", CreatorID: "u1", IsLive: true})
		svc := NewPresenceService(repo, newFakePresence(), newFakeCache())

		_, err := svc.Heartbeat(ctx, "s1", "sess-a", "")
		require.NoError(t, err)

		assert.Equal(t, 1, repo.stream("s1").ViewerCount)
	})

	t.Run("cache entry is invalidated", func(t *testing.T) {
		repo := newFakeStreamRepo(&domain.Stream{ID: "s1", CreatorID: "u1", IsLive: true})
		streamCache := newFakeCache()
		svc := NewPresenceService(repo, newFakePresence(), streamCache)

		_, err := svc.Heartbeat(ctx, "s1", "sess-a", "")
		require.NoError(t, err)

		assert.Contains(t, streamCache.deletedKeys(), streamCache.BuildKeyByID("s1"))
	})

	t.Run("unknown stream", func(t *testing.T) {
		svc := NewPresenceService(newFakeStreamRepo(), newFakePresence(), newFakeCache())

		_, err := svc.Heartbeat(ctx, "missing", "sess-a", "")
		assert.ErrorIs(t, err, ErrStreamNotFound)
	})

	t.Run("offline stream", func(t *testing.T) {
		repo := newFakeStreamRepo(&domain.Stream{ID: "s1", CreatorID: "u1", IsLive: false})
		svc := NewPresenceService(repo, newFakePresence(), newFakeCache())

		_, err := svc.Heartbeat(ctx, "s1", "sess-a", "")
		assert.ErrorIs(t, err, ErrStreamNotLive)
	})
}
