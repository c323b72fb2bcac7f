package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landonharris622-gif/Primal-live/internal/domain"
	"github.com/landonharris622-gif/Primal-live/internal/hub"
	"github.com/landonharris622-gif/Primal-live/internal/ingest"
)

type streamFixture struct {
	svc      StreamService
	repo     *fakeStreamRepo
	cache    *fakeCache
	presence *fakePresence
	router   *hub.Router
}

func newStreamFixture(provisioner ingest.Provisioner, streams ...*domain.Stream) *streamFixture {
	f := &streamFixture{
		repo:     newFakeStreamRepo(streams...),
		cache:    newFakeCache(),
		presence: newFakePresence(),
		router:   hub.NewRouter(hub.NewRegistry()),
	}
	f.svc = NewStreamService(f.repo, f.cache, f.presence, f.router, nil, provisioner)
	return f
}

func TestStreamService_Create(t *testing.T) {
	ctx := context.Background()
	f := newStreamFixture(nil)

	stream, err := f.svc.Create(ctx, "u1", "alice", &domain.CreateStreamRequest{Title: "My Stream"})
	require.NoError(t, err)

	assert.NotEmpty(t, stream.ID)
	assert.Equal(t, "u1", stream.CreatorID)
	assert.Equal(t, "My Stream", stream.Title)
	assert.Equal(t, domain.IngestWebRTC, stream.IngestType)
	assert.False(t, stream.IsLive)
}

func TestStreamService_Create_DefaultTitle(t *testing.T) {
	f := newStreamFixture(nil)

	stream, err := f.svc.Create(context.Background(), "u1", "alice", &domain.CreateStreamRequest{Title: "  "})
	require.NoError(t, err)
	assert.Equal(t, "alice's stream", stream.Title)
}

func TestStreamService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("miss loads from repo and fills cache", func(t *testing.T) {
		f := newStreamFixture(nil, &domain.Stream{ID: "s1", CreatorID: "u1", Title: "t"})

		stream, err := f.svc.Get(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "s1", stream.ID)

		// Second get is served from cache.
		before := f.repo.getCount()
		_, err = f.svc.Get(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, before, f.repo.getCount())
	})

	t.Run("unknown stream", func(t *testing.T) {
		f := newStreamFixture(nil)

		_, err := f.svc.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrStreamNotFound)
	})
}

func TestStreamService_Start(t *testing.T) {
	ctx := context.Background()

	t.Run("owner starts the stream", func(t *testing.T) {
		f := newStreamFixture(nil, &domain.Stream{ID: "s1", CreatorID: "u1", ViewerCount: 7})

		stream, err := f.svc.Start(ctx, "u1", domain.RoleCreator, "s1")
		require.NoError(t, err)

		assert.True(t, stream.IsLive)
		assert.NotNil(t, stream.StartedAt)
		assert.Zero(t, stream.ViewerCount)
	})

	t.Run("admin starts another creator's stream", func(t *testing.T) {
		f := newStreamFixture(nil, &domain.Stream{ID: "s1", CreatorID: "u1"})

		stream, err := f.svc.Start(ctx, "admin-1", domain.RoleAdmin, "s1")
		require.NoError(t, err)
		assert.True(t, stream.IsLive)
	})

	t.Run("non-owner is rejected", func(t *testing.T) {
		f := newStreamFixture(nil, &domain.Stream{ID: "s1", CreatorID: "u1"})

		_, err := f.svc.Start(ctx, "intruder", domain.RoleCreator, "s1")
		assert.ErrorIs(t, err, ErrNotStreamOwner)
	})
}

func TestStreamService_End(t *testing.T) {
	ctx := context.Background()

	t.Run("flips offline and resets viewers", func(t *testing.T) {
		f := newStreamFixture(nil, &domain.Stream{ID: "s1", CreatorID: "u1", IsLive: true, ViewerCount: 12})

		require.NoError(t, f.svc.End(ctx, "u1", domain.RoleCreator, "s1"))

		ended := f.repo.stream("s1")
		assert.False(t, ended.IsLive)
		assert.NotNil(t, ended.EndedAt)
		assert.Zero(t, ended.ViewerCount)
	})

	t.Run("clears presence records", func(t *testing.T) {
		f := newStreamFixture(nil, &domain.Stream{ID: "s1", CreatorID: "u1", IsLive: true})
		f.presence.Heartbeat("s1", "sess-a", "")

		require.NoError(t, f.svc.End(ctx, "u1", domain.RoleCreator, "s1"))

		assert.Contains(t, f.presence.clearedRooms(), "s1")
		assert.Zero(t, f.presence.Count("s1"))
	})

	t.Run("notifies the room", func(t *testing.T) {
		f := newStreamFixture(nil, &domain.Stream{ID: "s1", CreatorID: "u1", IsLive: true})
		viewer := &testConn{}
		f.router.Registry().Join(viewer, "s1", "v1")

		require.NoError(t, f.svc.End(ctx, "u1", domain.RoleCreator, "s1"))

		received := viewer.getReceived()
		require.Len(t, received, 1)
		var event domain.StreamEndedEvent
		require.NoError(t, json.Unmarshal(received[0], &event))
		assert.Equal(t, domain.MsgTypeStreamEnded, event.Type)
		assert.Equal(t, "s1", event.StreamID)
	})

	t.Run("invalidates the cache", func(t *testing.T) {
		f := newStreamFixture(nil, &domain.Stream{ID: "s1", CreatorID: "u1", IsLive: true})
		_, err := f.svc.Get(ctx, "s1")
		require.NoError(t, err)

		require.NoError(t, f.svc.End(ctx, "u1", domain.RoleCreator, "s1"))

		assert.Contains(t, f.cache.deletedKeys(), f.cache.BuildKeyByID("s1"))
	})

	t.Run("admin ends another creator's stream", func(t *testing.T) {
		f := newStreamFixture(nil, &domain.Stream{ID: "s1", CreatorID: "u1", IsLive: true})

		require.NoError(t, f.svc.End(ctx, "admin-1", domain.RoleAdmin, "s1"))
		assert.False(t, f.repo.stream("s1").IsLive)
	})

	t.Run("non-owner is rejected", func(t *testing.T) {
		f := newStreamFixture(nil, &domain.Stream{ID: "s1", CreatorID: "u1", IsLive: true})

		err := f.svc.End(ctx, "intruder", domain.RoleCreator, "s1")
		assert.ErrorIs(t, err, ErrNotStreamOwner)
		assert.True(t, f.repo.stream("s1").IsLive)
	})
}

func TestStreamService_ForceEnd(t *testing.T) {
	ctx := context.Background()

	t.Run("works without ownership", func(t *testing.T) {
		f := newStreamFixture(nil, &domain.Stream{ID: "s1", CreatorID: "u1", IsLive: true})

		require.NoError(t, f.svc.ForceEnd(ctx, "admin-1", "s1"))
		assert.False(t, f.repo.stream("s1").IsLive)
	})

	t.Run("unknown stream", func(t *testing.T) {
		f := newStreamFixture(nil)

		err := f.svc.ForceEnd(ctx, "admin-1", "missing")
		assert.ErrorIs(t, err, ErrStreamNotFound)
	})
}

type fakeProvisioner struct {
	calls int
}

func (p *fakeProvisioner) CreateLiveStream(ctx context.Context, passthrough string) (*ingest.LiveStream, error) {
	p.calls++
	return &ingest.LiveStream{
		ID:         "mux-ls-1",
		StreamKey:  "key-123",
		PlaybackID: "pb-456",
		RTMPUrl:    "rtmps://ingest.example/app",
	}, nil
}

func TestStreamService_ProvisionIngest(t *testing.T) {
	ctx := context.Background()

	t.Run("records credentials and switches ingest type", func(t *testing.T) {
		prov := &fakeProvisioner{}
		f := newStreamFixture(prov, &domain.Stream{ID: "s1", CreatorID: "u1", IngestType: domain.IngestWebRTC})

		resp, err := f.svc.ProvisionIngest(ctx, "u1", domain.RoleCreator, "s1")
		require.NoError(t, err)

		assert.Equal(t, "key-123", resp.StreamKey)
		assert.Equal(t, "pb-456", resp.PlaybackID)
		assert.Equal(t, 1, prov.calls)

		updated := f.repo.stream("s1")
		assert.Equal(t, domain.IngestRTMP, updated.IngestType)
		assert.Equal(t, "mux-ls-1", updated.MuxLiveStreamID)
		assert.Equal(t, "pb-456", updated.MuxPlaybackID)
	})

	t.Run("unconfigured provisioner", func(t *testing.T) {
		f := newStreamFixture(nil, &domain.Stream{ID: "s1", CreatorID: "u1"})

		_, err := f.svc.ProvisionIngest(ctx, "u1", domain.RoleCreator, "s1")
		assert.ErrorIs(t, err, ErrIngestNotAvailable)
	})

	t.Run("non-owner is rejected", func(t *testing.T) {
		f := newStreamFixture(&fakeProvisioner{}, &domain.Stream{ID: "s1", CreatorID: "u1"})

		_, err := f.svc.ProvisionIngest(ctx, "intruder", domain.RoleCreator, "s1")
		assert.ErrorIs(t, err, ErrNotStreamOwner)
	})
}
