package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/landonharris622-gif/Primal-live/internal/cache"
	"github.com/landonharris622-gif/Primal-live/internal/domain"
	"github.com/landonharris622-gif/Primal-live/internal/repository"
)

// fakeStreamRepo is an in-memory StreamRepository.
type fakeStreamRepo struct {
	mu      sync.Mutex
	streams map[string]*domain.Stream
	gets    int
}

func newFakeStreamRepo(streams ...*domain.Stream) *fakeStreamRepo {
	r := &fakeStreamRepo{streams: make(map[string]*domain.Stream)}
	for _, s := range streams {
		cp := *s
		r.streams[s.ID] = &cp
	}
	return r
}

func (r *fakeStreamRepo) Create(ctx context.Context, stream *domain.Stream) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stream.ID == "" {
		stream.ID = uuid.New().String()
	}
	stream.CreatedAt = time.Now()
	cp := *stream
	r.streams[stream.ID] = &cp
	return nil
}

func (r *fakeStreamRepo) GetByID(ctx context.Context, id string) (*domain.Stream, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	s, ok := r.streams[id]
	if !ok {
		return nil, repository.ErrStreamNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeStreamRepo) ListLive(ctx context.Context) ([]domain.Stream, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Stream
	for _, s := range r.streams {
		if s.IsLive {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeStreamRepo) ListAll(ctx context.Context, limit int) ([]domain.Stream, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Stream
	for _, s := range r.streams {
		out = append(out, *s)
	}
	return out, nil
}

func (r *fakeStreamRepo) SetLive(ctx context.Context, id string, startedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.streams[id]
	if !ok {
		return repository.ErrStreamNotFound
	}
	s.IsLive = true
	s.StartedAt = &startedAt
	s.EndedAt = nil
	s.ViewerCount = 0
	return nil
}

func (r *fakeStreamRepo) SetEnded(ctx context.Context, id string, endedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.streams[id]
	if !ok {
		return repository.ErrStreamNotFound
	}
	s.IsLive = false
	s.EndedAt = &endedAt
	s.ViewerCount = 0
	return nil
}

func (r *fakeStreamRepo) UpdateViewerCount(ctx context.Context, id string, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.streams[id]
	if !ok {
		return repository.ErrStreamNotFound
	}
	s.ViewerCount = count
	return nil
}

func (r *fakeStreamRepo) UpdateThumbnail(ctx context.Context, id, thumbnailPath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.streams[id]
	if !ok {
		return repository.ErrStreamNotFound
	}
	s.ThumbnailPath = thumbnailPath
	return nil
}

func (r *fakeStreamRepo) UpdateIngest(ctx context.Context, id, ingestType, muxLiveStreamID, muxPlaybackID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.streams[id]
	if !ok {
		return repository.ErrStreamNotFound
	}
	s.IngestType = ingestType
	s.MuxLiveStreamID = muxLiveStreamID
	s.MuxPlaybackID = muxPlaybackID
	return nil
}

func (r *fakeStreamRepo) getCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gets
}

func (r *fakeStreamRepo) stream(id string) *domain.Stream {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.streams[id]
	cp := *s
	return &cp
}

// fakeChatRepo is an in-memory ChatRepository.
type fakeChatRepo struct {
	mu       sync.Mutex
	messages []domain.ChatMessage
}

func (r *fakeChatRepo) Create(ctx context.Context, msg *domain.ChatMessage, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg.ID = uuid.New().String()
	msg.CreatedAt = time.Now()
	msg.Badge = domain.StaffBadge(role)
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *fakeChatRepo) ListByStream(ctx context.Context, streamID string, limit int) ([]domain.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ChatMessage
	for _, m := range r.messages {
		if m.StreamID == streamID && len(out) < limit {
			out = append(out, m)
		}
	}
	return out, nil
}

// fakeCache is an in-memory StreamCache that records deletes.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string]*cache.StreamCacheResult
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]*cache.StreamCacheResult)}
}

func (c *fakeCache) Get(ctx context.Context, key string) (*cache.StreamCacheResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	res, ok := c.entries[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return res, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, result *cache.StreamCacheResult, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = result
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
		c.deleted = append(c.deleted, key)
	}
	return nil
}

func (c *fakeCache) BuildKeyByID(streamID string) string { return "stream:id:" + streamID }
func (c *fakeCache) Close() error                        { return nil }

func (c *fakeCache) deletedKeys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.deleted))
	copy(out, c.deleted)
	return out
}

// fakePresence is a scripted PresenceStore.
type fakePresence struct {
	mu      sync.Mutex
	counts  map[string]int
	cleared []string
}

func newFakePresence() *fakePresence {
	return &fakePresence{counts: make(map[string]int)}
}

func (p *fakePresence) Heartbeat(room, sessionID, userID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counts[room]++
	return p.counts[room]
}

func (p *fakePresence) Count(room string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts[room]
}

func (p *fakePresence) Clear(room string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.counts, room)
	p.cleared = append(p.cleared, room)
}

func (p *fakePresence) clearedRooms() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.cleared))
	copy(out, p.cleared)
	return out
}

// testConn implements hub.Conn for broadcast assertions.
type testConn struct {
	mu       sync.Mutex
	received [][]byte
}

func (c *testConn) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.received = append(c.received, data)
	return nil
}

func (c *testConn) Close() error { return nil }

func (c *testConn) getReceived() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.received))
	copy(out, c.received)
	return out
}
