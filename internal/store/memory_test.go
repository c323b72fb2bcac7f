package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock lets tests walk time forward deterministically.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore() (*MemoryStore, *fakeClock) {
	clock := newFakeClock()
	s := NewMemoryStore()
	s.now = clock.Now
	return s, clock
}

func TestMemoryStore_Heartbeat(t *testing.T) {
	t.Run("first heartbeat counts one", func(t *testing.T) {
		s, _ := newTestStore()

		assert.Equal(t, 1, s.Heartbeat("room1", "sess-a", ""))
	})

	t.Run("repeat heartbeat does not duplicate", func(t *testing.T) {
		s, clock := newTestStore()

		s.Heartbeat("room1", "sess-a", "")
		clock.Advance(10 * time.Second)

		assert.Equal(t, 1, s.Heartbeat("room1", "sess-a", ""))
	})

	t.Run("distinct sessions accumulate", func(t *testing.T) {
		s, _ := newTestStore()

		s.Heartbeat("room1", "sess-a", "")
		s.Heartbeat("room1", "sess-b", "user-1")
		assert.Equal(t, 3, s.Heartbeat("room1", "sess-c", ""))
	})

	t.Run("rooms are independent", func(t *testing.T) {
		s, _ := newTestStore()

		s.Heartbeat("room1", "sess-a", "")
		assert.Equal(t, 1, s.Heartbeat("room2", "sess-a", ""))
		assert.Equal(t, 1, s.Count("room1"))
	})
}

func TestMemoryStore_FreshnessWindow(t *testing.T) {
	t.Run("session inside window stays counted", func(t *testing.T) {
		s, clock := newTestStore()

		s.Heartbeat("room1", "stale", "")
		clock.Advance(FreshnessWindow - time.Second)

		assert.Equal(t, 2, s.Heartbeat("room1", "fresh", ""))
	})

	t.Run("session beyond window is evicted on heartbeat", func(t *testing.T) {
		s, clock := newTestStore()

		s.Heartbeat("room1", "stale", "")
		clock.Advance(FreshnessWindow + time.Second)

		assert.Equal(t, 1, s.Heartbeat("room1", "fresh", ""))
	})

	t.Run("session exactly at window boundary stays counted", func(t *testing.T) {
		s, clock := newTestStore()

		s.Heartbeat("room1", "edge", "")
		clock.Advance(FreshnessWindow)

		// lastSeen == cutoff is not before it.
		assert.Equal(t, 2, s.Heartbeat("room1", "fresh", ""))
	})

	t.Run("heartbeat revives a fading session", func(t *testing.T) {
		s, clock := newTestStore()

		s.Heartbeat("room1", "sess-a", "")
		clock.Advance(FreshnessWindow - time.Second)
		s.Heartbeat("room1", "sess-a", "")
		clock.Advance(FreshnessWindow - time.Second)

		assert.Equal(t, 1, s.Count("room1"))
	})
}

func TestMemoryStore_Count(t *testing.T) {
	t.Run("empty room counts zero", func(t *testing.T) {
		s, _ := newTestStore()

		assert.Equal(t, 0, s.Count("missing"))
	})

	t.Run("count filters stale without evicting", func(t *testing.T) {
		s, clock := newTestStore()

		s.Heartbeat("room1", "sess-a", "")
		clock.Advance(FreshnessWindow + time.Second)

		assert.Equal(t, 0, s.Count("room1"))
		// The record is still there until a heartbeat sweeps it.
		s.mu.Lock()
		assert.Len(t, s.rooms["room1"], 1)
		s.mu.Unlock()
	})
}

func TestMemoryStore_Clear(t *testing.T) {
	s, _ := newTestStore()

	s.Heartbeat("room1", "sess-a", "")
	s.Heartbeat("room1", "sess-b", "")
	s.Heartbeat("room2", "sess-c", "")

	s.Clear("room1")

	assert.Equal(t, 0, s.Count("room1"))
	assert.Equal(t, 1, s.Count("room2"))

	// Cleared room starts over.
	assert.Equal(t, 1, s.Heartbeat("room1", "sess-a", ""))
}

func TestMemoryStore_ConcurrentHeartbeats(t *testing.T) {
	s, _ := newTestStore()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		sessionID := fmt.Sprintf("sess-%d", i)
		for j := 0; j < 5; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.Heartbeat("room1", sessionID, "")
			}()
		}
	}
	wg.Wait()

	assert.Equal(t, 20, s.Count("room1"))
}
