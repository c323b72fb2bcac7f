package store

import (
	"sync"
	"time"
)

type record struct {
	userID   string
	lastSeen time.Time
}

// MemoryStore is the in-process presence store. Eviction is coupled to
// heartbeat cadence: each heartbeat for a room sweeps that room's stale
// records before counting, so the returned count never includes a
// session silent for longer than the freshness window.
type MemoryStore struct {
	mu     sync.Mutex
	rooms  map[string]map[string]*record
	window time.Duration
	now    func() time.Time
}

// NewMemoryStore creates a presence store with the standard window.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms:  make(map[string]map[string]*record),
		window: FreshnessWindow,
		now:    time.Now,
	}
}

// Heartbeat upserts (room, sessionID), evicts stale records for room,
// and returns the live count. Atomic: concurrent heartbeats for the
// same pair never create duplicate records.
func (s *MemoryStore) Heartbeat(room, sessionID, userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	sessions, ok := s.rooms[room]
	if !ok {
		sessions = make(map[string]*record)
		s.rooms[room] = sessions
	}

	if rec, exists := sessions[sessionID]; exists {
		rec.lastSeen = now
		if userID != "" {
			rec.userID = userID
		}
	} else {
		sessions[sessionID] = &record{userID: userID, lastSeen: now}
	}

	cutoff := now.Add(-s.window)
	for id, rec := range sessions {
		if rec.lastSeen.Before(cutoff) {
			delete(sessions, id)
		}
	}

	return len(sessions)
}

// Count returns the live record count for room. Stale records are
// filtered against the window rather than evicted, so the count never
// over-reports between heartbeats.
func (s *MemoryStore) Count(room string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, ok := s.rooms[room]
	if !ok {
		return 0
	}

	cutoff := s.now().Add(-s.window)
	n := 0
	for _, rec := range sessions {
		if !rec.lastSeen.Before(cutoff) {
			n++
		}
	}
	return n
}

// Clear removes every record for room.
func (s *MemoryStore) Clear(room string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, room)
}
