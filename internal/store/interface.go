package store

import "time"

// FreshnessWindow is how long a presence record stays live after its
// last heartbeat.
const FreshnessWindow = 75 * time.Second

// PresenceStore tracks per-room anonymous viewing sessions and derives
// live viewer counts from a freshness window.
type PresenceStore interface {
	// Heartbeat records activity for (room, sessionID), evicts stale
	// records for the room, and returns the resulting live count.
	Heartbeat(room, sessionID, userID string) int

	// Count returns the number of live records for room without
	// mutating anything.
	Count(room string) int

	// Clear removes every record for room.
	Clear(room string)
}
