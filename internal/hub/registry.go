package hub

import (
	"sync"

	"github.com/google/uuid"

	pkglog "github.com/landonharris622-gif/Primal-live/pkg/log"
)

type peerMeta struct {
	room   string
	peerID string
}

// Registry tracks which connections are in which room and the peer id
// assigned to each connection. A connection belongs to at most one room;
// a repeated join moves it and overwrites its peer id (last write wins).
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[Conn]struct{}
	meta  map[Conn]peerMeta
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]map[Conn]struct{}),
		meta:  make(map[Conn]peerMeta),
	}
}

// Join registers conn in room under requestedPeerID, generating a fresh id
// when none is supplied, and returns the assigned peer id.
func (r *Registry) Join(conn Conn, room, requestedPeerID string) string {
	peerID := requestedPeerID
	if peerID == "" {
		peerID = uuid.New().String()
	}

	r.mu.Lock()
	if prev, ok := r.meta[conn]; ok && prev.room != room {
		if members, ok := r.rooms[prev.room]; ok {
			delete(members, conn)
			if len(members) == 0 {
				delete(r.rooms, prev.room)
			}
		}
	}

	members, ok := r.rooms[room]
	if !ok {
		members = make(map[Conn]struct{})
		r.rooms[room] = members
	}
	members[conn] = struct{}{}
	r.meta[conn] = peerMeta{room: room, peerID: peerID}
	count := len(members)
	r.mu.Unlock()

	logger := pkglog.L()
	logger.Debug().
		Str(pkglog.FieldRoomID, room).
		Str(pkglog.FieldPeerID, peerID).
		Int("members", count).
		Msg("peer joined room")

	return peerID
}

// Leave removes conn from whatever room it belongs to and returns the
// room and peer id it held. Safe to call for never-joined connections.
func (r *Registry) Leave(conn Conn) (room, peerID string, ok bool) {
	r.mu.Lock()
	meta, joined := r.meta[conn]
	if !joined {
		r.mu.Unlock()
		return "", "", false
	}

	delete(r.meta, conn)
	if members, exists := r.rooms[meta.room]; exists {
		delete(members, conn)
		if len(members) == 0 {
			delete(r.rooms, meta.room)
		}
	}
	r.mu.Unlock()

	logger := pkglog.L()
	logger.Debug().
		Str(pkglog.FieldRoomID, meta.room).
		Str(pkglog.FieldPeerID, meta.peerID).
		Msg("peer left room")

	return meta.room, meta.peerID, true
}

// ConnectionsIn returns a membership snapshot for room. Joins and leaves
// after the snapshot is taken do not affect an in-flight fan-out.
func (r *Registry) ConnectionsIn(room string) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members, ok := r.rooms[room]
	if !ok {
		return nil
	}

	conns := make([]Conn, 0, len(members))
	for conn := range members {
		conns = append(conns, conn)
	}
	return conns
}

// PeerID returns the peer id recorded for conn.
func (r *Registry) PeerID(conn Conn) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	meta, ok := r.meta[conn]
	if !ok {
		return "", false
	}
	return meta.peerID, true
}

// Stats returns the current number of rooms and joined connections.
func (r *Registry) Stats() (rooms, conns int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms), len(r.meta)
}
