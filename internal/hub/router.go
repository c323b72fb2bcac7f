package hub

import (
	"encoding/json"

	"github.com/landonharris622-gif/Primal-live/internal/domain"
	pkglog "github.com/landonharris622-gif/Primal-live/pkg/log"
)

// Router dispatches inbound relay envelopes: joins go through the
// registry, `to`-addressed envelopes are forwarded to matching peers,
// everything else is broadcast to the whole room. Payloads are relayed
// verbatim so WebRTC signaling passes through without inspection.
//
// Delivery is best effort: a recipient whose transport is unwritable is
// skipped and the fan-out continues. Within one room, envelopes reach
// each recipient in dispatch order; nothing is guaranteed across rooms.
type Router struct {
	registry *Registry
}

// NewRouter creates a Router over the given registry.
func NewRouter(registry *Registry) *Router {
	return &Router{registry: registry}
}

// Registry exposes the underlying room registry.
func (rt *Router) Registry() *Registry {
	return rt.registry
}

// Dispatch routes one raw inbound message from conn. Malformed messages
// and messages without room or type are dropped without an error reply.
func (rt *Router) Dispatch(conn Conn, raw []byte) {
	env := domain.ParseEnvelope(raw)
	if env == nil {
		logger := pkglog.L()
		logger.Debug().Msg("dropping malformed relay message")
		return
	}

	if env.Type == domain.MsgTypeJoin {
		peerID := rt.registry.Join(conn, env.Room, env.PeerID)
		rt.sendJSON(conn, domain.NewJoinedEvent(env.Room, peerID))
		// Broadcast over the post-join membership, joiner included.
		rt.broadcastJSON(env.Room, domain.NewPeerJoinedEvent(env.Room, peerID))
		return
	}

	if env.To != "" {
		rt.sendToPeer(env.Room, env.To, raw)
		return
	}

	rt.broadcastRaw(env.Room, raw)
}

// HandleDisconnect deregisters conn and announces its departure to the
// remaining room members. Called exactly once per connection.
func (rt *Router) HandleDisconnect(conn Conn) {
	room, peerID, ok := rt.registry.Leave(conn)
	if !ok {
		return
	}
	rt.broadcastJSON(room, domain.NewPeerLeftEvent(room, peerID))
}

// BroadcastSystem marshals obj and delivers it to every connection in
// room. Used by stream lifecycle and chat to inject server-originated
// events (stream-ended, chat).
func (rt *Router) BroadcastSystem(room string, obj interface{}) error {
	data, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	rt.broadcastRaw(room, data)
	return nil
}

func (rt *Router) broadcastJSON(room string, obj interface{}) {
	data, err := json.Marshal(obj)
	if err != nil {
		logger := pkglog.L()
		logger.Error().Err(err).Str(pkglog.FieldRoomID, room).Msg("marshal broadcast event")
		return
	}
	rt.broadcastRaw(room, data)
}

func (rt *Router) broadcastRaw(room string, data []byte) {
	for _, conn := range rt.registry.ConnectionsIn(room) {
		if err := conn.Send(data); err != nil {
			// Unwritable recipient, keep going.
			logger := pkglog.L()
			logger.Debug().Err(err).Str(pkglog.FieldRoomID, room).Msg("skipping recipient")
		}
	}
}

func (rt *Router) sendToPeer(room, peerID string, data []byte) {
	// Every connection registered under peerID receives the message;
	// duplicate peer ids after a reconnect resolve to all of them.
	for _, conn := range rt.registry.ConnectionsIn(room) {
		id, ok := rt.registry.PeerID(conn)
		if !ok || id != peerID {
			continue
		}
		if err := conn.Send(data); err != nil {
			logger := pkglog.L()
			logger.Debug().Err(err).Str(pkglog.FieldRoomID, room).Str(pkglog.FieldPeerID, peerID).Msg("skipping recipient")
		}
	}
}

func (rt *Router) sendJSON(conn Conn, obj interface{}) {
	data, err := json.Marshal(obj)
	if err != nil {
		logger := pkglog.L()
		logger.Error().Err(err).Msg("marshal unicast event")
		return
	}
	if err := conn.Send(data); err != nil {
		logger := pkglog.L()
		logger.Debug().Err(err).Msg("unicast send failed")
	}
}
