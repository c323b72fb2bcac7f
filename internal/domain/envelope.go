package domain

import "encoding/json"

// Relay message types synthesized by the server. Client-originated types
// (chat, WebRTC offer/answer/candidate exchange, anything else) are open
// strings the relay passes through without interpreting.
const (
	MsgTypeJoin        = "join"
	MsgTypeJoined      = "joined"
	MsgTypePeerJoined  = "peer-joined"
	MsgTypePeerLeft    = "peer-left"
	MsgTypeStreamEnded = "stream-ended"
	MsgTypeChat        = "chat"
)

// Envelope is the routing header of a relay message. Only the fields the
// router needs are decoded; the full raw payload is forwarded verbatim.
type Envelope struct {
	Room   string `json:"room"`
	Type   string `json:"type"`
	To     string `json:"to,omitempty"`
	From   string `json:"from,omitempty"`
	PeerID string `json:"peerId,omitempty"`
}

// ParseEnvelope decodes the routing header from a raw message.
// A nil envelope means the message should be dropped.
func ParseEnvelope(raw []byte) *Envelope {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil
	}
	if env.Room == "" || env.Type == "" {
		return nil
	}
	return &env
}

// JoinedEvent is unicast to a connection after a successful join.
type JoinedEvent struct {
	Type   string `json:"type"`
	Room   string `json:"room"`
	PeerID string `json:"peerId"`
}

// PeerEvent is broadcast to a room when a peer joins or leaves.
type PeerEvent struct {
	Type   string `json:"type"`
	Room   string `json:"room"`
	PeerID string `json:"peerId"`
}

// StreamEndedEvent is broadcast to a room when its stream ends.
type StreamEndedEvent struct {
	Type     string `json:"type"`
	StreamID string `json:"streamId"`
}

// ChatEvent is broadcast to a room when a chat message is persisted.
type ChatEvent struct {
	Type      string `json:"type"`
	StreamID  string `json:"streamId"`
	ID        string `json:"id"`
	Username  string `json:"username"`
	Badge     string `json:"badge"`
	Message   string `json:"message"`
	CreatedAt int64  `json:"createdAt"`
}

// NewJoinedEvent creates the unicast join confirmation.
func NewJoinedEvent(room, peerID string) *JoinedEvent {
	return &JoinedEvent{Type: MsgTypeJoined, Room: room, PeerID: peerID}
}

// NewPeerJoinedEvent creates the broadcast announcing a new peer.
func NewPeerJoinedEvent(room, peerID string) *PeerEvent {
	return &PeerEvent{Type: MsgTypePeerJoined, Room: room, PeerID: peerID}
}

// NewPeerLeftEvent creates the broadcast announcing a departed peer.
func NewPeerLeftEvent(room, peerID string) *PeerEvent {
	return &PeerEvent{Type: MsgTypePeerLeft, Room: room, PeerID: peerID}
}

// NewStreamEndedEvent creates the broadcast announcing the end of a stream.
func NewStreamEndedEvent(streamID string) *StreamEndedEvent {
	return &StreamEndedEvent{Type: MsgTypeStreamEnded, StreamID: streamID}
}
