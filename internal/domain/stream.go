package domain

import "time"

// Ingest types.
const (
	IngestWebRTC = "WEBRTC"
	IngestRTMP   = "RTMP"
)

// Stream represents a live stream. Its ID doubles as the relay room
// identifier and the presence room key.
type Stream struct {
	ID              string     `json:"id"`
	CreatorID       string     `json:"creator_id"`
	CreatorUsername string     `json:"creator_username,omitempty"`
	Title           string     `json:"title"`
	IngestType      string     `json:"ingest_type"`
	IsLive          bool       `json:"is_live"`
	ViewerCount     int        `json:"viewer_count"`
	ThumbnailPath   string     `json:"thumbnail_path,omitempty"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	MuxLiveStreamID string     `json:"-"`
	MuxPlaybackID   string     `json:"mux_playback_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// CreateStreamRequest represents a create stream request.
type CreateStreamRequest struct {
	Title string `json:"title"`
}

// HeartbeatRequest carries the anonymous viewing session id.
type HeartbeatRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

// HeartbeatResponse returns the recomputed viewer count.
type HeartbeatResponse struct {
	ViewerCount int `json:"viewerCount"`
}

// ProvisionIngestRequest asks for RTMP ingest credentials for a stream.
type ProvisionIngestRequest struct {
	StreamID string `json:"streamId" binding:"required"`
}

// ProvisionIngestResponse carries the RTMP credentials handed to OBS users.
type ProvisionIngestResponse struct {
	RTMPUrl    string `json:"rtmpUrl"`
	StreamKey  string `json:"streamKey"`
	PlaybackID string `json:"playbackId"`
}
