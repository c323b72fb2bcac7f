package ingest

import "context"

// LiveStream is a provisioned RTMP ingest endpoint.
type LiveStream struct {
	ID         string
	StreamKey  string
	PlaybackID string
	RTMPUrl    string
}

// Provisioner provisions RTMP ingest endpoints with an external
// video infrastructure provider.
type Provisioner interface {
	// CreateLiveStream provisions a new live stream and returns its
	// ingest credentials. passthrough is recorded on the provider side
	// to correlate the endpoint back to our stream id.
	CreateLiveStream(ctx context.Context, passthrough string) (*LiveStream, error)
}
