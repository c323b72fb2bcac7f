package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/landonharris622-gif/Primal-live/pkg/log"
)

const (
	defaultMuxAPIBase = "https://api.mux.com"
	muxRTMPUrl        = "rtmps://global-live.mux.com:443/app"
)

// MuxConfig holds Mux API credentials.
type MuxConfig struct {
	TokenID     string
	TokenSecret string
	APIBase     string
}

// MuxProvisioner provisions live streams through the Mux Video API.
type MuxProvisioner struct {
	cfg    MuxConfig
	client *http.Client
}

// NewMuxProvisioner creates a Mux-backed provisioner.
func NewMuxProvisioner(cfg MuxConfig) *MuxProvisioner {
	if cfg.APIBase == "" {
		cfg.APIBase = defaultMuxAPIBase
	}
	return &MuxProvisioner{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Configured reports whether API credentials are present.
func (p *MuxProvisioner) Configured() bool {
	return p.cfg.TokenID != "" && p.cfg.TokenSecret != ""
}

type muxCreateRequest struct {
	PlaybackPolicy   []string            `json:"playback_policy"`
	NewAssetSettings muxNewAssetSettings `json:"new_asset_settings"`
	Passthrough      string              `json:"passthrough,omitempty"`
	LatencyMode      string              `json:"latency_mode"`
}

type muxNewAssetSettings struct {
	PlaybackPolicy []string `json:"playback_policy"`
}

type muxCreateResponse struct {
	Data struct {
		ID          string `json:"id"`
		StreamKey   string `json:"stream_key"`
		PlaybackIDs []struct {
			ID string `json:"id"`
		} `json:"playback_ids"`
	} `json:"data"`
}

// CreateLiveStream provisions a new Mux live stream.
func (p *MuxProvisioner) CreateLiveStream(ctx context.Context, passthrough string) (*LiveStream, error) {
	l := log.Ctx(ctx)

	if !p.Configured() {
		return nil, fmt.Errorf("mux credentials not configured")
	}

	body, err := json.Marshal(muxCreateRequest{
		PlaybackPolicy: []string{"public"},
		NewAssetSettings: muxNewAssetSettings{
			PlaybackPolicy: []string{"public"},
		},
		Passthrough: passthrough,
		LatencyMode: "low",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal mux request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.APIBase+"/video/v1/live-streams", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build mux request: %w", err)
	}
	req.SetBasicAuth(p.cfg.TokenID, p.cfg.TokenSecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		l.Error().Err(err).Msg("mux live stream request failed")
		return nil, fmt.Errorf("mux request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		l.Error().Int("status", resp.StatusCode).Str("body", string(detail)).Msg("mux live stream creation rejected")
		return nil, fmt.Errorf("mux returned status %d", resp.StatusCode)
	}

	var parsed muxCreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode mux response: %w", err)
	}
	if parsed.Data.ID == "" || parsed.Data.StreamKey == "" {
		return nil, fmt.Errorf("mux response missing live stream credentials")
	}

	ls := &LiveStream{
		ID:        parsed.Data.ID,
		StreamKey: parsed.Data.StreamKey,
		RTMPUrl:   muxRTMPUrl,
	}
	if len(parsed.Data.PlaybackIDs) > 0 {
		ls.PlaybackID = parsed.Data.PlaybackIDs[0].ID
	}

	l.Info().Str("mux_live_stream_id", ls.ID).Msg("mux live stream provisioned")
	return ls, nil
}
