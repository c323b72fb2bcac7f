package domain

import "time"

// Vod represents an uploaded recording.
type Vod struct {
	ID              string    `json:"id"`
	StreamID        string    `json:"stream_id,omitempty"`
	CreatorID       string    `json:"creator_id"`
	CreatorUsername string    `json:"creator_username,omitempty"`
	Title           string    `json:"title"`
	FilePath        string    `json:"file_path"`
	CreatedAt       time.Time `json:"created_at"`
}

// UploadVodResponse is returned after a successful VOD upload.
type UploadVodResponse struct {
	VodID string `json:"vodId"`
	URL   string `json:"url"`
}
