package domain

import (
	"time"

	"gorm.io/gorm"
)

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID           string         `gorm:"type:varchar(36);primaryKey"`
	Email        string         `gorm:"type:varchar(255);uniqueIndex;not null"`
	Username     string         `gorm:"type:varchar(50);uniqueIndex;not null"`
	PasswordHash string         `gorm:"type:varchar(255);not null"`
	Role         string         `gorm:"type:varchar(20);not null;default:'VIEWER'"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (UserModel) TableName() string { return "users" }

// ToDomain converts UserModel to domain User.
func (m *UserModel) ToDomain() *User {
	return &User{
		ID:           m.ID,
		Email:        m.Email,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		Role:         m.Role,
		CreatedAt:    m.CreatedAt,
	}
}

// UserToModel converts domain User to UserModel.
func UserToModel(u *User) *UserModel {
	return &UserModel{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		CreatedAt:    u.CreatedAt,
	}
}

// StreamModel is the GORM model for the streams table.
type StreamModel struct {
	ID              string     `gorm:"type:varchar(36);primaryKey"`
	CreatorID       string     `gorm:"type:varchar(36);index;not null"`
	CreatorUsername string     `gorm:"type:varchar(50);not null"`
	Title           string     `gorm:"type:varchar(200);not null"`
	IngestType      string     `gorm:"type:varchar(20);not null;default:'WEBRTC'"`
	IsLive          bool       `gorm:"index;not null;default:false"`
	ViewerCount     int        `gorm:"not null;default:0"`
	ThumbnailPath   string     `gorm:"type:varchar(255)"`
	StartedAt       *time.Time
	EndedAt         *time.Time
	MuxLiveStreamID string     `gorm:"type:varchar(100)"`
	MuxPlaybackID   string     `gorm:"type:varchar(100)"`
	CreatedAt       time.Time  `gorm:"autoCreateTime"`
}

func (StreamModel) TableName() string { return "streams" }

// ToDomain converts StreamModel to domain Stream.
func (m *StreamModel) ToDomain() *Stream {
	return &Stream{
		ID:              m.ID,
		CreatorID:       m.CreatorID,
		CreatorUsername: m.CreatorUsername,
		Title:           m.Title,
		IngestType:      m.IngestType,
		IsLive:          m.IsLive,
		ViewerCount:     m.ViewerCount,
		ThumbnailPath:   m.ThumbnailPath,
		StartedAt:       m.StartedAt,
		EndedAt:         m.EndedAt,
		MuxLiveStreamID: m.MuxLiveStreamID,
		MuxPlaybackID:   m.MuxPlaybackID,
		CreatedAt:       m.CreatedAt,
	}
}

// StreamToModel converts domain Stream to StreamModel.
func StreamToModel(s *Stream) *StreamModel {
	return &StreamModel{
		ID:              s.ID,
		CreatorID:       s.CreatorID,
		CreatorUsername: s.CreatorUsername,
		Title:           s.Title,
		IngestType:      s.IngestType,
		IsLive:          s.IsLive,
		ViewerCount:     s.ViewerCount,
		ThumbnailPath:   s.ThumbnailPath,
		StartedAt:       s.StartedAt,
		EndedAt:         s.EndedAt,
		MuxLiveStreamID: s.MuxLiveStreamID,
		MuxPlaybackID:   s.MuxPlaybackID,
		CreatedAt:       s.CreatedAt,
	}
}

// ChatMessageModel is the GORM model for the chat_messages table. The
// sender's role is not stored; history reads join the users table so the
// badge always reflects the sender's current role.
type ChatMessageModel struct {
	ID               string    `gorm:"type:varchar(36);primaryKey"`
	StreamID         string    `gorm:"type:varchar(36);index;not null"`
	UserID           string    `gorm:"type:varchar(36);not null"`
	UsernameSnapshot string    `gorm:"type:varchar(50);not null"`
	Message          string    `gorm:"type:varchar(240);not null"`
	CreatedAt        time.Time `gorm:"autoCreateTime;index"`
}

func (ChatMessageModel) TableName() string { return "chat_messages" }

// VodModel is the GORM model for the vods table.
type VodModel struct {
	ID              string    `gorm:"type:varchar(36);primaryKey"`
	StreamID        string    `gorm:"type:varchar(36);index"`
	CreatorID       string    `gorm:"type:varchar(36);index;not null"`
	CreatorUsername string    `gorm:"type:varchar(50);not null"`
	Title           string    `gorm:"type:varchar(200);not null"`
	FilePath        string    `gorm:"type:varchar(255);not null"`
	CreatedAt       time.Time `gorm:"autoCreateTime;index"`
}

func (VodModel) TableName() string { return "vods" }

// ToDomain converts VodModel to domain Vod.
func (m *VodModel) ToDomain() *Vod {
	return &Vod{
		ID:              m.ID,
		StreamID:        m.StreamID,
		CreatorID:       m.CreatorID,
		CreatorUsername: m.CreatorUsername,
		Title:           m.Title,
		FilePath:        m.FilePath,
		CreatedAt:       m.CreatedAt,
	}
}
