package domain

import (
	"time"

	"gorm.io/gorm"
)

// StreamModel is the GORM model for the streams table.
type StreamModel struct {
	ID              string `gorm:"type:varchar(36);primaryKey"`
	StoreID         string `gorm:"type:varchar(36);index;not null"`
	Title           string `gorm:"type:varchar(200);not null"`
	Status          string `gorm:"type:varchar(20);index;not null;default:'scheduled'"`
	RoomID          string `gorm:"type:varchar(36);not null"`
	BroadcasterID   string `gorm:"type:varchar(36);index;not null"`
	BroadcasterName string `gorm:"type:varchar(50)"`
	StartTime       *time.Time
	ViewerCount     int    `gorm:"default:0"`
	PlaybackURL     string `gorm:"type:varchar(500)"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	EndedAt         *time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the table name for StreamModel.
func (StreamModel) TableName() string {
	return "streams"
}

// ToDomain converts StreamModel to domain Stream.
func (m *StreamModel) ToDomain() *Stream {
	return &Stream{
		ID:              m.ID,
		StoreID:         m.StoreID,
		Title:           m.Title,
		Status:          StreamStatus(m.Status),
		RoomID:          m.RoomID,
		BroadcasterID:   m.BroadcasterID,
		BroadcasterName: m.BroadcasterName,
		StartTime:       m.StartTime,
		ViewerCount:     m.ViewerCount,
		PlaybackURL:     m.PlaybackURL,
		CreatedAt:       m.CreatedAt,
		EndedAt:         m.EndedAt,
	}
}

// StreamToModel converts domain Stream to StreamModel.
func StreamToModel(s *Stream) *StreamModel {
	return &StreamModel{
		ID:              s.ID,
		StoreID:         s.StoreID,
		Title:           s.Title,
		Status:          string(s.Status),
		RoomID:          s.RoomID,
		BroadcasterID:   s.BroadcasterID,
		BroadcasterName: s.BroadcasterName,
		StartTime:       s.StartTime,
		ViewerCount:     s.ViewerCount,
		PlaybackURL:     s.PlaybackURL,
		CreatedAt:       s.CreatedAt,
		EndedAt:         s.EndedAt,
	}
}
