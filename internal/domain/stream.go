package domain

import (
	"time"
)

// StreamStatus represents the lifecycle state of a stream.
type StreamStatus string

const (
	StreamStatusScheduled StreamStatus = "scheduled"
	StreamStatusLive      StreamStatus = "live"
	StreamStatusEnded     StreamStatus = "ended"
)

// Stream represents a live shopping stream.
// ViewerCount is a denormalized snapshot: refreshed from room state while
// live, frozen at its last value once the stream has ended.
type Stream struct {
	ID              string       `json:"id"`
	StoreID         string       `json:"store_id"`
	Title           string       `json:"title"`
	Status          StreamStatus `json:"status"`
	RoomID          string       `json:"room_id"`
	BroadcasterID   string       `json:"broadcaster_id"`
	BroadcasterName string       `json:"broadcaster_name"`
	StartTime       *time.Time   `json:"start_time,omitempty"`
	ViewerCount     int          `json:"viewer_count"`
	PlaybackURL     string       `json:"playback_url,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	EndedAt         *time.Time   `json:"ended_at,omitempty"`
}

// CreateStreamRequest represents a create stream request.
type CreateStreamRequest struct {
	Title   string `json:"title" binding:"required,min=1,max=200"`
	StoreID string `json:"store_id" binding:"required"`
}

// ListStreamsRequest represents a list streams request.
type ListStreamsRequest struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Status   string `form:"status"`
	StoreID  string `form:"store_id"`
}

// StreamResponse represents a stream in API responses.
type StreamResponse struct {
	ID              string       `json:"id"`
	StoreID         string       `json:"store_id"`
	Title           string       `json:"title"`
	Status          StreamStatus `json:"status"`
	RoomID          string       `json:"room_id"`
	BroadcasterID   string       `json:"broadcaster_id"`
	BroadcasterName string       `json:"broadcaster_name"`
	StartTime       *time.Time   `json:"start_time,omitempty"`
	ViewerCount     int          `json:"viewer_count"`
	PlaybackURL     string       `json:"playback_url,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	EndedAt         *time.Time   `json:"ended_at,omitempty"`
}

// ListStreamsResponse represents a paginated list response.
type ListStreamsResponse struct {
	Streams    []StreamResponse `json:"streams"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

// ToResponse converts Stream to StreamResponse.
func (s *Stream) ToResponse() StreamResponse {
	return StreamResponse{
		ID:              s.ID,
		StoreID:         s.StoreID,
		Title:           s.Title,
		Status:          s.Status,
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
