package domain

import (
	"encoding/json"
	"time"
)

// WebSocket message types from client.
const (
	MsgTypeJoin         = "join"
	MsgTypeLeave        = "leave"
	MsgTypeOffer        = "offer"
	MsgTypeAnswer       = "answer"
	MsgTypeICECandidate = "ice-candidate"
	MsgTypeComment      = "comment"
	MsgTypePing         = "ping"
)

// WebSocket message types to client.
const (
	MsgTypeViewerJoined       = "viewer-joined"
	MsgTypeViewerLeft         = "viewer-left"
	MsgTypeViewerCount        = "viewer-count-updated"
	MsgTypeStreamOffer        = "stream-offer"
	MsgTypeStreamAnswer       = "stream-answer"
	MsgTypeStreamICECandidate = "stream-ice-candidate"
	MsgTypeStreamStarted      = "stream-started"
	MsgTypeStreamEnded        = "stream-ended"
	MsgTypeNewComment         = "new-comment"
	MsgTypeError              = "error"
	MsgTypePong               = "pong"
)

// BaseMessage is the base structure for all WebSocket messages.
type BaseMessage struct {
	Type string `json:"type"`
}

// Client -> Server messages

// JoinMessage is sent by a client to join a stream's room.
type JoinMessage struct {
	Type     string `json:"type"`
	StreamID string `json:"streamId"`
}

// LeaveMessage is sent by a client to leave a stream's room.
type LeaveMessage struct {
	Type     string `json:"type"`
	StreamID string `json:"streamId"`
}

// OfferMessage carries an SDP offer from the broadcaster to one viewer.
// The payload is opaque to the server and forwarded byte-for-byte.
type OfferMessage struct {
	Type     string          `json:"type"`
	StreamID string          `json:"streamId"`
	ViewerID string          `json:"viewerId"`
	Payload  json.RawMessage `json:"payload"`
}

// AnswerMessage carries an SDP answer from a viewer to the broadcaster.
type AnswerMessage struct {
	Type          string          `json:"type"`
	StreamID      string          `json:"streamId"`
	BroadcasterID string          `json:"broadcasterId"`
	Payload       json.RawMessage `json:"payload"`
}

// ICECandidateMessage carries an ICE candidate in either direction.
type ICECandidateMessage struct {
	Type         string          `json:"type"`
	StreamID     string          `json:"streamId"`
	TargetUserID string          `json:"targetUserId"`
	Payload      json.RawMessage `json:"payload"`
}

// CommentMessage is a short text message addressed to a stream.
type CommentMessage struct {
	Type     string `json:"type"`
	StreamID string `json:"streamId"`
	Text     string `json:"text"`
}

// Server -> Client messages

// ViewerJoinedMessage notifies the broadcaster that a viewer joined.
type ViewerJoinedMessage struct {
	Type        string `json:"type"`
	StreamID    string `json:"streamId"`
	ViewerID    string `json:"viewerId"`
	ViewerCount int    `json:"viewerCount"`
}

// ViewerLeftMessage notifies the broadcaster that a viewer left.
type ViewerLeftMessage struct {
	Type        string `json:"type"`
	StreamID    string `json:"streamId"`
	ViewerID    string `json:"viewerId"`
	ViewerCount int    `json:"viewerCount"`
}

// ViewerCountMessage is broadcast to the room when the viewer count changes.
type ViewerCountMessage struct {
	Type        string `json:"type"`
	StreamID    string `json:"streamId"`
	ViewerCount int    `json:"viewerCount"`
}

// StreamOfferMessage forwards the broadcaster's SDP offer to a viewer.
type StreamOfferMessage struct {
	Type          string          `json:"type"`
	StreamID      string          `json:"streamId"`
	BroadcasterID string          `json:"broadcasterId"`
	Payload       json.RawMessage `json:"payload"`
}

// StreamAnswerMessage forwards a viewer's SDP answer to the broadcaster.
type StreamAnswerMessage struct {
	Type     string          `json:"type"`
	StreamID string          `json:"streamId"`
	ViewerID string          `json:"viewerId"`
	Payload  json.RawMessage `json:"payload"`
}

// StreamICECandidateMessage forwards an ICE candidate to its target.
type StreamICECandidateMessage struct {
	Type       string          `json:"type"`
	StreamID   string          `json:"streamId"`
	FromUserID string          `json:"fromUserId"`
	Payload    json.RawMessage `json:"payload"`
}

// StreamStartedMessage announces that a stream went live.
type StreamStartedMessage struct {
	Type     string `json:"type"`
	StreamID string `json:"streamId"`
}

// StreamEndedMessage announces that a stream ended.
type StreamEndedMessage struct {
	Type     string `json:"type"`
	StreamID string `json:"streamId"`
}

// NewCommentMessage fans a comment out to every room member.
type NewCommentMessage struct {
	Type      string    `json:"type"`
	StreamID  string    `json:"streamId"`
	Text      string    `json:"text"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	CreatedAt time.Time `json:"createdAt"`
}

// ErrorMessage is sent when an error occurs.
type ErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// NewErrorMessage creates a new error message.
func NewErrorMessage(code, message string) *ErrorMessage {
	return &ErrorMessage{
		Type:    MsgTypeError,
		Code:    code,
		Message: message,
	}
}
