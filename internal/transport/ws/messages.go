package ws

import (
	"encoding/json"
	"errors"
	"time"
)

// MessageType represents the type of WebSocket message
type MessageType string

// Client → Server message types
const (
	MsgJoin           MessageType = "join"
	MsgStartRace      MessageType = "startRace"
	MsgUpdateProgress MessageType = "updateProgress"
	MsgGetLeaderboard MessageType = "getLeaderboard"
	MsgRetryRace      MessageType = "retryRace"
	MsgPing           MessageType = "ping"
)

// Server → Client message types not produced by the race itself
const (
	MsgError MessageType = "error"
	MsgPong  MessageType = "pong"
)

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type      MessageType `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// NewServerMessage creates a new server message with current timestamp
func NewServerMessage(msgType MessageType, payload interface{}) *ServerMessage {
	return &ServerMessage{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Client message payloads

// JoinPayload is the payload for join message
type JoinPayload struct {
	Name string `json:"name"`
}

// UpdateProgressPayload is the payload for updateProgress message
type UpdateProgressPayload struct {
	Progress  int    `json:"progress"`
	TypedText string `json:"typedText"`
}

// Server message payloads

// ErrorPayload is the payload for error message
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var errMissingPayload = errors.New("missing payload")

// Error codes
const (
	ErrCodeInvalidMessage = "INVALID_MESSAGE"
	ErrCodeNotJoined      = "NOT_JOINED"
)
