package ws

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"typerace/internal/app"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	// Size of the send channel buffer
	sendBufferSize = 256

	// Longest display name accepted at join
	maxNameLength = 32
)

// Client represents a WebSocket client connection
type Client struct {
	conn         *websocket.Conn
	hub          *app.Hub
	session      *app.RaceSession
	connectionID string
	send         chan []byte
	done         chan struct{}
	logger       *slog.Logger
	mu           sync.Mutex
	closed       bool
	joined       bool // only touched by the read pump
}

// NewClient creates a new WebSocket client
func NewClient(conn *websocket.Conn, hub *app.Hub, session *app.RaceSession, connectionID string, logger *slog.Logger) *Client {
	return &Client{
		conn:         conn,
		hub:          hub,
		session:      session,
		connectionID: connectionID,
		send:         make(chan []byte, sendBufferSize),
		done:         make(chan struct{}),
		logger:       logger.With("connectionID", connectionID),
	}
}

// GetConnectionID implements app.ClientConnection interface
func (c *Client) GetConnectionID() string {
	return c.connectionID
}

// Send implements app.ClientConnection interface
func (c *Client) Send(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	select {
	case c.send <- data:
		return nil
	default:
		// Buffer full, message dropped
		c.logger.Warn("send buffer full, message dropped")
		return nil
	}
}

// Close implements app.ClientConnection interface
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.done)
	return c.conn.Close()
}

// Run starts the client's read and write pumps
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// readPump pumps messages from the WebSocket connection.
// When it returns the connection is gone and the participant is removed.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c.connectionID)
		c.session.Leave(c.connectionID)
		c.Close()
		c.logger.Info("websocket disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket read error", "error", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection.
// Every message goes out in its own text frame.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes an incoming message from the client
func (c *Client) handleMessage(data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid message format")
		return
	}

	switch msg.Type {
	case MsgJoin:
		c.handleJoin(msg.Payload)
	case MsgStartRace:
		if c.requireJoined() {
			c.session.StartRace(c.connectionID)
		}
	case MsgUpdateProgress:
		c.handleUpdateProgress(msg.Payload)
	case MsgGetLeaderboard:
		c.session.RequestLeaderboard()
	case MsgRetryRace:
		if c.requireJoined() {
			c.session.Retry(c.connectionID)
		}
	case MsgPing:
		c.sendPong()
	default:
		c.sendError(ErrCodeInvalidMessage, "Unknown message type")
	}
}

// handleJoin handles a join message
func (c *Client) handleJoin(raw json.RawMessage) {
	var payload JoinPayload
	if err := decodePayload(raw, &payload); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid payload")
		return
	}

	name := strings.TrimSpace(payload.Name)
	if name == "" {
		c.sendError(ErrCodeInvalidMessage, "Name is required")
		return
	}
	if len([]rune(name)) > maxNameLength {
		name = string([]rune(name)[:maxNameLength])
	}

	c.joined = true
	c.session.Join(c.connectionID, name)
}

// handleUpdateProgress handles an updateProgress message
func (c *Client) handleUpdateProgress(raw json.RawMessage) {
	if !c.requireJoined() {
		return
	}

	var payload UpdateProgressPayload
	if err := decodePayload(raw, &payload); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid payload")
		return
	}

	c.session.UpdateProgress(c.connectionID, payload.Progress, payload.TypedText)
}

// requireJoined reports whether the connection has joined, telling the client if not
func (c *Client) requireJoined() bool {
	if c.joined {
		return true
	}
	c.sendError(ErrCodeNotJoined, "Join the race first")
	return false
}

// sendError sends an error message to the client
func (c *Client) sendError(code, message string) {
	payload := &ErrorPayload{
		Code:    code,
		Message: message,
	}

	msg := NewServerMessage(MsgError, payload)
	c.Send(msg)
}

// sendPong sends a pong message in response to ping
func (c *Client) sendPong() {
	msg := NewServerMessage(MsgPong, nil)
	c.Send(msg)
}

// decodePayload unmarshals a message payload, treating a missing payload as an error
func decodePayload(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return errMissingPayload
	}
	return json.Unmarshal(raw, v)
}
