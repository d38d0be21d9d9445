package tui

import (
	"encoding/json"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/websocket"

	"typerace/internal/transport/ws"
)

// Sender delivers client messages to the race server
type Sender interface {
	Send(msgType ws.MessageType, payload interface{}) error
}

// Envelope is a server message with its payload left undecoded
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// serverMsg carries one decoded server message into the model
type serverMsg Envelope

// errMsg reports a connection failure
type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

// Conn is a websocket connection to the race server
type Conn struct {
	conn *websocket.Conn
	mu   sync.Mutex // serializes writes
}

// Dial connects to the race server websocket endpoint
func Dial(addr string) (*Conn, error) {
	conn, _, err := websocket.DefaultDialer.Dial(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &Conn{conn: conn}, nil
}

// Send writes one client message
func (c *Conn) Send(msgType ws.MessageType, payload interface{}) error {
	msg := struct {
		Type    ws.MessageType `json:"type"`
		Payload interface{}    `json:"payload,omitempty"`
	}{Type: msgType, Payload: payload}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

// Next returns a command that waits for the next server message
func (c *Conn) Next() tea.Cmd {
	return func() tea.Msg {
		var env Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			return errMsg{err}
		}
		return serverMsg(env)
	}
}

// Close closes the connection
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}
