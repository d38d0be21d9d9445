package app

import (
	"log/slog"
	"sync"

	"typerace/internal/domain"
)

// eventBufferSize bounds the number of undelivered events
const eventBufferSize = 256

// ClientConnection represents a connected client
type ClientConnection interface {
	Send(message interface{}) error
	GetConnectionID() string
	Close() error
}

// Broadcaster delivers race events to connected clients
type Broadcaster interface {
	Broadcast(event *domain.RaceEvent)
	Send(connectionID string, event *domain.RaceEvent)
}

// Hub tracks client connections and fans race events out to them in emission order
type Hub struct {
	clients map[string]ClientConnection // connectionID -> client
	mu      sync.RWMutex
	logger  *slog.Logger

	events chan *domain.RaceEvent
	done   chan struct{}
	once   sync.Once
}

// NewHub creates a new hub and starts its delivery loop
func NewHub(logger *slog.Logger) *Hub {
	hub := &Hub{
		clients: make(map[string]ClientConnection),
		logger:  logger,
		events:  make(chan *domain.RaceEvent, eventBufferSize),
		done:    make(chan struct{}),
	}

	go hub.eventLoop()

	return hub
}

// Register registers a client connection
func (h *Hub) Register(client ClientConnection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.GetConnectionID()] = client
}

// Unregister removes a client connection
func (h *Hub) Unregister(connectionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, connectionID)
}

// ClientCount returns the number of registered connections
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues an event for every connection
func (h *Hub) Broadcast(event *domain.RaceEvent) {
	event.ConnectionID = ""
	h.queueEvent(event)
}

// Send queues an event for a single connection
func (h *Hub) Send(connectionID string, event *domain.RaceEvent) {
	event.ConnectionID = connectionID
	h.queueEvent(event)
}

// queueEvent adds an event to the delivery queue
func (h *Hub) queueEvent(event *domain.RaceEvent) {
	select {
	case h.events <- event:
	case <-h.done:
	default:
		h.logger.Warn("event queue full, dropping event", "type", event.Type)
	}
}

// eventLoop delivers queued events
func (h *Hub) eventLoop() {
	for {
		select {
		case <-h.done:
			return
		case event := <-h.events:
			h.deliver(event)
		}
	}
}

// deliver sends an event to the appropriate clients
func (h *Hub) deliver(event *domain.RaceEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if event.ConnectionID != "" {
		if client, ok := h.clients[event.ConnectionID]; ok {
			if err := client.Send(event); err != nil {
				h.logger.Debug("failed to send to client", "connectionID", event.ConnectionID, "error", err)
			}
		}
		return
	}

	for connectionID, client := range h.clients {
		if err := client.Send(event); err != nil {
			h.logger.Debug("failed to send to client", "connectionID", connectionID, "error", err)
		}
	}
}

// Close stops delivery and closes every client connection
func (h *Hub) Close() {
	h.once.Do(func() {
		close(h.done)
	})

	h.mu.Lock()
	for _, client := range h.clients {
		client.Close()
	}
	h.clients = make(map[string]ClientConnection)
	h.mu.Unlock()
}
