package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans change events out to every subscribed connection
type Hub struct {
	conns map[*Connection]struct{}

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan []byte
	done       chan struct{}
	closeOnce  sync.Once
	stopped    chan struct{}

	logger *zap.Logger
}

// Connection is one subscriber
type Connection struct {
	Send chan []byte
}

func NewConnection() *Connection {
	return &Connection{Send: make(chan []byte, 256)}
}

// NewHub creates a hub and starts its loop; call Close to stop it
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		conns:      make(map[*Connection]struct{}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
		logger:     logger.Named("ws_hub"),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	defer close(h.stopped)
	for {
		select {
		case conn := <-h.register:
			h.conns[conn] = struct{}{}
			h.logger.Debug("subscriber connected", zap.Int("subscribers", len(h.conns)))

		case conn := <-h.unregister:
			if _, ok := h.conns[conn]; ok {
				delete(h.conns, conn)
				close(conn.Send)
				h.logger.Debug("subscriber disconnected", zap.Int("subscribers", len(h.conns)))
			}

		case data := <-h.broadcast:
			for conn := range h.conns {
				select {
				case conn.Send <- data:
				default:
					// slow subscriber, drop the message
				}
			}

		case <-h.done:
			for conn := range h.conns {
				delete(h.conns, conn)
				close(conn.Send)
			}
			return
		}
	}
}

// Register adds a connection; it is a no-op once the hub is closed
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
		close(conn.Send)
	}
}

// Unregister removes a connection and closes its send channel
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Broadcast sends a {type, payload} envelope to every subscriber (implements service.Broadcaster)
func (h *Hub) Broadcast(msgType string, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		h.logger.Warn("failed to encode payload", zap.String("type", msgType), zap.Error(err))
		return
	}
	data, err := json.Marshal(&Message{Type: msgType, Payload: raw})
	if err != nil {
		return
	}

	select {
	case h.broadcast <- data:
	case <-h.done:
	}
}

// Close stops the hub loop and disconnects every subscriber
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
	})
	<-h.stopped
}
