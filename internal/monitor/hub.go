// Package monitor broadcasts MAC terminal telemetry — frames sent, ACKed,
// retried, and the channel's collision signal — to connected websocket
// clients, an operator console rather than anything the link itself depends
// on.
package monitor

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is one telemetry event sent to every connected client.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// FramePayload reports one frame-level event against a sequence number.
type FramePayload struct {
	Sequence    uint32 `json:"sequence"`
	Destination string `json:"destination"`
	Event       string `json:"event"` // "sent", "acked", "retried", "timeout"
}

// CollisionPayload reports the channel's current collision signal.
type CollisionPayload struct {
	Colliding bool `json:"colliding"`
}

// Hub fans telemetry events out to every connected websocket client.
type Hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]bool
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]bool)}
}

// ServeWS upgrades an HTTP request to a websocket connection and registers
// it as a broadcast client until it disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("websocket upgrade failed", "err", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
	log.Info("monitor client connected", "total", h.clientCount())

	go h.drain(conn)
}

// drain discards anything a client sends (none is expected) until it
// disconnects, so a dead peer is detected and removed promptly.
func (h *Hub) drain(conn *websocket.Conn) {
	defer h.remove(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	conn.Close()
	log.Info("monitor client disconnected", "total", h.clientCount())
}

func (h *Hub) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends msg to every connected client, dropping any client whose
// write fails.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error("monitor marshal failed", "err", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			go h.remove(conn)
		}
	}
}

// BroadcastFrame reports a frame-level ARQ event.
func (h *Hub) BroadcastFrame(sequence uint32, destination string, event string) {
	h.Broadcast(Message{Type: "frame", Payload: FramePayload{Sequence: sequence, Destination: destination, Event: event}})
}

// BroadcastCollision reports the channel's current collision signal.
func (h *Hub) BroadcastCollision(colliding bool) {
	h.Broadcast(Message{Type: "collision", Payload: CollisionPayload{Colliding: colliding}})
}
