package chat

import (
	"sync"

	"golang.org/x/net/websocket"
)

// Event is what the hub pushes to connected clients.
type Event struct {
	Type      string           `json:"type"` // "message", "reaction", "typing", "history", "error", "pong"
	ChannelID string           `json:"channel_id,omitempty"`
	Message   *Message         `json:"message,omitempty"`
	Messages  []Message        `json:"messages,omitempty"`
	Reactions []ReactionCount  `json:"reactions,omitempty"`
	MessageID string           `json:"message_id,omitempty"`
	Text      string           `json:"text,omitempty"`
}

type hubConn struct {
	conn *websocket.Conn
	done chan struct{}
}

// Hub tracks live websocket connections per channel and fans events out to
// them. A connection subscribes to one channel at a time.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]map[*hubConn]struct{} // channelID -> connections
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[string]map[*hubConn]struct{})}
}

func (h *Hub) add(channelID string, c *hubConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.conns[channelID]
	if !ok {
		set = make(map[*hubConn]struct{})
		h.conns[channelID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) remove(channelID string, c *hubConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.conns[channelID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.conns, channelID)
		}
	}
}

// Broadcast sends an event to every connection subscribed to the channel.
func (h *Hub) Broadcast(channelID string, ev Event) {
	h.mu.RLock()
	targets := make([]*hubConn, 0, len(h.conns[channelID]))
	for c := range h.conns[channelID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		// A dead connection errors here and is cleaned up by its read loop.
		_ = websocket.JSON.Send(c.conn, ev)
	}
}

// Subscribers reports the live connection count for a channel.
func (h *Hub) Subscribers(channelID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[channelID])
}
