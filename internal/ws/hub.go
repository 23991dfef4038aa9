package ws

import (
	"bytes"
	"encoding/json"
	"sync"
	"time"

	"hahu_backend/internal/domain"
	"hahu_backend/internal/logger"
)

// Hub fans the latest leaderboard snapshot out to connected clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	last    []byte // entries of the last published snapshot
	frame   []byte // full frame of the last published snapshot
	now     func() time.Time
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		now:     time.Now,
	}
}

// Register adds c and queues the latest snapshot for it.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c] = struct{}{}
	if h.frame != nil {
		c.enqueue(h.frame)
	}
}

// Unregister removes c and closes its send queue. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.Send)
	}
	h.mu.Unlock()
}

// Publish broadcasts entries when they differ from the previous snapshot and
// reports whether a broadcast happened.
func (h *Hub) Publish(entries []domain.LeaderboardEntry) (bool, error) {
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	body, err := json.Marshal(entries)
	if err != nil {
		return false, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if bytes.Equal(body, h.last) {
		return false, nil
	}
	frame, err := json.Marshal(Envelope{
		Type:    MsgLeaderboard,
		Payload: LeaderboardPayload{Entries: entries, GeneratedAt: h.now().Unix()},
	})
	if err != nil {
		return false, err
	}
	h.last, h.frame = body, frame

	for c := range h.clients {
		if !c.enqueue(frame) {
			// slow consumer; its pumps exit once Send is closed
			delete(h.clients, c)
			close(c.Send)
			logger.Warn("dropping slow websocket client", "user_id", c.UserID)
		}
	}
	return true, nil
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.Send)
	}
}
