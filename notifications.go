package main

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// MatchEvent is a server-pushed notification about match activity.
type MatchEvent struct {
	Type         string  `json:"type"` // "match_found" | "status_changed" | "info"
	MatchID      int     `json:"match_id,omitempty"`
	Status       string  `json:"status,omitempty"`
	OverallScore float64 `json:"overall_score,omitempty"`
	Data         any     `json:"data,omitempty"`
}

// Client is one open WebSocket connection for a user.
type Client struct {
	userID int
	conn   *websocket.Conn
	send   chan MatchEvent
}

// Hub tracks the open connections per user.
type Hub struct {
	clientsByUser map[int]map[*Client]bool
	mu            sync.RWMutex
}

func newHub() *Hub {
	return &Hub{
		clientsByUser: make(map[int]map[*Client]bool),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clientsByUser[c.userID] == nil {
		h.clientsByUser[c.userID] = make(map[*Client]bool)
	}
	h.clientsByUser[c.userID][c] = true
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.clientsByUser[c.userID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.clientsByUser, c.userID)
		}
	}
}

func (h *Hub) sendToUser(userID int, evt MatchEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if conns, ok := h.clientsByUser[userID]; ok {
		for c := range conns {
			select {
			case c.send <- evt:
			default:
				// Drop event if the client's buffer is full
			}
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// For development: allow Vite dev origin ws://localhost:5173
	CheckOrigin: func(r *http.Request) bool { return true },
}

// global hub
var eventHub = newHub()

// notifyMatchFound pushes a "match_found" event to both parties of a
// freshly created match.
func notifyMatchFound(d matchDetail) {
	evt := MatchEvent{
		Type:         "match_found",
		MatchID:      d.ID,
		OverallScore: d.Score.Overall,
	}
	eventHub.sendToUser(d.A.UserID, evt)
	eventHub.sendToUser(d.B.UserID, evt)
}

// notifyStatusChanged pushes the new status of a match to both parties.
func notifyStatusChanged(d matchDetail) {
	evt := MatchEvent{
		Type:    "status_changed",
		MatchID: d.ID,
		Status:  d.Status,
	}
	eventHub.sendToUser(d.A.UserID, evt)
	eventHub.sendToUser(d.B.UserID, evt)
}

// GET /ws/events — upgrades to a WebSocket and streams match events.
func wsEventsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := getUserIDFromRequest(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warnw("ws upgrade failed", "user_id", userID, "err", err)
			return
		}

		client := &Client{
			userID: userID,
			conn:   conn,
			send:   make(chan MatchEvent, 16),
		}
		eventHub.register(client)

		// Announce connection to this client
		client.send <- MatchEvent{Type: "info", Data: "connected"}

		go clientWriter(client)
		clientReader(client)
	}
}

// Extract user ID from Authorization header using the existing jwtSecret.
// Mirrors the authenticate() logic, but returns (id,ok) instead of wrapping a handler.
func getUserIDFromBearer(r *http.Request) (int, bool) {
	auth := r.Header.Get("Authorization")
	if len(auth) < 8 || auth[:7] != "Bearer " {
		return 0, false
	}
	tokenStr := auth[7:]
	id, ok := parseUserIDFromJWT(tokenStr)
	return id, ok
}

func getUserIDFromRequest(r *http.Request) (int, bool) {
	// Try Authorization header first
	if id, ok := getUserIDFromBearer(r); ok {
		return id, true
	}
	// Fallback: token query param for WS (browsers can't set headers)
	q := r.URL.Query().Get("token")
	if q != "" {
		return parseUserIDFromJWT(q)
	}
	return 0, false
}

// clientReader drains inbound frames so pings and close frames are
// processed. This stream is push-only; client payloads are ignored.
func clientReader(c *Client) {
	defer func() {
		eventHub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(1 << 20)
	_ = c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func clientWriter(c *Client) {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case evt, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(evt); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
