package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"bravepulse/internal/achievements"
)

const wsWriteTimeout = 5 * time.Second

// Hub fans game updates out to every connected scoreboard. Writes are serialized; a gorilla
// connection allows one writer at a time.
type Hub struct {
	mu      sync.Mutex
	writeMu sync.Mutex
	conns   map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{conns: make(map[*websocket.Conn]struct{})}
}

func (h *Hub) Add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = struct{}{}
}

func (h *Hub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
	_ = conn.Close()
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func (h *Hub) Send(conn *websocket.Conn, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	_ = conn.WriteMessage(websocket.TextMessage, data)
}

func (h *Hub) Broadcast(payload any) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.writeMu.Lock()
	var failed []*websocket.Conn
	for _, conn := range conns {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			failed = append(failed, conn)
		}
	}
	h.writeMu.Unlock()
	for _, conn := range failed {
		h.Remove(conn)
	}
}

// AchievementUnlocked pushes an unlock to every scoreboard.
func (h *Hub) AchievementUnlocked(ctx context.Context, achievement achievements.Achievement, playerID string) error {
	h.Broadcast(wsMessage{
		Type:        "achievement_unlocked",
		Achievement: &achievement,
		PlayerID:    playerID,
	})
	return nil
}

type wsMessage struct {
	Type        string                    `json:"type"`
	Selector    string                    `json:"selector,omitempty"`
	HTML        string                    `json:"html,omitempty"`
	State       any                       `json:"state,omitempty"`
	Achievement *achievements.Achievement `json:"achievement,omitempty"`
	PlayerID    string                    `json:"playerId,omitempty"`
}

func (s *Server) handleWebsocket(c *gin.Context) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	log.Printf("ws connected remote=%s", c.Request.RemoteAddr)
	s.hub.Add(conn)
	msg := wsMessage{Type: "state"}
	if state, err := s.manager.State(c.Request.Context()); err == nil {
		msg.State = state
	}
	s.hub.Send(conn, msg)
	go s.readWS(conn)
}

func (s *Server) readWS(conn *websocket.Conn) {
	defer s.hub.Remove(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Printf("ws disconnected error=%v", err)
			return
		}
	}
}
