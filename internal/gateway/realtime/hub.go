// Package realtime pushes operational events to connected back-office
// browsers over websockets.
package realtime

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
	readLimit  = 1024
)

// Event is the envelope written to every subscriber.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
	At   time.Time   `json:"at"`
}

type subscriber struct {
	conn   *websocket.Conn
	userID int64
	mu     sync.Mutex
}

func (s *subscriber) write(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(messageType, data)
}

// Hub fans events out to every connected subscriber.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mu   sync.RWMutex
	subs map[*subscriber]struct{}
}

// NewHub accepts connections from the given origins. An empty list allows
// any origin.
func NewHub(allowedOrigins []string, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[strings.TrimRight(o, "/")] = true
	}

	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(origins) == 0 || origin == "" || origins[origin]
			},
		},
		logger: logger,
		subs:   make(map[*subscriber]struct{}),
	}
}

// ServeWS upgrades the request and keeps the connection until the client
// goes away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID int64) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sub := &subscriber{conn: conn, userID: userID}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	count := len(h.subs)
	h.mu.Unlock()
	h.logger.Info("sos feed subscriber connected", zap.Int64("user_id", userID), zap.Int("subscribers", count))

	done := make(chan struct{})
	go h.pingLoop(sub, done)
	go h.readLoop(sub, done)
}

func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		sub.conn.Close()
	}
	h.mu.Unlock()
}

func (h *Hub) readLoop(sub *subscriber, done chan struct{}) {
	defer func() {
		close(done)
		h.remove(sub)
		h.logger.Info("sos feed subscriber disconnected", zap.Int64("user_id", sub.userID))
	}()

	sub.conn.SetReadLimit(readLimit)
	sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	sub.conn.SetPongHandler(func(string) error {
		sub.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		mt, msg, err := sub.conn.ReadMessage()
		if err != nil {
			return
		}
		sub.conn.SetReadDeadline(time.Now().Add(pongWait))

		// browsers cannot send protocol pings
		if mt == websocket.TextMessage && strings.EqualFold(strings.TrimSpace(string(msg)), "ping") {
			if err := sub.write(websocket.TextMessage, []byte("pong")); err != nil {
				return
			}
		}
	}
}

func (h *Hub) pingLoop(sub *subscriber, done chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := sub.write(websocket.PingMessage, nil); err != nil {
				h.remove(sub)
				return
			}
		}
	}
}

// Publish implements the operations event publisher.
func (h *Hub) Publish(event string, payload interface{}) {
	data, err := json.Marshal(Event{Type: event, Data: payload, At: time.Now().UTC()})
	if err != nil {
		h.logger.Error("failed to encode event", zap.String("event", event), zap.Error(err))
		return
	}

	h.mu.RLock()
	subs := make([]*subscriber, 0, len(h.subs))
	for sub := range h.subs {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		if err := sub.write(websocket.TextMessage, data); err != nil {
			h.logger.Warn("dropping sos feed subscriber", zap.Int64("user_id", sub.userID), zap.Error(err))
			h.remove(sub)
		}
	}
}

func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		sub.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"))
		sub.conn.Close()
		delete(h.subs, sub)
	}
}
