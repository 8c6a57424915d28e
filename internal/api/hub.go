package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"solofeed/internal/engine"
	"solofeed/internal/feed"
	"solofeed/internal/logging"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are enforced by the CORS layer.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans feed changes out to every connected view.
type Hub struct {
	mu    sync.Mutex
	conns map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan feed.Change
	once sync.Once
}

func (c *client) close() { c.once.Do(func() { close(c.send) }) }

func NewHub() *Hub { return &Hub{conns: make(map[*client]struct{})} }

// Broadcast queues ch for every connection; slow connections drop changes.
func (h *Hub) Broadcast(ch feed.Change) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.conns {
		select {
		case c.send <- ch:
		default:
			logging.Debug("ws_drop", map[string]any{"op": ch.Op})
		}
	}
}

// Len counts open connections.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.conns, c)
	h.mu.Unlock()
	c.close()
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*client, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()
	for _, c := range conns {
		_ = c.conn.Close()
	}
}

// serveWS treats the connection as an open view: its periodic tick runs
// until the socket closes.
func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("view")
	if name == "" {
		name = string(engine.ViewFeed)
	}
	v, err := engine.ParseView(name)
	if err != nil {
		writeError(w, err)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("ws_upgrade", map[string]any{"error": err.Error()})
		return
	}
	c := &client{conn: conn, send: make(chan feed.Change, sendBuffer)}
	s.hub.add(c)
	tick := s.engine.OpenView(v)
	logging.Info("ws_open", map[string]any{"view": string(v)})

	go s.writePump(c)
	s.readPump(c)

	tick.Cancel()
	s.hub.remove(c)
	logging.Info("ws_close", map[string]any{"view": string(v)})
}

// readPump discards client messages and returns when the connection fails.
func (s *Server) readPump(c *client) {
	defer c.conn.Close()
	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case ch, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ch); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
