package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"SignBridge/internal/pipeline"
	"SignBridge/pkg/logger"
	"SignBridge/pkg/middleware"
)

const (
	writeWait      = 10 * time.Second
	pingPeriod     = 50 * time.Second
	clientBuffer   = 32
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type wsClient struct {
	userID string
	conn   *websocket.Conn
	send   chan pipeline.Event
}

// Hub fans pipeline events out to connected clients. It implements
// pipeline.EventSink; Publish never blocks, a slow client just misses
// events.
type Hub struct {
	mu      sync.RWMutex
	clients map[*wsClient]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*wsClient]struct{})}
}

// Publish delivers e to every connection owned by e.UserID; events
// without a user go to everyone.
func (h *Hub) Publish(e pipeline.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if e.UserID != "" && c.userID != e.UserID {
			continue
		}
		select {
		case c.send <- e:
		default:
		}
	}
}

// ClientCount reports the number of open connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) unregister(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// handleEvents upgrades the request and streams workflow events until
// the client disconnects.
func (h *Handlers) handleEvents(c *gin.Context) {
	userID := middleware.SessionUser(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", zap.String("user", userID), zap.Error(err))
		return
	}

	client := &wsClient{userID: userID, conn: conn, send: make(chan pipeline.Event, clientBuffer)}
	h.hub.register(client)

	go h.writePump(client)
	h.readPump(client)
}

func (h *Handlers) readPump(c *wsClient) {
	defer func() {
		h.hub.unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	for {
		// clients do not send anything meaningful; reading only detects close
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Handlers) writePump(c *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
