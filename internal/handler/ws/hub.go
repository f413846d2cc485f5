package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"MacroPulse/internal/domain/models"
	xlogger "MacroPulse/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is CORS-open; the websocket follows suit.
	CheckOrigin: func(*http.Request) bool { return true },
}

type event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Hub pushes refresh events to connected websocket clients. It implements
// the EventPublisher interface, so it can sit next to (or instead of) the
// Kafka publisher. Slow clients are dropped rather than blocking a refresh.
type Hub struct {
	logger *xlogger.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates an empty hub.
func NewHub(logger *xlogger.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

// RegisterRoutes mounts the websocket endpoint.
func (h *Hub) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.serve)
}

func (h *Hub) serve(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	cl := &client{conn: conn, send: make(chan []byte, sendBufferSize)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return conn.Close()
	}
	h.clients[cl] = struct{}{}
	h.mu.Unlock()

	h.logger.Debug("ws client connected")

	go h.writeLoop(cl)
	go h.readLoop(cl)
	return nil
}

func (h *Hub) writeLoop(cl *client) {
	defer cl.conn.Close()
	for msg := range cl.send {
		_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := cl.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.drop(cl)
			return
		}
	}
	_ = cl.conn.WriteMessage(websocket.CloseMessage, nil)
}

// readLoop drains the connection so pings and close frames are handled.
func (h *Hub) readLoop(cl *client) {
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			h.drop(cl)
			return
		}
	}
}

func (h *Hub) drop(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[cl]; ok {
		delete(h.clients, cl)
		close(cl.send)
	}
}

func (h *Hub) broadcast(ev event) {
	b, err := json.Marshal(ev)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		select {
		case cl.send <- b:
		default:
			// Backpressure: drop the slow client.
			delete(h.clients, cl)
			close(cl.send)
		}
	}
}

// SeriesRefreshed broadcasts a per-series refresh event.
func (h *Hub) SeriesRefreshed(_ context.Context, id string, observations int) error {
	h.broadcast(event{Type: "series_refreshed", Payload: map[string]interface{}{
		"series":       id,
		"observations": observations,
	}})
	return nil
}

// BatchCompleted broadcasts the batch refresh report.
func (h *Hub) BatchCompleted(_ context.Context, report *models.RefreshReport) error {
	h.broadcast(event{Type: "batch_completed", Payload: report})
	return nil
}

// Close disconnects every client.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for cl := range h.clients {
		delete(h.clients, cl)
		close(cl.send)
	}
	return nil
}

// ClientCount reports connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
