package progress

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans out progress events to every connected desktop-host client. Per
// the spec, emission is non-blocking try-send: a slow or disconnected
// client drops events rather than stalling the run.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	out  chan interface{}
}

// NewHub builds an empty Hub ready to accept connections via Handle.
func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// Handle upgrades an HTTP request to a websocket connection and registers
// it to receive future Broadcast calls until the connection closes.
func (h *Hub) Handle(w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &client{conn: conn, out: make(chan interface{}, 16)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writeLoop(c)
	return nil
}

func (h *Hub) writeLoop(c *client) {
	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
		c.conn.Close()
	}()
	for msg := range c.out {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// Broadcast pushes event to every connected client, non-blocking: a client
// whose outbound buffer is full is skipped for this event rather than
// blocking the run that produced it.
func (h *Hub) Broadcast(event interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.out <- event:
		default:
		}
	}
}

// Close shuts down every connected client's write loop.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.out)
	}
	h.clients = make(map[*client]struct{})
}
