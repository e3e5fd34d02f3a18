package events

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// Event is what gets pushed to connected pages. Clients rebuild their
// contribution list wholesale when they receive contributions_changed.
type Event struct {
	Type   string `json:"type"`
	UserID string `json:"user_id,omitempty"`
}

// Client is a single websocket connection.
type Client struct {
	conn   *websocket.Conn
	send   chan []byte
	closed bool
	mu     sync.Mutex
}

// safeSend sends on the channel unless the client is already closed or
// its buffer is full.
func (c *Client) safeSend(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

func (c *Client) safeClose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		close(c.send)
		c.closed = true
	}
}

// Hub tracks connected clients and broadcasts mutation events to them.
type Hub struct {
	mu      sync.Mutex
	clients map[*Client]bool
}

// NewHub creates a new instance of Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]bool)}
}

// Register adds a connection and starts its pumps. It returns once the
// connection is gone.
func (h *Hub) Register(conn *websocket.Conn) {
	client := &Client{conn: conn, send: make(chan []byte, 8)}

	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()

	go h.writePump(client)
	h.readPump(client)
}

// ContributionsChanged implements contributions.Notifier.
func (h *Hub) ContributionsChanged(userID string) {
	h.Broadcast(Event{Type: "contributions_changed", UserID: userID})
}

// Broadcast sends an event to every connected client.
func (h *Hub) Broadcast(event Event) {
	message, err := json.Marshal(event)
	if err != nil {
		log.Printf("EventHub Error: event marshal failed: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		if !client.safeSend(message) {
			delete(h.clients, client)
			client.safeClose()
		}
	}
}

// ClientCount reports how many clients are connected.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	delete(h.clients, client)
	h.mu.Unlock()
	client.safeClose()
	client.conn.Close()
}

// readPump discards inbound messages; the socket is push-only. It exists
// to notice the close.
func (h *Hub) readPump(client *Client) {
	defer h.unregister(client)
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("EventHub Info: unexpected close: %v", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
