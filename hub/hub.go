package hub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/restaurant-booking/utils"
)

// Event types
const (
	EventBookingCreated = "booking_created"
	EventBookingUpdated = "booking_updated"
	EventOrderCreated   = "order_created"
	EventOrderUpdated   = "order_updated"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 16
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// client is one admin connection. Its writer goroutine owns conn writes.
type client struct {
	conn   *websocket.Conn
	userID uint
	send   chan []byte
}

// Hub keeps the admin websocket connections and fans events out to them.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]*client
}

func New() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*client)}
}

func (h *Hub) register(conn *websocket.Conn, userID uint) *client {
	c := &client{conn: conn, userID: userID, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = c
	return c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(c)
}

// dropLocked removes c once. h.mu must be held.
func (h *Hub) dropLocked(c *client) {
	if h.clients[c.conn] != c {
		return
	}
	delete(h.clients, c.conn)
	close(c.send)
	c.conn.Close()
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	if h == nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast queues the event for every client and never waits on a socket.
// Clients whose queue is full are dropped. A nil hub is a no-op.
func (h *Hub) Broadcast(event string, data interface{}) {
	if h == nil {
		return
	}

	payload, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling %s event: %v", event, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.clients {
		select {
		case c.send <- payload:
		default:
			utils.InfoLogger.Printf("Dropping slow live feed client (user=%d)", c.userID)
			h.dropLocked(c)
		}
	}
}

// Serve registers conn and blocks reading from it until the client goes
// away. Incoming messages are discarded.
func (h *Hub) Serve(conn *websocket.Conn, userID uint) {
	c := h.register(conn, userID)
	defer h.unregister(c)
	go c.writeLoop()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writeLoop() {
	defer c.conn.Close()
	for payload := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			utils.InfoLogger.Printf("Live feed write failed (user=%d): %v", c.userID, err)
			return
		}
	}
}
