// ===============================
// internal/websocket/manager.go - WebSocket Hub for user notifications
// ===============================

package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ===============================
// MESSAGE TYPES
// ===============================

type MessageType string

const (
	// Connection events
	TypeConnectionEstablished MessageType = "connection_established"
	TypePing                  MessageType = "ping"
	TypePong                  MessageType = "pong"
	TypeError                 MessageType = "error"
)

const (
	readTimeout   = 60 * time.Second
	pingInterval  = 30 * time.Second
	writeTimeout  = 10 * time.Second
	sendBuffer    = 256
	maxFrameBytes = 4096
)

// ===============================
// WEBSOCKET MESSAGE
// ===============================

type Message struct {
	Type      MessageType            `json:"type"`
	Data      map[string]interface{} `json:"data"`
	ID        string                 `json:"id,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// ===============================
// CLIENT CONNECTION
// ===============================

type Client struct {
	ID     string
	UserID string
	Conn   *websocket.Conn
	Hub    *Hub
	Send   chan []byte
}

func NewClient(userID string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		ID:     uuid.New().String(),
		UserID: userID,
		Conn:   conn,
		Hub:    hub,
		Send:   make(chan []byte, sendBuffer),
	}
}

// ReadPump only answers pings, the socket is server-to-client otherwise
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxFrameBytes)
	c.Conn.SetReadDeadline(time.Now().Add(readTimeout))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for user %s: %v", c.UserID, err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.Hub.sendToClient(c, &Message{
				Type:      TypeError,
				Data:      map[string]interface{}{"error": "invalid message"},
				Timestamp: time.Now(),
			})
			continue
		}

		if msg.Type == TypePing {
			c.Hub.sendToClient(c, &Message{
				Type:      TypePong,
				Data:      map[string]interface{}{},
				ID:        msg.ID,
				Timestamp: time.Now(),
			})
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ===============================
// HUB
// ===============================

// Hub tracks open sockets per user and pushes events to them
type Hub struct {
	Clients     map[string]*Client   // socket_id -> client
	UserClients map[string][]*Client // user_id -> clients
	Register    chan *Client
	Unregister  chan *Client
	done        chan struct{}
	mutex       sync.RWMutex
}

type HubStats struct {
	Connections int `json:"connections"`
	Users       int `json:"users"`
}

func NewHub() *Hub {
	return &Hub{
		Clients:     make(map[string]*Client),
		UserClients: make(map[string][]*Client),
		Register:    make(chan *Client),
		Unregister:  make(chan *Client),
		done:        make(chan struct{}),
	}
}

// Run serves registrations until ctx is done, then closes every socket
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return
		}
	}
}

// Attach registers an upgraded connection and starts its pumps
func (h *Hub) Attach(userID string, conn *websocket.Conn) *Client {
	client := NewClient(userID, conn, h)
	select {
	case h.Register <- client:
	case <-h.done:
		conn.Close()
		return client
	}
	go client.WritePump()
	go client.ReadPump()
	return client
}

func (h *Hub) unregister(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	h.Clients[client.ID] = client
	h.UserClients[client.UserID] = append(h.UserClients[client.UserID], client)
	h.mutex.Unlock()

	h.sendToClient(client, &Message{
		Type:      TypeConnectionEstablished,
		Data:      map[string]interface{}{"clientId": client.ID, "userId": client.UserID},
		Timestamp: time.Now(),
	})

	log.Printf("🔌 Client registered: %s (User: %s)", client.ID, client.UserID)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.Clients[client.ID]; !ok {
		return
	}
	delete(h.Clients, client.ID)

	clients := h.UserClients[client.UserID]
	for i, c := range clients {
		if c.ID == client.ID {
			h.UserClients[client.UserID] = append(clients[:i:i], clients[i+1:]...)
			break
		}
	}
	if len(h.UserClients[client.UserID]) == 0 {
		delete(h.UserClients, client.UserID)
	}

	close(client.Send)
	log.Printf("🔌 Client unregistered: %s (User: %s)", client.ID, client.UserID)
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for id, client := range h.Clients {
		close(client.Send)
		delete(h.Clients, id)
	}
	h.UserClients = make(map[string][]*Client)
}

// sendToClient drops the message when the client's buffer is full. A stuck
// client is dropped by its own pumps once the write deadline expires.
func (h *Hub) sendToClient(client *Client, msg *Message) {
	messageBytes, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal message: %v", err)
		return
	}

	h.mutex.RLock()
	defer h.mutex.RUnlock()
	if _, ok := h.Clients[client.ID]; !ok {
		return
	}

	select {
	case client.Send <- messageBytes:
	default:
		log.Printf("⚠️ Send buffer full for client %s, dropping %s", client.ID, msg.Type)
	}
}

// SendToUser delivers to every open connection of a user
func (h *Hub) SendToUser(userID string, msg *Message) {
	h.mutex.RLock()
	clients := append([]*Client(nil), h.UserClients[userID]...)
	h.mutex.RUnlock()

	for _, client := range clients {
		h.sendToClient(client, msg)
	}
}

// NotifyUser pushes a named event to the user
func (h *Hub) NotifyUser(userID, event string, data map[string]interface{}) {
	if data == nil {
		data = map[string]interface{}{}
	}
	h.SendToUser(userID, &Message{
		Type:      MessageType(event),
		Data:      data,
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
	})
}

// ===============================
// STATS
// ===============================

func (h *Hub) Stats() HubStats {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return HubStats{Connections: len(h.Clients), Users: len(h.UserClients)}
}
