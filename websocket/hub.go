package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Hub manages all live hazard-thread connections
type Hub struct {
	// Registered clients keyed by user id
	Clients map[string]*Client

	// Thread subscribers: hazard id -> set of user ids
	ThreadMembers map[string]map[string]bool

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	// Broadcast channel for messages to all clients
	Broadcast chan *Message

	mu sync.RWMutex
}

// Message is the wire format pushed to thread subscribers
type Message struct {
	Type      string      `json:"type"`
	HazardID  string      `json:"hazard_id,omitempty"`
	SenderID  string      `json:"sender_id,omitempty"`
	Content   string      `json:"content,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		Clients:       make(map[string]*Client),
		ThreadMembers: make(map[string]map[string]bool),
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		Broadcast:     make(chan *Message),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.Clients[client.UserID] = client
			h.mu.Unlock()
			log.Printf("🔌 Client registered: user=%s", client.UserID)

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.Clients[client.UserID]; ok {
				for hazardID := range h.ThreadMembers {
					delete(h.ThreadMembers[hazardID], client.UserID)
				}
				delete(h.Clients, client.UserID)
				close(client.Send)
			}
			h.mu.Unlock()
			log.Printf("🔌 Client unregistered: user=%s", client.UserID)

		case message := <-h.Broadcast:
			h.broadcastMessage(message)
		}
	}
}

// broadcastMessage sends a message to every connected client
func (h *Hub) broadcastMessage(message *Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("❌ Error marshaling message: %v", err)
		return
	}

	for userID, client := range h.Clients {
		select {
		case client.Send <- data:
		default:
			close(client.Send)
			delete(h.Clients, userID)
		}
	}
}

// SubscribeToThread adds a user to a hazard's thread
func (h *Hub) SubscribeToThread(userID, hazardID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ThreadMembers[hazardID] == nil {
		h.ThreadMembers[hazardID] = make(map[string]bool)
	}
	h.ThreadMembers[hazardID][userID] = true
}

// UnsubscribeFromThread removes a user from a hazard's thread
func (h *Hub) UnsubscribeFromThread(userID, hazardID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ThreadMembers[hazardID] != nil {
		delete(h.ThreadMembers[hazardID], userID)
	}
}

// SendToThread pushes a message to every subscriber of a hazard's thread
// except the sender.
func (h *Hub) SendToThread(hazardID string, message *Message, excludeUserID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("❌ Error marshaling message: %v", err)
		return
	}

	members := h.ThreadMembers[hazardID]
	if members == nil {
		return
	}

	for userID := range members {
		if userID == excludeUserID {
			continue
		}

		client, exists := h.Clients[userID]
		if !exists {
			continue
		}

		select {
		case client.Send <- data:
		default:
			log.Printf("⚠️ User %s's send buffer is full", userID)
		}
	}
}

// IsUserConnected checks if a user is currently connected
func (h *Hub) IsUserConnected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.Clients[userID]
	return exists
}
