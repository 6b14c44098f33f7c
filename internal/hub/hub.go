package hub

import (
	"encoding/json"
	"fmt"
	"sync"
)

// EventNewMessage is the event type pushed when a direct message is stored.
const EventNewMessage = "new_message"

// Scope selects who receives a published event.
type Scope string

const (
	// ScopeParticipants delivers only to the listed recipients.
	ScopeParticipants Scope = "participants"
	// ScopeGlobal delivers to every connected client.
	ScopeGlobal Scope = "global"
)

// DefaultBufferSize is the per-client queue length.
const DefaultBufferSize = 64

// Event represents a real-time event to be sent to clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Client is one live connection of a user. The connection's writer drains
// Send until the hub closes it.
type Client struct {
	UserID uint
	send   chan []byte
}

// NewClient creates a client with a queue of bufferSize frames.
func NewClient(userID uint, bufferSize int) *Client {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Client{UserID: userID, send: make(chan []byte, bufferSize)}
}

// Send returns the client's outbound queue. It is closed when the client is
// unregistered, dropped as too slow, or the hub shuts down.
func (c *Client) Send() <-chan []byte {
	return c.send
}

// Hub tracks live clients per user and fans events out to them.
type Hub struct {
	clients map[uint]map[*Client]struct{}
	scope   Scope
	closed  bool
	mu      sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub(scope Scope) *Hub {
	if scope != ScopeGlobal {
		scope = ScopeParticipants
	}
	return &Hub{
		clients: make(map[uint]map[*Client]struct{}),
		scope:   scope,
	}
}

// Register adds a client. It returns false once the hub is closed.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	if _, ok := h.clients[c.UserID]; !ok {
		h.clients[c.UserID] = make(map[*Client]struct{})
	}
	h.clients[c.UserID][c] = struct{}{}
	return true
}

// Unregister removes a client and closes its queue. Safe to call repeatedly.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *Client) {
	clients, ok := h.clients[c.UserID]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(h.clients, c.UserID)
	}
}

// Publish delivers event to every connection of the given users, or to every
// connection when the hub scope is global. It never blocks: a client whose
// queue is full is dropped. It returns the number of queued deliveries.
func (h *Hub) Publish(event Event, recipients ...uint) (int, error) {
	frame, err := json.Marshal(event)
	if err != nil {
		return 0, fmt.Errorf("marshal event: %w", err)
	}

	var slow []*Client
	delivered := 0
	h.mu.RLock()
	for _, c := range h.targetsLocked(recipients) {
		select {
		case c.send <- frame:
			delivered++
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	if len(slow) > 0 {
		h.mu.Lock()
		for _, c := range slow {
			h.removeLocked(c)
		}
		h.mu.Unlock()
	}
	return delivered, nil
}

func (h *Hub) targetsLocked(recipients []uint) []*Client {
	var targets []*Client
	if h.scope == ScopeGlobal {
		for _, clients := range h.clients {
			for c := range clients {
				targets = append(targets, c)
			}
		}
		return targets
	}

	seen := make(map[uint]struct{}, len(recipients))
	for _, userID := range recipients {
		if _, dup := seen[userID]; dup {
			continue
		}
		seen[userID] = struct{}{}
		for c := range h.clients[userID] {
			targets = append(targets, c)
		}
	}
	return targets
}

// ClientCount returns the number of live connections for userID.
func (h *Hub) ClientCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Close disconnects every client and rejects further registrations.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for userID, clients := range h.clients {
		for c := range clients {
			close(c.send)
		}
		delete(h.clients, userID)
	}
}
