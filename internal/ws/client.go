package ws

import (
	"sync"
)

// Client is a single authenticated gateway connection.
type Client struct {
	ID       string // connection id, unique per socket
	UserID   uint
	Username string
	Role     string
	Send     chan []byte
	hub      *Hub
	mu       sync.Mutex
	closed   bool
}

func NewClient(id string, userID uint, username, role string) *Client {
	return &Client{
		ID:       id,
		UserID:   userID,
		Username: username,
		Role:     role,
		Send:     make(chan []byte, 256),
	}
}

// Close unregisters the client and closes its send channel exactly once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.hub != nil {
		c.hub.Unregister(c)
	}
	close(c.Send)
}

// trySend queues data without ever blocking the caller; a slow consumer
// whose buffer is full just drops the frame.
func (c *Client) trySend(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.Send <- data:
	default:
	}
}
