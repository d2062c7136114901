package ws

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Room names. Every connection sits in its personal room and the global
// room; walking and chat rooms are joined and left at runtime.
const (
	RoomGlobal  = "global"
	RoomWalking = "walking"
)

func PersonalRoom(userID uint) string { return fmt.Sprintf("user:%d", userID) }

// ChatRoom prefixes a client-supplied room name so it can never collide
// with personal or reserved rooms.
func ChatRoom(name string) string { return "chat:" + name }

// Relay forwards a room broadcast to other gateway processes. Nil when the
// hub runs standalone.
type Relay interface {
	Publish(room string, data []byte)
}

// Hub holds all connected clients and their room memberships. All state is
// in-process; cross-process delivery goes through the optional Relay.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	byUser  map[uint]map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}
	relay   Relay
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		byUser:  make(map[uint]map[*Client]struct{}),
		rooms:   make(map[string]map[*Client]struct{}),
	}
}

// SetRelay attaches the cross-instance relay. Call before serving traffic.
func (h *Hub) SetRelay(r Relay) { h.relay = r }

// Register adds the client and joins its personal and global rooms.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.hub = h
	h.clients[c] = struct{}{}
	if h.byUser[c.UserID] == nil {
		h.byUser[c.UserID] = make(map[*Client]struct{})
	}
	h.byUser[c.UserID][c] = struct{}{}
	h.joinLocked(c, PersonalRoom(c.UserID))
	h.joinLocked(c, RoomGlobal)
}

// Unregister removes the client from every room.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
	if m := h.byUser[c.UserID]; m != nil {
		delete(m, c)
		if len(m) == 0 {
			delete(h.byUser, c.UserID)
		}
	}
	for room, members := range h.rooms {
		if _, ok := members[c]; ok {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
}

func (h *Hub) joinLocked(c *Client, room string) {
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][c] = struct{}{}
}

func (h *Hub) Join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.joinLocked(c, room)
}

func (h *Hub) Leave(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members := h.rooms[room]; members != nil {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

func (h *Hub) InRoom(c *Client, room string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[room][c]
	return ok
}

func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// IsUserConnected reports whether any connection exists for the user on
// this instance.
func (h *Hub) IsUserConnected(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byUser[userID]) > 0
}

// Event is the outbound wire envelope.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func encodeEvent(event string, payload interface{}) []byte {
	data, _ := json.Marshal(Event{Type: event, Data: payload})
	return data
}

// Broadcast fans an event out to every connection in room, here and on
// other instances.
func (h *Hub) Broadcast(room, event string, payload interface{}) {
	data := encodeEvent(event, payload)
	h.DeliverLocal(room, data, nil)
	if h.relay != nil {
		h.relay.Publish(room, data)
	}
}

// BroadcastExcept skips one local connection (typically the sender).
// Remote instances deliver to all their members; the excluded connection
// only exists here.
func (h *Hub) BroadcastExcept(room string, except *Client, event string, payload interface{}) {
	data := encodeEvent(event, payload)
	h.DeliverLocal(room, data, except)
	if h.relay != nil {
		h.relay.Publish(room, data)
	}
}

// SendTo delivers an event to a single connection only.
func (h *Hub) SendTo(c *Client, event string, payload interface{}) {
	c.trySend(encodeEvent(event, payload))
}

// PushToUser delivers into the user's personal room across all instances.
// Satisfies service.RealtimePusher.
func (h *Hub) PushToUser(userID uint, event string, payload interface{}) {
	h.Broadcast(PersonalRoom(userID), event, payload)
}

// DeliverLocal writes pre-encoded data to local room members. The relay
// calls this for frames that originated elsewhere.
func (h *Hub) DeliverLocal(room string, data []byte, except *Client) {
	h.mu.RLock()
	members := h.rooms[room]
	targets := make([]*Client, 0, len(members))
	for c := range members {
		if c != except {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()
	for _, c := range targets {
		c.trySend(data)
	}
}
