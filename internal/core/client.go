package core

import "sync"

// DefaultEventBuffer is the per-client outbound queue length.
const DefaultEventBuffer = 32

// Client is a connected player as seen by the core layer.
// Events is the client's outbound stream; the core only ever sends to it.
type Client struct {
	ID     string
	Events chan *Event

	mu     sync.RWMutex
	name   string
	roomID string
}

// NewClient constructs a client with an initialized event channel.
func NewClient(id string, buffer int) *Client {
	if buffer <= 0 {
		buffer = DefaultEventBuffer
	}
	return &Client{
		ID:     id,
		Events: make(chan *Event, buffer),
	}
}

// Name returns the display name chosen when creating or joining a room.
func (c *Client) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

// RoomID returns the id of the room the client is in, or "".
func (c *Client) RoomID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomID
}

// claim binds the client to roomID under name unless it is already in a room.
func (c *Client) claim(roomID, name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.roomID != "" {
		return false
	}
	c.roomID = roomID
	c.name = name
	return true
}

// release clears the room binding if it still points at roomID.
func (c *Client) release(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.roomID == roomID {
		c.roomID = ""
	}
}

// Send queues an event without blocking. It reports false if the queue is full.
func (c *Client) Send(ev *Event) bool {
	select {
	case c.Events <- ev:
		return true
	default:
		return false
	}
}
