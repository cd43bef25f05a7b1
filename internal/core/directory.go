package core

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/hypertac-server/internal/config"
	logpkg "github.com/vovakirdan/hypertac-server/internal/log"
	"github.com/vovakirdan/hypertac-server/internal/utils"
)

const maxRoomIDAttempts = 16

// Directory owns every connected client and every live room.
// Lock order is Directory, then Room; rooms never call back into the directory.
type Directory struct {
	limits    config.GameConfig
	sink      MatchSink
	log       *zerolog.Logger
	newRoomID func() (string, error)

	mu      sync.Mutex
	rooms   map[string]*Room
	clients map[string]*Client
}

// NewDirectory builds an empty directory. sink may be nil.
func NewDirectory(limits config.GameConfig, sink MatchSink, logger *zerolog.Logger) *Directory {
	return &Directory{
		limits: limits,
		sink:   sink,
		log:    logpkg.OrNop(logger),
		newRoomID: func() (string, error) {
			return utils.NewRoomID(limits.RoomIDBytes)
		},
		rooms:   make(map[string]*Room),
		clients: make(map[string]*Client),
	}
}

// Register makes a freshly connected client known to the directory.
func (d *Directory) Register(c *Client) {
	d.mu.Lock()
	d.clients[c.ID] = c
	d.mu.Unlock()
}

// Unregister removes c from its room, if any, and forgets it.
// It is safe to call for a client that is in no room or already unregistered.
func (d *Directory) Unregister(c *Client) {
	if err := d.LeaveRoom(c); err != nil && !errors.Is(err, ErrNotInRoom) {
		d.log.Error().Err(err).Str("client_id", c.ID).Msg("leave room on disconnect")
	}
	d.mu.Lock()
	delete(d.clients, c.ID)
	d.mu.Unlock()
}

// Client returns the registered client with the given id.
func (d *Directory) Client(id string) (*Client, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.clients[id]
	return c, ok
}

// CreateRoom allocates a new room id and opens a room with admin as its only member.
func (d *Directory) CreateRoom(admin *Client, name string) (*Room, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id, err := d.freeRoomID()
	if err != nil {
		return nil, err
	}

	room := newRoom(id, admin, d.limits, d.sink, d.log)
	if err := room.AddClient(admin, name); err != nil {
		return nil, err
	}
	d.rooms[id] = room

	d.log.Info().Str("room_id", id).Str("client_id", admin.ID).Str("player", name).Msg("room created")
	return room, nil
}

// freeRoomID draws ids until one is not registered. Caller holds d.mu.
func (d *Directory) freeRoomID() (string, error) {
	for range maxRoomIDAttempts {
		id, err := d.newRoomID()
		if err != nil {
			return "", fmt.Errorf("%w: room id: %v", ErrInternal, err)
		}
		if _, taken := d.rooms[id]; !taken {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: no free room id after %d attempts", ErrInternal, maxRoomIDAttempts)
}

// LookupRoom returns the live room with the given id.
func (d *Directory) LookupRoom(id string) (*Room, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.rooms[id]
	return r, ok
}

// DestroyRoom drops the registration of a room.
func (d *Directory) DestroyRoom(id string) {
	d.mu.Lock()
	_, ok := d.rooms[id]
	delete(d.rooms, id)
	d.mu.Unlock()

	if ok {
		d.log.Info().Str("room_id", id).Msg("room destroyed")
	}
}

// JoinRoom adds c to the room with the given id under name.
func (d *Directory) JoinRoom(c *Client, roomID, name string) (*Room, error) {
	room, ok := d.LookupRoom(roomID)
	if !ok {
		return nil, ErrRoomNotFound
	}
	// A room emptied after the lookup is closed and rejects the join.
	if err := room.AddClient(c, name); err != nil {
		return nil, err
	}
	return room, nil
}

// LeaveRoom removes c from its room and destroys the room once it is empty.
func (d *Directory) LeaveRoom(c *Client) error {
	room, err := d.RoomOf(c)
	if err != nil {
		return err
	}
	empty, err := room.RemoveClient(c)
	if err != nil {
		return err
	}
	if empty {
		d.DestroyRoom(room.ID())
	}
	return nil
}

// RoomOf resolves the room c is currently in.
func (d *Directory) RoomOf(c *Client) (*Room, error) {
	id := c.RoomID()
	if id == "" {
		return nil, ErrNotInRoom
	}
	room, ok := d.LookupRoom(id)
	if !ok {
		return nil, ErrNotInRoom
	}
	return room, nil
}

// Rooms lists live rooms ordered by id.
func (d *Directory) Rooms() []RoomInfo {
	d.mu.Lock()
	rooms := make([]*Room, 0, len(d.rooms))
	for _, r := range d.rooms {
		rooms = append(rooms, r)
	}
	d.mu.Unlock()

	infos := make([]RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		infos = append(infos, r.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// RoomCount returns the number of live rooms.
func (d *Directory) RoomCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.rooms)
}

// ClientCount returns the number of registered clients.
func (d *Directory) ClientCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.clients)
}
