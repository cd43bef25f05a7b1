package core

import (
	"context"

	"github.com/rs/zerolog"

	logpkg "github.com/vovakirdan/hypertac-server/internal/log"
)

// Hub dispatches client commands to the directory and rooms and reports
// failures back to the requesting client.
type Hub struct {
	dir *Directory
	log *zerolog.Logger
}

// NewHub creates a hub over dir.
func NewHub(dir *Directory, logger *zerolog.Logger) *Hub {
	return &Hub{dir: dir, log: logpkg.OrNop(logger)}
}

// Directory returns the directory the hub dispatches to.
func (h *Hub) Directory() *Directory { return h.dir }

// Connect registers a new connection.
func (h *Hub) Connect(c *Client) {
	h.dir.Register(c)
	h.log.Debug().Str("client_id", c.ID).Msg("client connected")
}

// Disconnect removes c from its room and forgets it.
func (h *Hub) Disconnect(c *Client) {
	h.dir.Unregister(c)
	h.log.Debug().Str("client_id", c.ID).Msg("client disconnected")
}

// Handle runs cmd on behalf of c. A failure is delivered to c as an error
// event and also returned.
func (h *Hub) Handle(ctx context.Context, c *Client, cmd *Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := h.dispatch(c, cmd)
	if err != nil {
		h.report(c, cmd, err)
	}
	return err
}

func (h *Hub) dispatch(c *Client, cmd *Command) error {
	switch cmd.Kind {
	case CommandSetup:
		c.Send(&Event{Kind: EventSetup, ClientID: c.ID})
		return nil
	case CommandCreateRoom:
		_, err := h.dir.CreateRoom(c, cmd.PlayerName)
		return err
	case CommandJoinRoom:
		if cmd.Room == "" {
			return ErrBadRequest
		}
		_, err := h.dir.JoinRoom(c, cmd.Room, cmd.PlayerName)
		return err
	case CommandLeaveRoom:
		return h.dir.LeaveRoom(c)
	case CommandSelectShape:
		room, err := h.dir.RoomOf(c)
		if err != nil {
			return err
		}
		return room.EditPlayerShape(c, cmd.Shape)
	case CommandEditSettings:
		room, err := h.dir.RoomOf(c)
		if err != nil {
			return err
		}
		return room.UpdateSettings(c, cmd.Settings)
	case CommandStartGame:
		room, err := h.dir.RoomOf(c)
		if err != nil {
			return err
		}
		return room.StartGame(c)
	case CommandPlace:
		room, err := h.dir.RoomOf(c)
		if err != nil {
			return err
		}
		placed, err := room.Place(c, cmd.Position)
		if err != nil {
			return err
		}
		if !placed {
			return ErrCellOccupied
		}
		return nil
	default:
		return ErrBadRequest
	}
}

func (h *Hub) report(c *Client, cmd *Command, err error) {
	ce, ok := AsCoreError(err)
	if !ok {
		h.log.Error().Err(err).
			Str("client_id", c.ID).
			Int("command", int(cmd.Kind)).
			Msg("internal fault while handling command")
		ce = errInternalReport
	}
	if !c.Send(&Event{Kind: EventError, Room: c.RoomID(), Error: ce}) {
		h.log.Warn().Str("client_id", c.ID).Str("code", ce.Code).Msg("client queue full, error dropped")
	}
}
