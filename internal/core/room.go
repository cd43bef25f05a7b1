package core

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/hypertac-server/internal/board"
	"github.com/vovakirdan/hypertac-server/internal/config"
)

// MatchResult summarizes a finished game.
type MatchResult struct {
	RoomID     string
	Players    []string
	Dimensions int
	SideLength int
	Reason     EndReason
	Moves      int
	Board      map[string]board.Occupant
	EndedAt    time.Time
}

// MatchSink receives finished games. RecordMatch is called with the room
// locked and must not block.
type MatchSink interface {
	RecordMatch(MatchResult)
}

// RoomInfo is a point-in-time summary of a room for listings.
type RoomInfo struct {
	ID             string
	Admin          string
	Players        []string
	State          string
	DimensionCount int
	SideLength     int
}

// Room is one match: roster, settings and game state.
// All methods are safe for concurrent use; each runs as one critical section.
type Room struct {
	id     string
	limits config.GameConfig
	sink   MatchSink
	log    *zerolog.Logger

	mu       sync.Mutex
	admin    *Client
	roster   []*Client
	settings Settings
	state    GameState
	moves    int
	closed   bool
}

func newRoom(id string, admin *Client, limits config.GameConfig, sink MatchSink, logger *zerolog.Logger) *Room {
	l := logger.With().Str("room_id", id).Logger()
	return &Room{
		id:       id,
		limits:   limits,
		sink:     sink,
		log:      &l,
		admin:    admin,
		settings: defaultSettings(limits),
		state:    Waiting{},
	}
}

// ID returns the room identifier.
func (r *Room) ID() string { return r.id }

// AddClient appends c to the roster under name and sends it the full room state.
func (r *Room) AddClient(c *Client, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRoomNotFound
	}
	if r.indexOf(c) >= 0 {
		return ErrAlreadyInRoom
	}
	if _, ok := r.state.(Waiting); !ok {
		return ErrGameAlreadyStarted
	}
	if name == "" {
		return ErrNameEmpty
	}
	if !r.nameAvailable(name) {
		return ErrNameTaken
	}
	if !c.claim(r.id, name) {
		return ErrAlreadyInAnyRoom
	}

	r.roster = append(r.roster, c)
	slot := len(r.roster) - 1
	if slot < len(r.settings.Shapes) {
		r.settings.Shapes[slot] = DefaultShape(slot)
	} else {
		r.settings.Shapes = append(r.settings.Shapes, DefaultShape(slot))
	}

	r.log.Debug().Str("client_id", c.ID).Str("player", name).Int("slot", slot).Msg("client joined room")

	settings := r.settings.clone()
	r.send(c, &Event{
		Kind:     EventRoomSetup,
		Room:     r.id,
		Admin:    r.admin.Name(),
		Self:     name,
		Players:  r.playerNames(),
		Settings: &settings,
	})
	r.broadcast(&Event{Kind: EventPlayerChange, Room: r.id, Players: r.playerNames()})
	return nil
}

// IsNameAvailable reports whether no roster member uses name.
func (r *Room) IsNameAvailable(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nameAvailable(name)
}

// IsEditable reports whether the room is still waiting for a game to start.
func (r *Room) IsEditable() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.state.(Waiting)
	return ok
}

// IsAdmin reports whether c is the room admin.
func (r *Room) IsAdmin(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.admin == c
}

// State returns the current game state. Boards inside it must not be mutated.
func (r *Room) State() GameState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Settings returns a copy of the room settings.
func (r *Room) Settings() Settings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings.clone()
}

// Info returns a summary for listings.
func (r *Room) Info() RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	info := RoomInfo{
		ID:             r.id,
		Players:        r.playerNames(),
		State:          r.state.stateName(),
		DimensionCount: r.settings.DimensionCount,
		SideLength:     r.settings.SideLength,
	}
	if r.admin != nil {
		info.Admin = r.admin.Name()
	}
	return info
}

// UpdateSettings merges patch into the settings and broadcasts the changed fields.
// Only the admin may do this, and only while waiting.
func (r *Room) UpdateSettings(c *Client, patch SettingsPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(c) < 0 {
		return ErrNotInRoom
	}
	if r.admin != c {
		return ErrNotAdmin
	}
	if _, ok := r.state.(Waiting); !ok {
		return ErrGameAlreadyStarted
	}
	if patch.DimensionCount != nil && !r.limits.DimensionsAllowed(*patch.DimensionCount) {
		return ErrInvalidSettings
	}
	if patch.SideLength != nil && !r.limits.SideLengthAllowed(*patch.SideLength) {
		return ErrInvalidSettings
	}

	delta := &SettingsDelta{}
	changed := false
	if patch.DimensionCount != nil {
		d := *patch.DimensionCount
		r.settings.DimensionCount = d
		delta.DimensionCount = &d
		changed = true
	}
	if patch.SideLength != nil {
		s := *patch.SideLength
		r.settings.SideLength = s
		delta.SideLength = &s
		changed = true
	}
	if !changed {
		return nil
	}

	r.broadcast(&Event{Kind: EventRoomSettings, Room: r.id, Delta: delta})
	return nil
}

// EditPlayerShape changes the shape of c's roster slot and broadcasts the full shape list.
func (r *Room) EditPlayerShape(c *Client, shape Shape) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(c)
	if idx < 0 {
		return ErrNotInRoom
	}
	if _, ok := r.state.(Waiting); !ok {
		return ErrGameAlreadyStarted
	}
	if !shape.Valid() {
		return ErrInvalidShape
	}

	r.settings.Shapes[idx] = shape
	r.broadcast(&Event{
		Kind:  EventRoomSettings,
		Room:  r.id,
		Delta: &SettingsDelta{Shapes: slices.Clone(r.settings.Shapes)},
	})
	return nil
}

// StartGame creates the board and hands the first turn to the first roster member.
func (r *Room) StartGame(c *Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(c) < 0 {
		return ErrNotInRoom
	}
	if _, ok := r.state.(Waiting); !ok {
		return ErrGameAlreadyStarted
	}
	if len(r.roster) != 2 {
		return ErrRoomNotReady
	}

	b, err := board.New(r.settings.DimensionCount, r.settings.SideLength)
	if err != nil {
		return fmt.Errorf("%w: start game: %v", ErrInternal, err)
	}
	r.state = Playing{TurnIndex: 0, Board: b}
	r.moves = 0

	r.log.Info().
		Int("dimensions", b.Dimensions()).
		Int("side_length", b.SideLength()).
		Strs("players", r.playerNames()).
		Msg("game started")

	r.broadcast(&Event{
		Kind:       EventNextTurn,
		Room:       r.id,
		NextPlayer: r.roster[0].Name(),
		Board:      viewOf(b),
	})
	return nil
}

// Place puts c's mark at pos. It returns false without changing anything if
// the cell is already filled. A win or tie ends the game instead of passing
// the turn.
func (r *Room) Place(c *Client, pos board.Position) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	playing, ok := r.state.(Playing)
	if !ok {
		return false, ErrGameNotRunning
	}
	idx := r.indexOf(c)
	if idx < 0 {
		return false, ErrNotInRoom
	}
	if idx != playing.TurnIndex {
		return false, ErrNotYourTurn
	}
	b := playing.Board
	if len(pos) != b.Dimensions() {
		return false, ErrDimensionMismatch
	}

	if err := b.Set(pos, board.Occupant(idx)); err != nil {
		switch {
		case errors.Is(err, board.ErrCellOccupied):
			return false, nil
		case errors.Is(err, board.ErrOutOfBounds):
			return false, ErrOutOfBounds
		default:
			return false, fmt.Errorf("%w: place: %v", ErrInternal, err)
		}
	}
	r.moves++

	res, err := b.CheckWinForChangedPosition(pos)
	if err != nil {
		return true, fmt.Errorf("%w: check win: %v", ErrInternal, err)
	}

	switch res.Outcome {
	case board.OutcomeWin:
		r.end(BoardWin{Winner: c.Name(), Occupant: res.Winner, Line: res.Line}, r.playerNames())
	case board.OutcomeTie:
		r.end(Tie{}, r.playerNames())
	default:
		next := (idx + 1) % len(r.roster)
		r.state = Playing{TurnIndex: next, Board: b}
		r.broadcast(&Event{
			Kind:       EventNextTurn,
			Room:       r.id,
			NextPlayer: r.roster[next].Name(),
			Board:      viewOf(b),
		})
	}
	return true, nil
}

// RemoveClient drops c from the roster. It reports true when the roster is
// now empty; the room is then closed and its owner should destroy it.
func (r *Room) RemoveClient(c *Client) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(c)
	if idx < 0 {
		return false, ErrNotInRoom
	}

	players := r.playerNames()
	r.roster = slices.Delete(r.roster, idx, idx+1)
	r.rotateShapes(idx)
	c.release(r.id)

	r.log.Debug().Str("client_id", c.ID).Str("player", c.Name()).Msg("client left room")

	newAdmin := ""
	if r.admin == c {
		r.admin = nil
		if len(r.roster) > 0 {
			r.admin = r.roster[0]
			newAdmin = r.admin.Name()
		}
	}

	if len(r.roster) == 0 {
		r.closed = true
		return true, nil
	}

	if _, playing := r.state.(Playing); playing && len(r.roster) == 1 {
		r.end(OpponentDisconnected{}, players)
	}

	r.broadcast(&Event{
		Kind:     EventPlayerChange,
		Room:     r.id,
		Players:  r.playerNames(),
		NewAdmin: newAdmin,
	})
	return false, nil
}

// Broadcast sends ev to every roster member.
func (r *Room) Broadcast(ev *Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcast(ev)
}

// end moves a running game to Ended and announces it. players is the roster
// the game was played with. Caller holds r.mu.
func (r *Room) end(reason EndReason, players []string) {
	playing, ok := r.state.(Playing)
	if !ok {
		r.log.Error().Str("state", r.state.stateName()).Msg("end requested outside a running game")
		return
	}
	r.state = Ended{Board: playing.Board, Reason: reason}

	r.log.Info().Str("reason", reason.reasonName()).Int("moves", r.moves).Msg("game ended")

	view := viewOf(playing.Board)
	r.broadcast(&Event{Kind: EventGameEnd, Room: r.id, Board: view, Reason: reason})

	if r.sink != nil {
		r.sink.RecordMatch(MatchResult{
			RoomID:     r.id,
			Players:    players,
			Dimensions: playing.Board.Dimensions(),
			SideLength: playing.Board.SideLength(),
			Reason:     reason,
			Moves:      r.moves,
			Board:      view.Cells,
			EndedAt:    time.Now().UTC(),
		})
	}
}

// rotateShapes moves the shape of the removed slot to the tail so the
// remaining players keep theirs.
func (r *Room) rotateShapes(idx int) {
	if idx >= len(r.settings.Shapes) {
		return
	}
	removed := r.settings.Shapes[idx]
	shapes := slices.Delete(r.settings.Shapes, idx, idx+1)
	r.settings.Shapes = append(shapes, removed)
}

func (r *Room) broadcast(ev *Event) {
	for _, c := range r.roster {
		r.send(c, ev)
	}
}

func (r *Room) send(c *Client, ev *Event) {
	if !c.Send(ev) {
		r.log.Warn().Str("client_id", c.ID).Stringer("event", ev.Kind).Msg("client queue full, event dropped")
	}
}

func (r *Room) indexOf(c *Client) int {
	return slices.Index(r.roster, c)
}

func (r *Room) nameAvailable(name string) bool {
	for _, c := range r.roster {
		if c.Name() == name {
			return false
		}
	}
	return true
}

func (r *Room) playerNames() []string {
	names := make([]string, len(r.roster))
	for i, c := range r.roster {
		names[i] = c.Name()
	}
	return names
}
