package core

import "github.com/vovakirdan/hypertac-server/internal/board"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventSetup acknowledges a setup request.
	EventSetup EventKind = iota
	// EventRoomSetup delivers the full room state to a client that just joined.
	EventRoomSetup
	// EventPlayerChange notifies the room about a roster change.
	EventPlayerChange
	// EventRoomSettings carries changed room settings.
	EventRoomSettings
	// EventNextTurn carries the board and the player whose turn it is.
	EventNextTurn
	// EventGameEnd carries the final board and the reason the game ended.
	EventGameEnd
	// EventError notifies a client about a failed request.
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventSetup:
		return "setup"
	case EventRoomSetup:
		return "room_setup"
	case EventPlayerChange:
		return "player_change"
	case EventRoomSettings:
		return "room_settings"
	case EventNextTurn:
		return "next_turn"
	case EventGameEnd:
		return "game_end"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is sent to clients to describe what happened in the system.
// An event may be shared between recipients and must not be mutated after sending.
type Event struct {
	Kind EventKind
	Room string

	// EventSetup
	ClientID string

	// EventRoomSetup / EventPlayerChange
	Admin    string
	Self     string
	Players  []string
	NewAdmin string // set only when the admin changed
	Settings *Settings

	// EventRoomSettings
	Delta *SettingsDelta

	// EventNextTurn / EventGameEnd
	NextPlayer string
	Board      *BoardView
	Reason     EndReason

	Error *CoreError
}

// BoardView is an immutable copy of a board for delivery to clients.
type BoardView struct {
	Dimensions int
	SideLength int
	Cells      map[string]board.Occupant
}

func viewOf(b *board.Board) *BoardView {
	return &BoardView{
		Dimensions: b.Dimensions(),
		SideLength: b.SideLength(),
		Cells:      b.Snapshot(),
	}
}
