package core

import "github.com/vovakirdan/hypertac-server/internal/board"

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandSetup is the connection handshake; it is only acknowledged.
	CommandSetup CommandKind = iota
	// CommandCreateRoom creates a room with the caller as admin.
	CommandCreateRoom
	// CommandJoinRoom adds the caller to an existing room.
	CommandJoinRoom
	// CommandLeaveRoom removes the caller from its room.
	CommandLeaveRoom
	// CommandSelectShape changes the caller's shape.
	CommandSelectShape
	// CommandEditSettings changes the room's board settings (admin only).
	CommandEditSettings
	// CommandStartGame starts the game.
	CommandStartGame
	// CommandPlace puts the caller's mark on the board.
	CommandPlace
)

// Command represents an action requested by a client.
type Command struct {
	Kind       CommandKind
	Room       string
	PlayerName string
	Shape      Shape
	Settings   SettingsPatch
	Position   board.Position
}
