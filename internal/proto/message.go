package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	ProtocolVersion = 1

	InboundTypeSetup        = "setup"
	InboundTypeCreateRoom   = "createRoom"
	InboundTypeJoinRoom     = "joinRoom"
	InboundTypeLeaveRoom    = "leaveRoom"
	InboundTypeSelectShape  = "selectShape"
	InboundTypeEditSettings = "editSettings"
	InboundTypeStartGame    = "startGame"
	InboundTypePlace        = "place"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"
)

// SetupData opens a session.
type SetupData struct {
	Protocol int `json:"protocol,omitempty"`
}

// CreateRoomData asks for a new room with the sender as admin.
type CreateRoomData struct {
	PlayerName string `json:"playerName"`
}

// JoinRoomData asks to enter an existing room.
type JoinRoomData struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

// Shape is a player's mark.
type Shape struct {
	Type  string `json:"type"`
	Color string `json:"color"`
}

// SelectShapeData changes the sender's shape.
type SelectShapeData struct {
	Shape Shape `json:"shape"`
}

// EditSettingsData changes board settings; absent fields stay as they are.
type EditSettingsData struct {
	DimensionCount *int `json:"dimensionCount,omitempty"`
	SideLength     *int `json:"sideLength,omitempty"`
}

// PlaceData puts the sender's mark at Position.
type PlaceData struct {
	Position []int `json:"position"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// EventSetup acknowledges a setup request.
type EventSetup struct {
	ClientID string `json:"clientId"`
	Protocol int    `json:"protocol"`
}

// Settings is the full room configuration.
type Settings struct {
	DimensionCount int     `json:"dimensionCount"`
	SideLength     int     `json:"sideLength"`
	Shapes         []Shape `json:"shapes"`
}

// EventRoomSetup gives a newly joined player the whole room state.
type EventRoomSetup struct {
	Room     string   `json:"room"`
	Admin    string   `json:"admin"`
	Self     string   `json:"self"`
	Players  []string `json:"players"`
	Settings Settings `json:"settings"`
}

// EventPlayerChange carries the roster after someone joined or left.
type EventPlayerChange struct {
	Room     string   `json:"room"`
	Players  []string `json:"players"`
	NewAdmin string   `json:"newAdmin,omitempty"`
}

// EventRoomSettings carries only the settings that changed.
type EventRoomSettings struct {
	Room           string  `json:"room"`
	DimensionCount *int    `json:"dimensionCount,omitempty"`
	SideLength     *int    `json:"sideLength,omitempty"`
	Shapes         []Shape `json:"shapes,omitempty"`
}

// Board is a board snapshot; Cells maps "x,y,..." to the roster index holding it.
type Board struct {
	DimensionCount int            `json:"dimensionCount"`
	SideLength     int            `json:"sideLength"`
	Cells          map[string]int `json:"cells"`
}

// EventNextTurn announces whose move it is.
type EventNextTurn struct {
	Room       string `json:"room"`
	NextPlayer string `json:"nextPlayer"`
	Board      Board  `json:"board"`
}

// Line is a winning line: Start plus k*Direction.
type Line struct {
	Start     []int `json:"start"`
	Direction []int `json:"direction"`
}

// EventGameEnd announces the final board and why the game stopped.
type EventGameEnd struct {
	Room   string `json:"room"`
	Board  Board  `json:"board"`
	Reason string `json:"reason"`
	Winner string `json:"winner,omitempty"`
	Line   *Line  `json:"line,omitempty"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
