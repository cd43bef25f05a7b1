package core

import "github.com/vovakirdan/hypertac-server/internal/board"

// GameState is one of Waiting, Playing or Ended.
type GameState interface {
	stateName() string
}

// Waiting is the pre-game state; roster and settings may change.
type Waiting struct{}

// Playing is a running game. TurnIndex indexes the roster.
type Playing struct {
	TurnIndex int
	Board     *board.Board
}

// Ended is terminal.
type Ended struct {
	Board  *board.Board
	Reason EndReason
}

func (Waiting) stateName() string { return "waiting" }
func (Playing) stateName() string { return "playing" }
func (Ended) stateName() string   { return "ended" }

// EndReason is one of BoardWin, Tie or OpponentDisconnected.
type EndReason interface {
	reasonName() string
}

// BoardWin records the winning player and the completed line.
type BoardWin struct {
	Winner   string
	Occupant board.Occupant
	Line     board.Line
}

// Tie means the board filled up without a winner.
type Tie struct{}

// OpponentDisconnected means the game lost a player mid-match.
type OpponentDisconnected struct{}

func (BoardWin) reasonName() string             { return "board" }
func (Tie) reasonName() string                  { return "tie" }
func (OpponentDisconnected) reasonName() string { return "opponent_disconnected" }

// ReasonName returns the wire name of r.
func ReasonName(r EndReason) string {
	if r == nil {
		return ""
	}
	return r.reasonName()
}
