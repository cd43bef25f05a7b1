package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Match is a finished game as kept in the archive.
type Match struct {
	ID             int64
	RoomID         string
	Players        []string // roster order; index is the board occupant
	DimensionCount int
	SideLength     int
	Reason         string // board, tie or opponent_disconnected
	Winner         string // empty unless Reason is board
	LineStart      []int
	LineDirection  []int
	Moves          int
	Board          map[string]int
	EndedAt        time.Time
}

// MatchFilter narrows ListMatches.
type MatchFilter struct {
	// Player keeps only matches this player took part in. Empty means all.
	Player string
	// Limit caps the number of results; zero or less means DefaultMatchLimit.
	Limit int
}

// DefaultMatchLimit is used when a filter has no limit.
const DefaultMatchLimit = 20

// MatchStore persists finished matches.
type MatchStore interface {
	// SaveMatch inserts m and returns its new ID.
	SaveMatch(ctx context.Context, m *Match) (int64, error)
	// GetMatch returns the match with the given ID or ErrNotFound.
	GetMatch(ctx context.Context, id int64) (*Match, error)
	// ListMatches returns matches newest first.
	ListMatches(ctx context.Context, filter MatchFilter) ([]*Match, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	MatchStore

	// Close closes the underlying database connection.
	Close() error
}
