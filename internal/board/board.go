// Package board implements the N-dimensional tic-tac-toe grid and its
// win/tie detection.
package board

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrInvalidBoard is returned when a board cannot be built for the given size.
	ErrInvalidBoard = errors.New("invalid board size")
	// ErrDimensionMismatch is returned when a position has the wrong number of components.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrOutOfBounds is returned when a position component lies outside [0, side).
	ErrOutOfBounds = errors.New("position out of bounds")
	// ErrCellOccupied is returned when setting a cell that already holds an occupant.
	ErrCellOccupied = errors.New("cell occupied")
	// ErrCellEmpty is returned when a win check is requested for an empty cell.
	ErrCellEmpty = errors.New("cell empty")
)

// Occupant identifies which player placed a mark (the roster index).
type Occupant int

// Position is a coordinate on the board, one component per dimension.
type Position []int

// String renders the position as comma separated components ("0,2,1").
func (p Position) String() string {
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

// Clone returns a copy of the position.
func (p Position) Clone() Position {
	return append(Position(nil), p...)
}

// ParsePosition parses the comma separated form produced by String.
func ParsePosition(s string) (Position, error) {
	if s == "" {
		return nil, fmt.Errorf("parse position: empty")
	}
	parts := strings.Split(s, ",")
	pos := make(Position, len(parts))
	for i, part := range parts {
		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("parse position %q: %w", s, err)
		}
		pos[i] = v
	}
	return pos, nil
}

// Board is a sparse D-dimensional grid with side length S.
// It is not safe for concurrent use; the owning room serializes access.
type Board struct {
	dims  int
	side  int
	total uint64
	cells map[uint64]Occupant
}

// New creates an empty board with the given dimension count and side length.
func New(dims, side int) (*Board, error) {
	if dims < 1 || side < 1 {
		return nil, fmt.Errorf("%w: dims=%d side=%d", ErrInvalidBoard, dims, side)
	}

	total := uint64(1)
	for range dims {
		if total > math.MaxUint64/uint64(side) {
			return nil, fmt.Errorf("%w: %d^%d cells overflow", ErrInvalidBoard, side, dims)
		}
		total *= uint64(side)
	}

	return &Board{
		dims:  dims,
		side:  side,
		total: total,
		cells: make(map[uint64]Occupant),
	}, nil
}

// Dimensions returns the dimension count D.
func (b *Board) Dimensions() int { return b.dims }

// SideLength returns the side length S.
func (b *Board) SideLength() int { return b.side }

// OccupiedCount returns how many cells hold an occupant.
func (b *Board) OccupiedCount() uint64 { return uint64(len(b.cells)) }

// TotalCells returns S^D.
func (b *Board) TotalCells() uint64 { return b.total }

// Get returns the occupant at pos and whether the cell is filled.
func (b *Board) Get(pos Position) (Occupant, bool, error) {
	idx, err := b.index(pos)
	if err != nil {
		return 0, false, err
	}
	occ, ok := b.cells[idx]
	return occ, ok, nil
}

// Set stores occupant at pos. An already filled cell is left untouched.
func (b *Board) Set(pos Position, occupant Occupant) error {
	idx, err := b.index(pos)
	if err != nil {
		return err
	}
	if _, ok := b.cells[idx]; ok {
		return fmt.Errorf("%w: %s", ErrCellOccupied, pos)
	}
	b.cells[idx] = occupant
	return nil
}

// Snapshot returns a copy of the filled cells keyed by Position.String.
func (b *Board) Snapshot() map[string]Occupant {
	out := make(map[string]Occupant, len(b.cells))
	pos := make(Position, b.dims)
	for idx, occ := range b.cells {
		b.decode(idx, pos)
		out[pos.String()] = occ
	}
	return out
}

// Validate checks that pos has D components, each within [0, S).
func (b *Board) Validate(pos Position) error {
	if len(pos) != b.dims {
		return fmt.Errorf("%w: got %d components, want %d", ErrDimensionMismatch, len(pos), b.dims)
	}
	for i, v := range pos {
		if v < 0 || v >= b.side {
			return fmt.Errorf("%w: component %d is %d, side length %d", ErrOutOfBounds, i, v, b.side)
		}
	}
	return nil
}

// index maps pos to its mixed-radix cell index.
func (b *Board) index(pos Position) (uint64, error) {
	if err := b.Validate(pos); err != nil {
		return 0, err
	}
	return b.indexUnchecked(pos), nil
}

func (b *Board) indexUnchecked(pos Position) uint64 {
	var idx uint64
	mult := uint64(1)
	for _, v := range pos {
		idx += uint64(v) * mult
		mult *= uint64(b.side)
	}
	return idx
}

func (b *Board) decode(idx uint64, into Position) {
	side := uint64(b.side)
	for i := range into {
		into[i] = int(idx % side)
		idx /= side
	}
}
