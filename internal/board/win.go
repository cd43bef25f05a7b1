package board

import "fmt"

// Direction is a line orientation with components in {-1, 0, 1}, never all zero.
type Direction []int

// Outcome classifies the result of a win check.
type Outcome int

const (
	// OutcomeNone means the game continues.
	OutcomeNone Outcome = iota
	// OutcomeWin means the placed cell completed a full line.
	OutcomeWin
	// OutcomeTie means every cell is filled and nobody won.
	OutcomeTie
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWin:
		return "win"
	case OutcomeTie:
		return "tie"
	default:
		return "none"
	}
}

// Line is a full line of S cells: Start plus k*Direction for k in [0, S).
type Line struct {
	Start     Position
	Direction Direction
}

// Result is returned by CheckWinForChangedPosition.
type Result struct {
	Outcome Outcome
	// Winner and Line are set only for OutcomeWin.
	Winner Occupant
	Line   Line
}

// CheckWinForChangedPosition reports whether the occupant at pos completed a
// full line through pos, or whether the board is now full.
// It must be called right after a successful Set(pos, ...).
func (b *Board) CheckWinForChangedPosition(pos Position) (Result, error) {
	occ, ok, err := b.Get(pos)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrCellEmpty, pos)
	}

	var winning *Line
	eachDirection(b.dims, func(dir Direction) bool {
		if !onFullLine(dir, pos, b.side) {
			return true
		}
		start := lineStart(dir, pos, b.side)
		if !b.lineHeldBy(start, dir, occ) {
			return true
		}
		winning = &Line{Start: start, Direction: append(Direction(nil), dir...)}
		return false
	})

	switch {
	case winning != nil:
		return Result{Outcome: OutcomeWin, Winner: occ, Line: *winning}, nil
	case b.OccupiedCount() == b.total:
		return Result{Outcome: OutcomeTie}, nil
	default:
		return Result{Outcome: OutcomeNone}, nil
	}
}

// eachDirection calls fn for every direction whose first non-zero component
// is +1. A direction and its negation span the same cells, so only one of
// each pair is visited. fn receives a reused slice and returns false to stop.
func eachDirection(dims int, fn func(Direction) bool) {
	dir := make(Direction, dims)
	for i := range dir {
		dir[i] = -1
	}
	for {
		if canonical(dir) && !fn(dir) {
			return
		}
		// odometer over {-1, 0, 1}^dims
		i := 0
		for ; i < dims; i++ {
			if dir[i] < 1 {
				dir[i]++
				break
			}
			dir[i] = -1
		}
		if i == dims {
			return
		}
	}
}

func canonical(dir Direction) bool {
	for _, v := range dir {
		if v != 0 {
			return v == 1
		}
	}
	return false
}

// onFullLine reports whether the line through pos along dir spans exactly
// side cells: pos must sit at the same step from the start edge in every
// dimension the direction moves along.
func onFullLine(dir Direction, pos Position, side int) bool {
	expected := -1
	for i, d := range dir {
		if d == 0 {
			continue
		}
		dist := edgeDistance(d, pos[i], side)
		if expected == -1 {
			expected = dist
		} else if dist != expected {
			return false
		}
	}
	return true
}

func edgeDistance(d, v, side int) int {
	if d > 0 {
		return v
	}
	return side - 1 - v
}

func lineStart(dir Direction, pos Position, side int) Position {
	start := make(Position, len(pos))
	for i, d := range dir {
		switch d {
		case 1:
			start[i] = 0
		case -1:
			start[i] = side - 1
		default:
			start[i] = pos[i]
		}
	}
	return start
}

func (b *Board) lineHeldBy(start Position, dir Direction, occ Occupant) bool {
	cur := start.Clone()
	for range b.side {
		got, ok := b.cells[b.indexUnchecked(cur)]
		if !ok || got != occ {
			return false
		}
		for i, d := range dir {
			cur[i] += d
		}
	}
	return true
}
