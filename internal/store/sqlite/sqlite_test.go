package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/hypertac-server/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGetMatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ended := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	in := &store.Match{
		RoomID:         "a1b2c3d4",
		Players:        []string{"alice", "bob"},
		DimensionCount: 2,
		SideLength:     3,
		Reason:         "board",
		Winner:         "alice",
		LineStart:      []int{0, 2},
		LineDirection:  []int{1, -1},
		Moves:          5,
		Board:          map[string]int{"0,2": 0, "1,1": 0, "2,0": 0, "0,0": 1, "1,0": 1},
		EndedAt:        ended,
	}

	id, err := s.SaveMatch(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, id, in.ID)

	got, err := s.GetMatch(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, in.RoomID, got.RoomID)
	assert.Equal(t, in.Players, got.Players)
	assert.Equal(t, in.LineStart, got.LineStart)
	assert.Equal(t, in.LineDirection, got.LineDirection)
	assert.Equal(t, in.Board, got.Board)
	assert.Equal(t, "alice", got.Winner)
	assert.Equal(t, 5, got.Moves)
	assert.True(t, ended.Equal(got.EndedAt), "ended_at %v", got.EndedAt)
}

func TestSaveMatch_WithoutLine(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.SaveMatch(ctx, &store.Match{
		RoomID:         "r",
		Players:        []string{"x", "o"},
		DimensionCount: 2,
		SideLength:     3,
		Reason:         "tie",
		Moves:          9,
		Board:          map[string]int{},
		EndedAt:        time.Now(),
	})
	require.NoError(t, err)

	got, err := s.GetMatch(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got.LineStart)
	assert.Nil(t, got.LineDirection)
	assert.Empty(t, got.Winner)
}

func TestGetMatch_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetMatch(context.Background(), 42)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListMatches(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rosters := [][]string{
		{"alice", "bob"},
		{"carol", "alice"},
		{"bob", "dave"},
	}
	for i, players := range rosters {
		_, err := s.SaveMatch(ctx, &store.Match{
			RoomID:         "room",
			Players:        players,
			DimensionCount: 2,
			SideLength:     3,
			Reason:         "opponent_disconnected",
			Board:          map[string]int{},
			EndedAt:        base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	tests := []struct {
		name     string
		filter   store.MatchFilter
		expected [][]string
	}{
		{
			name:     "all newest first",
			filter:   store.MatchFilter{},
			expected: [][]string{{"bob", "dave"}, {"carol", "alice"}, {"alice", "bob"}},
		},
		{
			name:     "by player",
			filter:   store.MatchFilter{Player: "alice"},
			expected: [][]string{{"carol", "alice"}, {"alice", "bob"}},
		},
		{
			name:     "limited",
			filter:   store.MatchFilter{Player: "bob", Limit: 1},
			expected: [][]string{{"bob", "dave"}},
		},
		{
			name:     "unknown player",
			filter:   store.MatchFilter{Player: "zoe"},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches, err := s.ListMatches(ctx, tt.filter)
			require.NoError(t, err)

			var got [][]string
			for _, m := range matches {
				got = append(got, m.Players)
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNewWithSetup_FailingSetup(t *testing.T) {
	_, err := NewWithSetup(":memory:", func(db *sql.DB) error {
		_, err := db.Exec("CREATE TABLE broken (")
		return err
	})
	assert.Error(t, err)
}
