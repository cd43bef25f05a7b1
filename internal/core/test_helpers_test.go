package core

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/hypertac-server/internal/board"
	"github.com/vovakirdan/hypertac-server/internal/config"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// drain discards everything queued for c.
func drain(c *Client) {
	for {
		select {
		case <-c.Events:
		default:
			return
		}
	}
}

type recordingSink struct {
	mu      sync.Mutex
	results []MatchResult
}

func (s *recordingSink) RecordMatch(r MatchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
}

func (s *recordingSink) all() []MatchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]MatchResult(nil), s.results...)
}

// newTestDirectory returns a directory with predictable room ids room1, room2, ...
func newTestDirectory(sink MatchSink) *Directory {
	d := NewDirectory(config.DefaultGame(), sink, nil)
	n := 0
	d.newRoomID = func() (string, error) {
		n++
		return fmt.Sprintf("room%d", n), nil
	}
	return d
}

func newTestClient(d *Directory, id string) *Client {
	c := NewClient(id, 64)
	d.Register(c)
	return c
}

// newWaitingRoom opens a room administered by alice with bob joined.
func newWaitingRoom(t *testing.T, d *Directory) (*Room, *Client, *Client) {
	t.Helper()

	alice := newTestClient(d, "a")
	bob := newTestClient(d, "b")

	room, err := d.CreateRoom(alice, "alice")
	require.NoError(t, err)
	_, err = d.JoinRoom(bob, room.ID(), "bob")
	require.NoError(t, err)
	return room, alice, bob
}

// newPlayingRoom is newWaitingRoom with the game started and queues drained.
func newPlayingRoom(t *testing.T, d *Directory) (*Room, *Client, *Client) {
	t.Helper()

	room, alice, bob := newWaitingRoom(t, d)
	require.NoError(t, room.StartGame(alice))
	drain(alice)
	drain(bob)
	return room, alice, bob
}

func mustPlace(t *testing.T, r *Room, c *Client, pos board.Position) {
	t.Helper()
	placed, err := r.Place(c, pos)
	require.NoError(t, err, "place %s", pos)
	require.True(t, placed, "place %s", pos)
}
