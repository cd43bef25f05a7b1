package core

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/hypertac-server/internal/config"
)

func TestCreateRoom_RegistersWithAdmin(t *testing.T) {
	d := newTestDirectory(nil)
	alice := newTestClient(d, "a")

	room, err := d.CreateRoom(alice, "alice")
	require.NoError(t, err)
	assert.Equal(t, "room1", room.ID())
	assert.Equal(t, "room1", alice.RoomID())
	assert.Equal(t, "alice", alice.Name())
	assert.True(t, room.IsAdmin(alice))

	got, ok := d.LookupRoom("room1")
	require.True(t, ok)
	assert.Same(t, room, got)

	setup := mustEvent(t, alice.Events, EventRoomSetup)
	assert.Equal(t, "alice", setup.Admin)
	assert.Equal(t, "alice", setup.Self)
}

func TestCreateRoom_Rejections(t *testing.T) {
	d := newTestDirectory(nil)
	alice := newTestClient(d, "a")

	_, err := d.CreateRoom(alice, "")
	assert.ErrorIs(t, err, ErrNameEmpty)
	assert.Equal(t, 0, d.RoomCount())

	_, err = d.CreateRoom(alice, "alice")
	require.NoError(t, err)
	_, err = d.CreateRoom(alice, "alice")
	assert.ErrorIs(t, err, ErrAlreadyInAnyRoom)
	assert.Equal(t, 1, d.RoomCount())
}

func TestCreateRoom_RetriesOnCollision(t *testing.T) {
	d := NewDirectory(config.DefaultGame(), nil, nil)
	ids := []string{"aaaa", "aaaa", "aaaa", "bbbb"}
	d.newRoomID = func() (string, error) {
		id := ids[0]
		ids = ids[1:]
		return id, nil
	}

	first, err := d.CreateRoom(newTestClient(d, "a"), "alice")
	require.NoError(t, err)
	second, err := d.CreateRoom(newTestClient(d, "b"), "bob")
	require.NoError(t, err)

	assert.Equal(t, "aaaa", first.ID())
	assert.Equal(t, "bbbb", second.ID())
	assert.Empty(t, ids)
}

func TestCreateRoom_GivesUpWhenIDsExhausted(t *testing.T) {
	d := NewDirectory(config.DefaultGame(), nil, nil)
	d.newRoomID = func() (string, error) { return "same", nil }

	_, err := d.CreateRoom(newTestClient(d, "a"), "alice")
	require.NoError(t, err)

	bob := newTestClient(d, "b")
	_, err = d.CreateRoom(bob, "bob")
	assert.ErrorIs(t, err, ErrInternal)
	_, isCore := AsCoreError(err)
	assert.False(t, isCore)
	assert.Empty(t, bob.RoomID())
}

func TestCreateRoom_IDGeneratorFailure(t *testing.T) {
	d := NewDirectory(config.DefaultGame(), nil, nil)
	d.newRoomID = func() (string, error) { return "", errors.New("entropy exhausted") }

	_, err := d.CreateRoom(newTestClient(d, "a"), "alice")
	assert.ErrorIs(t, err, ErrInternal)
}

func TestCreateRoom_DefaultIDs(t *testing.T) {
	d := NewDirectory(config.DefaultGame(), nil, nil)
	room, err := d.CreateRoom(newTestClient(d, "a"), "alice")
	require.NoError(t, err)
	assert.Len(t, room.ID(), 2*config.DefaultGame().RoomIDBytes)
}

func TestJoinRoom_UnknownRoom(t *testing.T) {
	d := newTestDirectory(nil)
	_, err := d.JoinRoom(newTestClient(d, "a"), "nope", "alice")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestLeaveRoom_DestroysEmptyRoom(t *testing.T) {
	d := newTestDirectory(nil)
	room, alice, bob := newWaitingRoom(t, d)

	require.NoError(t, d.LeaveRoom(alice))
	_, ok := d.LookupRoom(room.ID())
	assert.True(t, ok)

	require.NoError(t, d.LeaveRoom(bob))
	_, ok = d.LookupRoom(room.ID())
	assert.False(t, ok)
	assert.Equal(t, 0, d.RoomCount())

	assert.ErrorIs(t, d.LeaveRoom(bob), ErrNotInRoom)

	// both may start over elsewhere
	_, err := d.CreateRoom(alice, "alice")
	require.NoError(t, err)
}

func TestUnregister_IsNoopOutsideRooms(t *testing.T) {
	d := newTestDirectory(nil)
	alice := newTestClient(d, "a")
	assert.Equal(t, 1, d.ClientCount())

	d.Unregister(alice)
	d.Unregister(alice)
	assert.Equal(t, 0, d.ClientCount())
	_, ok := d.Client("a")
	assert.False(t, ok)
}

func TestUnregister_LeavesRoom(t *testing.T) {
	d := newTestDirectory(nil)
	room, alice, bob := newPlayingRoom(t, d)

	d.Unregister(alice)

	ev := mustEvent(t, bob.Events, EventGameEnd)
	assert.IsType(t, OpponentDisconnected{}, ev.Reason)
	assert.True(t, room.IsAdmin(bob))

	d.Unregister(bob)
	assert.Equal(t, 0, d.RoomCount())
	assert.Equal(t, 0, d.ClientCount())
}

func TestRooms_SortedSummaries(t *testing.T) {
	d := newTestDirectory(nil)
	_, err := d.CreateRoom(newTestClient(d, "a"), "alice")
	require.NoError(t, err)
	room, _, _ := newPlayingRoom(t, d)

	infos := d.Rooms()
	require.Len(t, infos, 2)
	assert.Equal(t, "room1", infos[0].ID)
	assert.Equal(t, "waiting", infos[0].State)
	assert.Equal(t, room.ID(), infos[1].ID)
	assert.Equal(t, "playing", infos[1].State)
	assert.Equal(t, []string{"alice", "bob"}, infos[1].Players)
}

func TestJoinRoom_ConcurrentSameNameOnlyOneWins(t *testing.T) {
	d := newTestDirectory(nil)
	admin := newTestClient(d, "admin")
	room, err := d.CreateRoom(admin, "admin")
	require.NoError(t, err)

	const n = 16
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		joined int
	)
	for i := range n {
		c := newTestClient(d, fmt.Sprintf("c%d", i))
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := d.JoinRoom(c, room.ID(), "dup"); err == nil {
				mu.Lock()
				joined++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, ErrNameTaken)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, joined)
	assert.Len(t, room.Info().Players, 2)
}

func TestDirectory_ConcurrentRoomsPlayIndependently(t *testing.T) {
	sink := &recordingSink{}
	d := newTestDirectory(sink)

	const games = 20
	var wg sync.WaitGroup
	for i := range games {
		wg.Add(1)
		go func() {
			defer wg.Done()

			x := NewClient(fmt.Sprintf("x%d", i), 64)
			o := NewClient(fmt.Sprintf("o%d", i), 64)
			d.Register(x)
			d.Register(o)

			room, err := d.CreateRoom(x, "x")
			if !assert.NoError(t, err) {
				return
			}
			if _, err := d.JoinRoom(o, room.ID(), "o"); !assert.NoError(t, err) {
				return
			}
			if !assert.NoError(t, room.StartGame(x)) {
				return
			}
			for _, mv := range []struct {
				c   *Client
				pos []int
			}{
				{x, []int{0, 0}}, {o, []int{0, 1}},
				{x, []int{1, 0}}, {o, []int{1, 1}},
				{x, []int{2, 0}},
			} {
				placed, err := room.Place(mv.c, mv.pos)
				assert.NoError(t, err)
				assert.True(t, placed)
			}
			d.Unregister(x)
			d.Unregister(o)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, d.RoomCount())
	assert.Equal(t, 0, d.ClientCount())
	results := sink.all()
	require.Len(t, results, games)
	for _, r := range results {
		win, ok := r.Reason.(BoardWin)
		require.True(t, ok)
		assert.Equal(t, "x", win.Winner)
	}
}
