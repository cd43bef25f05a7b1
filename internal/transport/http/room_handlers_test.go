package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/hypertac-server/internal/core"
)

func TestListRooms(t *testing.T) {
	ts := startTestServer(t, nil, nil)
	dir := ts.hub.Directory()

	alice := core.NewClient("a", 0)
	bob := core.NewClient("b", 0)
	carol := core.NewClient("c", 0)
	for _, c := range []*core.Client{alice, bob, carol} {
		dir.Register(c)
	}

	playing, err := dir.CreateRoom(alice, "alice")
	require.NoError(t, err)
	_, err = dir.JoinRoom(bob, playing.ID(), "bob")
	require.NoError(t, err)
	require.NoError(t, playing.StartGame(alice))

	waiting, err := dir.CreateRoom(carol, "carol")
	require.NoError(t, err)

	// Test 1: list everything
	resp := httptest.NewRecorder()
	ts.Config.Handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/rooms", nil))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var rooms []RoomResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &rooms))
	require.Len(t, rooms, 2)

	byID := map[string]RoomResponse{}
	for _, r := range rooms {
		byID[r.ID] = r
	}
	assert.Equal(t, "playing", byID[playing.ID()].State)
	assert.Equal(t, []string{"alice", "bob"}, byID[playing.ID()].Players)
	assert.Equal(t, "carol", byID[waiting.ID()].Admin)
	assert.Equal(t, 3, byID[waiting.ID()].SideLength)

	// Test 2: only joinable rooms
	resp = httptest.NewRecorder()
	ts.Config.Handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/rooms?state=waiting", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &rooms))
	require.Len(t, rooms, 1)
	assert.Equal(t, waiting.ID(), rooms[0].ID)

	// Test 3: unknown state filter
	resp = httptest.NewRecorder()
	ts.Config.Handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/rooms?state=paused", nil))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGetRoom(t *testing.T) {
	ts := startTestServer(t, nil, nil)
	dir := ts.hub.Directory()

	alice := core.NewClient("a", 0)
	dir.Register(alice)
	room, err := dir.CreateRoom(alice, "alice")
	require.NoError(t, err)

	resp := httptest.NewRecorder()
	ts.Config.Handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/rooms/"+room.ID(), nil))
	require.Equal(t, http.StatusOK, resp.Code)

	var got RoomResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Equal(t, room.ID(), got.ID)
	assert.Equal(t, "waiting", got.State)

	resp = httptest.NewRecorder()
	ts.Config.Handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/rooms/nope", nil))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
