package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/hypertac-server/internal/core"
)

// LobbyHandlers provides HTTP handlers listing live rooms.
type LobbyHandlers struct {
	dir *core.Directory
	log *zerolog.Logger
}

// NewLobbyHandlers creates a new lobby handlers instance.
func NewLobbyHandlers(dir *core.Directory, logger *zerolog.Logger) *LobbyHandlers {
	return &LobbyHandlers{
		dir: dir,
		log: logger,
	}
}

// RoomResponse represents a live room in API responses.
type RoomResponse struct {
	ID             string   `json:"id"`
	Admin          string   `json:"admin"`
	Players        []string `json:"players"`
	State          string   `json:"state"`
	DimensionCount int      `json:"dimension_count"`
	SideLength     int      `json:"side_length"`
}

// ListRoomsQuery filters the lobby listing.
type ListRoomsQuery struct {
	State string `form:"state" binding:"omitempty,oneof=waiting playing ended"`
}

// ListRooms handles listing live rooms.
// GET /api/rooms
func (h *LobbyHandlers) ListRooms(c *gin.Context) {
	var q ListRoomsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.log.Debug().Err(err).Msg("invalid list rooms query")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query"})
		return
	}

	infos := h.dir.Rooms()
	response := make([]RoomResponse, 0, len(infos))
	for _, info := range infos {
		if q.State != "" && info.State != q.State {
			continue
		}
		response = append(response, roomResponse(info))
	}

	h.log.Debug().Int("room_count", len(response)).Msg("rooms listed successfully")
	c.JSON(http.StatusOK, response)
}

// GetRoom handles fetching a single live room.
// GET /api/rooms/:id
func (h *LobbyHandlers) GetRoom(c *gin.Context) {
	room, ok := h.dir.LookupRoom(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
		return
	}
	c.JSON(http.StatusOK, roomResponse(room.Info()))
}

func roomResponse(info core.RoomInfo) RoomResponse {
	return RoomResponse{
		ID:             info.ID,
		Admin:          info.Admin,
		Players:        info.Players,
		State:          info.State,
		DimensionCount: info.DimensionCount,
		SideLength:     info.SideLength,
	}
}
