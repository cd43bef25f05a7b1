package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/hypertac-server/internal/store"
)

// MatchHandlers provides HTTP handlers for the match archive.
type MatchHandlers struct {
	store store.MatchStore
	log   *zerolog.Logger
}

// NewMatchHandlers creates a new match handlers instance. st may be nil.
func NewMatchHandlers(st store.MatchStore, logger *zerolog.Logger) *MatchHandlers {
	return &MatchHandlers{
		store: st,
		log:   logger,
	}
}

// ListMatchesQuery filters the archive listing.
type ListMatchesQuery struct {
	Limit  *int   `form:"limit" binding:"omitempty,min=1,max=100"`
	Player string `form:"player" binding:"omitempty,max=64"`
}

// LineResponse is a winning line.
type LineResponse struct {
	Start     []int `json:"start"`
	Direction []int `json:"direction"`
}

// MatchResponse represents an archived match in API responses.
type MatchResponse struct {
	ID             int64          `json:"id"`
	RoomID         string         `json:"room_id"`
	Players        []string       `json:"players"`
	DimensionCount int            `json:"dimension_count"`
	SideLength     int            `json:"side_length"`
	Reason         string         `json:"reason"`
	Winner         string         `json:"winner,omitempty"`
	Line           *LineResponse  `json:"line,omitempty"`
	Moves          int            `json:"moves"`
	Board          map[string]int `json:"board"`
	EndedAt        string         `json:"ended_at"`
}

// ListMatches handles listing recent matches.
// GET /api/matches
func (h *MatchHandlers) ListMatches(c *gin.Context) {
	if !h.enabled(c) {
		return
	}

	var q ListMatchesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.log.Debug().Err(err).Msg("invalid list matches query")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid query"})
		return
	}

	filter := store.MatchFilter{Player: q.Player}
	if q.Limit != nil {
		filter.Limit = *q.Limit
	}

	matches, err := h.store.ListMatches(c.Request.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Str("player", q.Player).Msg("failed to list matches")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]MatchResponse, 0, len(matches))
	for _, m := range matches {
		response = append(response, matchResponse(m))
	}
	c.JSON(http.StatusOK, response)
}

// GetMatch handles fetching one archived match.
// GET /api/matches/:id
func (h *MatchHandlers) GetMatch(c *gin.Context) {
	if !h.enabled(c) {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid match id"})
		return
	}

	m, err := h.store.GetMatch(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "match not found"})
			return
		}
		h.log.Error().Err(err).Int64("match_id", id).Msg("failed to get match")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(http.StatusOK, matchResponse(m))
}

func (h *MatchHandlers) enabled(c *gin.Context) bool {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "match archive disabled"})
		return false
	}
	return true
}

func matchResponse(m *store.Match) MatchResponse {
	resp := MatchResponse{
		ID:             m.ID,
		RoomID:         m.RoomID,
		Players:        m.Players,
		DimensionCount: m.DimensionCount,
		SideLength:     m.SideLength,
		Reason:         m.Reason,
		Winner:         m.Winner,
		Moves:          m.Moves,
		Board:          m.Board,
		EndedAt:        m.EndedAt.UTC().Format(time.RFC3339),
	}
	if m.LineStart != nil {
		resp.Line = &LineResponse{Start: m.LineStart, Direction: m.LineDirection}
	}
	return resp
}
