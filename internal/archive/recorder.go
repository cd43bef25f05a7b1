// Package archive persists finished matches off the request path.
package archive

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/hypertac-server/internal/core"
	logpkg "github.com/vovakirdan/hypertac-server/internal/log"
	"github.com/vovakirdan/hypertac-server/internal/store"
)

const saveTimeout = 5 * time.Second

// Recorder queues match results from rooms and writes them to a store.
// It implements core.MatchSink.
type Recorder struct {
	store store.MatchStore
	queue chan core.MatchResult
	log   *zerolog.Logger
}

// New creates a recorder with room for buffer pending results.
func New(st store.MatchStore, buffer int, logger *zerolog.Logger) *Recorder {
	if buffer <= 0 {
		buffer = 1
	}
	return &Recorder{
		store: st,
		queue: make(chan core.MatchResult, buffer),
		log:   logpkg.OrNop(logger),
	}
}

// RecordMatch enqueues res. It never blocks; a full queue drops the result.
func (r *Recorder) RecordMatch(res core.MatchResult) {
	select {
	case r.queue <- res:
	default:
		r.log.Warn().Str("room_id", res.RoomID).Msg("archive queue full, match dropped")
	}
}

// Run saves queued results until ctx is done, then flushes what is left.
func (r *Recorder) Run(ctx context.Context) {
	for {
		select {
		case res := <-r.queue:
			r.save(res)
		case <-ctx.Done():
			r.flush()
			return
		}
	}
}

func (r *Recorder) flush() {
	for {
		select {
		case res := <-r.queue:
			r.save(res)
		default:
			return
		}
	}
}

func (r *Recorder) save(res core.MatchResult) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	id, err := r.store.SaveMatch(ctx, ToMatch(res))
	if err != nil {
		r.log.Error().Err(err).Str("room_id", res.RoomID).Msg("failed to archive match")
		return
	}
	r.log.Debug().Int64("match_id", id).Str("room_id", res.RoomID).Msg("match archived")
}

// ToMatch converts a room's result into its archived form.
func ToMatch(res core.MatchResult) *store.Match {
	m := &store.Match{
		RoomID:         res.RoomID,
		Players:        res.Players,
		DimensionCount: res.Dimensions,
		SideLength:     res.SideLength,
		Reason:         core.ReasonName(res.Reason),
		Moves:          res.Moves,
		Board:          make(map[string]int, len(res.Board)),
		EndedAt:        res.EndedAt,
	}
	for pos, occ := range res.Board {
		m.Board[pos] = int(occ)
	}
	if win, ok := res.Reason.(core.BoardWin); ok {
		m.Winner = win.Winner
		m.LineStart = []int(win.Line.Start)
		m.LineDirection = []int(win.Line.Direction)
	}
	return m
}
