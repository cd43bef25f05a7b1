package http

import (
	"context"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/hypertac-server/internal/config"
	"github.com/vovakirdan/hypertac-server/internal/core"
	logpkg "github.com/vovakirdan/hypertac-server/internal/log"
	"github.com/vovakirdan/hypertac-server/internal/store"
)

// Server is the HTTP server together with its WebSocket endpoint.
type Server struct {
	*stdhttp.Server
	ws *WSHandler
}

// NewServer builds the HTTP server: health check, lobby and archive API, and the game socket.
// matches may be nil when the archive is disabled.
func NewServer(hub *core.Hub, matches store.MatchStore, cfg *config.Config, logger *zerolog.Logger) *Server {
	logger = logpkg.OrNop(logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", healthHandler)

	lobby := NewLobbyHandlers(hub.Directory(), logger)
	archive := NewMatchHandlers(matches, logger)

	api := router.Group("/api")
	{
		api.GET("/rooms", lobby.ListRooms)
		api.GET("/rooms/:id", lobby.GetRoom)
		api.GET("/matches", archive.ListMatches)
		api.GET("/matches/:id", archive.GetMatch)
	}

	// The socket bypasses gin: its writer refuses to hijack after the 101 is written.
	ws := NewWSHandler(hub, cfg, logger)
	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", ws)
	mux.Handle("/", router)

	return &Server{
		Server: &stdhttp.Server{
			Addr:              cfg.Addr,
			Handler:           mux,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		},
		ws: ws,
	}
}

// Shutdown stops accepting requests, then closes every open game socket and
// waits until their clients have left their rooms.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.Server.Shutdown(ctx); err != nil {
		return err
	}
	return s.ws.Shutdown(ctx)
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
