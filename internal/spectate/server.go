// Package spectate implements the optional spectator HTTP server. It serves
// the latest board snapshot over REST, streams frames to websocket clients,
// and exposes Prometheus metrics.
package spectate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/kurve-project/kurve/internal/config"
	"github.com/kurve-project/kurve/internal/events"
	"github.com/kurve-project/kurve/internal/game"
	"github.com/kurve-project/kurve/internal/util"
)

// Server is the spectator HTTP server.
type Server struct {
	cfg    config.SpectateConfig
	hub    *hub
	state  *matchState
	logger zerolog.Logger

	httpServer *http.Server
	router     *gin.Engine
}

// NewServer creates a spectator server and subscribes it to bus.
func NewServer(cfg config.SpectateConfig, bus *events.Bus) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		cfg:    cfg,
		hub:    newHub(),
		state:  &matchState{},
		logger: util.ComponentLogger("spectate"),
	}

	bus.Subscribe(events.EventMatchStarted, "spectate-server", s.onEvent)
	bus.Subscribe(events.EventFrameAdvanced, "spectate-server", s.onEvent)
	bus.Subscribe(events.EventMatchEnded, "spectate-server", s.onEvent)

	return s
}

// Start runs the server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.router = s.buildRouter()

	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	s.logger.Info().Str("addr", addr).Msg("spectator server starting")

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
		s.hub.closeAll()
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("spectator server error: %w", err)
	}
	return nil
}

func (s *Server) buildRouter() *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(requestLogger(s.logger))

	allowedOrigins := s.cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	api := router.Group("/api")
	{
		api.GET("/state", s.handleState)
		api.GET("/ws", s.handleWS)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// handleState returns the latest match state.
func (s *Server) handleState(c *gin.Context) {
	view, ok := s.state.view()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"status": "waiting", "match": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": view.Status, "match": view})
}

// handleWS upgrades the connection and streams frame snapshots until the
// client goes away.
func (s *Server) handleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn().Err(err).Str("client_ip", c.ClientIP()).Msg("websocket upgrade failed")
		return
	}
	client := s.hub.add(conn)
	s.logger.Debug().Str("client_ip", c.ClientIP()).Msg("spectator connected")

	// Send the current state immediately so a late joiner sees the board.
	if view, ok := s.state.view(); ok {
		if data, err := json.Marshal(view); err == nil {
			client.send(data)
		}
	}

	go client.writeLoop(s.hub)
	client.readLoop(s.hub)
}

func (s *Server) onEvent(ctx context.Context, event events.Event) error {
	switch payload := event.Payload.(type) {
	case events.MatchStartedPayload:
		s.state.start(payload)
	case events.FrameAdvancedPayload:
		s.state.advance(payload.Snapshot)
	case events.MatchEndedPayload:
		s.state.end(payload)
	default:
		return fmt.Errorf("unexpected payload type %T for %s", event.Payload, event.Type)
	}

	view, ok := s.state.view()
	if !ok {
		return nil
	}
	data, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("failed to marshal match view: %w", err)
	}
	s.hub.broadcast(data)
	return nil
}

func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("spectate request")
	}
}

// MatchView is the JSON shape served to spectators.
type MatchView struct {
	Status   string         `json:"status"`
	Mode     string         `json:"mode"`
	Players  []string       `json:"players"`
	Winner   string         `json:"winner,omitempty"`
	Snapshot *game.Snapshot `json:"snapshot,omitempty"`
}
