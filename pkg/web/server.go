// Package web provides the supervisory control surface: start/stop the
// interaction loop, trigger movements manually, and stream status to
// connected dashboards.
package web

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/hubirobotics/go-tobias/pkg/actuator"
	"github.com/hubirobotics/go-tobias/pkg/hub"
	"github.com/hubirobotics/go-tobias/pkg/turn"
)

// Snapshot is the dashboard-facing state.
type Snapshot struct {
	Running        bool   `json:"running"`
	State          string `json:"state"`
	LastTranscript string `json:"last_transcript"`
	LastReply      string `json:"last_reply"`
	LastAction     string `json:"last_action"`
	LastOutcome    string `json:"last_outcome"`
}

// Server is the control surface server.
type Server struct {
	app        *fiber.App
	port       string
	controller *turn.Controller
	driver     actuator.Driver
	statusHub  *hub.Hub
	logger     *slog.Logger

	mu   sync.RWMutex
	last Snapshot
}

// NewServer wires the HTTP and websocket routes. driver may be nil
// when no actuator hardware is attached; manual movement triggers then
// report an error.
func NewServer(port string, controller *turn.Controller, driver actuator.Driver, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		port:       port,
		controller: controller,
		driver:     driver,
		statusHub:  hub.New("status", logger),
		logger:     logger.With("component", "web"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Tobias Control",
		DisableStartupMessage: true,
	})

	app.Use(cors.New())

	app.Post("/interaction/start", s.handleStart)
	app.Post("/interaction/stop", s.handleStop)
	app.Get("/interaction/status", s.handleInteractionStatus)
	app.Post("/execute", s.handleExecute)

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/movements", s.handleMovements)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/status", websocket.New(s.handleStatusWS))

	s.app = app
	return s
}

// Start blocks serving HTTP on the configured port.
func (s *Server) Start() error {
	go s.statusHub.Run()
	s.logger.Info("control surface listening", "port", s.port)
	return s.app.Listen(":" + s.port)
}

// StartAsync starts the server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			s.logger.Error("web server error", "error", err)
		}
	}()
}

// RecordState broadcasts an orchestrator phase change. Wire it to the
// orchestrator's OnState hook.
func (s *Server) RecordState(state turn.State) {
	s.mu.Lock()
	s.last.State = state.String()
	s.last.Running = s.controller.Running()
	snap := s.last
	s.mu.Unlock()

	s.statusHub.Publish(hub.Event{Kind: "state", Data: snap})
}

// RecordResult broadcasts a completed turn. Wire it to the
// controller's OnResult hook.
func (s *Server) RecordResult(res *turn.Result) {
	s.mu.Lock()
	s.last.LastOutcome = res.Outcome.String()
	if res.Transcript != "" {
		s.last.LastTranscript = res.Transcript
	}
	if res.Reply.SpokenText != "" {
		s.last.LastReply = res.Reply.SpokenText
	}
	s.last.LastAction = res.Reply.Action
	snap := s.last
	s.mu.Unlock()

	s.statusHub.Publish(hub.Event{Kind: "turn", Data: snap})
}

func (s *Server) snapshot() Snapshot {
	s.mu.RLock()
	snap := s.last
	s.mu.RUnlock()
	snap.Running = s.controller.Running()
	snap.State = s.controller.State().String()
	return snap
}

// Shutdown gracefully stops the web server.
func (s *Server) Shutdown() error {
	return s.app.ShutdownWithTimeout(5 * time.Second)
}
