package web

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/hubirobotics/go-tobias/pkg/actuator"
	"github.com/hubirobotics/go-tobias/pkg/hub"
)

// handleStart launches the interaction loop.
func (s *Server) handleStart(c *fiber.Ctx) error {
	report := s.controller.Start()
	s.logger.Info("start requested", "report", report)
	return c.JSON(fiber.Map{"status": report})
}

// StopRequest optionally overrides the stop timeout.
type StopRequest struct {
	TimeoutSeconds int `json:"timeout_seconds"`
}

// handleStop sets the cancellation flag and waits for the loop to exit.
func (s *Server) handleStop(c *fiber.Ctx) error {
	var req StopRequest
	_ = c.BodyParser(&req)

	timeout := time.Duration(req.TimeoutSeconds) * time.Second
	report := s.controller.Stop(timeout)
	s.logger.Info("stop requested", "report", report)
	return c.JSON(fiber.Map{"status": report})
}

// handleInteractionStatus reports whether the loop is running.
func (s *Server) handleInteractionStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"running": s.controller.Running(),
		"state":   s.controller.State().String(),
	})
}

// ExecuteRequest names a movement to trigger manually.
type ExecuteRequest struct {
	Movement string `json:"movement"`
}

// handleExecute triggers one movement outside the conversation loop.
func (s *Server) handleExecute(c *fiber.Ctx) error {
	if s.driver == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "no actuator attached",
		})
	}

	var req ExecuteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	action, err := actuator.Normalize(req.Movement)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := s.driver.Execute(c.Context(), action); err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	s.logger.Info("manual movement executed", "action", string(action))
	return c.JSON(fiber.Map{"executed": string(action)})
}

// handleStatus returns the dashboard snapshot.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.snapshot())
}

// handleMovements lists the action vocabulary.
func (s *Server) handleMovements(c *fiber.Ctx) error {
	actions := actuator.Available()
	out := make([]fiber.Map, 0, len(actions))
	for _, a := range actions {
		out = append(out, fiber.Map{
			"name":     string(a),
			"hardware": a.HardwareName(),
		})
	}
	return c.JSON(out)
}

// handleStatusWS streams status events to a dashboard client.
func (s *Server) handleStatusWS(c *websocket.Conn) {
	// Send the current snapshot before live events.
	if data, err := (hub.Event{Kind: "state", Data: s.snapshot()}).Encode(); err == nil {
		c.WriteMessage(websocket.TextMessage, data)
	}

	client := hub.NewClient(s.statusHub, c)
	client.Run()
}
