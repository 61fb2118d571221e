package turn

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Start/stop reports.
const (
	ReportStarted        = "started"
	ReportAlreadyRunning = "already running"
	ReportStopped        = "stopped"
	ReportNotRunning     = "not running"
	ReportStopTimeout    = "stop timed out; state reset"
)

// DefaultStopTimeout bounds how long Stop waits for the loop to reach
// idle before forcing a reset.
const DefaultStopTimeout = 5 * time.Second

// Canceller is the shared cancellation flag the capture loop polls
// every frame. *endpoint.CancelFlag satisfies it.
type Canceller interface {
	Set()
	Reset()
	IsSet() bool
}

// Controller supervises the continuous turn loop. At most one loop
// runs at a time; Stop resets state so a later Start succeeds even
// after a stuck loop.
type Controller struct {
	orch   *Orchestrator
	flag   Canceller
	logger *slog.Logger

	// OnResult, when set, observes every completed turn.
	OnResult func(*Result)

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewController creates a controller over the orchestrator and the
// cancellation flag shared with its Listener.
func NewController(orch *Orchestrator, flag Canceller, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		orch:   orch,
		flag:   flag,
		logger: logger.With("component", "controller"),
	}
}

// Start launches the continuous loop. A second Start while running is
// a no-op reporting ReportAlreadyRunning.
func (c *Controller) Start() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return ReportAlreadyRunning
	}

	c.flag.Reset()
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	c.running = true

	go c.loop(ctx, c.done)

	c.logger.Info("interaction loop started")
	return ReportStarted
}

func (c *Controller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		if ctx.Err() != nil || c.flag.IsSet() {
			return
		}

		res := c.orch.RunTurn(ctx)
		if c.OnResult != nil {
			c.OnResult(res)
		}

		switch res.Outcome {
		case OutcomeCancelled:
			return
		case OutcomeFailed:
			c.logger.Warn("turn failed, resuming loop",
				"turn_id", res.ID,
				"phase", res.FailedPhase.String(),
			)
		}
	}
}

// Stop sets the cancellation flag and waits up to timeout for the
// loop to exit. A timeout is reported but never fatal: internal state
// resets either way so a later Start succeeds.
func (c *Controller) Stop(timeout time.Duration) string {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return ReportNotRunning
	}
	done := c.done
	cancel := c.cancel
	c.mu.Unlock()

	if timeout <= 0 {
		timeout = DefaultStopTimeout
	}

	c.flag.Set()
	cancel()

	report := ReportStopped
	select {
	case <-done:
	case <-time.After(timeout):
		c.logger.Warn("loop did not stop within timeout", "timeout", timeout)
		report = ReportStopTimeout
	}

	c.mu.Lock()
	c.running = false
	c.cancel = nil
	c.done = nil
	c.mu.Unlock()

	c.logger.Info("interaction loop stopped", "report", report)
	return report
}

// Running reports whether the loop is active.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// State returns the orchestrator's current phase.
func (c *Controller) State() State {
	return c.orch.State()
}
