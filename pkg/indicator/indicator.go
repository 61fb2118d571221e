// Package indicator drives the robot's status LED. Each orchestrator
// phase maps deterministically to one color signal; updates happen
// synchronously with phase transitions so the light never shows a
// stale state.
package indicator

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrFailed indicates the LED hardware rejected an update.
var ErrFailed = errors.New("indicator: update failed")

// Signal is one named LED color.
type Signal struct {
	Name    string
	R, G, B uint8
}

// The signal presets.
var (
	SignalIdle       = Signal{Name: "idle", R: 0, G: 255, B: 255}        // cyan
	SignalListening  = Signal{Name: "listening", R: 0, G: 255, B: 0}     // green
	SignalProcessing = Signal{Name: "processing", R: 255, G: 255, B: 0}  // yellow
	SignalError      = Signal{Name: "error", R: 255, G: 0, B: 0}         // red
	SignalOff        = Signal{Name: "off"}
)

// Phase names the orchestrator states the indicator distinguishes.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseListening   Phase = "listening"
	PhaseProcessing  Phase = "processing"
	PhaseDispatching Phase = "dispatching"
	PhaseActing      Phase = "acting"
	PhaseError       Phase = "error"
)

// SignalFor maps a phase to its signal. Dispatching and Acting show
// the idle color: by the time the robot is speaking, the listening
// cue would mislead.
func SignalFor(phase Phase) Signal {
	switch phase {
	case PhaseListening:
		return SignalListening
	case PhaseProcessing:
		return SignalProcessing
	case PhaseError:
		return SignalError
	default:
		return SignalIdle
	}
}

// Driver sets the physical LED color.
type Driver interface {
	SetColor(ctx context.Context, r, g, b uint8) error
	Close() error
}

// DefaultErrorHold is how long the error signal stays visible before
// any other signal may replace it.
const DefaultErrorHold = 800 * time.Millisecond

// Indicator applies phase signals to a Driver, enforcing the minimum
// error-hold duration.
type Indicator struct {
	driver    Driver
	errorHold time.Duration

	mu        sync.Mutex
	current   Signal
	holdUntil time.Time
}

// Option configures the indicator.
type Option func(*Indicator)

// WithErrorHold overrides the minimum error visibility duration.
func WithErrorHold(d time.Duration) Option {
	return func(i *Indicator) { i.errorHold = d }
}

// New creates an indicator over the given driver.
func New(driver Driver, opts ...Option) *Indicator {
	i := &Indicator{
		driver:    driver,
		errorHold: DefaultErrorHold,
		current:   SignalOff,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// SetPhase updates the LED for the given phase. The call is
// synchronous: when it returns, the light shows the phase's signal.
// If the error signal is still within its hold window, the update
// waits out the remainder first.
func (i *Indicator) SetPhase(ctx context.Context, phase Phase) error {
	return i.Set(ctx, SignalFor(phase))
}

// Set applies a signal directly.
func (i *Indicator) Set(ctx context.Context, s Signal) error {
	i.mu.Lock()
	holdUntil := i.holdUntil
	i.mu.Unlock()

	if s.Name != SignalError.Name {
		if remaining := time.Until(holdUntil); remaining > 0 {
			select {
			case <-time.After(remaining):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	if err := i.driver.SetColor(ctx, s.R, s.G, s.B); err != nil {
		return err
	}
	i.mu.Lock()
	i.current = s
	if s.Name == SignalError.Name {
		i.holdUntil = time.Now().Add(i.errorHold)
	}
	i.mu.Unlock()
	return nil
}

// Blink flashes a signal the given number of times, restoring the
// previous signal afterwards.
func (i *Indicator) Blink(ctx context.Context, s Signal, times int, interval time.Duration) error {
	i.mu.Lock()
	prev := i.current
	i.mu.Unlock()
	for n := 0; n < times; n++ {
		if err := i.driver.SetColor(ctx, s.R, s.G, s.B); err != nil {
			return err
		}
		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return ctx.Err()
		}
		if err := i.driver.SetColor(ctx, SignalOff.R, SignalOff.G, SignalOff.B); err != nil {
			return err
		}
		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return i.driver.SetColor(ctx, prev.R, prev.G, prev.B)
}

// Current returns the last applied signal.
func (i *Indicator) Current() Signal {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.current
}

// Close turns the LED off and releases the driver.
func (i *Indicator) Close() error {
	_ = i.driver.SetColor(context.Background(), 0, 0, 0)
	return i.driver.Close()
}
