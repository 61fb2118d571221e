package actuator

import (
	"context"
	"sync"
	"time"
)

// Mock is a recording Driver for tests. Each Execute blocks for Delay
// (honoring cancellation) and records its completion time.
type Mock struct {
	// Delay simulates hardware execution time.
	Delay time.Duration

	// Err, when set, is returned by every Execute after the delay.
	Err error

	mu       sync.Mutex
	executed []Action
	doneAt   []time.Time
	closed   bool
}

// Execute validates, waits, and records the action.
func (m *Mock) Execute(ctx context.Context, action Action) error {
	if !action.Known() {
		return ErrUnknownAction
	}
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	m.executed = append(m.executed, action)
	m.doneAt = append(m.doneAt, time.Now())
	m.mu.Unlock()
	return m.Err
}

// Executed returns the actions executed so far.
func (m *Mock) Executed() []Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Action, len(m.executed))
	copy(out, m.executed)
	return out
}

// LastDone returns when the most recent Execute completed.
func (m *Mock) LastDone() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.doneAt) == 0 {
		return time.Time{}
	}
	return m.doneAt[len(m.doneAt)-1]
}

// Close marks the mock closed.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

var _ Driver = (*Mock)(nil)
