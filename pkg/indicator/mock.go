package indicator

import (
	"context"
	"sync"
)

// MockDriver records LED updates for tests.
type MockDriver struct {
	// Err, when set, is returned by every SetColor.
	Err error

	mu     sync.Mutex
	colors [][3]uint8
	closed bool
}

// SetColor records the update.
func (m *MockDriver) SetColor(_ context.Context, r, g, b uint8) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	m.colors = append(m.colors, [3]uint8{r, g, b})
	m.mu.Unlock()
	return nil
}

// Colors returns all recorded updates.
func (m *MockDriver) Colors() [][3]uint8 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][3]uint8, len(m.colors))
	copy(out, m.colors)
	return out
}

// Last returns the most recent update, or zero.
func (m *MockDriver) Last() [3]uint8 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.colors) == 0 {
		return [3]uint8{}
	}
	return m.colors[len(m.colors)-1]
}

// Close marks the driver closed.
func (m *MockDriver) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

var _ Driver = (*MockDriver)(nil)
