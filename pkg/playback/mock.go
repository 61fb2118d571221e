package playback

import (
	"context"
	"sync"
	"time"

	"github.com/hubirobotics/go-tobias/pkg/tts"
)

// Mock is a recording Player for tests. Each Play blocks for Delay
// (honoring context cancellation) and records its completion time.
type Mock struct {
	// Delay simulates playback duration.
	Delay time.Duration

	// Err, when set, is returned by every Play call after the delay.
	Err error

	mu      sync.Mutex
	played  []string
	doneAt  []time.Time
}

// Play records the call and blocks for Delay.
func (m *Mock) Play(ctx context.Context, result *tts.AudioResult) error {
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	m.mu.Lock()
	if result != nil {
		m.played = append(m.played, string(result.Audio))
	} else {
		m.played = append(m.played, "")
	}
	m.doneAt = append(m.doneAt, time.Now())
	m.mu.Unlock()
	return m.Err
}

// Played returns the audio payloads played so far.
func (m *Mock) Played() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.played))
	copy(out, m.played)
	return out
}

// LastDone returns when the most recent Play completed.
func (m *Mock) LastDone() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.doneAt) == 0 {
		return time.Time{}
	}
	return m.doneAt[len(m.doneAt)-1]
}

var _ Player = (*Mock)(nil)
