package reason

import (
	"context"
	"sync"
)

// Mock is a recording Engine for tests.
type Mock struct {
	mu      sync.Mutex
	replies []Reply
	errs    []error
	inputs  []string
	resets  int
	closed  bool
}

// NewMockEngine creates a mock yielding the given replies in order.
// An exhausted mock returns ErrEmptyReply.
func NewMockEngine(replies ...Reply) *Mock {
	return &Mock{replies: replies}
}

// AddReply queues a reply.
func (m *Mock) AddReply(r Reply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, r)
}

// AddError queues an error, consumed before any remaining replies.
func (m *Mock) AddError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = append(m.errs, err)
}

// Respond records the transcript and yields the next queued error or
// reply.
func (m *Mock) Respond(_ context.Context, userText string) (Reply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputs = append(m.inputs, userText)
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		return Reply{}, err
	}
	if len(m.replies) == 0 {
		return Reply{}, ErrEmptyReply
	}
	r := m.replies[0]
	m.replies = m.replies[1:]
	return r, nil
}

// Inputs returns the transcripts seen so far.
func (m *Mock) Inputs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.inputs))
	copy(out, m.inputs)
	return out
}

// Reset counts history resets.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets++
}

// Resets returns how many times Reset was called.
func (m *Mock) Resets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resets
}

// Close marks the mock closed.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
