package transcribe

import (
	"context"
	"sync"

	"github.com/hubirobotics/go-tobias/pkg/endpoint"
)

// Mock is a recording Dispatcher for tests. Results are returned in
// order; once exhausted Submit returns ErrNoSpeech.
type Mock struct {
	mu        sync.Mutex
	results   []Result
	errs      []error
	submitted []*endpoint.Utterance
	closed    bool
}

// NewMock creates a mock that yields the given results in order.
func NewMock(results ...Result) *Mock {
	return &Mock{results: results}
}

// AddResult queues a result.
func (m *Mock) AddResult(r Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, r)
}

// AddError queues an error, consumed before any remaining results.
func (m *Mock) AddError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = append(m.errs, err)
}

// Name returns the backend identifier.
func (m *Mock) Name() string { return "mock" }

// Submit records the utterance and yields the next queued error or
// result.
func (m *Mock) Submit(_ context.Context, u *endpoint.Utterance) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitted = append(m.submitted, u)
	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		return Result{}, err
	}
	if len(m.results) == 0 {
		return Result{}, ErrNoSpeech
	}
	r := m.results[0]
	m.results = m.results[1:]
	return r, nil
}

// Submitted returns the utterances seen so far.
func (m *Mock) Submitted() []*endpoint.Utterance {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*endpoint.Utterance, len(m.submitted))
	copy(out, m.submitted)
	return out
}

// Closed reports whether Close was called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Close marks the mock closed.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
