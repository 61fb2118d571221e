package audiodev

import (
	"context"
	"io"
	"sync"
)

// MockHost implements Host over a fixed device list for testing.
type MockHost struct {
	// DeviceList is returned by Devices.
	DeviceList []Device

	// SupportedRates maps device index to the rates SupportsRate
	// accepts. A missing entry means every rate is accepted.
	SupportedRates map[int][]int

	// OpenFunc overrides OpenStream when set.
	OpenFunc func(dev Device, sampleRate, channels int) (Stream, error)

	mu        sync.Mutex
	openCalls int
}

// Devices returns the configured device list.
func (h *MockHost) Devices() ([]Device, error) {
	return h.DeviceList, nil
}

// SupportsRate consults SupportedRates for the device.
func (h *MockHost) SupportsRate(dev Device, sampleRate, channels int) bool {
	rates, ok := h.SupportedRates[dev.Index]
	if !ok {
		return true
	}
	for _, r := range rates {
		if r == sampleRate {
			return true
		}
	}
	return false
}

// OpenStream delegates to OpenFunc or returns an empty scripted stream.
func (h *MockHost) OpenStream(dev Device, sampleRate, channels int) (Stream, error) {
	h.mu.Lock()
	h.openCalls++
	h.mu.Unlock()
	if h.OpenFunc != nil {
		return h.OpenFunc(dev, sampleRate, channels)
	}
	return NewScriptedStream(sampleRate, nil), nil
}

// OpenCalls returns how many times OpenStream was invoked.
func (h *MockHost) OpenCalls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.openCalls
}

// Close implements Host.
func (h *MockHost) Close() error { return nil }

// ScriptEntry is one step in a ScriptedStream: either a frame or an
// error to return from Read.
type ScriptEntry struct {
	Frame Frame
	Err   error
}

// ScriptedStream implements Stream by replaying a programmed sequence
// of frames and errors. After the script is exhausted Read returns
// io.EOF.
type ScriptedStream struct {
	sampleRate int

	mu      sync.Mutex
	script  []ScriptEntry
	pos     int
	started bool
	closed  bool
	reads   int
}

// NewScriptedStream creates a stream that replays the given script.
func NewScriptedStream(sampleRate int, script []ScriptEntry) *ScriptedStream {
	return &ScriptedStream{sampleRate: sampleRate, script: script}
}

// SpeechFrame builds a frame of loud samples at the stream's rate.
func SpeechFrame(sampleRate, seq int) Frame {
	samples := make([]int16, SamplesPerFrame(sampleRate))
	for i := range samples {
		samples[i] = 8000
	}
	return Frame{Samples: samples, SampleRate: sampleRate, Channels: 1, Seq: seq}
}

// SilenceFrame builds a zero-sample frame at the stream's rate.
func SilenceFrame(sampleRate, seq int) Frame {
	return Frame{
		Samples:    make([]int16, SamplesPerFrame(sampleRate)),
		SampleRate: sampleRate,
		Channels:   1,
		Seq:        seq,
	}
}

func (s *ScriptedStream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = true
	return nil
}

func (s *ScriptedStream) Read(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if s.pos >= len(s.script) {
		return Frame{}, io.EOF
	}
	entry := s.script[s.pos]
	s.pos++
	if entry.Err != nil {
		return Frame{}, entry.Err
	}
	return entry.Frame, nil
}

func (s *ScriptedStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = false
	return nil
}

func (s *ScriptedStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Reads returns how many times Read was called.
func (s *ScriptedStream) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

// Closed reports whether Close was called.
func (s *ScriptedStream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
