package audiodev

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// PortAudioHost implements Host on top of PortAudio.
type PortAudioHost struct {
	logger *slog.Logger

	mu     sync.Mutex
	infos  []*portaudio.DeviceInfo
	closed bool
}

// NewPortAudioHost initializes PortAudio and returns a Host backed by it.
func NewPortAudioHost(logger *slog.Logger) (*PortAudioHost, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: initialize: %w", ErrDevice, err)
	}
	return &PortAudioHost{logger: logger}, nil
}

// Devices lists all devices known to PortAudio.
func (h *PortAudioHost) Devices() ([]Device, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("%w: enumerate: %w", ErrDevice, err)
	}

	h.mu.Lock()
	h.infos = infos
	h.mu.Unlock()

	devices := make([]Device, len(infos))
	for i, info := range infos {
		devices[i] = Device{
			Index:             i,
			Name:              info.Name,
			MaxInputChannels:  info.MaxInputChannels,
			DefaultSampleRate: int(info.DefaultSampleRate),
		}
	}
	return devices, nil
}

// SupportsRate attempts to open a capture stream at the given rate and
// closes it immediately. Any open failure means the rate is unsupported.
func (h *PortAudioHost) SupportsRate(dev Device, sampleRate, channels int) bool {
	s, err := h.OpenStream(dev, sampleRate, channels)
	if err != nil {
		return false
	}
	s.Close()
	return true
}

// OpenStream opens a capture stream on the device. The stream is not
// started; call Start before reading.
func (h *PortAudioHost) OpenStream(dev Device, sampleRate, channels int) (Stream, error) {
	info, err := h.deviceInfo(dev.Index)
	if err != nil {
		return nil, err
	}

	buf := make([]int16, SamplesPerFrame(sampleRate)*channels)

	params := portaudio.LowLatencyParameters(info, nil)
	params.Input.Channels = channels
	params.SampleRate = float64(sampleRate)
	params.FramesPerBuffer = SamplesPerFrame(sampleRate)

	stream, err := portaudio.OpenStream(params, buf)
	if err != nil {
		return nil, fmt.Errorf("%w: open %q at %dHz: %w", ErrDevice, dev.Name, sampleRate, err)
	}

	h.logger.Debug("opened capture stream",
		"device", dev.Name,
		"sample_rate", sampleRate,
		"channels", channels,
	)

	return &paStream{
		stream:     stream,
		buf:        buf,
		sampleRate: sampleRate,
		channels:   channels,
	}, nil
}

// Close terminates PortAudio.
func (h *PortAudioHost) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	return portaudio.Terminate()
}

func (h *PortAudioHost) deviceInfo(index int) (*portaudio.DeviceInfo, error) {
	h.mu.Lock()
	infos := h.infos
	h.mu.Unlock()

	if infos == nil {
		var err error
		infos, err = portaudio.Devices()
		if err != nil {
			return nil, fmt.Errorf("%w: enumerate: %w", ErrDevice, err)
		}
		h.mu.Lock()
		h.infos = infos
		h.mu.Unlock()
	}
	if index < 0 || index >= len(infos) {
		return nil, ErrNoDevice
	}
	return infos[index], nil
}

// paStream implements Stream over an open PortAudio stream.
type paStream struct {
	stream     *portaudio.Stream
	buf        []int16
	sampleRate int
	channels   int
	seq        int

	mu      sync.Mutex
	started bool
	closed  bool
}

func (s *paStream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	if err := s.stream.Start(); err != nil {
		return fmt.Errorf("%w: start: %w", ErrDevice, err)
	}
	s.started = true
	return nil
}

// Read blocks on the device for one 10ms frame. The context is checked
// at every frame boundary, bounding cancellation latency to one frame.
func (s *paStream) Read(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}

	if err := s.stream.Read(); err != nil {
		if errors.Is(err, portaudio.InputOverflowed) {
			return Frame{}, ErrOverflow
		}
		return Frame{}, fmt.Errorf("%w: read: %w", ErrDevice, err)
	}

	samples := make([]int16, len(s.buf))
	copy(samples, s.buf)

	frame := Frame{
		Samples:    samples,
		SampleRate: s.sampleRate,
		Channels:   s.channels,
		Seq:        s.seq,
	}
	s.seq++
	return frame, nil
}

func (s *paStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}
	s.started = false
	if err := s.stream.Stop(); err != nil {
		return fmt.Errorf("%w: stop: %w", ErrDevice, err)
	}
	return nil
}

func (s *paStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.stream.Close()
}
