// Package audiodev provides microphone device selection and PCM capture.
//
// Capture is organized around fixed 10ms frames of mono 16-bit PCM, the
// granularity required by the voice-activity classifier downstream. The
// Host interface abstracts the audio subsystem so device selection and
// endpointing can be tested without hardware; the production backend is
// PortAudio.
package audiodev

import (
	"context"
	"errors"
	"io"
	"time"
)

// FrameDuration is the fixed duration of every captured frame.
const FrameDuration = 10 * time.Millisecond

// Common errors returned by this package.
var (
	// ErrNoDevice indicates no input-capable device matched.
	ErrNoDevice = errors.New("audiodev: no input device found")

	// ErrDevice indicates an unrecoverable device I/O failure.
	ErrDevice = errors.New("audiodev: device error")

	// ErrOverflow indicates the device buffer overflowed and the frame
	// was dropped. Callers should skip the frame and keep reading.
	ErrOverflow = errors.New("audiodev: input overflowed")
)

// Device describes an audio capture device.
type Device struct {
	Index             int
	Name              string
	MaxInputChannels  int
	DefaultSampleRate int
}

// Frame is one fixed-duration slice of captured PCM audio.
// Frames are immutable once produced.
type Frame struct {
	// Samples contains PCM16 samples (little-endian host order).
	Samples []int16

	// SampleRate is the capture rate in Hz.
	SampleRate int

	// Channels is the channel count (always 1 for capture).
	Channels int

	// Seq is the frame's sequence index since stream start.
	Seq int
}

// Duration returns the frame's wall-clock duration.
func (f Frame) Duration() time.Duration {
	if f.SampleRate == 0 || f.Channels == 0 {
		return 0
	}
	samples := len(f.Samples) / f.Channels
	return time.Duration(samples) * time.Second / time.Duration(f.SampleRate)
}

// Bytes returns the frame's samples as little-endian PCM16 bytes.
func (f Frame) Bytes() []byte {
	buf := make([]byte, len(f.Samples)*2)
	for i, s := range f.Samples {
		buf[i*2] = byte(s)
		buf[i*2+1] = byte(s >> 8)
	}
	return buf
}

// SamplesPerFrame returns the per-channel sample count of one 10ms frame
// at the given rate.
func SamplesPerFrame(sampleRate int) int {
	return sampleRate / 100
}

// Stream is an open PCM capture stream. At most one stream is open at a
// time; the owner must Close it before another capture begins.
type Stream interface {
	// Start begins capture. The stream is opened stopped.
	Start() error

	// Read blocks until the next 10ms frame is available.
	// It returns ErrOverflow when the device buffer overflowed (the
	// frame is lost, the stream remains usable) and an ErrDevice-wrapped
	// error for fatal failures.
	Read(ctx context.Context) (Frame, error)

	// Stop halts capture without releasing the device.
	Stop() error

	// Close releases the device handle.
	io.Closer
}

// Host abstracts the audio subsystem for device enumeration, rate
// probing, and stream creation.
type Host interface {
	// Devices lists all devices known to the subsystem.
	Devices() ([]Device, error)

	// SupportsRate reports whether a capture stream can be opened on
	// the device at the given rate and channel count.
	SupportsRate(dev Device, sampleRate, channels int) bool

	// OpenStream opens (but does not start) a capture stream.
	OpenStream(dev Device, sampleRate, channels int) (Stream, error)

	// Close releases the subsystem.
	io.Closer
}
