package vad

import (
	"fmt"

	webrtcvad "github.com/maxhawkins/go-webrtcvad"
)

// ModeVeryAggressive is the strictest filtering level, which keeps
// recall high on real microphones.
const ModeVeryAggressive = 3

// WebRTC wraps the WebRTC voice-activity detector.
type WebRTC struct {
	vad *webrtcvad.VAD
}

// NewWebRTC creates a WebRTC classifier with the given aggressiveness
// mode (0-3).
func NewWebRTC(mode int) (*WebRTC, error) {
	v, err := webrtcvad.New()
	if err != nil {
		return nil, fmt.Errorf("vad: create: %w", err)
	}
	if err := v.SetMode(mode); err != nil {
		return nil, fmt.Errorf("vad: set mode %d: %w", mode, err)
	}
	return &WebRTC{vad: v}, nil
}

// IsSpeech classifies one frame. Only 10/20/30ms frames at the fixed
// supported rates are accepted.
func (w *WebRTC) IsSpeech(samples []int16, sampleRate int) (bool, error) {
	if !RateSupported(sampleRate) {
		return false, fmt.Errorf("%w: %d", ErrBadRate, sampleRate)
	}
	// ValidRateAndFrameLength takes the sample count, not bytes.
	if !w.vad.ValidRateAndFrameLength(sampleRate, len(samples)) {
		return false, fmt.Errorf("%w: %d samples at %dHz", ErrBadFrame, len(samples), sampleRate)
	}
	frame := pcmBytes(samples)
	active, err := w.vad.Process(sampleRate, frame)
	if err != nil {
		return false, fmt.Errorf("vad: process: %w", err)
	}
	return active, nil
}
