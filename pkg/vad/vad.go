// Package vad provides per-frame voice-activity classification.
//
// Classifiers decide speech/non-speech for fixed 10ms PCM16 frames and
// drive utterance endpointing. The production classifier is the WebRTC
// VAD in its most aggressive (high-recall filtering) mode; an
// energy-based classifier is available where cgo is not.
package vad

import "errors"

// Common errors.
var (
	// ErrBadFrame indicates a frame length the classifier cannot accept.
	ErrBadFrame = errors.New("vad: invalid frame length")

	// ErrBadRate indicates a sample rate the classifier cannot accept.
	ErrBadRate = errors.New("vad: unsupported sample rate")
)

// SupportedRates are the sample rates the WebRTC classifier accepts.
// Frames must be 10, 20 or 30ms at one of these rates.
var SupportedRates = []int{8000, 16000, 32000, 48000}

// Classifier decides whether a PCM16 frame contains speech.
type Classifier interface {
	// IsSpeech classifies one mono PCM16 frame at the given rate.
	IsSpeech(samples []int16, sampleRate int) (bool, error)
}

// RateSupported reports whether the classifier accepts the rate.
func RateSupported(sampleRate int) bool {
	for _, r := range SupportedRates {
		if r == sampleRate {
			return true
		}
	}
	return false
}

// NearestRate returns the supported classifier rate closest to
// preferred. Use it to pick a capture rate when the device cannot
// provide one of the fixed rates directly.
func NearestRate(preferred int) int {
	best := SupportedRates[0]
	for _, r := range SupportedRates[1:] {
		if abs(r-preferred) < abs(best-preferred) {
			best = r
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// pcmBytes converts samples to the little-endian byte layout the WebRTC
// engine expects.
func pcmBytes(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		buf[i*2] = byte(s)
		buf[i*2+1] = byte(s >> 8)
	}
	return buf
}
