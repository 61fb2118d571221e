package vad

import "math"

// DefaultEnergyThreshold is the RMS level (in raw PCM16 units) above
// which a frame counts as speech. Tuned for close-talking microphones.
const DefaultEnergyThreshold = 300.0

// Energy is a pure-Go classifier based on RMS signal energy. It accepts
// any rate and frame length, which also makes it the classifier of
// choice in tests.
type Energy struct {
	// Threshold is the RMS speech threshold.
	Threshold float64
}

// NewEnergy creates an energy classifier with the default threshold.
func NewEnergy() *Energy {
	return &Energy{Threshold: DefaultEnergyThreshold}
}

// IsSpeech reports whether the frame's RMS energy exceeds the threshold.
func (e *Energy) IsSpeech(samples []int16, _ int) (bool, error) {
	if len(samples) == 0 {
		return false, ErrBadFrame
	}
	var sum float64
	for _, s := range samples {
		f := float64(s)
		sum += f * f
	}
	rms := math.Sqrt(sum / float64(len(samples)))
	return rms >= e.Threshold, nil
}
