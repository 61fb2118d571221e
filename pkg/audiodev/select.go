package audiodev

import (
	"strings"
)

// probeCandidates are the sample rates tested against a device.
var probeCandidates = []int{8000, 11025, 16000, 22050, 24000, 32000, 44100, 48000, 96000}

// Select picks a capture device. A device whose name contains the
// preferred substring (case-insensitive) wins; otherwise the first
// input-capable device is used. Returns ErrNoDevice when no device can
// capture audio.
func Select(h Host, preferred string) (Device, error) {
	devices, err := h.Devices()
	if err != nil {
		return Device{}, err
	}

	var fallback *Device
	needle := strings.ToLower(preferred)
	for i := range devices {
		dev := devices[i]
		if dev.MaxInputChannels <= 0 {
			continue
		}
		if needle != "" && strings.Contains(strings.ToLower(dev.Name), needle) {
			return dev, nil
		}
		if fallback == nil {
			fallback = &devices[i]
		}
	}
	if fallback != nil {
		return *fallback, nil
	}
	return Device{}, ErrNoDevice
}

// ProbeRates tests which of the candidate sample rates the device
// supports by attempting to open (and immediately close) a capture
// stream at each. An empty result falls back to the device's reported
// default rate.
func ProbeRates(h Host, dev Device, channels int) []int {
	var supported []int
	for _, rate := range probeCandidates {
		if h.SupportsRate(dev, rate, channels) {
			supported = append(supported, rate)
		}
	}
	if len(supported) == 0 && dev.DefaultSampleRate > 0 {
		supported = []int{dev.DefaultSampleRate}
	}
	return supported
}

// BestRate returns the supported rate closest to preferred. The highest
// supported rate is the usual preference for transcription quality;
// when a classifier mandates a fixed rate set, pass its nearest
// acceptable value as preferred.
func BestRate(supported []int, preferred int) int {
	if len(supported) == 0 {
		return preferred
	}
	best := supported[0]
	for _, rate := range supported[1:] {
		if abs(rate-preferred) < abs(best-preferred) {
			best = rate
		}
	}
	return best
}

// MaxRate returns the highest supported rate, or preferred when the
// list is empty.
func MaxRate(supported []int, preferred int) int {
	if len(supported) == 0 {
		return preferred
	}
	max := supported[0]
	for _, rate := range supported[1:] {
		if rate > max {
			max = rate
		}
	}
	return max
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
