package vad

import (
	"errors"
	"testing"
)

func TestEnergyClassifier(t *testing.T) {
	e := NewEnergy()

	t.Run("silence is not speech", func(t *testing.T) {
		frame := make([]int16, 160)
		speech, err := e.IsSpeech(frame, 16000)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if speech {
			t.Error("all-zero frame classified as speech")
		}
	})

	t.Run("loud frame is speech", func(t *testing.T) {
		frame := make([]int16, 160)
		for i := range frame {
			frame[i] = 8000
		}
		speech, err := e.IsSpeech(frame, 16000)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !speech {
			t.Error("loud frame classified as silence")
		}
	})

	t.Run("empty frame errors", func(t *testing.T) {
		_, err := e.IsSpeech(nil, 16000)
		if !errors.Is(err, ErrBadFrame) {
			t.Errorf("expected ErrBadFrame, got %v", err)
		}
	})
}

func TestNearestRate(t *testing.T) {
	cases := []struct {
		preferred, want int
	}{
		{16000, 16000},
		{44100, 48000},
		{22050, 16000},
		{96000, 48000},
		{8000, 8000},
	}
	for _, tc := range cases {
		if got := NearestRate(tc.preferred); got != tc.want {
			t.Errorf("NearestRate(%d) = %d, want %d", tc.preferred, got, tc.want)
		}
	}
}

func TestRateSupported(t *testing.T) {
	if !RateSupported(32000) {
		t.Error("32000 should be supported")
	}
	if RateSupported(44100) {
		t.Error("44100 should not be supported")
	}
}
