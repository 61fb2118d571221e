package vad

import (
	"errors"
	"testing"
)

func TestWebRTCClassifier(t *testing.T) {
	w, err := NewWebRTC(ModeVeryAggressive)
	if err != nil {
		t.Fatalf("NewWebRTC: %v", err)
	}

	t.Run("classifies a 10ms silence frame", func(t *testing.T) {
		frame := make([]int16, 160) // 10ms at 16kHz
		speech, err := w.IsSpeech(frame, 16000)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if speech {
			t.Error("all-zero frame classified as speech")
		}
	})

	t.Run("rejects an unsupported rate", func(t *testing.T) {
		frame := make([]int16, 441)
		_, err := w.IsSpeech(frame, 44100)
		if !errors.Is(err, ErrBadRate) {
			t.Errorf("expected ErrBadRate, got %v", err)
		}
	})

	t.Run("rejects a non 10/20/30ms frame length", func(t *testing.T) {
		frame := make([]int16, 100)
		_, err := w.IsSpeech(frame, 16000)
		if !errors.Is(err, ErrBadFrame) {
			t.Errorf("expected ErrBadFrame, got %v", err)
		}
	})
}
