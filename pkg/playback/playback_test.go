package playback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hubirobotics/go-tobias/pkg/tts"
)

func TestMockPlayer(t *testing.T) {
	t.Run("records played audio", func(t *testing.T) {
		m := &Mock{}
		err := m.Play(context.Background(), &tts.AudioResult{Audio: []byte("mp3")})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := m.Played(); len(got) != 1 || got[0] != "mp3" {
			t.Errorf("played = %v", got)
		}
	})

	t.Run("cancellation interrupts delay", func(t *testing.T) {
		m := &Mock{Delay: time.Minute}
		ctx, cancel := context.WithCancel(context.Background())
		go cancel()
		err := m.Play(ctx, &tts.AudioResult{Audio: []byte("x")})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
		if len(m.Played()) != 0 {
			t.Error("cancelled play was recorded")
		}
	})
}

func TestExecPlayerEmptyAudio(t *testing.T) {
	p := NewExecPlayer(nil)
	if err := p.Play(context.Background(), &tts.AudioResult{}); err != nil {
		t.Errorf("empty audio should be a no-op, got %v", err)
	}
	if err := p.Play(context.Background(), nil); err != nil {
		t.Errorf("nil result should be a no-op, got %v", err)
	}
}
