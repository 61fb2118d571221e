package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hubirobotics/go-tobias/pkg/endpoint"
)

func TestNewRequiresKeys(t *testing.T) {
	cfg := DefaultConfig()
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error with no keys")
	} else {
		// Both missing keys must be named together.
		for _, name := range []string{"OPENAI_API_KEY", "ELEVENLABS_API_KEY"} {
			if !strings.Contains(err.Error(), name) {
				t.Errorf("error %q does not name %s", err, name)
			}
		}
	}

	cfg.ElevenLabsKey = "el-key"
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error without OpenAI key")
	}

	cfg.OpenAIKey = "sk-test"
	cfg.ElevenLabsKey = ""
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error without ElevenLabs key")
	}

	cfg.ElevenLabsKey = "el-key"
	if _, err := New(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCaptureRate(t *testing.T) {
	tests := []struct {
		name   string
		probed []int
		want   int
	}{
		{"prefers highest classifier rate", []int{8000, 16000, 44100, 48000}, 48000},
		{"skips unsupported rates", []int{44100, 96000, 16000}, 16000},
		{"nearest when none supported", []int{44100}, 48000},
		{"empty probe defaults", nil, 16000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := captureRate(tt.probed); got != tt.want {
				t.Errorf("captureRate(%v) = %d, want %d", tt.probed, got, tt.want)
			}
		})
	}
}

func TestShortLang(t *testing.T) {
	if got := shortLang("pt-BR"); got != "pt" {
		t.Errorf("shortLang(pt-BR) = %q", got)
	}
	if got := shortLang("en"); got != "en" {
		t.Errorf("shortLang(en) = %q", got)
	}
}

func TestIdleListenerUnblocksOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := idleListener{}.Listen(ctx)
		done <- err
	}()
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, endpoint.ErrCancelled) {
			t.Fatalf("want ErrCancelled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("idle listener did not unblock")
	}
}
