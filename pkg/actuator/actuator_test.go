package actuator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in      string
		want    Action
		wantErr bool
	}{
		{"wave hands", "", true},
		{"high_wave", ActionHighWave, false},
		{"High Wave", ActionHighWave, false},
		{"  clap  ", ActionClap, false},
		{"x_ray", ActionXRay, false},
		{"backflip", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := Normalize(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownAction) {
				t.Errorf("Normalize(%q) err = %v, want ErrUnknownAction", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("Normalize(%q) = (%q, %v), want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestActionVocabulary(t *testing.T) {
	if got := len(Available()); got != 16 {
		t.Errorf("vocabulary size = %d, want 16", got)
	}
	if ActionXRay.HardwareName() != "x-ray" {
		t.Errorf("x_ray hardware name = %q", ActionXRay.HardwareName())
	}
	if Action("jump").Known() {
		t.Error("unknown action reported as known")
	}
}

func TestBridgeExecute(t *testing.T) {
	t.Run("posts hardware name", func(t *testing.T) {
		var gotAction string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			gotAction = body["action"]
		}))
		defer srv.Close()

		b := NewBridge(srv.URL)
		if err := b.Execute(context.Background(), ActionTwoHandKiss); err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if gotAction != "two-hand kiss" {
			t.Errorf("posted action = %q", gotAction)
		}
	})

	t.Run("unknown action fails locally", func(t *testing.T) {
		called := false
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer srv.Close()

		b := NewBridge(srv.URL)
		if err := b.Execute(context.Background(), Action("backflip")); !errors.Is(err, ErrUnknownAction) {
			t.Errorf("err = %v, want ErrUnknownAction", err)
		}
		if called {
			t.Error("bridge was contacted for unknown action")
		}
	})

	t.Run("bridge failure wraps ErrFailed", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		b := NewBridge(srv.URL)
		if err := b.Execute(context.Background(), ActionClap); !errors.Is(err, ErrFailed) {
			t.Errorf("err = %v, want ErrFailed", err)
		}
	})
}

func TestMockDriver(t *testing.T) {
	m := &Mock{}
	if err := m.Execute(context.Background(), ActionHug); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if err := m.Execute(context.Background(), Action("nope")); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("err = %v, want ErrUnknownAction", err)
	}
	if got := m.Executed(); len(got) != 1 || got[0] != ActionHug {
		t.Errorf("executed = %v", got)
	}
}
