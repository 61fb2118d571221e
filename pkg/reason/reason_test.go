package reason

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantSpoken   string
		wantAction   string
		wantDegraded bool
	}{
		{
			name:       "fenced json block",
			raw:        "```json\n{\"chat-response\":\"hi\",\"movement\":\"wave\"}\n```",
			wantSpoken: "hi",
			wantAction: "wave",
		},
		{
			name:       "fenced block without language tag",
			raw:        "```\n{\"chat-response\":\"hi\",\"movement\":\"wave\"}\n```",
			wantSpoken: "hi",
			wantAction: "wave",
		},
		{
			name:       "bare json payload",
			raw:        `{"chat-response":"hi","movement":"wave"}`,
			wantSpoken: "hi",
			wantAction: "wave",
		},
		{
			name:       "json without movement",
			raw:        `{"chat-response":"tudo bem"}`,
			wantSpoken: "tudo bem",
			wantAction: "",
		},
		{
			name:       "fenced block with surrounding prose",
			raw:        "Sure, here you go:\n```json\n{\"chat-response\":\"ok\",\"movement\":\"clap\"}\n```\nDone.",
			wantSpoken: "ok",
			wantAction: "clap",
		},
		{
			name:         "raw text falls through",
			raw:          "hello there",
			wantSpoken:   "hello there",
			wantAction:   "",
			wantDegraded: true,
		},
		{
			name:         "malformed json falls through",
			raw:          `{"chat-response": "hi", "movement":`,
			wantSpoken:   `{"chat-response": "hi", "movement":`,
			wantAction:   "",
			wantDegraded: true,
		},
		{
			name:         "json missing spoken field falls through",
			raw:          `{"movement":"wave"}`,
			wantSpoken:   `{"movement":"wave"}`,
			wantAction:   "",
			wantDegraded: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply, degraded := Decode(tt.raw)
			if reply.SpokenText != tt.wantSpoken {
				t.Errorf("spoken = %q, want %q", reply.SpokenText, tt.wantSpoken)
			}
			if reply.Action != tt.wantAction {
				t.Errorf("action = %q, want %q", reply.Action, tt.wantAction)
			}
			if degraded != tt.wantDegraded {
				t.Errorf("degraded = %v, want %v", degraded, tt.wantDegraded)
			}
		})
	}
}

func TestReplyHasAction(t *testing.T) {
	if (Reply{SpokenText: "hi"}).HasAction() {
		t.Error("reply without action reports HasAction")
	}
	if !(Reply{SpokenText: "hi", Action: "wave"}).HasAction() {
		t.Error("reply with action does not report HasAction")
	}
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	if _, err := NewOpenAI("", "prompt", ""); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("err = %v, want ErrMissingAPIKey", err)
	}
}

func TestRespondPreservesCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.Write([]byte(`{"choices":[{"message":{"content":"nunca chega"}}]}`))
	}))
	defer srv.Close()

	engine, err := NewOpenAI("test-key", "prompt", "", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("NewOpenAI: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = engine.Respond(ctx, "ola")
	if !errors.Is(err, ErrFailed) {
		t.Errorf("err = %v, want ErrFailed", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want chain to context.Canceled", err)
	}
}

func TestMockEngine(t *testing.T) {
	m := NewMockEngine(Reply{SpokenText: "oi", Action: "wave"})
	m.AddError(ErrFailed)

	reply, err := m.Respond(context.Background(), "ola")
	if !errors.Is(err, ErrFailed) {
		t.Fatalf("queued error not returned: %v", err)
	}
	reply, err = m.Respond(context.Background(), "ola de novo")
	if err != nil || reply.SpokenText != "oi" || reply.Action != "wave" {
		t.Fatalf("reply = (%+v, %v)", reply, err)
	}
	if _, err := m.Respond(context.Background(), "mais"); !errors.Is(err, ErrEmptyReply) {
		t.Errorf("exhausted mock err = %v, want ErrEmptyReply", err)
	}
	if got := m.Inputs(); len(got) != 3 || got[0] != "ola" {
		t.Errorf("inputs = %v", got)
	}
}
