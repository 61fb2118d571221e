package transcribe

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"cloud.google.com/go/speech/apiv1/speechpb"
)

// fakeSession scripts a recognition session: queued responses are
// served by Recv, then EOF once the sender has half-closed.
type fakeSession struct {
	mu     sync.Mutex
	sent   []*speechpb.StreamingRecognizeRequest
	resps  chan *speechpb.StreamingRecognizeResponse
	closed chan struct{}
	once   sync.Once

	sendErr error
	recvErr error
}

func newFakeSession(resps ...*speechpb.StreamingRecognizeResponse) *fakeSession {
	f := &fakeSession{
		resps:  make(chan *speechpb.StreamingRecognizeResponse, len(resps)+1),
		closed: make(chan struct{}),
	}
	for _, r := range resps {
		f.resps <- r
	}
	return f
}

func (f *fakeSession) Send(req *speechpb.StreamingRecognizeRequest) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.mu.Lock()
	f.sent = append(f.sent, req)
	f.mu.Unlock()
	return nil
}

func (f *fakeSession) Recv() (*speechpb.StreamingRecognizeResponse, error) {
	if f.recvErr != nil {
		return nil, f.recvErr
	}
	select {
	case r := <-f.resps:
		return r, nil
	case <-f.closed:
		select {
		case r := <-f.resps:
			return r, nil
		default:
			return nil, io.EOF
		}
	}
}

func (f *fakeSession) CloseSend() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeSession) requests() []*speechpb.StreamingRecognizeRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*speechpb.StreamingRecognizeRequest, len(f.sent))
	copy(out, f.sent)
	return out
}

func googleOver(session recognizeStream) *GoogleStream {
	return &GoogleStream{
		language: "pt-BR",
		logger:   slog.Default(),
		open: func(context.Context) (recognizeStream, error) {
			return session, nil
		},
	}
}

func interimResp(text string) *speechpb.StreamingRecognizeResponse {
	return &speechpb.StreamingRecognizeResponse{
		Results: []*speechpb.StreamingRecognitionResult{{
			Alternatives: []*speechpb.SpeechRecognitionAlternative{{Transcript: text}},
		}},
	}
}

func finalResp(text string) *speechpb.StreamingRecognizeResponse {
	resp := interimResp(text)
	resp.Results[0].IsFinal = true
	return resp
}

func TestGoogleStreamSubmit(t *testing.T) {
	t.Run("joins final segments and reports interims", func(t *testing.T) {
		session := newFakeSession(
			interimResp("ligue"),
			finalResp("ligue a luz."),
			finalResp("por favor."),
		)
		g := googleOver(session)
		var interims []string
		g.OnInterim = func(text string) { interims = append(interims, text) }

		res, err := g.Submit(context.Background(), testUtterance(50))
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		if res.Text != "ligue a luz. por favor." {
			t.Errorf("text = %q", res.Text)
		}
		if !res.Final {
			t.Errorf("result not marked final")
		}
		if len(interims) != 1 || interims[0] != "ligue" {
			t.Errorf("interims = %v", interims)
		}
	})

	t.Run("sends config first then audio", func(t *testing.T) {
		session := newFakeSession(finalResp("oi"))
		g := googleOver(session)

		if _, err := g.Submit(context.Background(), testUtterance(50)); err != nil {
			t.Fatalf("Submit: %v", err)
		}

		reqs := session.requests()
		if len(reqs) < 2 {
			t.Fatalf("only %d requests sent", len(reqs))
		}
		cfg := reqs[0].GetStreamingConfig()
		if cfg == nil {
			t.Fatal("first request is not the config")
		}
		if cfg.Config.Encoding != speechpb.RecognitionConfig_LINEAR16 {
			t.Errorf("encoding = %v", cfg.Config.Encoding)
		}
		if cfg.Config.SampleRateHertz != 16000 {
			t.Errorf("sample rate = %d", cfg.Config.SampleRateHertz)
		}
		if cfg.Config.LanguageCode != "pt-BR" {
			t.Errorf("language = %q", cfg.Config.LanguageCode)
		}
		for i, req := range reqs[1:] {
			if len(req.GetAudioContent()) == 0 {
				t.Errorf("request %d carries no audio", i+1)
			}
		}
	})

	t.Run("no final result is no speech", func(t *testing.T) {
		session := newFakeSession(interimResp("hm"))
		g := googleOver(session)

		_, err := g.Submit(context.Background(), testUtterance(50))
		if !errors.Is(err, ErrNoSpeech) {
			t.Errorf("err = %v, want ErrNoSpeech", err)
		}
	})

	t.Run("recv failure wraps ErrFailed", func(t *testing.T) {
		session := newFakeSession()
		session.recvErr = errors.New("stream broken")
		g := googleOver(session)

		_, err := g.Submit(context.Background(), testUtterance(50))
		if !errors.Is(err, ErrFailed) {
			t.Errorf("err = %v, want ErrFailed", err)
		}
	})

	t.Run("cancelled context classifies as cancellation", func(t *testing.T) {
		// A session that never answers: Submit must fall back to the
		// context instead of blocking on the receiver.
		session := newFakeSession()
		session.once.Do(func() {}) // keep closed channel open despite CloseSend
		t.Cleanup(func() { close(session.closed) })
		g := googleOver(session)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := g.Submit(ctx, testUtterance(50))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})

	t.Run("empty utterance rejected", func(t *testing.T) {
		g := googleOver(newFakeSession())
		if _, err := g.Submit(context.Background(), nil); !errors.Is(err, ErrEmptyAudio) {
			t.Errorf("err = %v, want ErrEmptyAudio", err)
		}
	})
}
