package transcribe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"

	"github.com/hubirobotics/go-tobias/pkg/endpoint"
)

// googleChunkFrames is how many 10ms frames are batched per streaming
// request.
const googleChunkFrames = 10

// recognizeStream is the bidirectional session surface used by the
// dispatcher. speechpb.Speech_StreamingRecognizeClient satisfies it.
type recognizeStream interface {
	Send(*speechpb.StreamingRecognizeRequest) error
	Recv() (*speechpb.StreamingRecognizeResponse, error)
	CloseSend() error
}

// GoogleStream implements Dispatcher with Cloud streaming recognition.
// Each Submit opens a fresh bidirectional session, feeds the utterance
// while a concurrent receiver reports interim hypotheses to OnInterim,
// then half-closes and drains the session to EOF. Draining guarantees
// results are never left queued where a later turn could read them.
// Final segments are joined into one transcript.
type GoogleStream struct {
	client   *speech.Client
	open     func(ctx context.Context) (recognizeStream, error)
	language string
	logger   *slog.Logger

	// OnInterim, when set, receives interim transcripts as they
	// arrive. Interim results never propagate downstream.
	OnInterim func(text string)
}

// GoogleOption configures the streaming dispatcher.
type GoogleOption func(*GoogleStream)

// WithGoogleLanguage sets the recognition language code.
func WithGoogleLanguage(code string) GoogleOption {
	return func(g *GoogleStream) { g.language = code }
}

// WithGoogleLogger sets the structured logger.
func WithGoogleLogger(logger *slog.Logger) GoogleOption {
	return func(g *GoogleStream) { g.logger = logger }
}

// NewGoogleStream creates a streaming dispatcher. Credentials come from
// GOOGLE_APPLICATION_CREDENTIALS.
func NewGoogleStream(ctx context.Context, opts ...GoogleOption) (*GoogleStream, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create client: %w", ErrFailed, err)
	}
	g := &GoogleStream{
		client:   client,
		language: "pt-BR",
		logger:   slog.Default(),
	}
	g.open = func(ctx context.Context) (recognizeStream, error) {
		return client.StreamingRecognize(ctx)
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("component", "transcribe.google")
	return g, nil
}

// Name returns the backend identifier.
func (g *GoogleStream) Name() string { return "google" }

// Submit streams the utterance through a recognition session and
// returns the joined final transcript.
func (g *GoogleStream) Submit(ctx context.Context, u *endpoint.Utterance) (Result, error) {
	if u == nil || u.FrameCount() == 0 {
		return Result{}, ErrEmptyAudio
	}

	stream, err := g.open(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, fmt.Errorf("%w: open session: %w", ErrFailed, err)
	}
	if err := g.sendConfig(stream, u.SampleRate); err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, fmt.Errorf("%w: send config: %w", ErrFailed, err)
	}

	// Receive concurrently so interim hypotheses surface while audio
	// is still going out, not only after the send loop finishes.
	type recvOut struct {
		res Result
		err error
	}
	done := make(chan recvOut, 1)
	go func() {
		res, err := g.receive(stream)
		done <- recvOut{res, err}
	}()

	if err := g.sendAudio(stream, u); err != nil && ctx.Err() == nil {
		// The receiver surfaces the stream's real error; a failed
		// Send here is only the local symptom.
		g.logger.Warn("send audio failed", "error", err)
	}
	_ = stream.CloseSend()

	select {
	case out := <-done:
		if out.err != nil {
			if ctx.Err() != nil {
				return Result{}, ctx.Err()
			}
			return Result{}, out.err
		}
		return out.res, nil
	case <-ctx.Done():
		// The session shares ctx, so the receiver unblocks on its own.
		return Result{}, ctx.Err()
	}
}

func (g *GoogleStream) sendConfig(stream recognizeStream, sampleRate int) error {
	return stream.Send(&speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
			StreamingConfig: &speechpb.StreamingRecognitionConfig{
				Config: &speechpb.RecognitionConfig{
					Encoding:                   speechpb.RecognitionConfig_LINEAR16,
					SampleRateHertz:            int32(sampleRate),
					LanguageCode:               g.language,
					EnableAutomaticPunctuation: true,
					Model:                      "latest_long",
					UseEnhanced:                true,
				},
				InterimResults: true,
			},
		},
	})
}

func (g *GoogleStream) sendAudio(stream recognizeStream, u *endpoint.Utterance) error {
	for i := 0; i < len(u.Frames); i += googleChunkFrames {
		end := i + googleChunkFrames
		if end > len(u.Frames) {
			end = len(u.Frames)
		}
		var chunk []byte
		for _, f := range u.Frames[i:end] {
			chunk = append(chunk, f.Bytes()...)
		}
		req := &speechpb.StreamingRecognizeRequest{
			StreamingRequest: &speechpb.StreamingRecognizeRequest_AudioContent{
				AudioContent: chunk,
			},
		}
		if err := stream.Send(req); err != nil {
			return err
		}
	}
	return nil
}

// receive drains the session to EOF, reporting interim hypotheses and
// collecting final segments.
func (g *GoogleStream) receive(stream recognizeStream) (Result, error) {
	var finals []string
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("%w: recv: %w", ErrFailed, err)
		}

		for _, r := range resp.Results {
			if len(r.Alternatives) == 0 {
				continue
			}
			text := strings.TrimSpace(r.Alternatives[0].Transcript)
			if !r.IsFinal {
				if g.OnInterim != nil && text != "" {
					g.OnInterim(text)
				}
				continue
			}
			if text != "" {
				finals = append(finals, text)
			}
		}
	}
	if len(finals) == 0 {
		return Result{}, ErrNoSpeech
	}
	return Result{Text: strings.Join(finals, " "), Final: true}, nil
}

// Close releases the client.
func (g *GoogleStream) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}
