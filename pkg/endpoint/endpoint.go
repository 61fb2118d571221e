// Package endpoint assembles complete utterances from continuous audio.
//
// The Endpointer reads 10ms frames from a capture stream, classifies
// each with a voice-activity classifier, and decides where an utterance
// begins and ends: leading non-speech is discarded, buffering starts at
// the first speech frame, and a run of trailing silence ends the
// utterance. A shared cancellation flag is polled every frame, bounding
// cancellation latency to one frame period.
package endpoint

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/hubirobotics/go-tobias/pkg/audiodev"
	"github.com/hubirobotics/go-tobias/pkg/vad"
)

// Common errors returned by Listen.
var (
	// ErrNoSpeech indicates the capture loop ended with an empty
	// buffer. Benign: the caller retries capture.
	ErrNoSpeech = errors.New("endpoint: no speech detected")

	// ErrCancelled indicates the cancellation flag was observed. The
	// partial buffer is discarded.
	ErrCancelled = errors.New("endpoint: cancelled")
)

// DefaultSilenceLimit is how much trailing silence ends an utterance.
const DefaultSilenceLimit = time.Second

// Option configures an Endpointer.
type Option func(*Endpointer)

// WithSilenceLimit sets the trailing-silence duration that ends an
// utterance.
func WithSilenceLimit(d time.Duration) Option {
	return func(e *Endpointer) {
		if d > 0 {
			e.silenceLimit = d
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Endpointer) {
		e.logger = logger
	}
}

// Endpointer turns continuous capture into discrete utterances. It
// exclusively owns the in-progress utterance buffer and, for the span
// of each Listen call, the open capture stream.
type Endpointer struct {
	host       audiodev.Host
	dev        audiodev.Device
	sampleRate int
	channels   int
	classifier vad.Classifier
	cancel     *CancelFlag

	silenceLimit time.Duration
	logger       *slog.Logger
}

// New creates an Endpointer capturing from the given device.
func New(host audiodev.Host, dev audiodev.Device, sampleRate int, classifier vad.Classifier, cancel *CancelFlag, opts ...Option) *Endpointer {
	e := &Endpointer{
		host:         host,
		dev:          dev,
		sampleRate:   sampleRate,
		channels:     1,
		classifier:   classifier,
		cancel:       cancel,
		silenceLimit: DefaultSilenceLimit,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SampleRate returns the negotiated capture rate.
func (e *Endpointer) SampleRate() int { return e.sampleRate }

// Listen captures one utterance. It opens the stream, discards frames
// until speech is first detected, then buffers every frame until the
// silence run exceeds the configured limit.
//
// Returns ErrNoSpeech when the loop ends with nothing buffered,
// ErrCancelled when the cancellation flag (or context) interrupts
// capture, and an audiodev.ErrDevice-wrapped error on fatal device
// failure. Device overflow is swallowed: the frame is dropped and the
// loop continues.
func (e *Endpointer) Listen(ctx context.Context) (*Utterance, error) {
	stream, err := e.host.OpenStream(e.dev, e.sampleRate, e.channels)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, err
	}
	defer stream.Stop()

	silenceThreshold := int(e.silenceLimit / audiodev.FrameDuration)

	var frames []audiodev.Frame
	startSeq := 0
	silenceRun := 0

	for {
		if e.cancel.IsSet() {
			return nil, ErrCancelled
		}

		frame, err := stream.Read(ctx)
		switch {
		case err == nil:
		case errors.Is(err, audiodev.ErrOverflow):
			// Frame lost; keep reading.
			continue
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, ErrCancelled
		case errors.Is(err, io.EOF):
			if len(frames) == 0 {
				return nil, ErrNoSpeech
			}
			return e.finish(frames, startSeq), nil
		default:
			return nil, err
		}

		speech, cerr := e.classifier.IsSpeech(frame.Samples, frame.SampleRate)
		if cerr != nil {
			e.logger.Warn("classifier rejected frame", "error", cerr)
			speech = false
		}

		switch {
		case speech:
			if len(frames) == 0 {
				startSeq = frame.Seq
			}
			frames = append(frames, frame)
			silenceRun = 0
		case len(frames) > 0:
			// Silence only counts once speech has started.
			frames = append(frames, frame)
			silenceRun++
			if silenceRun > silenceThreshold {
				return e.finish(frames, startSeq), nil
			}
		}
	}
}

func (e *Endpointer) finish(frames []audiodev.Frame, startSeq int) *Utterance {
	u := &Utterance{
		Frames:     frames,
		SampleRate: e.sampleRate,
		Channels:   e.channels,
		StartSeq:   startSeq,
	}
	e.logger.Debug("utterance complete",
		"frames", u.FrameCount(),
		"duration", u.Duration(),
		"start_seq", startSeq,
	)
	return u
}

// Run emits completed utterances on out until the context ends, the
// cancellation flag is raised, or the device fails. ErrNoSpeech cycles
// are retried silently. The channel gives the consumer explicit
// backpressure: capture for the next turn does not begin until the
// previous utterance is accepted.
func (e *Endpointer) Run(ctx context.Context, out chan<- *Utterance) error {
	for {
		u, err := e.Listen(ctx)
		switch {
		case errors.Is(err, ErrNoSpeech):
			continue
		case errors.Is(err, ErrCancelled):
			return err
		case err != nil:
			return err
		}

		select {
		case out <- u:
		case <-ctx.Done():
			return ErrCancelled
		}
	}
}
