// Package transcribe submits captured utterances to a transcription
// backend and returns finalized text.
//
// Two interchangeable strategies implement the Dispatcher contract:
// Whisper performs batch transcription of a complete utterance, and
// GoogleStream forwards audio over a persistent streaming-recognition
// session with interim results. Which one is used is an explicit
// configuration choice.
package transcribe

import (
	"context"
	"errors"

	"github.com/hubirobotics/go-tobias/pkg/endpoint"
)

// Common errors.
var (
	// ErrNoSpeech indicates the backend produced an empty or
	// whitespace-only transcript. Benign: the caller retries capture.
	ErrNoSpeech = errors.New("transcribe: no speech in transcript")

	// ErrEmptyAudio indicates a zero-length utterance was submitted.
	ErrEmptyAudio = errors.New("transcribe: empty audio")

	// ErrFailed indicates the backend call failed. Failures are not
	// retried here; the orchestrator decides whether to restart the
	// turn.
	ErrFailed = errors.New("transcribe: transcription failed")

	// ErrMissingAPIKey indicates backend credentials are missing.
	ErrMissingAPIKey = errors.New("transcribe: API key required")
)

// Result is one transcription result.
type Result struct {
	// Text is the transcript.
	Text string

	// Final reports whether this is a finalized result. Only final,
	// non-empty results propagate downstream; interim results are
	// status-only.
	Final bool
}

// Dispatcher submits one utterance and returns its finalized text.
type Dispatcher interface {
	// Name returns the backend identifier (for logging).
	Name() string

	// Submit transcribes the utterance. Empty transcripts map to
	// ErrNoSpeech; backend failures surface as ErrFailed-wrapped
	// errors without internal retry.
	Submit(ctx context.Context, u *endpoint.Utterance) (Result, error)

	// Close releases backend resources.
	Close() error
}
