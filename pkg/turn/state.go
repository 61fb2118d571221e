// Package turn drives the conversation state machine: one turn runs
// capture, transcription, reasoning, and concurrent speech/actuator
// execution, with per-turn failure containment.
package turn

import (
	"time"

	"github.com/hubirobotics/go-tobias/pkg/reason"
)

// State is the orchestrator phase. Exactly one is active per
// controller instance.
type State int

const (
	StateIdle State = iota
	StateListening
	StateAwaitingTranscript
	StateDispatching
	StateActing
	StateError
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateAwaitingTranscript:
		return "awaiting_transcript"
	case StateDispatching:
		return "dispatching"
	case StateActing:
		return "acting"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Outcome classifies how a turn ended. Every turn resolves to exactly
// one outcome; none vanish silently.
type Outcome int

const (
	// OutcomeSuccess means the full cycle completed.
	OutcomeSuccess Outcome = iota

	// OutcomeNoSpeech means capture ended without speech; benign,
	// the loop retries.
	OutcomeNoSpeech

	// OutcomeCancelled means the cancellation flag or context ended
	// the turn early; benign.
	OutcomeCancelled

	// OutcomeFailed means a remote call failed; the turn is logged
	// and dropped, the loop continues.
	OutcomeFailed
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeNoSpeech:
		return "no_speech"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result records one completed turn.
type Result struct {
	// ID uniquely identifies the turn.
	ID string

	// Outcome classifies the ending.
	Outcome Outcome

	// Transcript is the recognized user speech, when one was produced.
	Transcript string

	// Reply is the decoded reasoning output, when one was produced.
	Reply reason.Reply

	// FailedPhase names the phase a failed turn died in.
	FailedPhase State

	// Err holds the failure, when Outcome is OutcomeFailed.
	Err error

	// CompletedAt is when both Acting branches had joined (or the
	// turn otherwise resolved).
	CompletedAt time.Time
}
