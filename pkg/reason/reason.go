// Package reason submits transcripts to a language-reasoning service
// and decodes the structured reply into spoken text plus an optional
// action identifier.
package reason

import (
	"context"
	"errors"
)

var (
	// ErrMissingAPIKey indicates no API key was configured.
	ErrMissingAPIKey = errors.New("reason: missing API key")

	// ErrFailed indicates the reasoning service call failed.
	ErrFailed = errors.New("reason: request failed")

	// ErrEmptyReply indicates the service returned no content.
	ErrEmptyReply = errors.New("reason: empty reply")
)

// Reply is the decoded outcome of one reasoning call: what to say and,
// optionally, which physical action to perform.
type Reply struct {
	SpokenText string
	Action     string
}

// HasAction reports whether the reply carries an action identifier.
func (r Reply) HasAction() bool { return r.Action != "" }

// Engine produces a Reply for a user transcript. Implementations may
// keep conversation history across calls.
type Engine interface {
	// Respond sends the transcript to the reasoning service and
	// returns the decoded reply.
	Respond(ctx context.Context, userText string) (Reply, error)

	// Reset clears any accumulated conversation history.
	Reset()

	Close() error
}
