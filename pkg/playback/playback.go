// Package playback renders synthesized audio on the host's default
// output device.
package playback

import (
	"context"
	"errors"

	"github.com/hubirobotics/go-tobias/pkg/tts"
)

var (
	// ErrNoPlayer indicates no playback command is available on this host.
	ErrNoPlayer = errors.New("playback: no player command available")

	// ErrFailed indicates the playback process failed.
	ErrFailed = errors.New("playback: failed")
)

// Player renders one audio buffer to completion. Play blocks until
// playback finishes or ctx is cancelled; cancellation stops output
// immediately.
type Player interface {
	Play(ctx context.Context, result *tts.AudioResult) error
}
