package playback

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"sync"

	"github.com/hubirobotics/go-tobias/pkg/tts"
)

// ExecPlayer shells out to the host's audio player. The audio buffer
// is written to a temp file so players that cannot read stdin (afplay)
// work the same as those that can. Cancelling the context kills the
// player process, which stops output within a buffer's worth of audio.
type ExecPlayer struct {
	logger *slog.Logger

	mu      sync.Mutex
	playing bool
}

// NewExecPlayer creates a player using the platform's audio command.
func NewExecPlayer(logger *slog.Logger) *ExecPlayer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecPlayer{logger: logger.With("component", "playback")}
}

// Play writes the audio to a temp file and blocks until the player
// process exits.
func (p *ExecPlayer) Play(ctx context.Context, result *tts.AudioResult) error {
	if result == nil || len(result.Audio) == 0 {
		return nil
	}

	name, args, err := playerCommand(result.Format.Encoding)
	if err != nil {
		return err
	}

	f, err := os.CreateTemp("", "tobias-speech-*"+extFor(result.Format.Encoding))
	if err != nil {
		return fmt.Errorf("%w: temp file: %w", ErrFailed, err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(result.Audio); err != nil {
		f.Close()
		return fmt.Errorf("%w: write audio: %w", ErrFailed, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close temp file: %w", ErrFailed, err)
	}

	p.setPlaying(true)
	defer p.setPlaying(false)

	cmd := exec.CommandContext(ctx, name, append(args, path)...)
	p.logger.Debug("playing audio",
		"bytes", len(result.Audio),
		"player", name,
		"duration_ms", result.Duration.Milliseconds(),
	)

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s: %w", ErrFailed, name, err)
	}
	return nil
}

// IsPlaying reports whether a playback process is running.
func (p *ExecPlayer) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *ExecPlayer) setPlaying(v bool) {
	p.mu.Lock()
	p.playing = v
	p.mu.Unlock()
}

// playerCommand picks the platform audio command for the encoding.
func playerCommand(enc tts.Encoding) (string, []string, error) {
	if runtime.GOOS == "darwin" {
		return "afplay", nil, nil
	}
	if enc == tts.EncodingMP3 {
		if _, err := exec.LookPath("mpg123"); err == nil {
			return "mpg123", []string{"-q"}, nil
		}
		return "", nil, fmt.Errorf("%w: mpg123 not found", ErrNoPlayer)
	}
	if _, err := exec.LookPath("aplay"); err == nil {
		return "aplay", []string{"-q"}, nil
	}
	return "", nil, fmt.Errorf("%w: aplay not found", ErrNoPlayer)
}

func extFor(enc tts.Encoding) string {
	if enc == tts.EncodingMP3 {
		return ".mp3"
	}
	return ".wav"
}

var _ Player = (*ExecPlayer)(nil)
