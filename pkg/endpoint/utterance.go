package endpoint

import (
	"time"

	"github.com/hubirobotics/go-tobias/pkg/audiodev"
)

// Utterance is one continuous speech segment plus its trailing silence,
// the unit submitted for transcription. It is created by the Endpointer
// and consumed exactly once downstream.
type Utterance struct {
	// Frames holds the buffered frames in capture order.
	Frames []audiodev.Frame

	// SampleRate and Channels mirror the capture settings.
	SampleRate int
	Channels   int

	// StartSeq is the sequence index of the first speech frame.
	StartSeq int
}

// Duration returns the total utterance duration.
func (u *Utterance) Duration() time.Duration {
	var d time.Duration
	for _, f := range u.Frames {
		d += f.Duration()
	}
	return d
}

// PCM returns the raw little-endian PCM16 sample buffer.
func (u *Utterance) PCM() []byte {
	size := 0
	for _, f := range u.Frames {
		size += len(f.Samples) * 2
	}
	buf := make([]byte, 0, size)
	for _, f := range u.Frames {
		buf = append(buf, f.Bytes()...)
	}
	return buf
}

// FrameCount returns the number of buffered frames.
func (u *Utterance) FrameCount() int {
	return len(u.Frames)
}
