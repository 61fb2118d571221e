package turn

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/hubirobotics/go-tobias/pkg/actuator"
	"github.com/hubirobotics/go-tobias/pkg/audiodev"
	"github.com/hubirobotics/go-tobias/pkg/endpoint"
	"github.com/hubirobotics/go-tobias/pkg/indicator"
	"github.com/hubirobotics/go-tobias/pkg/playback"
	"github.com/hubirobotics/go-tobias/pkg/reason"
	"github.com/hubirobotics/go-tobias/pkg/transcribe"
	"github.com/hubirobotics/go-tobias/pkg/tts"
)

type stubListener struct {
	mu    sync.Mutex
	queue []func(ctx context.Context) (*endpoint.Utterance, error)
}

func (s *stubListener) push(fn func(ctx context.Context) (*endpoint.Utterance, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, fn)
}

func (s *stubListener) Listen(ctx context.Context) (*endpoint.Utterance, error) {
	s.mu.Lock()
	if len(s.queue) == 0 {
		s.mu.Unlock()
		return nil, endpoint.ErrCancelled
	}
	fn := s.queue[0]
	s.queue = s.queue[1:]
	s.mu.Unlock()
	return fn(ctx)
}

func utterance() *endpoint.Utterance {
	u := &endpoint.Utterance{SampleRate: 16000, Channels: 1}
	for i := 0; i < 30; i++ {
		u.Frames = append(u.Frames, audiodev.SpeechFrame(16000, i))
	}
	return u
}

func speechOnce(s *stubListener) {
	s.push(func(context.Context) (*endpoint.Utterance, error) { return utterance(), nil })
}

type fixture struct {
	listener *stubListener
	disp     *transcribe.Mock
	engine   *reason.Mock
	synth    *tts.Mock
	player   *playback.Mock
	driver   *actuator.Mock
	led      *indicator.MockDriver
	orch     *Orchestrator
}

func newFixture() *fixture {
	f := &fixture{
		listener: &stubListener{},
		disp:     transcribe.NewMock(),
		engine:   reason.NewMockEngine(),
		synth:    tts.NewMock(),
		player:   &playback.Mock{},
		driver:   &actuator.Mock{},
		led:      &indicator.MockDriver{},
	}
	f.orch = NewOrchestrator(
		f.listener, f.disp, f.engine, f.synth, f.player, f.driver,
		indicator.New(f.led, indicator.WithErrorHold(time.Millisecond)),
	)
	return f
}

func TestRunTurn_FullCycle(t *testing.T) {
	f := newFixture()
	speechOnce(f.listener)
	f.disp.AddResult(transcribe.Result{Text: "de um tchauzinho", Final: true})
	f.engine.AddReply(reason.Reply{SpokenText: "tchau!", Action: "high_wave"})

	res := f.orch.RunTurn(context.Background())
	if res.Outcome != OutcomeSuccess {
		t.Fatalf("outcome = %s (err %v)", res.Outcome, res.Err)
	}
	if res.Transcript != "de um tchauzinho" {
		t.Errorf("transcript = %q", res.Transcript)
	}
	if got := f.player.Played(); len(got) != 1 {
		t.Errorf("playback count = %d", len(got))
	}
	if got := f.driver.Executed(); len(got) != 1 || got[0] != actuator.ActionHighWave {
		t.Errorf("executed = %v", got)
	}
	if f.orch.State() != StateIdle {
		t.Errorf("final state = %s", f.orch.State())
	}
}

func TestRunTurn_ActingJoinsBothBranches(t *testing.T) {
	f := newFixture()
	speechOnce(f.listener)
	f.disp.AddResult(transcribe.Result{Text: "abrace", Final: true})
	f.engine.AddReply(reason.Reply{SpokenText: "vem ca", Action: "hug"})
	f.player.Delay = 20 * time.Millisecond
	f.driver.Delay = 60 * time.Millisecond

	res := f.orch.RunTurn(context.Background())
	if res.Outcome != OutcomeSuccess {
		t.Fatalf("outcome = %s", res.Outcome)
	}
	playDone := f.player.LastDone()
	actDone := f.driver.LastDone()
	if actDone.Before(playDone) {
		t.Fatalf("test setup: actuator should outlast playback")
	}
	if res.CompletedAt.Before(actDone) {
		t.Errorf("turn completed at %v before actuator done at %v", res.CompletedAt, actDone)
	}
	if res.CompletedAt.Before(playDone) {
		t.Errorf("turn completed at %v before playback done at %v", res.CompletedAt, playDone)
	}
}

func TestRunTurn_NoSpeechIsBenign(t *testing.T) {
	f := newFixture()
	f.listener.push(func(context.Context) (*endpoint.Utterance, error) {
		return nil, endpoint.ErrNoSpeech
	})
	res := f.orch.RunTurn(context.Background())
	if res.Outcome != OutcomeNoSpeech {
		t.Errorf("outcome = %s", res.Outcome)
	}
	if len(f.engine.Inputs()) != 0 {
		t.Error("reasoning reached on no-speech turn")
	}
}

func TestRunTurn_EmptyTranscriptIsNoSpeech(t *testing.T) {
	f := newFixture()
	speechOnce(f.listener)
	f.disp.AddError(transcribe.ErrNoSpeech)

	res := f.orch.RunTurn(context.Background())
	if res.Outcome != OutcomeNoSpeech {
		t.Errorf("outcome = %s", res.Outcome)
	}
}

func TestRunTurn_ReasoningFailureContained(t *testing.T) {
	f := newFixture()
	speechOnce(f.listener)
	f.disp.AddResult(transcribe.Result{Text: "oi", Final: true})
	f.engine.AddError(reason.ErrFailed)

	res := f.orch.RunTurn(context.Background())
	if res.Outcome != OutcomeFailed {
		t.Fatalf("outcome = %s", res.Outcome)
	}
	if res.FailedPhase != StateDispatching {
		t.Errorf("failed phase = %s", res.FailedPhase)
	}
	if !errors.Is(res.Err, reason.ErrFailed) {
		t.Errorf("err = %v", res.Err)
	}
	if f.orch.State() != StateIdle {
		t.Errorf("final state = %s", f.orch.State())
	}
}

func TestRunTurn_StopDuringRemoteCallIsCancelled(t *testing.T) {
	// Backends wrap transport errors but must keep the chain to
	// context.Canceled intact so an interrupted turn resolves as
	// Cancelled, not Failed.
	t.Run("during transcription", func(t *testing.T) {
		f := newFixture()
		speechOnce(f.listener)
		f.disp.AddError(fmt.Errorf("%w: recv: %w", transcribe.ErrFailed, context.Canceled))

		res := f.orch.RunTurn(context.Background())
		if res.Outcome != OutcomeCancelled {
			t.Fatalf("outcome = %s, want %s", res.Outcome, OutcomeCancelled)
		}
		if f.orch.State() != StateIdle {
			t.Errorf("final state = %s", f.orch.State())
		}
	})

	t.Run("during reasoning", func(t *testing.T) {
		f := newFixture()
		speechOnce(f.listener)
		f.disp.AddResult(transcribe.Result{Text: "oi", Final: true})
		f.engine.AddError(fmt.Errorf("%w: %w", reason.ErrFailed, context.Canceled))

		res := f.orch.RunTurn(context.Background())
		if res.Outcome != OutcomeCancelled {
			t.Fatalf("outcome = %s, want %s", res.Outcome, OutcomeCancelled)
		}
		if res.Err != nil {
			t.Errorf("cancelled turn carries error %v", res.Err)
		}
	})
}

func TestRunTurn_ActuatorFailureDoesNotFailTurn(t *testing.T) {
	f := newFixture()
	speechOnce(f.listener)
	f.disp.AddResult(transcribe.Result{Text: "bata palmas", Final: true})
	f.engine.AddReply(reason.Reply{SpokenText: "claro", Action: "clap"})
	f.driver.Err = actuator.ErrFailed

	res := f.orch.RunTurn(context.Background())
	if res.Outcome != OutcomeSuccess {
		t.Errorf("outcome = %s, actuator failures are local", res.Outcome)
	}
	if len(f.player.Played()) != 1 {
		t.Error("playback branch did not run")
	}
}

func TestRunTurn_UnknownActionFailsLocally(t *testing.T) {
	f := newFixture()
	speechOnce(f.listener)
	f.disp.AddResult(transcribe.Result{Text: "voe", Final: true})
	f.engine.AddReply(reason.Reply{SpokenText: "nao sei voar", Action: "backflip"})

	res := f.orch.RunTurn(context.Background())
	if res.Outcome != OutcomeSuccess {
		t.Errorf("outcome = %s", res.Outcome)
	}
	if len(f.driver.Executed()) != 0 {
		t.Error("unknown action reached the driver")
	}
}

func TestController_StartStop(t *testing.T) {
	f := newFixture()
	var flag endpoint.CancelFlag
	c := NewController(f.orch, &flag, nil)

	t.Run("stop while idle reports not running", func(t *testing.T) {
		if got := c.Stop(time.Second); got != ReportNotRunning {
			t.Errorf("report = %q", got)
		}
	})

	t.Run("start then duplicate start", func(t *testing.T) {
		// Empty listener queue makes every turn resolve Cancelled,
		// which exits the loop; queue enough no-speech turns to keep
		// it alive briefly.
		for i := 0; i < 1000; i++ {
			f.listener.push(func(ctx context.Context) (*endpoint.Utterance, error) {
				select {
				case <-time.After(time.Millisecond):
				case <-ctx.Done():
					return nil, endpoint.ErrCancelled
				}
				return nil, endpoint.ErrNoSpeech
			})
		}

		if got := c.Start(); got != ReportStarted {
			t.Fatalf("first start = %q", got)
		}
		if got := c.Start(); got != ReportAlreadyRunning {
			t.Errorf("second start = %q", got)
		}
		if !c.Running() {
			t.Error("controller not running after start")
		}

		if got := c.Stop(time.Second); got != ReportStopped {
			t.Errorf("stop = %q", got)
		}
		if c.Running() {
			t.Error("controller still running after stop")
		}
	})

	t.Run("restart after stop", func(t *testing.T) {
		if got := c.Start(); got != ReportStarted {
			t.Errorf("restart = %q", got)
		}
		c.Stop(time.Second)
	})
}

func TestController_ObservesResults(t *testing.T) {
	f := newFixture()
	speechOnce(f.listener)
	f.disp.AddResult(transcribe.Result{Text: "oi", Final: true})
	f.engine.AddReply(reason.Reply{SpokenText: "ola"})

	var flag endpoint.CancelFlag
	c := NewController(f.orch, &flag, nil)

	results := make(chan *Result, 8)
	c.OnResult = func(r *Result) { results <- r }

	c.Start()
	var got *Result
	select {
	case got = <-results:
	case <-time.After(2 * time.Second):
		t.Fatal("no turn result observed")
	}
	c.Stop(time.Second)

	if got.Outcome != OutcomeSuccess {
		t.Errorf("outcome = %s", got.Outcome)
	}
}
