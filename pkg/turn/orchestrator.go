package turn

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hubirobotics/go-tobias/pkg/actuator"
	"github.com/hubirobotics/go-tobias/pkg/endpoint"
	"github.com/hubirobotics/go-tobias/pkg/indicator"
	"github.com/hubirobotics/go-tobias/pkg/playback"
	"github.com/hubirobotics/go-tobias/pkg/reason"
	"github.com/hubirobotics/go-tobias/pkg/transcribe"
	"github.com/hubirobotics/go-tobias/pkg/tts"
)

// payloadPreview caps logged payload context on failures.
const payloadPreview = 120

// Listener produces one utterance per call. *endpoint.Endpointer is
// the production implementation.
type Listener interface {
	Listen(ctx context.Context) (*endpoint.Utterance, error)
}

// Orchestrator runs single turns. It owns no goroutines of its own
// except the Acting fork-join; the Controller supplies the loop.
type Orchestrator struct {
	listener   Listener
	dispatcher transcribe.Dispatcher
	engine     reason.Engine
	synth      tts.Provider
	player     playback.Player
	driver     actuator.Driver
	ind        *indicator.Indicator
	logger     *slog.Logger

	// OnState, when set, observes every state transition.
	OnState func(State)

	mu    sync.Mutex
	state State
}

// OrchestratorOption configures the orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithOrchestratorLogger sets the structured logger.
func WithOrchestratorLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) { o.logger = logger }
}

// NewOrchestrator wires the turn pipeline. driver may be nil when no
// actuator hardware is attached; ind may be nil when no LED is.
func NewOrchestrator(
	listener Listener,
	dispatcher transcribe.Dispatcher,
	engine reason.Engine,
	synth tts.Provider,
	player playback.Player,
	driver actuator.Driver,
	ind *indicator.Indicator,
	opts ...OrchestratorOption,
) *Orchestrator {
	o := &Orchestrator{
		listener:   listener,
		dispatcher: dispatcher,
		engine:     engine,
		synth:      synth,
		player:     player,
		driver:     driver,
		ind:        ind,
		logger:     slog.Default(),
		state:      StateIdle,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With("component", "turn")
	return o
}

// State returns the current phase.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(ctx context.Context, s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
	if o.ind != nil {
		if err := o.ind.SetPhase(ctx, phaseFor(s)); err != nil && ctx.Err() == nil {
			o.logger.Warn("indicator update failed", "state", s.String(), "error", err)
		}
	}
	if o.OnState != nil {
		o.OnState(s)
	}
}

func phaseFor(s State) indicator.Phase {
	switch s {
	case StateListening:
		return indicator.PhaseListening
	case StateAwaitingTranscript:
		return indicator.PhaseProcessing
	case StateDispatching:
		return indicator.PhaseDispatching
	case StateActing:
		return indicator.PhaseActing
	case StateError:
		return indicator.PhaseError
	default:
		return indicator.PhaseIdle
	}
}

// RunTurn executes one full cycle and always returns a classified
// Result. Remote failures never propagate as errors; they resolve the
// turn to OutcomeFailed with the state machine back at Idle.
func (o *Orchestrator) RunTurn(ctx context.Context) *Result {
	res := &Result{ID: uuid.NewString()}
	log := o.logger.With("turn_id", res.ID)

	defer func() {
		res.CompletedAt = time.Now()
		o.setState(ctx, StateIdle)
	}()

	// Listening
	o.setState(ctx, StateListening)
	utt, err := o.listener.Listen(ctx)
	switch {
	case errors.Is(err, endpoint.ErrNoSpeech):
		res.Outcome = OutcomeNoSpeech
		return res
	case errors.Is(err, endpoint.ErrCancelled):
		res.Outcome = OutcomeCancelled
		return res
	case err != nil:
		return o.fail(ctx, res, StateListening, err, "")
	}
	log.Debug("utterance captured",
		"frames", utt.FrameCount(),
		"duration_ms", utt.Duration().Milliseconds(),
	)

	// AwaitingTranscript
	o.setState(ctx, StateAwaitingTranscript)
	tr, err := o.dispatcher.Submit(ctx, utt)
	switch {
	case errors.Is(err, transcribe.ErrNoSpeech), errors.Is(err, transcribe.ErrEmptyAudio):
		res.Outcome = OutcomeNoSpeech
		return res
	case errors.Is(err, context.Canceled):
		res.Outcome = OutcomeCancelled
		return res
	case err != nil:
		return o.fail(ctx, res, StateAwaitingTranscript, err, "")
	}
	res.Transcript = tr.Text
	log.Info("transcript", "text", truncate(tr.Text, payloadPreview))

	// Dispatching
	o.setState(ctx, StateDispatching)
	reply, err := o.engine.Respond(ctx, tr.Text)
	if errors.Is(err, context.Canceled) {
		res.Outcome = OutcomeCancelled
		return res
	}
	if err != nil {
		return o.fail(ctx, res, StateDispatching, err, tr.Text)
	}
	res.Reply = reply
	log.Info("reply",
		"spoken", truncate(reply.SpokenText, payloadPreview),
		"action", reply.Action,
	)

	// Acting: speech playback and actuator execution fork here and
	// both must join before the turn completes. Branch failures are
	// logged, never fatal.
	o.setState(ctx, StateActing)
	var g errgroup.Group
	g.Go(func() error {
		if err := o.speak(ctx, reply.SpokenText); err != nil && ctx.Err() == nil {
			log.Error("speech branch failed", "error", err,
				"payload", truncate(reply.SpokenText, payloadPreview))
		}
		return nil
	})
	g.Go(func() error {
		if err := o.act(ctx, reply.Action); err != nil && ctx.Err() == nil {
			log.Error("actuator branch failed", "error", err, "action", reply.Action)
		}
		return nil
	})
	_ = g.Wait()

	if ctx.Err() != nil {
		res.Outcome = OutcomeCancelled
		return res
	}
	res.Outcome = OutcomeSuccess
	return res
}

func (o *Orchestrator) speak(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}
	audio, err := o.synth.Synthesize(ctx, text)
	if err != nil {
		return err
	}
	return o.player.Play(ctx, audio)
}

func (o *Orchestrator) act(ctx context.Context, name string) error {
	if name == "" || o.driver == nil {
		return nil
	}
	action, err := actuator.Normalize(name)
	if err != nil {
		return err
	}
	return o.driver.Execute(ctx, action)
}

func (o *Orchestrator) fail(ctx context.Context, res *Result, phase State, err error, payload string) *Result {
	o.logger.Error("turn failed",
		"turn_id", res.ID,
		"phase", phase.String(),
		"error", err,
		"payload", truncate(payload, payloadPreview),
	)
	o.setState(ctx, StateError)
	res.Outcome = OutcomeFailed
	res.FailedPhase = phase
	res.Err = err
	return res
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
