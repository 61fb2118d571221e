package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hubirobotics/go-tobias/internal/config"
	"github.com/hubirobotics/go-tobias/internal/log"
	"github.com/hubirobotics/go-tobias/pkg/actuator"
	"github.com/hubirobotics/go-tobias/pkg/audiodev"
	"github.com/hubirobotics/go-tobias/pkg/endpoint"
	"github.com/hubirobotics/go-tobias/pkg/indicator"
	"github.com/hubirobotics/go-tobias/pkg/playback"
	"github.com/hubirobotics/go-tobias/pkg/reason"
	"github.com/hubirobotics/go-tobias/pkg/transcribe"
	"github.com/hubirobotics/go-tobias/pkg/tts"
	"github.com/hubirobotics/go-tobias/pkg/turn"
	"github.com/hubirobotics/go-tobias/pkg/vad"
	"github.com/hubirobotics/go-tobias/pkg/web"
)

// TobiasInstructions is the base personality prompt, overridable via
// the PROMPT_BASE environment variable.
const TobiasInstructions = `Voce e o Tobias, um robo humanoide simpatico e curioso.
Voce conversa em portugues brasileiro, com respostas curtas e naturais,
como numa conversa falada. Voce adora interagir com pessoas, fazer
piadas leves e demonstrar entusiasmo com gestos.

Nunca diga que voce e um modelo de linguagem ou uma IA. Voce E o Tobias.`

// GovernanceRules constrains the reply format, overridable via the
// GOVERNANCE_BASE environment variable.
const GovernanceRules = `Responda SEMPRE com um unico objeto JSON com estas chaves:
  "chat-response": o texto a ser falado em voz alta
  "movement": o nome de um gesto, ou string vazia se nenhum

Gestos disponiveis: release_arm, shake_hand, high_five, hug,
high_wave, clap, face_wave, left_kiss, heart, right_heart, hands_up,
x_ray, right_hand_up, reject, right_kiss, two_hand_kiss.

Use apenas gestos dessa lista. Nao inclua texto fora do objeto JSON.`

// App is the main Tobias application. It owns every component's
// lifecycle: Init builds the pipeline, Run serves until the context is
// cancelled, Shutdown releases hardware and network resources.
type App struct {
	cfg Config

	host     *audiodev.PortAudioHost
	flag     *endpoint.CancelFlag
	listener turn.Listener

	dispatcher transcribe.Dispatcher
	engine     reason.Engine
	synth      tts.Provider
	player     playback.Player

	driver actuator.Driver
	ind    *indicator.Indicator

	orch       *turn.Orchestrator
	controller *turn.Controller
	webServer  *web.Server
}

// New validates configuration and returns an unstarted App. All
// missing keys are named together, matching config.CheckRequired.
func New(cfg Config) (*App, error) {
	var missing []string
	if cfg.OpenAIKey == "" {
		missing = append(missing, config.EnvOpenAIKey)
	}
	if cfg.ElevenLabsKey == "" {
		missing = append(missing, config.EnvElevenLabsKey)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %v", missing)
	}
	return &App{cfg: cfg, flag: &endpoint.CancelFlag{}}, nil
}

// Init builds and connects every component. The context is retained by
// the streaming transcriber for its session lifetime, so pass the
// process context, not a short-lived one.
func (a *App) Init(ctx context.Context) error {
	level := "info"
	if a.cfg.Debug {
		level = "debug"
	}
	log.Init(level)
	logger := log.With("component", "app")

	if err := a.initListener(); err != nil {
		return err
	}
	if err := a.initDispatcher(ctx); err != nil {
		return err
	}

	prompt := config.Get(config.EnvPromptBase, TobiasInstructions)
	governance := config.Get(config.EnvGovernanceBase, GovernanceRules)
	engine, err := reason.NewOpenAI(a.cfg.OpenAIKey, prompt, governance)
	if err != nil {
		return fmt.Errorf("reasoning engine: %w", err)
	}
	a.engine = engine

	if err := a.initSpeech(); err != nil {
		return err
	}
	a.player = playback.NewExecPlayer(log.L())

	if !a.cfg.NoRobot {
		a.driver = actuator.NewBridge(a.cfg.BridgeURL)
		a.ind = indicator.New(indicator.NewBridge(a.cfg.BridgeURL))
	}

	a.orch = turn.NewOrchestrator(
		a.listener, a.dispatcher, a.engine, a.synth, a.player, a.driver, a.ind,
	)
	a.controller = turn.NewController(a.orch, a.flag, log.L())

	a.webServer = web.NewServer(a.cfg.Port, a.controller, a.driver, log.L())
	a.orch.OnState = a.webServer.RecordState
	a.controller.OnResult = a.webServer.RecordResult

	logger.Info("initialized",
		"transcriber", a.dispatcher.Name(),
		"language", a.cfg.Language,
		"no_audio", a.cfg.NoAudio,
		"no_robot", a.cfg.NoRobot)
	return nil
}

// initListener opens the microphone and builds the endpointer, or
// installs a blocking stub when audio is disabled.
func (a *App) initListener() error {
	if a.cfg.NoAudio {
		a.listener = idleListener{}
		return nil
	}

	host, err := audiodev.NewPortAudioHost(log.L())
	if err != nil {
		return fmt.Errorf("audio host: %w", err)
	}
	a.host = host

	dev, err := audiodev.Select(host, a.cfg.MicDevice)
	if err != nil {
		host.Close()
		return fmt.Errorf("microphone: %w", err)
	}

	rates := audiodev.ProbeRates(host, dev, 1)
	rate := captureRate(rates)

	classifier, err := vad.NewWebRTC(vad.ModeVeryAggressive)
	if err != nil {
		log.Warn("webrtc vad unavailable, falling back to energy gate", "error", err)
		a.listener = endpoint.New(host, dev, rate, vad.NewEnergy(), a.flag,
			endpoint.WithSilenceLimit(a.cfg.SilenceLimit))
		return nil
	}

	a.listener = endpoint.New(host, dev, rate, classifier, a.flag,
		endpoint.WithSilenceLimit(a.cfg.SilenceLimit))
	log.Info("microphone ready", "device", dev.Name, "sample_rate", rate)
	return nil
}

// captureRate picks the highest probed rate the frame classifier
// accepts, falling back to the nearest acceptable rate when the device
// supports none of them.
func captureRate(probed []int) int {
	best := 0
	for _, r := range probed {
		if vad.RateSupported(r) && r > best {
			best = r
		}
	}
	if best > 0 {
		return best
	}
	return vad.NearestRate(audiodev.MaxRate(probed, 16000))
}

func (a *App) initDispatcher(ctx context.Context) error {
	switch a.cfg.Transcriber {
	case "google":
		d, err := transcribe.NewGoogleStream(ctx,
			transcribe.WithGoogleLanguage(a.cfg.Language))
		if err != nil {
			return fmt.Errorf("google transcriber: %w", err)
		}
		d.OnInterim = func(text string) {
			log.Debug("interim transcript", "text", text)
		}
		a.dispatcher = d
	case "whisper", "":
		d, err := transcribe.NewWhisper(a.cfg.OpenAIKey,
			transcribe.WithWhisperLanguage(shortLang(a.cfg.Language)))
		if err != nil {
			return fmt.Errorf("whisper transcriber: %w", err)
		}
		a.dispatcher = d
	default:
		return fmt.Errorf("unknown transcription backend %q", a.cfg.Transcriber)
	}
	return nil
}

// initSpeech builds the synthesis chain: ElevenLabs first, OpenAI TTS
// as fallback since the OpenAI key is always present.
func (a *App) initSpeech() error {
	eleven, err := tts.NewElevenLabs(
		tts.WithAPIKey(a.cfg.ElevenLabsKey),
		tts.WithVoice(tts.ResolveVoice(a.cfg.VoiceID)),
	)
	if err != nil {
		return fmt.Errorf("elevenlabs: %w", err)
	}

	fallback, err := tts.NewOpenAI(tts.WithAPIKey(a.cfg.OpenAIKey))
	if err != nil {
		a.synth = eleven
		return nil
	}
	chain, err := tts.NewChainWithLogger(log.L(), eleven, fallback)
	if err != nil {
		return fmt.Errorf("tts chain: %w", err)
	}
	a.synth = chain
	return nil
}

// Run serves the control surface until the context is cancelled. When
// AutoStart is set the interaction loop begins immediately.
func (a *App) Run(ctx context.Context) error {
	if a.ind != nil {
		// Startup greeting: a short green blink, then idle.
		_ = a.ind.Blink(ctx, indicator.SignalListening, 2, 150*time.Millisecond)
		_ = a.ind.SetPhase(ctx, indicator.PhaseIdle)
	}

	a.webServer.StartAsync()

	if a.cfg.AutoStart && !a.cfg.NoAudio {
		log.Info("interaction loop", "report", a.controller.Start())
	}

	<-ctx.Done()
	return nil
}

// Shutdown stops the loop and releases every resource. Safe to call
// after a partial Init.
func (a *App) Shutdown() {
	if a.controller != nil && a.controller.Running() {
		log.Info("stopping interaction loop", "report", a.controller.Stop(turn.DefaultStopTimeout))
	}
	if a.webServer != nil {
		_ = a.webServer.Shutdown()
	}
	if a.ind != nil {
		_ = a.ind.Close()
	}
	if a.driver != nil {
		_ = a.driver.Close()
	}
	if a.dispatcher != nil {
		_ = a.dispatcher.Close()
	}
	if a.engine != nil {
		_ = a.engine.Close()
	}
	if a.synth != nil {
		_ = a.synth.Close()
	}
	if a.host != nil {
		_ = a.host.Close()
	}
	log.Info("shutdown complete")
}

// Controller exposes the interaction loop for tests and tooling.
func (a *App) Controller() *turn.Controller { return a.controller }

// idleListener blocks until the context is cancelled. Used in
// --no-audio mode so the loop parks instead of spinning.
type idleListener struct{}

func (idleListener) Listen(ctx context.Context) (*endpoint.Utterance, error) {
	<-ctx.Done()
	return nil, endpoint.ErrCancelled
}

// shortLang reduces a BCP-47 tag to the ISO 639-1 code Whisper
// expects, e.g. "pt-BR" to "pt".
func shortLang(tag string) string {
	if i := strings.IndexByte(tag, '-'); i > 0 {
		return tag[:i]
	}
	return tag
}
