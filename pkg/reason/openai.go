package reason

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"
)

const (
	// DefaultModel balances latency against reply quality for a
	// real-time voice loop.
	DefaultModel = "gpt-4o-mini"

	// maxHistoryTurns bounds the rolling conversation window. Older
	// exchanges are dropped pairwise.
	maxHistoryTurns = 20

	defaultTemperature = 0.7
)

// OpenAI implements Engine with the OpenAI chat completions API.
// Conversation history is kept across turns in a rolling window; the
// two system instructions (persona and governance) are pinned at the
// front of every request.
type OpenAI struct {
	client      oai.Client
	apiKey      string
	model       string
	prompt      string
	governance  string
	temperature float64
	logger      *slog.Logger

	mu      sync.Mutex
	history []oai.ChatCompletionMessageParamUnion
}

// OpenAIOption configures the engine.
type OpenAIOption func(*OpenAI)

// WithModel overrides the chat model.
func WithModel(model string) OpenAIOption {
	return func(o *OpenAI) { o.model = model }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) OpenAIOption {
	return func(o *OpenAI) { o.temperature = t }
}

// WithBaseURL overrides the API base URL (for tests/proxies).
func WithBaseURL(url string) OpenAIOption {
	return func(o *OpenAI) {
		o.client = oai.NewClient(append(o.reqOpts(), option.WithBaseURL(url))...)
	}
}

// WithReasonLogger sets the structured logger.
func WithReasonLogger(logger *slog.Logger) OpenAIOption {
	return func(o *OpenAI) { o.logger = logger }
}

// reqOpts rebuilds the base request options; WithBaseURL needs them to
// reconstruct the client.
func (o *OpenAI) reqOpts() []option.RequestOption {
	return []option.RequestOption{option.WithAPIKey(o.apiKey)}
}

// NewOpenAI creates a reasoning engine. prompt is the persona
// instruction; governance is the behavioral policy appended as a
// second system message.
func NewOpenAI(apiKey, prompt, governance string, opts ...OpenAIOption) (*OpenAI, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	o := &OpenAI{
		apiKey:      apiKey,
		model:       DefaultModel,
		prompt:      prompt,
		governance:  governance,
		temperature: defaultTemperature,
		logger:      slog.Default(),
	}
	o.client = oai.NewClient(o.reqOpts()...)
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With("component", "reason.openai")
	return o, nil
}

// Respond sends the transcript with pinned system instructions plus
// rolling history and decodes the reply. A decode fallback to raw text
// is logged but never an error.
func (o *OpenAI) Respond(ctx context.Context, userText string) (Reply, error) {
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return Reply{}, fmt.Errorf("%w: empty transcript", ErrFailed)
	}

	o.mu.Lock()
	messages := make([]oai.ChatCompletionMessageParamUnion, 0, len(o.history)+3)
	messages = append(messages, oai.SystemMessage(o.prompt))
	if o.governance != "" {
		messages = append(messages, oai.SystemMessage(o.governance))
	}
	messages = append(messages, o.history...)
	messages = append(messages, oai.UserMessage(userText))
	o.mu.Unlock()

	params := oai.ChatCompletionNewParams{
		Model:       shared.ChatModel(o.model),
		Messages:    messages,
		Temperature: param.NewOpt(o.temperature),
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Reply{}, fmt.Errorf("%w: %w", ErrFailed, err)
	}
	if len(resp.Choices) == 0 {
		return Reply{}, ErrEmptyReply
	}

	raw := resp.Choices[0].Message.Content
	if strings.TrimSpace(raw) == "" {
		return Reply{}, ErrEmptyReply
	}

	reply, degraded := Decode(raw)
	if degraded {
		o.logger.Warn("reply decode degraded to raw text", "chars", len(raw))
	}

	o.mu.Lock()
	o.history = append(o.history, oai.UserMessage(userText), oai.AssistantMessage(raw))
	if len(o.history) > maxHistoryTurns*2 {
		o.history = o.history[len(o.history)-maxHistoryTurns*2:]
	}
	o.mu.Unlock()

	o.logger.Debug("reply decoded",
		"spoken_chars", len(reply.SpokenText),
		"action", reply.Action,
		"degraded", degraded,
	)
	return reply, nil
}

// Reset clears the conversation history.
func (o *OpenAI) Reset() {
	o.mu.Lock()
	o.history = nil
	o.mu.Unlock()
}

// Close implements Engine. The SDK client holds no resources needing
// explicit release.
func (o *OpenAI) Close() error { return nil }
