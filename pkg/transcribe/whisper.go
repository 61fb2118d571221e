package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/hubirobotics/go-tobias/pkg/endpoint"
)

const (
	whisperBaseURL  = "https://api.openai.com/v1"
	whisperEndpoint = "/audio/transcriptions"

	// ModelWhisper1 is the OpenAI Whisper transcription model.
	ModelWhisper1 = "whisper-1"

	defaultWhisperTimeout = 60 * time.Second
)

// Whisper implements Dispatcher with OpenAI's batch transcription API.
// The utterance is encoded as an uncompressed WAV at capture settings
// and submitted as a single multipart upload.
type Whisper struct {
	apiKey   string
	baseURL  string
	model    string
	language string
	client   *http.Client
	logger   *slog.Logger
}

// WhisperOption configures the Whisper dispatcher.
type WhisperOption func(*Whisper)

// WithWhisperBaseURL overrides the API base URL (for tests/proxies).
func WithWhisperBaseURL(url string) WhisperOption {
	return func(w *Whisper) { w.baseURL = url }
}

// WithWhisperModel sets the transcription model.
func WithWhisperModel(model string) WhisperOption {
	return func(w *Whisper) { w.model = model }
}

// WithWhisperLanguage sets the language hint (e.g. "pt", "en").
func WithWhisperLanguage(lang string) WhisperOption {
	return func(w *Whisper) { w.language = lang }
}

// WithWhisperClient sets a custom HTTP client.
func WithWhisperClient(client *http.Client) WhisperOption {
	return func(w *Whisper) { w.client = client }
}

// WithWhisperLogger sets the structured logger.
func WithWhisperLogger(logger *slog.Logger) WhisperOption {
	return func(w *Whisper) { w.logger = logger }
}

// NewWhisper creates a batch transcription dispatcher.
func NewWhisper(apiKey string, opts ...WhisperOption) (*Whisper, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	w := &Whisper{
		apiKey:  apiKey,
		baseURL: whisperBaseURL,
		model:   ModelWhisper1,
		client:  &http.Client{Timeout: defaultWhisperTimeout},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With("component", "transcribe.whisper")
	return w, nil
}

// Name returns the backend identifier.
func (w *Whisper) Name() string { return "whisper" }

// Submit transcribes one utterance in a single call.
func (w *Whisper) Submit(ctx context.Context, u *endpoint.Utterance) (Result, error) {
	if u == nil || u.FrameCount() == 0 {
		return Result{}, ErrEmptyAudio
	}

	wav := wrapPCMAsWAV(u.PCM(), u.SampleRate, u.Channels, 16)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "utterance.wav")
	if err != nil {
		return Result{}, fmt.Errorf("%w: form file: %w", ErrFailed, err)
	}
	if _, err := part.Write(wav); err != nil {
		return Result{}, fmt.Errorf("%w: write audio: %w", ErrFailed, err)
	}
	if err := writer.WriteField("model", w.model); err != nil {
		return Result{}, fmt.Errorf("%w: write model: %w", ErrFailed, err)
	}
	if w.language != "" {
		if err := writer.WriteField("language", w.language); err != nil {
			return Result{}, fmt.Errorf("%w: write language: %w", ErrFailed, err)
		}
	}
	if err := writer.Close(); err != nil {
		return Result{}, fmt.Errorf("%w: close form: %w", ErrFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+whisperEndpoint, &buf)
	if err != nil {
		return Result{}, fmt.Errorf("%w: build request: %w", ErrFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+w.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	start := time.Now()
	resp, err := w.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("%w: read response: %w", ErrFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("%w: HTTP %d: %s", ErrFailed, resp.StatusCode, truncate(string(body), 200))
	}

	var decoded struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return Result{}, fmt.Errorf("%w: decode response: %w", ErrFailed, err)
	}

	text := strings.TrimSpace(decoded.Text)
	w.logger.Debug("transcription complete",
		"chars", len(text),
		"audio_ms", u.Duration().Milliseconds(),
		"latency_ms", time.Since(start).Milliseconds(),
	)

	if text == "" {
		return Result{}, ErrNoSpeech
	}
	return Result{Text: text, Final: true}, nil
}

// Close releases idle connections.
func (w *Whisper) Close() error {
	w.client.CloseIdleConnections()
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
