package indicator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/hubirobotics/go-tobias/internal/httpc"
)

// Bridge drives the LED over the robot's HTTP bridge daemon.
type Bridge struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// BridgeOption configures the bridge driver.
type BridgeOption func(*Bridge)

// WithBridgeClient sets a custom HTTP client.
func WithBridgeClient(client *http.Client) BridgeOption {
	return func(b *Bridge) { b.client = client }
}

// WithBridgeLogger sets the structured logger.
func WithBridgeLogger(logger *slog.Logger) BridgeOption {
	return func(b *Bridge) { b.logger = logger }
}

// NewBridge creates an LED driver talking to the bridge at baseURL.
func NewBridge(baseURL string, opts ...BridgeOption) *Bridge {
	b := &Bridge{
		baseURL: baseURL,
		client:  httpc.Client,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With("component", "indicator.bridge")
	return b
}

// SetColor posts an RGB update to the bridge.
func (b *Bridge) SetColor(ctx context.Context, r, g, blue uint8) error {
	payload, err := json.Marshal(map[string]uint8{"r": r, "g": g, "b": blue})
	if err != nil {
		return fmt.Errorf("%w: marshal: %w", ErrFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/led", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: build request: %w", ErrFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return fmt.Errorf("%w: HTTP %d: %s", ErrFailed, resp.StatusCode, body)
	}
	return nil
}

// Close releases idle connections.
func (b *Bridge) Close() error {
	b.client.CloseIdleConnections()
	return nil
}

var _ Driver = (*Bridge)(nil)
