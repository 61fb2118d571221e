package actuator

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

// Bridge executes actions over the robot's HTTP bridge daemon, which
// translates them into arm action client calls on the hardware
// network.
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

// NewBridge creates a driver talking to the bridge at baseURL
// (e.g. http://127.0.0.1:9000).
func NewBridge(baseURL string, opts ...BridgeOption) *Bridge {
	b := &Bridge{
		baseURL: baseURL,
		client:  httpc.Client,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With("component", "actuator.bridge")
	return b
}

// Execute posts the action to the bridge and blocks until the bridge
// reports completion.
func (b *Bridge) Execute(ctx context.Context, action Action) error {
	if !action.Known() {
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	payload, err := json.Marshal(map[string]string{
		"action": action.HardwareName(),
	})
	if err != nil {
		return fmt.Errorf("%w: marshal: %w", ErrFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/movement", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: build request: %w", ErrFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	b.logger.Debug("executing action", "action", string(action))

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
