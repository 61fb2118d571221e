// Package app wires the Tobias voice assistant: audio capture,
// endpointing, transcription, reasoning, speech and movement, plus the
// web control surface.
package app

import (
	"time"

	"github.com/hubirobotics/go-tobias/internal/config"
)

// Config holds all configuration for the assistant. Flag parsing is
// done in cmd/tobias/main.go; this struct is data only.
type Config struct {
	// Debug enables verbose debug logging.
	Debug bool

	// Port is the web control surface listen port.
	Port string

	// MicDevice is a case-insensitive substring matched against input
	// device names.
	MicDevice string

	// Transcriber selects the transcription backend: "whisper" for
	// batch or "google" for streaming.
	Transcriber string

	// Language is a BCP-47 hint for transcription, e.g. "pt-BR".
	Language string

	// VoiceID is the ElevenLabs voice ID or a preset name.
	VoiceID string

	// BridgeURL is the robot control bridge base URL.
	BridgeURL string

	// SilenceLimit is how much trailing silence ends an utterance.
	SilenceLimit time.Duration

	// NoAudio runs the control surface without opening a microphone.
	// Useful for testing /execute and the dashboard off-robot.
	NoAudio bool

	// NoRobot disables the actuator and LED bridge.
	NoRobot bool

	// AutoStart begins the interaction loop on boot instead of
	// waiting for POST /interaction/start.
	AutoStart bool

	// API keys (typically from environment variables).
	OpenAIKey     string
	ElevenLabsKey string
}

// DefaultConfig returns the assistant defaults, matching the
// environment-variable defaults in internal/config.
func DefaultConfig() Config {
	return Config{
		Port:         config.DefaultWebPort,
		MicDevice:    config.DefaultMicDevice,
		Transcriber:  config.DefaultTranscriber,
		Language:     config.DefaultLanguage,
		VoiceID:      config.DefaultVoiceID,
		BridgeURL:    config.DefaultBridgeURL,
		SilenceLimit: config.DefaultSilenceLimit,
	}
}

// LoadEnv applies environment overrides. Call after flag parsing so
// explicit flags win over the environment.
func (c *Config) LoadEnv() {
	c.MicDevice = config.MicDevice()
	c.Transcriber = config.Transcriber()
	c.Language = config.LanguageHint()
	c.VoiceID = config.VoiceID()
	c.BridgeURL = config.BridgeURL()
	c.SilenceLimit = config.SilenceLimit()
	c.OpenAIKey = config.Get(config.EnvOpenAIKey, "")
	c.ElevenLabsKey = config.Get(config.EnvElevenLabsKey, "")
	if port := config.WebPort(); port != "" {
		c.Port = port
	}
}
