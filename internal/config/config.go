// Package config provides environment-driven configuration for go-tobias.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Environment variable names.
const (
	EnvOpenAIKey      = "OPENAI_API_KEY"
	EnvElevenLabsKey  = "ELEVENLABS_API_KEY"
	EnvVoiceID        = "ELEVENLABS_VOICE_ID"
	EnvPromptBase     = "PROMPT_BASE"
	EnvGovernanceBase = "GOVERNANCE_BASE"
	EnvMicDevice      = "MIC_DEVICE"
	EnvTranscriber    = "TRANSCRIBE_BACKEND"
	EnvLanguageHint   = "LANGUAGE_HINT"
	EnvBridgeURL      = "ROBOT_BRIDGE_URL"
	EnvWebPort        = "WEB_PORT"
	EnvSilenceLimit   = "SILENCE_LIMIT"
)

// Defaults.
const (
	DefaultMicDevice    = "DJI MIC"
	DefaultVoiceID      = "1eBtZhneFpMPiYsjVTGl"
	DefaultLanguage     = "pt-BR"
	DefaultBridgeURL    = "http://127.0.0.1:9000"
	DefaultWebPort      = "5000"
	DefaultSilenceLimit = time.Second
	DefaultTranscriber  = "whisper"
)

// Required lists the environment variables that must be set for the
// assistant to start.
var Required = []string{EnvOpenAIKey, EnvElevenLabsKey}

// CheckRequired returns an error naming every required variable that is
// missing from the environment.
func CheckRequired() error {
	var missing []string
	for _, v := range Required {
		if os.Getenv(v) == "" {
			missing = append(missing, v)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missing)
	}
	return nil
}

// Get returns the named env var or the provided default if unset.
func Get(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

// MicDevice returns the preferred microphone name substring.
func MicDevice() string {
	return Get(EnvMicDevice, DefaultMicDevice)
}

// VoiceID returns the TTS voice ID.
func VoiceID() string {
	return Get(EnvVoiceID, DefaultVoiceID)
}

// LanguageHint returns the transcription language hint.
func LanguageHint() string {
	return Get(EnvLanguageHint, DefaultLanguage)
}

// BridgeURL returns the robot control bridge base URL.
func BridgeURL() string {
	return Get(EnvBridgeURL, DefaultBridgeURL)
}

// WebPort returns the control surface listen port.
func WebPort() string {
	return Get(EnvWebPort, DefaultWebPort)
}

// Transcriber returns the configured transcription backend
// ("whisper" for local endpointing + batch, "google" for streaming).
func Transcriber() string {
	return Get(EnvTranscriber, DefaultTranscriber)
}

// SilenceLimit returns how much trailing silence ends an utterance.
func SilenceLimit() time.Duration {
	v := os.Getenv(EnvSilenceLimit)
	if v == "" {
		return DefaultSilenceLimit
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
		return time.Duration(secs * float64(time.Second))
	}
	return DefaultSilenceLimit
}
