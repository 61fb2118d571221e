// Package tts voice presets for ElevenLabs.
package tts

// DefaultVoiceID is the ElevenLabs voice used when none is configured,
// a Brazilian Portuguese voice tuned for the robot persona.
const DefaultVoiceID = "1eBtZhneFpMPiYsjVTGl"

// ElevenLabsVoices maps friendly preset names to ElevenLabs voice IDs.
// Use ResolveVoice to look up a voice by name or pass through raw IDs.
var ElevenLabsVoices = map[string]string{
	"tobias":  DefaultVoiceID,         // Brazilian Portuguese male
	"rachel":  "21m00Tcm4TlvDq8ikWAM", // American female, calm
	"adam":    "pNInz6obpgDQGcFmaJgB", // American male, deep
	"antoni":  "ErXwobaYiN019PkySvjV", // American male, well-rounded
	"bella":   "EXAVITQu4vr4xnSDxMaL", // American female, soft
	"josh":    "TxGEqnHWrfWFTfGW9XjX", // American male, deep
}

// ResolveVoice returns the voice ID for a preset name,
// or the input unchanged if it's already a voice ID.
func ResolveVoice(name string) string {
	if id, ok := ElevenLabsVoices[name]; ok {
		return id
	}
	return name
}
