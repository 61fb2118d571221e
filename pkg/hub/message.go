// Package hub provides a thread-safe websocket broadcast hub using the
// channel-based fan-out pattern. The web layer uses it to push status
// and transcript events to connected dashboards.
package hub

import "encoding/json"

// Event is one broadcast payload. Kind distinguishes status updates
// from transcripts and replies.
type Event struct {
	Kind string `json:"kind"`
	Data any    `json:"data"`
}

// Encode serializes the event for the wire.
func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}
