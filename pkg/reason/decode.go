package reason

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Raw replies carry a JSON record, optionally inside a fenced block:
//
//	```json
//	{"chat-response": "hi", "movement": "wave"}
//	```
//
// Decoding tries three tiers in order and never fails: fenced block,
// whole payload, then the raw text as spoken output with no action.
var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

type wirePayload struct {
	ChatResponse string `json:"chat-response"`
	Movement     string `json:"movement"`
}

// Decode turns a raw service reply into a Reply. The degraded return
// is true when no structured payload was recoverable and the raw text
// was used verbatim.
func Decode(raw string) (reply Reply, degraded bool) {
	trimmed := strings.TrimSpace(raw)

	if m := fencedBlock.FindStringSubmatch(trimmed); m != nil {
		if r, ok := decodePayload(m[1]); ok {
			return r, false
		}
	}
	if r, ok := decodePayload(trimmed); ok {
		return r, false
	}
	return Reply{SpokenText: trimmed}, true
}

func decodePayload(s string) (Reply, bool) {
	var p wirePayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &p); err != nil {
		return Reply{}, false
	}
	if p.ChatResponse == "" {
		return Reply{}, false
	}
	return Reply{
		SpokenText: strings.TrimSpace(p.ChatResponse),
		Action:     strings.TrimSpace(p.Movement),
	}, true
}
