package broadcast

import (
	"encoding/json"
	"fmt"

	"github.com/debs2013/possession/internal/events"
)

// Envelope is the wire format pushed to every connected websocket client:
// one JSON object per emitted partial or the end-of-game final.
type Envelope struct {
	Type  string               `json:"type"`
	RunID string               `json:"run_id,omitempty"`
	Data  events.PeriodPartial `json:"data"`
}

// MarshalEvent serializes an Event into a JSON-encoded Envelope.
func MarshalEvent(evt events.Event) ([]byte, error) {
	env := Envelope{
		Type:  string(evt.Type),
		RunID: evt.RunID,
		Data:  evt.Partial,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("broadcast: marshal envelope: %w", err)
	}
	return data, nil
}

// UnmarshalEnvelope deserializes a wire Envelope — used by tests that dial
// the server and assert the JSON shape.
func UnmarshalEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("broadcast: unmarshal envelope: %w", err)
	}
	return env, nil
}
