package events

import (
	"encoding/json"

	ondot_errors "ondot-chat/pkg/errors"
)

// Envelope is the wire frame for every event in both directions.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
	// Ref is an optional client correlation id echoed back on errors.
	Ref string `json:"ref,omitempty"`
}

// Encode wraps data in an envelope of the given type.
func Encode(eventType string, data any) ([]byte, error) {
	env := Envelope{Type: eventType}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		env.Data = raw
	}
	return json.Marshal(env)
}

// ErrorPayload is what a client sees when one of its events fails.
type ErrorPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Ref     string `json:"ref,omitempty"`
}

func EncodeError(err error, ref string) []byte {
	data, _ := Encode(TypeError, ErrorPayload{
		Kind:    ondot_errors.Kind(err),
		Message: ondot_errors.Message(err),
		Ref:     ref,
	})
	return data
}
