package transport

import (
	"encoding/json"

	jsoniter "github.com/json-iterator/go"
)

var wire = jsoniter.ConfigCompatibleWithStandardLibrary

// Message type discriminators.
const (
	typeInvoke = "invoke"
	typeResult = "result"
	typePush   = "push"
)

// message is the single wire envelope. Which fields are meaningful depends
// on Type:
//
//	invoke: ID, Op, Args, Headers
//	result: ID, Result or Error
//	push:   Callback, Payload
type message struct {
	Type     string            `json:"type"`
	ID       string            `json:"id,omitempty"`
	Op       string            `json:"op,omitempty"`
	Args     json.RawMessage   `json:"args,omitempty"`
	Headers  map[string]string `json:"headers,omitempty"`
	Result   json.RawMessage   `json:"result,omitempty"`
	Error    string            `json:"error,omitempty"`
	Callback uint32            `json:"callback,omitempty"`
	Payload  json.RawMessage   `json:"payload,omitempty"`
}

func encodeMessage(m *message) ([]byte, error) {
	return wire.Marshal(m)
}

func decodeMessage(data []byte) (*message, error) {
	var m message
	if err := wire.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// decodeValue unmarshals a raw wire value into the generic shapes the
// registry and coercion helpers expect (map[string]any, []any, float64...).
func decodeValue(raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var v any
	if err := wire.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func encodeValue(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	return wire.Marshal(v)
}
