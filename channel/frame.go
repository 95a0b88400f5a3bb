package channel

import (
	"encoding/json"

	jsoniter "github.com/json-iterator/go"
)

var frameJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// Frame is the wire shape the host writes into a channel. A data frame
// carries Message; an end frame carries End and no message. The field names
// are a contract with the host and must not change.
type Frame struct {
	Index   uint64 `json:"index"`
	Message any    `json:"message,omitempty"`
	End     bool   `json:"end,omitempty"`
}

// DataFrame builds a data frame for index.
func DataFrame(index uint64, message any) Frame {
	return Frame{Index: index, Message: message}
}

// EndFrame builds an end frame for index.
func EndFrame(index uint64) Frame {
	return Frame{Index: index, End: true}
}

// CoerceFrame normalizes the payload shapes a registry dispatch can carry
// into a Frame. In-process deliveries arrive as Frame values; transport
// deliveries arrive as decoded JSON objects or raw bytes.
func CoerceFrame(payload any) (Frame, bool) {
	switch v := payload.(type) {
	case Frame:
		return v, true
	case *Frame:
		if v == nil {
			return Frame{}, false
		}
		return *v, true
	case map[string]any:
		idx, ok := asUint64(v["index"])
		if !ok {
			return Frame{}, false
		}
		f := Frame{Index: idx}
		if end, ok := v["end"].(bool); ok && end {
			f.End = true
			return f, true
		}
		f.Message = v["message"]
		return f, true
	case []byte:
		return unmarshalFrame(v)
	case json.RawMessage:
		return unmarshalFrame(v)
	default:
		return Frame{}, false
	}
}

func unmarshalFrame(data []byte) (Frame, bool) {
	var f Frame
	if err := frameJSON.Unmarshal(data, &f); err != nil {
		return Frame{}, false
	}
	return f, true
}

func asUint64(v any) (uint64, bool) {
	switch n := v.(type) {
	case uint64:
		return n, true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case int64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case float64:
		if n < 0 {
			return 0, false
		}
		return uint64(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil || i < 0 {
			return 0, false
		}
		return uint64(i), true
	default:
		return 0, false
	}
}
