package resource

import (
	"context"

	bridge "github.com/filipecabaco/ex-tauri-sub000"
)

// Rid is an opaque host-assigned resource identifier. Rid 0 is reserved and
// always invalid.
type Rid uint32

// CloseOp is the well-known operation that releases a host resource.
var CloseOp = bridge.Op("resources", "close")

// Handle owns exactly one host-side resource. Embed it to build typed
// wrappers whose operations all take the same rid.
type Handle struct {
	rid Rid
	inv bridge.Invoker
}

// NewHandle wraps a rid returned by a host allocation call.
func NewHandle(inv bridge.Invoker, rid Rid) *Handle {
	return &Handle{rid: rid, inv: inv}
}

// Rid returns the underlying handle value.
func (h *Handle) Rid() Rid {
	return h.rid
}

// Invoker returns the invoker the handle crosses through, for subtypes
// adding their own operations.
func (h *Handle) Invoker() bridge.Invoker {
	return h.inv
}

// Close releases the host-side resource. The host's acknowledgement or
// failure is returned verbatim. After Close returns, the handle is dead:
// further operations against the same rid fail at the host boundary.
func (h *Handle) Close(ctx context.Context) error {
	_, err := h.inv.Invoke(ctx, CloseOp, map[string]any{
		"rid": uint32(h.rid),
	})
	return err
}
