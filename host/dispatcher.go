package host

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"

	"github.com/filipecabaco/ex-tauri-sub000/callback"
	"github.com/filipecabaco/ex-tauri-sub000/errors"
	"github.com/filipecabaco/ex-tauri-sub000/resource"
)

// FrameSink pushes an asynchronous payload back to the caller-side callback
// registered under id. The binding decides what that means: the loopback
// dispatches into the local registry, the transport encodes a push message.
type FrameSink func(id callback.ID, payload any)

// HandlerFunc services one operation. The returned value is the invocation
// result; a returned error is propagated verbatim as the rejection.
type HandlerFunc func(ctx context.Context, call *Call) (any, error)

// Call carries one invocation through a dispatcher.
type Call struct {
	Op      string
	Args    map[string]any
	Headers map[string]string

	sink FrameSink
}

// String extracts a required string argument.
func (c *Call) String(key string) (string, error) {
	v, ok := c.Args[key].(string)
	if !ok {
		return "", errors.InvalidInput(errors.PhaseServe, "argument "+key+" must be a string")
	}
	return v, nil
}

// Uint32 extracts a required numeric argument, tolerating the integer
// representations JSON decoding produces.
func (c *Call) Uint32(key string) (uint32, error) {
	n, ok := asUint64(c.Args[key])
	if !ok {
		return 0, errors.InvalidInput(errors.PhaseServe, "argument "+key+" must be a non-negative integer")
	}
	return uint32(n), nil
}

// Channel resolves a channel-reference argument into a Writer streaming back
// to the caller.
func (c *Call) Channel(key string) (*Writer, error) {
	ref, ok := c.Args[key].(string)
	if !ok {
		return nil, errors.InvalidInput(errors.PhaseServe, "argument "+key+" must be a channel reference")
	}
	id, ok := parseChannelRef(ref)
	if !ok {
		return nil, errors.InvalidInput(errors.PhaseServe, "argument "+key+" is not a channel reference")
	}
	return NewWriter(id, c.sink), nil
}

// Deliver pushes a payload to an arbitrary caller-side callback id.
func (c *Call) Deliver(id callback.ID, payload any) {
	c.sink(id, payload)
}

const channelRefPrefix = "__CHANNEL__:"

func parseChannelRef(ref string) (callback.ID, bool) {
	raw, ok := strings.CutPrefix(ref, channelRefPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return callback.ID(n), true
}

// Dispatcher routes operations to handlers. Every dispatcher carries a
// resource table and an event hub serviced by the built-in plugins.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc

	resources *resource.Table
	hub       *Hub
}

// NewDispatcher creates a dispatcher with the built-in event and resources
// plugins installed.
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{
		handlers:  make(map[string]HandlerFunc),
		resources: resource.NewTable(),
		hub:       NewHub(),
	}
	d.installBuiltins()
	return d
}

// Handle registers h under the operation name op, replacing any previous
// handler.
func (d *Dispatcher) Handle(op string, h HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[op] = h
}

// Resources returns the dispatcher's resource table. Host-side allocations
// add values here and return the rid to the caller.
func (d *Dispatcher) Resources() *resource.Table {
	return d.resources
}

// Hub returns the dispatcher's event hub, for host code that emits without
// going through an invocation.
func (d *Dispatcher) Hub() *Hub {
	return d.hub
}

// Dispatch services one operation. Unknown operations are rejected; handler
// results and errors pass through untouched.
func (d *Dispatcher) Dispatch(ctx context.Context, op string, args map[string]any, headers map[string]string, sink FrameSink) (any, error) {
	d.mu.RLock()
	h, ok := d.handlers[op]
	d.mu.RUnlock()

	if !ok {
		return nil, errors.UnknownOperation(op)
	}
	if sink == nil {
		sink = func(callback.ID, any) {}
	}

	return h(ctx, &Call{
		Op:      op,
		Args:    args,
		Headers: headers,
		sink:    sink,
	})
}

// Close ends the session: every listener is dropped and every live resource
// is released. This is the host-side garbage collection the caller's
// leak-until-exit stance relies on.
func (d *Dispatcher) Close() error {
	d.hub.Clear()
	return d.resources.Close()
}

func asUint64(v any) (uint64, bool) {
	switch n := v.(type) {
	case uint64:
		return n, true
	case uint32:
		return uint64(n), true
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
