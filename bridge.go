package bridge

import (
	"context"
	"fmt"
)

// Invoker is the single crossing point between application code and the host.
// Every higher-level component is built by composing Invoke calls with
// particular operation names and argument shapes.
type Invoker interface {
	// Invoke performs the named operation on the host and blocks until the
	// host replies or ctx is done. A host rejection is returned verbatim as
	// an error; the bridge never retries on the caller's behalf.
	Invoke(ctx context.Context, op string, args map[string]any, opts ...InvokeOption) (any, error)
}

// Prober is optionally implemented by Invokers that can report whether a
// live host is actually reachable behind them.
type Prober interface {
	Available() bool
}

// Available reports whether inv is backed by a reachable host. It is a
// side-effect-free probe and never panics, even when inv is nil.
func Available(inv Invoker) bool {
	if inv == nil {
		return false
	}
	if p, ok := inv.(Prober); ok {
		return p.Available()
	}
	return true
}

// Op builds the canonical operation name for a plugin action.
func Op(namespace, action string) string {
	return fmt.Sprintf("plugin:%s|%s", namespace, action)
}

// InvokeOption adjusts a single Invoke call.
type InvokeOption func(*InvokeOptions)

// InvokeOptions carries per-call metadata alongside the operation arguments.
// Headers travel with the request but are not part of the argument shape.
type InvokeOptions struct {
	Headers map[string]string
}

// WithHeader attaches a request header to an Invoke call.
func WithHeader(key, value string) InvokeOption {
	return func(o *InvokeOptions) {
		if o.Headers == nil {
			o.Headers = make(map[string]string)
		}
		o.Headers[key] = value
	}
}

// ApplyOptions folds a list of options into a concrete InvokeOptions value.
func ApplyOptions(opts []InvokeOption) InvokeOptions {
	var out InvokeOptions
	for _, opt := range opts {
		opt(&out)
	}
	return out
}

// Referencer is implemented by values that cross the invocation boundary as
// a tagged reference instead of their contents. A channel, for example,
// serializes to a handle the host can write frames back through.
type Referencer interface {
	IPCReference() string
}

// EncodeArgs returns args with every Referencer value replaced by its tagged
// reference, descending into nested maps and slices. Plain data passes
// through untouched. The input map is never mutated.
func EncodeArgs(args map[string]any) map[string]any {
	if args == nil {
		return nil
	}
	out := make(map[string]any, len(args))
	for k, v := range args {
		out[k] = encodeValue(v)
	}
	return out
}

func encodeValue(v any) any {
	switch val := v.(type) {
	case Referencer:
		return val.IPCReference()
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = encodeValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = encodeValue(inner)
		}
		return out
	default:
		return v
	}
}
