package host

import (
	"context"

	bridge "github.com/filipecabaco/ex-tauri-sub000"
	"github.com/filipecabaco/ex-tauri-sub000/callback"
)

// Loopback wires a caller-side callback registry directly to a dispatcher in
// the same process. Invocations run synchronously; host pushes land in the
// registry on the calling goroutine.
type Loopback struct {
	disp *Dispatcher
	reg  *callback.Registry
}

// NewLoopback binds disp and reg into an in-process invoker.
func NewLoopback(disp *Dispatcher, reg *callback.Registry) *Loopback {
	return &Loopback{disp: disp, reg: reg}
}

// Invoke implements bridge.Invoker. Referencer arguments are encoded to
// their tagged references so handlers see the same shapes a remote host
// would.
func (l *Loopback) Invoke(ctx context.Context, op string, args map[string]any, opts ...bridge.InvokeOption) (any, error) {
	o := bridge.ApplyOptions(opts)
	return l.disp.Dispatch(ctx, op, bridge.EncodeArgs(args), o.Headers, l.reg.Dispatch)
}

// Available implements bridge.Prober. A loopback host is always reachable.
func (l *Loopback) Available() bool {
	return true
}
