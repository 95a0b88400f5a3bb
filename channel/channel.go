package channel

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/filipecabaco/ex-tauri-sub000/callback"
)

// Channel reassembles an indexed stream of host frames into in-order
// deliveries to a consumer closure. It registers itself in the callback
// registry on construction and stays registered until an end frame is
// consumed or the holder calls Close.
type Channel struct {
	reg *callback.Registry
	id  callback.ID

	mu         sync.Mutex
	next       uint64
	pending    map[uint64]any
	endIndex   uint64
	endSet     bool
	onMessage  func(any)
	delivering bool
	closed     bool
}

// New creates a channel and registers it. onMessage may be nil, in which
// case messages are consumed and discarded until a consumer is installed.
func New(reg *callback.Registry, onMessage func(any)) *Channel {
	if onMessage == nil {
		onMessage = func(any) {}
	}
	c := &Channel{
		reg:       reg,
		pending:   make(map[uint64]any),
		onMessage: onMessage,
	}
	c.id = reg.Register(c.receive, false)
	return c
}

// ID returns the channel's callback registry id, the delivery handle the
// host writes frames through.
func (c *Channel) ID() callback.ID {
	return c.id
}

// IPCReference serializes the channel as a tagged reference for the host.
func (c *Channel) IPCReference() string {
	return fmt.Sprintf("__CHANNEL__:%d", c.id)
}

// SetOnMessage replaces the consumer closure. The replacement receives all
// future deliveries, including frames that are currently buffered.
func (c *Channel) SetOnMessage(fn func(any)) {
	if fn == nil {
		fn = func(any) {}
	}
	c.mu.Lock()
	c.onMessage = fn
	c.mu.Unlock()
}

// Close tears the channel down and releases its registry entry. Frames the
// host delivers afterwards hit the registry's unknown-id path. Safe to call
// more than once.
func (c *Channel) Close() {
	c.mu.Lock()
	c.terminateLocked()
	c.mu.Unlock()
}

// Closed reports whether the channel has terminated.
func (c *Channel) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// receive is the registry closure. It accepts one frame per dispatch and
// runs the reassembly state machine.
func (c *Channel) receive(payload any) {
	f, ok := CoerceFrame(payload)
	if !ok {
		Logger().Warn("dropping malformed channel frame",
			zap.Uint32("channel", uint32(c.id)),
			zap.Any("payload", payload))
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	if f.End {
		if f.Index == c.next && !c.delivering {
			// Nothing is owed: terminate immediately.
			c.terminateLocked()
			c.mu.Unlock()
			return
		}
		// Messages are still outstanding (or a drain is in progress);
		// remember where the stream ends and let the drain finish it.
		c.endIndex = f.Index
		c.endSet = true
		c.mu.Unlock()
		return
	}

	if f.Index < c.next {
		// Duplicate of an already-consumed index.
		c.mu.Unlock()
		return
	}
	c.pending[f.Index] = f.Message

	if c.delivering {
		// Another dispatch is draining; it will pick this frame up.
		c.mu.Unlock()
		return
	}
	c.drainLocked()
	c.mu.Unlock()
}

// drainLocked delivers consecutive pending messages starting at next. The
// channel mutex is released around each consumer invocation so the consumer
// may call back into the channel; the delivering flag keeps concurrent
// dispatches from interleaving deliveries.
func (c *Channel) drainLocked() {
	c.delivering = true
	for {
		msg, ok := c.pending[c.next]
		if !ok {
			break
		}
		delete(c.pending, c.next)
		fn := c.onMessage

		c.mu.Unlock()
		fn(msg)
		c.mu.Lock()

		if c.closed {
			c.delivering = false
			return
		}
		// A duplicate of the frame just delivered passes the receive-side
		// staleness check while the lock is released; anything buffered at
		// next now is such a duplicate, not a fresh message.
		delete(c.pending, c.next)
		c.next++
	}
	c.delivering = false

	if c.endSet && c.next >= c.endIndex {
		c.terminateLocked()
	}
}

func (c *Channel) terminateLocked() {
	if c.closed {
		return
	}
	c.closed = true
	c.pending = nil
	c.reg.Unregister(c.id)
}
