package event

import (
	"context"
	"encoding/json"
	"regexp"
	"sync"

	"go.uber.org/zap"

	bridge "github.com/filipecabaco/ex-tauri-sub000"
	"github.com/filipecabaco/ex-tauri-sub000/callback"
	"github.com/filipecabaco/ex-tauri-sub000/errors"
)

// Event is what a listener receives per delivery.
type Event struct {
	// Name is the event name the listener subscribed to.
	Name string `json:"event"`
	// ListenerID is the host-assigned id of the subscription the event was
	// delivered through.
	ListenerID uint64 `json:"id"`
	// Payload is the emitted value.
	Payload any `json:"payload"`
}

// Handler consumes delivered events. Handlers run synchronously on the
// dispatch path and must not block.
type Handler func(Event)

// UnlistenFunc tears a subscription down. It is idempotent: the first call
// releases the local callback and performs exactly one host unlisten round
// trip; later calls are no-ops returning the first call's error.
type UnlistenFunc func(context.Context) error

var eventName = regexp.MustCompile(`^[A-Za-z0-9\-/:_]+$`)

// ValidName reports whether name is inside the allowed event name grammar.
func ValidName(name string) bool {
	return eventName.MatchString(name)
}

// Bus is the publish/subscribe surface over one invoker and one callback
// registry. Safe for concurrent use.
type Bus struct {
	inv bridge.Invoker
	reg *callback.Registry
}

// NewBus creates a bus crossing through inv, delivering through reg.
func NewBus(inv bridge.Invoker, reg *callback.Registry) *Bus {
	return &Bus{inv: inv, reg: reg}
}

// ListenOption adjusts a Listen or Once call.
type ListenOption func(*listenConfig)

type listenConfig struct {
	target Target
}

// WithTarget restricts the subscription to events addressed to target.
// The default is TargetAny.
func WithTarget(target Target) ListenOption {
	return func(c *listenConfig) {
		c.target = target
	}
}

// Listen subscribes handler to the named event and returns the closure that
// tears the subscription down. The event name is validated before anything
// reaches the host.
func (b *Bus) Listen(ctx context.Context, name string, handler Handler, opts ...ListenOption) (UnlistenFunc, error) {
	if !ValidName(name) {
		return nil, errors.InvalidEvent(name)
	}
	if handler == nil {
		return nil, errors.InvalidInput(errors.PhaseListen, "handler must not be nil")
	}

	cfg := listenConfig{target: TargetAny()}
	for _, opt := range opts {
		opt(&cfg)
	}

	id := b.reg.Register(func(payload any) {
		e, ok := CoerceEvent(payload)
		if !ok {
			Logger().Warn("dropping malformed event delivery",
				zap.String("event", name),
				zap.Any("payload", payload))
			return
		}
		handler(e)
	}, false)

	result, err := b.inv.Invoke(ctx, bridge.Op("event", "listen"), map[string]any{
		"event":   name,
		"target":  cfg.target,
		"handler": uint32(id),
	})
	if err != nil {
		// Keep the registry consistent: the half-made subscription must not
		// leave a live entry behind.
		b.reg.Unregister(id)
		return nil, err
	}

	listenerID, ok := asUint64(result)
	if !ok {
		b.reg.Unregister(id)
		return nil, errors.New(errors.PhaseListen, errors.KindDecode).
			Op(bridge.Op("event", "listen")).
			Value(result).
			Detail("host returned a non-numeric listener id").
			Build()
	}

	var once sync.Once
	var unlistenErr error
	unlisten := func(ctx context.Context) error {
		once.Do(func() {
			b.reg.Unregister(id)
			_, unlistenErr = b.inv.Invoke(ctx, bridge.Op("event", "unlisten"), map[string]any{
				"event":   name,
				"eventId": listenerID,
			})
		})
		return unlistenErr
	}
	return unlisten, nil
}

// Once subscribes handler for a single delivery. The subscription is torn
// down before the handler runs, so a handler that emits the same event
// cannot redeliver to itself.
func (b *Bus) Once(ctx context.Context, name string, handler Handler, opts ...ListenOption) (UnlistenFunc, error) {
	if handler == nil {
		return nil, errors.InvalidInput(errors.PhaseListen, "handler must not be nil")
	}

	// The host can push a delivery for the fresh callback id before Listen
	// returns, so the wrapper must not read unlisten until the assignment
	// below has happened. mu is held across the Listen call; a delivery
	// racing with it blocks until the subscription is fully set up.
	var mu sync.Mutex
	var unlisten UnlistenFunc
	mu.Lock()
	u, err := b.Listen(ctx, name, func(e Event) {
		mu.Lock()
		u := unlisten
		mu.Unlock()
		if u == nil {
			// Listen failed after the host already pushed; the
			// subscription never existed.
			return
		}
		if err := u(context.Background()); err != nil {
			Logger().Warn("failed to unlisten once-subscription",
				zap.String("event", name),
				zap.Error(err))
		}
		handler(e)
	}, opts...)
	unlisten = u
	mu.Unlock()
	return u, err
}

// Emit publishes payload under the named event to every context. Fire and
// forget: there is no delivery acknowledgement beyond the host accepting the
// call.
func (b *Bus) Emit(ctx context.Context, name string, payload any) error {
	return b.EmitTo(ctx, TargetAny(), name, payload)
}

// EmitTo publishes payload under the named event to the given target.
func (b *Bus) EmitTo(ctx context.Context, target Target, name string, payload any) error {
	if !ValidName(name) {
		return errors.InvalidEvent(name)
	}
	_, err := b.inv.Invoke(ctx, bridge.Op("event", "emit"), map[string]any{
		"event":   name,
		"target":  target,
		"payload": payload,
	})
	return err
}

// CoerceEvent normalizes the delivery shapes a registry dispatch can carry
// into an Event: Event values in-process, decoded JSON objects or raw bytes
// from a transport.
func CoerceEvent(payload any) (Event, bool) {
	switch v := payload.(type) {
	case Event:
		return v, true
	case *Event:
		if v == nil {
			return Event{}, false
		}
		return *v, true
	case map[string]any:
		name, ok := v["event"].(string)
		if !ok {
			return Event{}, false
		}
		id, _ := asUint64(v["id"])
		return Event{Name: name, ListenerID: id, Payload: v["payload"]}, true
	case []byte:
		var e Event
		if err := json.Unmarshal(v, &e); err != nil {
			return Event{}, false
		}
		return e, true
	case json.RawMessage:
		var e Event
		if err := json.Unmarshal(v, &e); err != nil {
			return Event{}, false
		}
		return e, true
	default:
		return Event{}, false
	}
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
