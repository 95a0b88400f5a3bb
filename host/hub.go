package host

import (
	"sync"

	"go.uber.org/zap"

	"github.com/filipecabaco/ex-tauri-sub000/callback"
	"github.com/filipecabaco/ex-tauri-sub000/event"
)

// Hub is the host-side listener book: every live subscription with its
// target selector and the sink its deliveries go out through. Safe for
// concurrent use.
type Hub struct {
	mu        sync.RWMutex
	nextID    uint64
	listeners map[uint64]hubListener
}

type hubListener struct {
	event  string
	target event.Target
	cb     callback.ID
	sink   FrameSink
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		listeners: make(map[uint64]hubListener),
	}
}

// Listen records a subscription and returns its listener id.
func (h *Hub) Listen(name string, target event.Target, cb callback.ID, sink FrameSink) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	h.listeners[id] = hubListener{
		event:  name,
		target: target,
		cb:     cb,
		sink:   sink,
	}
	return id
}

// Unlisten removes the subscription registered under id for the named
// event. Removing an unknown or already-removed id is a logged no-op; a
// second unlisten from a racing teardown is not an error.
func (h *Hub) Unlisten(name string, id uint64) {
	h.mu.Lock()
	l, ok := h.listeners[id]
	if ok && l.event == name {
		delete(h.listeners, id)
	}
	h.mu.Unlock()

	if !ok {
		Logger().Warn("unlisten for unknown listener id",
			zap.String("event", name),
			zap.Uint64("id", id))
		return
	}
	if l.event != name {
		Logger().Warn("unlisten event name does not match listener",
			zap.String("event", name),
			zap.String("subscribed", l.event),
			zap.Uint64("id", id))
	}
}

// Emit delivers payload to every listener subscribed to the named event
// whose target selector matches emitTarget. Returns the number of
// deliveries.
func (h *Hub) Emit(name string, emitTarget event.Target, payload any) int {
	type delivery struct {
		id   uint64
		cb   callback.ID
		sink FrameSink
	}

	h.mu.RLock()
	var out []delivery
	for id, l := range h.listeners {
		if l.event == name && l.target.Matches(emitTarget) {
			out = append(out, delivery{id: id, cb: l.cb, sink: l.sink})
		}
	}
	h.mu.RUnlock()

	// Deliver outside the lock: a handler may re-enter the hub.
	for _, d := range out {
		d.sink(d.cb, event.Event{
			Name:       name,
			ListenerID: d.id,
			Payload:    payload,
		})
	}
	return len(out)
}

// Len returns the number of live subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}

// Clear drops every subscription.
func (h *Hub) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = make(map[uint64]hubListener)
}
