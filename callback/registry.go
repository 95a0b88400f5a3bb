package callback

import (
	"crypto/rand"
	"encoding/binary"
	"sync"

	"go.uber.org/zap"
)

// ID identifies a live registry entry. ID 0 is reserved and always invalid.
type ID uint32

// Func is a registered closure. It is invoked synchronously by Dispatch with
// whatever payload the host delivered.
type Func func(payload any)

type entry struct {
	fn   Func
	once bool
}

// Registry is a table of live callbacks, one per delivery handle handed to
// the host. One registry exists per bridge session; all higher layers share
// it. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[ID]entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[ID]entry),
	}
}

// Register stores fn under a fresh id and returns the id. Ids never collide
// with a currently live entry. When once is true the entry is removed before
// its first invocation.
func (r *Registry) Register(fn Func, once bool) ID {
	if fn == nil {
		fn = func(any) {}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.allocLocked()
	r.entries[id] = entry{fn: fn, once: once}
	return id
}

// Unregister removes the entry for id. Unknown ids are a no-op, which makes
// teardown paths safe to run more than once.
func (r *Registry) Unregister(id ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// Dispatch invokes the closure registered under id with payload. A one-shot
// entry is removed before its closure runs, so a handler that re-enters the
// registry never sees its own stale entry. Dispatching to an unknown id is a
// logged no-op: reloads and cancellations legitimately race with in-flight
// host operations.
func (r *Registry) Dispatch(id ID, payload any) {
	r.mu.Lock()
	e, ok := r.entries[id]
	if ok && e.once {
		delete(r.entries, id)
	}
	r.mu.Unlock()

	if !ok {
		Logger().Warn("dispatch to unknown callback id, dropping payload",
			zap.Uint32("id", uint32(id)))
		return
	}

	e.fn(payload)
}

// Has reports whether id is currently live.
func (r *Registry) Has(id ID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[id]
	return ok
}

// Len returns the number of live entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Clear removes every entry. Pending host deliveries against the cleared ids
// become the usual unknown-id no-ops.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[ID]entry)
}

// allocLocked draws random ids until one is free. The id space is large
// relative to any realistic number of live entries, so the loop terminates
// almost immediately.
func (r *Registry) allocLocked() ID {
	var buf [4]byte
	for {
		if _, err := rand.Read(buf[:]); err != nil {
			// crypto/rand failing is unrecoverable for the process anyway.
			panic(err)
		}
		id := ID(binary.LittleEndian.Uint32(buf[:]))
		if id == 0 {
			continue
		}
		if _, taken := r.entries[id]; taken {
			continue
		}
		return id
	}
}
