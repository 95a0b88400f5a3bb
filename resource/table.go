package resource

import (
	"sync"
)

// Dropper is optionally implemented by table values that need cleanup when
// their rid is released.
type Dropper interface {
	Drop()
}

// Table is the host-side store of live resources, addressed by rid. Rids are
// reused after release through a free list. Safe for concurrent use.
type Table struct {
	mu       sync.RWMutex
	entries  []tableEntry
	freeList []Rid
	closed   bool
}

type tableEntry struct {
	value any
	live  bool
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		entries:  make([]tableEntry, 0, 64),
		freeList: make([]Rid, 0, 16),
	}
}

// Add stores value and returns its rid. Returns 0 if the table is closed.
func (t *Table) Add(value any) Rid {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0
	}

	e := tableEntry{value: value, live: true}
	if len(t.freeList) > 0 {
		rid := t.freeList[len(t.freeList)-1]
		t.freeList = t.freeList[:len(t.freeList)-1]
		t.entries[rid-1] = e
		return rid
	}

	t.entries = append(t.entries, e)
	return Rid(len(t.entries))
}

// Get retrieves the value for rid.
func (t *Table) Get(rid Rid) (any, bool) {
	if rid == 0 {
		return nil, false
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	idx := rid - 1
	if int(idx) >= len(t.entries) {
		return nil, false
	}
	e := t.entries[idx]
	if !e.live {
		return nil, false
	}
	return e.value, true
}

// Remove releases rid and returns its value. Values implementing Dropper are
// dropped before the rid is recycled. A retired or unknown rid returns
// (nil, false); closing twice is the host-boundary failure the caller
// contract documents.
func (t *Table) Remove(rid Rid) (any, bool) {
	if rid == 0 {
		return nil, false
	}

	t.mu.Lock()
	idx := rid - 1
	if int(idx) >= len(t.entries) || !t.entries[idx].live {
		t.mu.Unlock()
		return nil, false
	}

	value := t.entries[idx].value
	t.entries[idx] = tableEntry{}
	t.freeList = append(t.freeList, rid)
	t.mu.Unlock()

	if d, ok := value.(Dropper); ok {
		d.Drop()
	}
	return value, true
}

// Len returns the number of live resources.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	count := 0
	for _, e := range t.entries {
		if e.live {
			count++
		}
	}
	return count
}

// Each iterates over live resources until fn returns false.
func (t *Table) Each(fn func(Rid, any) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for i, e := range t.entries {
		if e.live {
			if !fn(Rid(i+1), e.value) {
				break
			}
		}
	}
}

// Clear releases every live resource. This is the session-end sweep backing
// the caller side's leak-until-exit stance.
func (t *Table) Clear() {
	var rids []Rid
	t.Each(func(rid Rid, _ any) bool {
		rids = append(rids, rid)
		return true
	})
	for _, rid := range rids {
		t.Remove(rid)
	}
}

// Close releases all resources and stops accepting new ones.
func (t *Table) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true

	var dropped []any
	for i := range t.entries {
		if t.entries[i].live {
			dropped = append(dropped, t.entries[i].value)
			t.entries[i] = tableEntry{}
		}
	}
	t.entries = nil
	t.freeList = nil
	t.mu.Unlock()

	for _, v := range dropped {
		if d, ok := v.(Dropper); ok {
			d.Drop()
		}
	}
	return nil
}
