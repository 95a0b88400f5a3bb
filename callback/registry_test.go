package callback

import (
	"sync"
	"testing"
)

func TestRegistry_RegisterDispatch(t *testing.T) {
	reg := NewRegistry()

	var got []any
	id := reg.Register(func(payload any) {
		got = append(got, payload)
	}, false)

	if id == 0 {
		t.Fatal("expected non-zero id")
	}
	if !reg.Has(id) {
		t.Fatal("registered id should be live")
	}

	reg.Dispatch(id, "a")
	reg.Dispatch(id, "b")

	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected deliveries: %v", got)
	}
}

func TestRegistry_Unregister(t *testing.T) {
	reg := NewRegistry()

	calls := 0
	id := reg.Register(func(any) { calls++ }, false)

	reg.Unregister(id)
	if reg.Has(id) {
		t.Fatal("unregistered id should not be live")
	}

	// Safe on unknown ids, repeatedly.
	reg.Unregister(id)
	reg.Unregister(ID(12345))

	reg.Dispatch(id, "late")
	if calls != 0 {
		t.Fatalf("unregistered callback was invoked %d times", calls)
	}
}

func TestRegistry_UnknownDispatchIsNoOp(t *testing.T) {
	reg := NewRegistry()

	// Never registered: must not panic and must not disturb live entries.
	reg.Dispatch(ID(99), "stray")

	calls := 0
	id := reg.Register(func(any) { calls++ }, false)
	reg.Dispatch(ID(99), "stray")
	reg.Dispatch(id, "real")

	if calls != 1 {
		t.Fatalf("live entry affected by stray dispatch: %d calls", calls)
	}
}

func TestRegistry_Once(t *testing.T) {
	reg := NewRegistry()

	calls := 0
	id := reg.Register(func(any) { calls++ }, true)

	reg.Dispatch(id, nil)
	reg.Dispatch(id, nil)
	reg.Dispatch(id, nil)

	if calls != 1 {
		t.Fatalf("once entry invoked %d times", calls)
	}
	if reg.Has(id) {
		t.Fatal("once entry should be removed after first dispatch")
	}
}

func TestRegistry_OnceRemovedBeforeInvocation(t *testing.T) {
	reg := NewRegistry()

	var liveDuringCall bool
	var id ID
	id = reg.Register(func(any) {
		liveDuringCall = reg.Has(id)
	}, true)

	reg.Dispatch(id, nil)

	if liveDuringCall {
		t.Fatal("once entry must be unregistered before its closure runs")
	}
}

func TestRegistry_UniqueLiveIDs(t *testing.T) {
	reg := NewRegistry()

	seen := make(map[ID]bool)
	for i := 0; i < 1000; i++ {
		id := reg.Register(func(any) {}, false)
		if seen[id] {
			t.Fatalf("id %d issued twice while live", id)
		}
		seen[id] = true
	}
	if reg.Len() != 1000 {
		t.Fatalf("expected 1000 live entries, got %d", reg.Len())
	}
}

func TestRegistry_NilFunc(t *testing.T) {
	reg := NewRegistry()
	id := reg.Register(nil, false)
	// Must not panic.
	reg.Dispatch(id, "payload")
}

func TestRegistry_Clear(t *testing.T) {
	reg := NewRegistry()

	calls := 0
	id := reg.Register(func(any) { calls++ }, false)
	reg.Clear()

	reg.Dispatch(id, nil)
	if calls != 0 {
		t.Fatal("cleared entry was invoked")
	}
	if reg.Len() != 0 {
		t.Fatalf("expected empty registry, got %d entries", reg.Len())
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	reg := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				id := reg.Register(func(any) {}, j%2 == 0)
				reg.Dispatch(id, j)
				reg.Unregister(id)
			}
		}()
	}
	wg.Wait()

	if reg.Len() != 0 {
		t.Fatalf("expected empty registry after churn, got %d", reg.Len())
	}
}
