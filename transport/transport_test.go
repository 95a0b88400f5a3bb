package transport

import (
	"context"
	stderrors "errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	bridge "github.com/filipecabaco/ex-tauri-sub000"
	"github.com/filipecabaco/ex-tauri-sub000/callback"
	"github.com/filipecabaco/ex-tauri-sub000/channel"
	"github.com/filipecabaco/ex-tauri-sub000/errors"
	"github.com/filipecabaco/ex-tauri-sub000/event"
	"github.com/filipecabaco/ex-tauri-sub000/host"
)

func startBridge(t *testing.T) (*host.Dispatcher, *callback.Registry, *Client) {
	t.Helper()

	disp := host.NewDispatcher()
	srv := httptest.NewServer(NewServer(disp))
	t.Cleanup(srv.Close)

	reg := callback.NewRegistry()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := Dial(ctx, url, reg)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	return disp, reg, client
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestClient_InvokeRoundTrip(t *testing.T) {
	disp, _, client := startBridge(t)

	disp.Handle(bridge.Op("zoo", "feed"), func(ctx context.Context, call *host.Call) (any, error) {
		animal, err := call.String("animal")
		if err != nil {
			return nil, err
		}
		return map[string]any{"fed": animal, "grams": 250}, nil
	})

	result, err := client.Invoke(context.Background(), "plugin:zoo|feed", map[string]any{
		"animal": "otter",
	})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}

	m, ok := result.(map[string]any)
	if !ok {
		t.Fatalf("unexpected result shape: %T", result)
	}
	if m["fed"] != "otter" || m["grams"] != float64(250) {
		t.Fatalf("unexpected result: %v", m)
	}
}

func TestClient_RejectionPropagates(t *testing.T) {
	disp, _, client := startBridge(t)

	disp.Handle(bridge.Op("zoo", "escape"), func(ctx context.Context, call *host.Call) (any, error) {
		return nil, stderrors.New("the tiger is out")
	})

	_, err := client.Invoke(context.Background(), "plugin:zoo|escape", nil)
	if err == nil {
		t.Fatal("expected rejection")
	}
	var be *errors.Error
	if !stderrors.As(err, &be) || be.Kind != errors.KindRejected {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(be.Detail, "the tiger is out") {
		t.Fatalf("host error text lost: %v", err)
	}
}

func TestClient_UnknownOperation(t *testing.T) {
	_, _, client := startBridge(t)

	_, err := client.Invoke(context.Background(), "plugin:nowhere|nothing", nil)
	if err == nil {
		t.Fatal("expected rejection for unknown operation")
	}
	if !strings.Contains(err.Error(), "unknown_operation") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_EventRoundTrip(t *testing.T) {
	_, reg, client := startBridge(t)
	bus := event.NewBus(client, reg)
	ctx := context.Background()

	delivered := make(chan event.Event, 4)
	unlisten, err := bus.Listen(ctx, "shell://log", func(e event.Event) {
		delivered <- e
	})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	if err := bus.Emit(ctx, "shell://log", "first line"); err != nil {
		t.Fatalf("emit: %v", err)
	}

	select {
	case e := <-delivered:
		if e.Name != "shell://log" || e.Payload != "first line" {
			t.Fatalf("unexpected event: %+v", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event never delivered")
	}

	if err := unlisten(ctx); err != nil {
		t.Fatalf("unlisten: %v", err)
	}
	if err := unlisten(ctx); err != nil {
		t.Fatalf("second unlisten should be a local no-op: %v", err)
	}

	if err := bus.Emit(ctx, "shell://log", "after unlisten"); err != nil {
		t.Fatalf("emit: %v", err)
	}
	select {
	case e := <-delivered:
		t.Fatalf("delivery after unlisten: %+v", e)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestClient_OnceOverTransport(t *testing.T) {
	_, reg, client := startBridge(t)
	bus := event.NewBus(client, reg)
	ctx := context.Background()

	// The once handler re-enters Invoke for its unlisten; this must not
	// deadlock the push dispatch path.
	onceCalls := make(chan struct{}, 4)
	if _, err := bus.Once(ctx, "boot", func(event.Event) {
		onceCalls <- struct{}{}
	}); err != nil {
		t.Fatalf("once: %v", err)
	}

	// A persistent listener on the same event sequences the assertions:
	// when it has seen an emit, the once handler's push (queued ahead or
	// behind in the same direction) has been processed too.
	seen := make(chan struct{}, 4)
	if _, err := bus.Listen(ctx, "boot", func(event.Event) {
		seen <- struct{}{}
	}); err != nil {
		t.Fatalf("listen: %v", err)
	}

	bus.Emit(ctx, "boot", nil)
	select {
	case <-seen:
	case <-time.After(2 * time.Second):
		t.Fatal("first emit never delivered")
	}
	select {
	case <-onceCalls:
	case <-time.After(2 * time.Second):
		t.Fatal("once handler never invoked")
	}

	bus.Emit(ctx, "boot", nil)
	select {
	case <-seen:
	case <-time.After(2 * time.Second):
		t.Fatal("second emit never delivered")
	}
	select {
	case <-onceCalls:
		t.Fatal("once handler invoked twice")
	default:
	}
}

func TestClient_ChannelStreaming(t *testing.T) {
	disp, reg, client := startBridge(t)
	ctx := context.Background()

	disp.Handle(bridge.Op("download", "start"), func(ctx context.Context, call *host.Call) (any, error) {
		w, err := call.Channel("onProgress")
		if err != nil {
			return nil, err
		}
		for _, pct := range []int{25, 50, 75, 100} {
			if err := w.Send(pct); err != nil {
				return nil, err
			}
		}
		return "started", w.End()
	})

	var got []any
	gotCh := make(chan struct{}, 8)
	ch := channel.New(reg, func(msg any) {
		got = append(got, msg)
		gotCh <- struct{}{}
	})

	result, err := client.Invoke(ctx, "plugin:download|start", map[string]any{
		"onProgress": ch,
	})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if result != "started" {
		t.Fatalf("unexpected result: %v", result)
	}

	for i := 0; i < 4; i++ {
		select {
		case <-gotCh:
		case <-time.After(2 * time.Second):
			t.Fatalf("only %d of 4 frames delivered", len(got))
		}
	}

	want := []any{float64(25), float64(50), float64(75), float64(100)}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("out of order delivery: %v", got)
		}
	}

	waitFor(t, ch.Closed, "channel never terminated")
	if reg.Has(ch.ID()) {
		t.Fatal("terminated channel still registered")
	}
}

func TestClient_CloseFailsInFlight(t *testing.T) {
	disp, _, client := startBridge(t)

	block := make(chan struct{})
	disp.Handle(bridge.Op("zoo", "hang"), func(ctx context.Context, call *host.Call) (any, error) {
		<-block
		return nil, nil
	})
	defer close(block)

	errCh := make(chan error, 1)
	go func() {
		_, err := client.Invoke(context.Background(), "plugin:zoo|hang", nil)
		errCh <- err
	}()

	// Give the invoke a moment to go out, then tear the client down.
	time.Sleep(50 * time.Millisecond)
	if err := client.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	select {
	case err := <-errCh:
		if err == nil {
			t.Fatal("in-flight invoke should fail on close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight invoke never returned")
	}

	if client.Available() {
		t.Fatal("closed client reports available")
	}
	if _, err := client.Invoke(context.Background(), "plugin:zoo|feed", nil); err == nil {
		t.Fatal("invoke after close should fail")
	}
}

func TestClient_ContextCancellation(t *testing.T) {
	disp, _, client := startBridge(t)

	block := make(chan struct{})
	disp.Handle(bridge.Op("zoo", "hang"), func(ctx context.Context, call *host.Call) (any, error) {
		<-block
		return nil, nil
	})
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := client.Invoke(ctx, "plugin:zoo|hang", nil)
	if !stderrors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}

func TestMessageCodec(t *testing.T) {
	in := &message{
		Type:    typeInvoke,
		ID:      "abc",
		Op:      "plugin:event|emit",
		Headers: map[string]string{"origin": "shell"},
	}
	data, err := encodeMessage(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := decodeMessage(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Type != in.Type || out.ID != in.ID || out.Op != in.Op || out.Headers["origin"] != "shell" {
		t.Fatalf("round trip lost fields: %+v", out)
	}

	if _, err := decodeMessage([]byte("{")); err == nil {
		t.Fatal("invalid JSON should fail to decode")
	}
}

func TestDecodeValue_Empty(t *testing.T) {
	v, err := decodeValue(nil)
	if err != nil || v != nil {
		t.Fatalf("empty raw value should decode to nil: %v, %v", v, err)
	}
	raw, err := encodeValue(nil)
	if err != nil || raw != nil {
		t.Fatalf("nil value should encode to nil: %v, %v", raw, err)
	}
}
