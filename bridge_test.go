package bridge

import (
	"context"
	"testing"
)

type fakeInvoker struct {
	available bool
}

func (f *fakeInvoker) Invoke(ctx context.Context, op string, args map[string]any, opts ...InvokeOption) (any, error) {
	return nil, nil
}

func (f *fakeInvoker) Available() bool {
	return f.available
}

type plainInvoker struct{}

func (plainInvoker) Invoke(ctx context.Context, op string, args map[string]any, opts ...InvokeOption) (any, error) {
	return nil, nil
}

func TestAvailable(t *testing.T) {
	if Available(nil) {
		t.Fatal("nil invoker must not be available")
	}
	if !Available(plainInvoker{}) {
		t.Fatal("invoker without probe should default to available")
	}
	if Available(&fakeInvoker{available: false}) {
		t.Fatal("probe result should be honored")
	}
	if !Available(&fakeInvoker{available: true}) {
		t.Fatal("probe result should be honored")
	}
}

func TestOp(t *testing.T) {
	got := Op("event", "listen")
	if got != "plugin:event|listen" {
		t.Fatalf("unexpected op name: %q", got)
	}
}

type fakeRef struct {
	ref string
}

func (r fakeRef) IPCReference() string { return r.ref }

func TestEncodeArgs(t *testing.T) {
	args := map[string]any{
		"plain": 42,
		"ref":   fakeRef{ref: "__CHANNEL__:7"},
		"nested": map[string]any{
			"inner": fakeRef{ref: "__CHANNEL__:9"},
		},
		"list": []any{fakeRef{ref: "__CHANNEL__:11"}, "x"},
	}

	out := EncodeArgs(args)

	if out["plain"] != 42 {
		t.Fatalf("plain value changed: %v", out["plain"])
	}
	if out["ref"] != "__CHANNEL__:7" {
		t.Fatalf("referencer not encoded: %v", out["ref"])
	}
	nested := out["nested"].(map[string]any)
	if nested["inner"] != "__CHANNEL__:9" {
		t.Fatalf("nested referencer not encoded: %v", nested["inner"])
	}
	list := out["list"].([]any)
	if list[0] != "__CHANNEL__:11" || list[1] != "x" {
		t.Fatalf("list not encoded: %v", list)
	}

	// Input must not be mutated.
	if _, ok := args["ref"].(fakeRef); !ok {
		t.Fatal("input map was mutated")
	}
}

func TestInvokeOptions(t *testing.T) {
	o := ApplyOptions([]InvokeOption{
		WithHeader("origin", "shell"),
		WithHeader("trace", "abc"),
	})
	if o.Headers["origin"] != "shell" || o.Headers["trace"] != "abc" {
		t.Fatalf("headers not applied: %v", o.Headers)
	}
}
