package host

import (
	"context"

	bridge "github.com/filipecabaco/ex-tauri-sub000"
	"github.com/filipecabaco/ex-tauri-sub000/callback"
	"github.com/filipecabaco/ex-tauri-sub000/errors"
	"github.com/filipecabaco/ex-tauri-sub000/event"
	"github.com/filipecabaco/ex-tauri-sub000/resource"
)

// installBuiltins registers the event and resources plugins every dispatcher
// serves.
func (d *Dispatcher) installBuiltins() {
	d.Handle(bridge.Op("event", "listen"), d.handleListen)
	d.Handle(bridge.Op("event", "unlisten"), d.handleUnlisten)
	d.Handle(bridge.Op("event", "emit"), d.handleEmit)
	d.Handle(bridge.Op("resources", "close"), d.handleResourceClose)
}

func (d *Dispatcher) handleListen(ctx context.Context, call *Call) (any, error) {
	name, err := call.String("event")
	if err != nil {
		return nil, err
	}
	if !event.ValidName(name) {
		return nil, errors.InvalidEvent(name)
	}
	target, ok := event.ParseTarget(call.Args["target"])
	if !ok {
		return nil, errors.InvalidInput(errors.PhaseServe, "argument target is not a target selector")
	}
	handler, err := call.Uint32("handler")
	if err != nil {
		return nil, err
	}

	id := d.hub.Listen(name, target, callback.ID(handler), call.sink)
	return id, nil
}

func (d *Dispatcher) handleUnlisten(ctx context.Context, call *Call) (any, error) {
	name, err := call.String("event")
	if err != nil {
		return nil, err
	}
	id, ok := asUint64(call.Args["eventId"])
	if !ok {
		return nil, errors.InvalidInput(errors.PhaseServe, "argument eventId must be a non-negative integer")
	}

	d.hub.Unlisten(name, id)
	return nil, nil
}

func (d *Dispatcher) handleEmit(ctx context.Context, call *Call) (any, error) {
	name, err := call.String("event")
	if err != nil {
		return nil, err
	}
	if !event.ValidName(name) {
		return nil, errors.InvalidEvent(name)
	}
	target, ok := event.ParseTarget(call.Args["target"])
	if !ok {
		return nil, errors.InvalidInput(errors.PhaseServe, "argument target is not a target selector")
	}

	d.hub.Emit(name, target, call.Args["payload"])
	return nil, nil
}

func (d *Dispatcher) handleResourceClose(ctx context.Context, call *Call) (any, error) {
	rid, err := call.Uint32("rid")
	if err != nil {
		return nil, err
	}
	if _, ok := d.resources.Remove(resource.Rid(rid)); !ok {
		return nil, errors.UnknownResource(call.Op, rid)
	}
	return nil, nil
}
