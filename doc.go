// Package bridge implements the message protocol between a desktop shell
// host and the application code it embeds.
//
// The bridge is an ordered, asynchronous channel protocol: application code
// crosses into the host through a single invocation primitive, and the host
// replies either directly or by streaming indexed frames back through a
// callback registry. Everything else in the library is built on top of that
// crossing point.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	bridge/          Root package with the Invoker seam and argument encoding
//	├── callback/    Process-wide callback registry (id -> closure)
//	├── channel/     Ordered reassembly channel over the registry
//	├── event/       Named, targetable publish/subscribe layer
//	├── resource/    Host-allocated resource handles and the host handle table
//	├── host/        Host-side operation dispatcher, event hub, channel writer
//	├── transport/   Websocket binding of the invocation boundary
//	├── shellconfig/ YAML configuration for the dev shell
//	└── errors/      Structured error types for debugging
//
// # Quick Start
//
// Wire a client-side registry to an in-process host dispatcher:
//
//	reg := callback.NewRegistry()
//	disp := host.NewDispatcher()
//	inv := host.NewLoopback(disp, reg)
//
//	bus := event.NewBus(inv, reg)
//	unlisten, err := bus.Listen(ctx, "shell://ready", func(e event.Event) {
//	    fmt.Println(e.Payload)
//	})
//
// Or dial a remote host over a websocket:
//
//	client, err := transport.Dial(ctx, "ws://127.0.0.1:9631/bridge", reg)
//	defer client.Close()
//
//	result, err := client.Invoke(ctx, bridge.Op("fs", "read"), map[string]any{
//	    "path": "notes.txt",
//	})
//
// # Ordering Model
//
// Within one channel, frames are delivered to the consumer strictly in index
// order regardless of arrival order; the channel buffers future indices and
// drops duplicates. Across independent channels and subscriptions there is no
// ordering guarantee. Sequential Invoke calls from one caller are not
// guaranteed to resolve in call order if the host services them concurrently.
//
// # Thread Safety
//
// Registry, Bus, Dispatcher and the transport types are safe for concurrent
// use. A Channel serializes its own delivery; its consumer closure is never
// invoked concurrently with itself.
package bridge
