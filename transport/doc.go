// Package transport binds the invocation boundary to a websocket.
//
// The wire protocol has three message types. The caller sends invoke
// messages carrying a correlation id, the operation name and its arguments;
// the host answers each with a result message under the same id, and may at
// any time send push messages addressed to a caller-side callback id. Each
// direction of the socket is one ordered queue, which is what gives a single
// producer's sequential emits their relative order.
//
// Dial produces the caller half, an Invoker backed by a live connection with
// exponential-backoff reconnection. NewServer produces the host half, an
// http.Handler that upgrades connections and feeds invocations into a
// host.Dispatcher; pushes flow back through the per-connection frame sink.
package transport
