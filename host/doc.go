// Package host implements the host side of the bridge: the operation
// dispatcher the invocation primitive lands on, the event hub that fans
// emits out to registered listeners, and the writer that streams indexed
// frames back into a caller-side channel.
//
// A Dispatcher routes "plugin:<namespace>|<action>" operation names to
// handler functions. The event and resources plugins are installed on every
// dispatcher; applications add their own namespaces with Handle.
//
// The Loopback invoker wires a caller-side callback registry directly to a
// dispatcher in the same process. It is both the standalone execution mode
// (no shell present) and the substitution seam tests install fake hosts
// through.
package host
