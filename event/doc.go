// Package event implements the named publish/subscribe layer of the bridge.
//
// A subscription is one host-side listen registration plus one callback
// registry entry: the registry id is the delivery handle the host pushes
// event payloads through, one dispatch per delivered event. Emits are
// fire-and-forget invocations with no local bookkeeping.
//
// Events are addressed with a Target selector: any context, any context with
// a given label, the application itself, or a specific window, webview, or
// webview-window. Event names are restricted to alphanumerics plus '-', '/',
// ':' and '_'; an invalid name is a caller error and fails before anything
// reaches the host.
package event
