// Package callback implements the registry every asynchronous host-to-caller
// delivery is built on.
//
// The registry maps opaque numeric identifiers to closures. Ids are allocated
// from a cryptographic random source and are unique among currently live
// entries; an id may be reused after its entry is released. Entries are either
// persistent or one-shot; one-shot entries remove themselves before their
// first invocation.
//
// Dispatching to an id that is not registered is not an error. The documented
// scenario is a reload or teardown discarding the registry while a host-side
// asynchronous operation was still in flight: the late delivery is logged as
// a warning and swallowed. This is also the system's entire cancellation
// story, so it must never be fatal.
package callback
