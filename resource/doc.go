// Package resource provides host-allocated resource handles and the table
// that backs them on the host side.
//
// A Handle is the caller-side owning wrapper around a host-assigned rid:
// read the rid, call further operations with it, release it with Close.
// Closing is an ordinary invocation of the resources plugin's close
// operation; the handle does not police use-after-close, it is a documented
// caller contract. Handles that are never closed are reclaimed when the host
// session ends.
//
// The Table is the host half: a slab of live values addressed by rid, with
// free-list reuse and optional per-value cleanup via the Dropper interface.
// Clearing the table at session teardown is what makes the caller-side
// "leak until exit" stance safe.
package resource
