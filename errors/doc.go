// Package errors provides structured error types for the bridge library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type carries the operation name, a human-readable
// detail and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseInvoke, errors.KindRejected).
//		Op("plugin:fs|read").
//		Detail("file does not exist").
//		Cause(ioErr).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Rejected("plugin:fs|read", ioErr)
//	err := errors.InvalidEvent("bad name with spaces")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
