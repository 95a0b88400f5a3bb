// Package channel implements the ordered reassembly channel the host streams
// frames through.
//
// A Channel registers itself in a callback registry and hands its id to the
// host. The host writes indexed data frames and a final end frame back
// through that id. The transport is allowed to deliver frames out of order
// (concurrent host-side producers complete whenever they complete); the
// channel buffers future indices and replays them so the consumer closure
// observes messages strictly in index order starting at 0. That reassembly is
// the channel's sole reason to exist over raw callbacks.
//
// Frames below the next expected index are duplicates and are dropped
// silently. Once the end index is reached the channel unregisters itself;
// anything the host still delivers after that is the registry's usual
// unknown-id no-op.
//
// When a Channel value is passed as an invoke argument it crosses the
// boundary as a tagged reference ("__CHANNEL__:<id>"), not as its contents.
package channel
