package host

import (
	"sync"

	"github.com/filipecabaco/ex-tauri-sub000/callback"
	"github.com/filipecabaco/ex-tauri-sub000/channel"
	"github.com/filipecabaco/ex-tauri-sub000/errors"
)

// Writer is the producing end of a caller-side channel. Each Send claims the
// next index; the frame itself goes out whenever the producing goroutine
// gets there, so concurrent producers may put frames on the wire out of
// order. The consuming channel's reassembly buffer restores the order the
// indices define.
type Writer struct {
	id   callback.ID
	sink FrameSink

	mu    sync.Mutex
	next  uint64
	ended bool
}

// NewWriter creates a writer streaming frames to the callback id through
// sink.
func NewWriter(id callback.ID, sink FrameSink) *Writer {
	return &Writer{id: id, sink: sink}
}

// ID returns the caller-side callback id the writer streams to.
func (w *Writer) ID() callback.ID {
	return w.id
}

// Send writes one message frame.
func (w *Writer) Send(message any) error {
	w.mu.Lock()
	if w.ended {
		w.mu.Unlock()
		return errors.Closed(errors.PhaseChannel, "send after end")
	}
	index := w.next
	w.next++
	w.mu.Unlock()

	w.sink(w.id, channel.DataFrame(index, message))
	return nil
}

// End signals that no more messages will arrive. The end frame carries the
// index after the last message, so the consumer terminates exactly when it
// has drained everything owed.
func (w *Writer) End() error {
	w.mu.Lock()
	if w.ended {
		w.mu.Unlock()
		return errors.Closed(errors.PhaseChannel, "channel already ended")
	}
	w.ended = true
	index := w.next
	w.mu.Unlock()

	w.sink(w.id, channel.EndFrame(index))
	return nil
}
