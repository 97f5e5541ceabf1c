package bserve

import (
	"sync"

	"github.com/cockroachdb/errors"
)

// StreamWriter bridges a body [Producer] to the wire. It enforces the declared length of the
// body, if any, and resolves the response promise exactly once. Exactly one of End or Error
// must be called over its lifetime.
//
// The byte counter and completion flag are protected by a lock so the writer may be driven
// from any goroutine, but ordering of frames remains the responsibility of the producer: it
// should not call Write concurrently with itself or with End.
type StreamWriter struct {
	ch       Channel
	promise  *Promise
	declared int64 // -1 when unbounded

	mu       sync.Mutex
	count    int64
	complete bool
	done     chan struct{} // closed once complete is set
}

func newStreamWriter(ch Channel, promise *Promise, body Body) *StreamWriter {
	declared := int64(-1)
	if n, ok := body.DeclaredLength(); ok {
		declared = n
	}

	return &StreamWriter{ch: ch, promise: promise, declared: declared, done: make(chan struct{})}
}

// markComplete must be called with the lock held and reports false when already complete.
func (w *StreamWriter) markComplete() bool {
	if w.complete {
		return false
	}

	w.complete = true
	close(w.done)

	return true
}

// Write emits p as a body frame and flushes it. When the running total exceeds the declared
// length, the response promise fails with [ErrTooManyBytes] while this call returns
// [ErrNotEnoughBytes]. Only frames the channel accepted are counted.
func (w *StreamWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	closed := w.complete
	w.mu.Unlock()

	if closed {
		return 0, errors.WithStack(ErrStreamClosed)
	}

	if err := w.ch.WriteBody(p); err != nil {
		return 0, errors.Wrap(err, "write body frame")
	}

	w.mu.Lock()
	w.count += int64(len(p))
	over := w.declared >= 0 && w.count > w.declared
	w.mu.Unlock()

	if err := w.ch.Flush(); err != nil {
		return 0, errors.Wrap(err, "flush body frame")
	}

	if over {
		w.promise.Fail(errors.WithStack(ErrTooManyBytes))
		return len(p), errors.WithStack(ErrNotEnoughBytes)
	}

	return len(p), nil
}

// End completes the body. If a length was declared and a different number of bytes was
// written, the response promise and this call fail with [ErrNotEnoughBytes]. The completion
// signal and the end frame are emitted in either case.
func (w *StreamWriter) End() error {
	w.mu.Lock()
	if !w.markComplete() {
		w.mu.Unlock()
		return errors.WithStack(ErrStreamClosed)
	}

	short := w.declared >= 0 && w.count != w.declared
	w.mu.Unlock()

	var err error
	if short {
		err = errors.WithStack(ErrNotEnoughBytes)
		w.promise.Fail(err)
	}

	if ferr := w.finish(); ferr != nil {
		w.promise.Fail(ferr)
		return errors.CombineErrors(err, ferr)
	}

	w.promise.Succeed()

	return err
}

// Error aborts the body: the completion signal and end frame are emitted and the response
// promise fails with cause.
func (w *StreamWriter) Error(cause error) error {
	w.mu.Lock()
	if !w.markComplete() {
		w.mu.Unlock()
		return errors.WithStack(ErrStreamClosed)
	}
	w.mu.Unlock()

	ferr := w.finish()
	w.promise.Fail(cause)

	return ferr
}

// Written returns the number of body bytes written so far.
func (w *StreamWriter) Written() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.count
}

// Completed reports whether End or Error has been called.
func (w *StreamWriter) Completed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.complete
}

func (w *StreamWriter) finish() error {
	w.ch.ResponseComplete()

	if err := w.ch.WriteEnd(); err != nil {
		return errors.Wrap(err, "write end frame")
	}

	return errors.Wrap(w.ch.Flush(), "flush end frame")
}

// release is called when the writer's owner gives up on it. A writer that is still active at
// that point was abandoned by its producer; this violates the writer's contract and is reported
// to logs before the promise is failed.
func (w *StreamWriter) release(logs Logger) {
	w.mu.Lock()
	if !w.markComplete() {
		w.mu.Unlock()
		return
	}

	written := w.count
	w.mu.Unlock()

	err := errors.Wrapf(ErrStreamAbandoned, "after %d bytes", written)
	logs.LogAbandonedStream(err)
	w.promise.Fail(err)
}
