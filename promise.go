package bserve

import (
	"context"
	"sync"
)

// Promise is the eventual outcome of writing one response. It resolves exactly once; later
// attempts to succeed or fail it are ignored.
type Promise struct {
	err  error
	once sync.Once
	done chan struct{}
}

// NewPromise inits an unresolved promise.
func NewPromise() *Promise {
	return &Promise{done: make(chan struct{})}
}

// Succeed resolves the promise without error.
func (p *Promise) Succeed() { p.resolve(nil) }

// Fail resolves the promise with err.
func (p *Promise) Fail(err error) { p.resolve(err) }

func (p *Promise) resolve(err error) {
	p.once.Do(func() {
		p.err = err
		close(p.done)
	})
}

// Done returns a channel that is closed once the promise is resolved.
func (p *Promise) Done() <-chan struct{} { return p.done }

// Await waits for the promise to resolve and returns its error.
func (p *Promise) Await() error {
	<-p.done
	return p.err
}

// AwaitContext waits for the promise or the context, whichever comes first.
func (p *Promise) AwaitContext(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsComplete checks if the promise is resolved without blocking.
func (p *Promise) IsComplete() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}
