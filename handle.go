package bserve

import (
	"context"
	"net/http"
)

// Handler serves a request by returning a response or an error. Handlers are composed once
// into a route and then shared by every request, so they must not hold per-request state.
type Handler interface {
	ServeRequest(ctx context.Context, r *Request) (*Response, error)
}

// HandlerFunc allow casting a function to imple [Handler].
type HandlerFunc func(context.Context, *Request) (*Response, error)

// ServeRequest implements the [Handler] interface.
func (f HandlerFunc) ServeRequest(ctx context.Context, r *Request) (*Response, error) {
	return f(ctx, r)
}

// FromStd adapts a standard library handler. The handler writes into a buffer that becomes a
// fixed response body, so it cannot stream.
func FromStd(h http.Handler) Handler {
	return HandlerFunc(func(ctx context.Context, r *Request) (*Response, error) {
		rec := newStdRecorder()
		h.ServeHTTP(rec, r.Std(ctx))

		return rec.response(), nil
	})
}

// emptyOK is the handler behind synthesized HEAD routes.
func emptyOK(context.Context, *Request) (*Response, error) {
	return NewResponse(http.StatusOK, NoBody()), nil
}
