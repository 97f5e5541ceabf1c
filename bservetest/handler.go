package bservetest

import (
	"context"
	"net/http"
	"testing"

	"github.com/advdv/bserve"
)

// Responder is implemented by [bserve.ServeMux].
type Responder interface {
	Respond(ctx context.Context, r *bserve.Request, ch bserve.Channel) *bserve.Promise
}

// CallHandler invokes handler with the request and returns the response it produced. It fails
// the test when the handler returns an error.
func CallHandler(tb testing.TB, handler bserve.Handler, req *http.Request) *bserve.Response {
	tb.Helper()

	res, err := handler.ServeRequest(req.Context(), bserve.NewRequest(req))
	if err != nil {
		tb.Fatalf("bservetest: handler returned error: %v", err)
	}

	return res
}

// Respond lets r respond to req on a fresh recording channel and waits for the response to
// complete. The promise's outcome is returned alongside the channel.
func Respond(tb testing.TB, r Responder, req *http.Request) (*Channel, error) {
	tb.Helper()

	ch := NewChannel()
	err := r.Respond(req.Context(), bserve.NewRequest(req), ch).Await()

	return ch, err
}

// Encode encodes res onto a fresh recording channel and waits for it to complete.
func Encode(tb testing.TB, enc *bserve.Encoder, res *bserve.Response) (*Channel, error) {
	tb.Helper()

	ch := NewChannel()
	err := enc.Encode(tb.Context(), res, ch).Await()

	return ch, err
}
