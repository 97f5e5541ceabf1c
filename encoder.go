package bserve

import (
	"context"
	"net/http"
	"strconv"

	"github.com/advdv/bserve/httpdate"
	"github.com/cockroachdb/errors"
)

// TimestampSource provides the value of the Date header.
type TimestampSource interface {
	Current() string
}

// Encoder writes responses onto a [Channel].
type Encoder struct {
	timestamps TimestampSource
	serverName string
	logs       Logger
}

// NewEncoder inits an encoder. A nil timestamp source uses the process-wide [httpdate.Default]
// cache. When serverName is not empty it is sent as the Server header.
func NewEncoder(ts TimestampSource, serverName string, logs Logger) *Encoder {
	if ts == nil {
		ts = httpdate.Default()
	}

	if logs == nil {
		logs = NewStdLogger(nil)
	}

	return &Encoder{timestamps: ts, serverName: serverName, logs: logs}
}

// Encode writes the head of res and then its body according to its representation. The
// returned promise resolves once the end frame is flushed, or with the first failure. Bodies
// are never written for 204 responses and for responses answering HEAD requests.
//
// Streaming bodies are handed to their producer which drives the writes from then on. When
// ctx is done before the producer completed the stream, the stream writer is released and the
// promise fails with [ErrStreamAbandoned].
func (e *Encoder) Encode(ctx context.Context, res *Response, ch Channel) *Promise {
	promise := NewPromise()

	if res.Header == nil {
		res.Header = http.Header{}
	}

	version := res.Version
	if version == (Version{}) {
		version = HTTP11
	}

	res.Header.Set("Date", e.timestamps.Current())
	if e.serverName != "" {
		res.Header.Set("Server", e.serverName)
	}

	setFraming(res, version)

	if err := ch.WriteHead(Head{Version: version, Status: res.Status, Header: res.Header}); err != nil {
		e.finish(ch, nil, promise, errors.Wrap(err, "write head frame"))
		return promise
	}

	switch {
	case res.Status == http.StatusNoContent || res.forHead:
		e.finish(ch, nil, promise, nil)
	case res.Body.kind == BodyNone:
		e.finish(ch, nil, promise, nil)
	case res.Body.kind == BodyFixed:
		e.finish(ch, res.Body.content, promise, nil)
	default:
		sw := newStreamWriter(ch, promise, res.Body)
		if done := ctx.Done(); done != nil {
			go func() {
				select {
				case <-sw.done:
				case <-done:
					sw.release(e.logs)
				}
			}()
		}

		res.Body.producer(sw)
	}

	return promise
}

// finish writes the optional content, signals completion, then writes and flushes the end
// frame in one batch.
func (e *Encoder) finish(ch Channel, content []byte, promise *Promise, err error) {
	if len(content) > 0 && err == nil {
		err = errors.Wrap(ch.WriteBody(content), "write body frame")
	}

	ch.ResponseComplete()

	if werr := ch.WriteEnd(); werr != nil {
		err = errors.CombineErrors(err, errors.Wrap(werr, "write end frame"))
	}

	if ferr := ch.Flush(); ferr != nil {
		err = errors.CombineErrors(err, errors.Wrap(ferr, "flush"))
	}

	if err != nil {
		promise.Fail(err)
		return
	}

	promise.Succeed()
}

// setFraming sets the headers that tell the peer where the body ends.
func setFraming(res *Response, version Version) {
	h := res.Header
	if res.Status == http.StatusNoContent || res.Status < http.StatusOK {
		h.Del("Content-Length")
		h.Del("Transfer-Encoding")

		return
	}

	if res.Status == http.StatusNotModified {
		return
	}

	switch res.Body.kind {
	case BodyNone:
		if !res.forHead {
			h.Set("Content-Length", "0")
		}
	case BodyFixed:
		h.Set("Content-Length", strconv.Itoa(len(res.Body.content)))
	case BodyStreaming:
		if n, ok := res.Body.DeclaredLength(); ok {
			h.Set("Content-Length", strconv.FormatInt(n, 10))
			h.Del("Transfer-Encoding")

			return
		}

		h.Del("Content-Length")
		if version.AtLeast(1, 1) && !res.forHead {
			h.Set("Transfer-Encoding", "chunked")
		}
	}
}
