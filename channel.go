package bserve

import "net/http"

// Head is the head frame of a response.
type Head struct {
	Version Version
	Status  int
	Header  http.Header
}

// Channel is the outbound side of a connection for the duration of one response. Frames
// are written in order head, zero or more bodies, end. Writes may be buffered until Flush.
type Channel interface {
	WriteHead(h Head) error
	WriteBody(p []byte) error
	WriteEnd() error
	Flush() error

	// ResponseComplete is the completion signal. It is invoked exactly once per response,
	// before the end frame is flushed, so connection-lifecycle logic can prepare for the
	// next exchange.
	ResponseComplete()
}
