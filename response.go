package bserve

import (
	"net/http"
)

// Version is an HTTP protocol version.
type Version struct {
	Major, Minor int
}

// HTTP11 is the version responses default to.
var HTTP11 = Version{1, 1}

// AtLeast reports whether v is at least major.minor.
func (v Version) AtLeast(major, minor int) bool {
	return v.Major > major || (v.Major == major && v.Minor >= minor)
}

// BodyKind tags the representation of a [Body].
type BodyKind int

const (
	BodyNone BodyKind = iota
	BodyFixed
	BodyStreaming
)

// Producer drives a streaming body. It may return immediately and keep writing from another
// goroutine, but it must eventually call exactly one of [StreamWriter.End] or
// [StreamWriter.Error].
type Producer func(w *StreamWriter)

// Body of a response. The zero value has no body.
type Body struct {
	kind     BodyKind
	content  []byte
	producer Producer
	length   int64 // declared stream length, -1 for unbounded
}

// NoBody returns a body without content.
func NoBody() Body { return Body{} }

// FixedBody returns a body that is fully known before transmission.
func FixedBody(b []byte) Body { return Body{kind: BodyFixed, content: b} }

// StringBody returns a fixed body holding s.
func StringBody(s string) Body { return FixedBody([]byte(s)) }

// StreamBody returns a body produced incrementally that promises exactly length bytes.
func StreamBody(p Producer, length int64) Body {
	return Body{kind: BodyStreaming, producer: p, length: length}
}

// ChunkedBody returns a streamed body of unknown length.
func ChunkedBody(p Producer) Body {
	return Body{kind: BodyStreaming, producer: p, length: -1}
}

// Kind returns the representation of the body.
func (b Body) Kind() BodyKind { return b.kind }

// Bytes returns the content of a fixed body, nil otherwise.
func (b Body) Bytes() []byte { return b.content }

// DeclaredLength returns the length a streaming body promised and whether it promised one.
func (b Body) DeclaredLength() (int64, bool) {
	if b.kind != BodyStreaming || b.length < 0 {
		return 0, false
	}

	return b.length, true
}

// Response to be encoded onto the wire.
type Response struct {
	Status  int
	Header  http.Header
	Version Version
	Body    Body

	forHead bool
}

// NewResponse inits a response with the given status and body.
func NewResponse(status int, body Body) *Response {
	return &Response{
		Status:  status,
		Header:  http.Header{},
		Version: HTTP11,
		Body:    body,
	}
}

// Text returns a text/plain response.
func Text(status int, s string) *Response {
	res := NewResponse(status, StringBody(s))
	res.Header.Set("Content-Type", "text/plain; charset=utf-8")

	return res
}

// NoContent returns a 204 response.
func NoContent() *Response {
	return NewResponse(http.StatusNoContent, NoBody())
}

// ForHead marks the response as answering a HEAD request, no body will be written for it.
func (r *Response) ForHead() *Response {
	r.forHead = true
	return r
}

// IsForHead reports whether the response answers a HEAD request.
func (r *Response) IsForHead() bool { return r.forHead }
