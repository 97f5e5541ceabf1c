package bserve

import (
	"bytes"
	"net/http"

	"github.com/cockroachdb/errors"
)

// StdChannel writes frames onto a standard library [http.ResponseWriter]. The standard library
// server owns message framing on its connections, so the Transfer-Encoding header is left to it
// and the end frame is implicit.
type StdChannel struct {
	w          http.ResponseWriter
	rc         *http.ResponseController
	onComplete func()
}

// NewStdChannel inits a channel on w. The optional onComplete is called as the completion
// signal of the response.
func NewStdChannel(w http.ResponseWriter, onComplete func()) *StdChannel {
	return &StdChannel{w: w, rc: http.NewResponseController(w), onComplete: onComplete}
}

func (c *StdChannel) WriteHead(h Head) error {
	dst := c.w.Header()
	for k, vs := range h.Header {
		if k == "Transfer-Encoding" {
			continue
		}

		dst[k] = append(dst[k][:0], vs...)
	}

	c.w.WriteHeader(h.Status)

	return nil
}

func (c *StdChannel) WriteBody(p []byte) error {
	_, err := c.w.Write(p)
	return errors.Wrap(err, "write")
}

func (c *StdChannel) WriteEnd() error { return nil }

func (c *StdChannel) Flush() error {
	if err := c.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return errors.Wrap(err, "flush")
	}

	return nil
}

func (c *StdChannel) ResponseComplete() {
	if c.onComplete != nil {
		c.onComplete()
	}
}

var _ Channel = &StdChannel{}

// stdRecorder captures what a standard library handler writes so it can be turned into a
// fixed response.
type stdRecorder struct {
	header http.Header
	status int
	buf    bytes.Buffer
}

func newStdRecorder() *stdRecorder {
	return &stdRecorder{header: http.Header{}}
}

func (r *stdRecorder) Header() http.Header { return r.header }

func (r *stdRecorder) WriteHeader(status int) {
	if r.status != 0 {
		return
	}

	r.status = status
}

func (r *stdRecorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}

	n, err := r.buf.Write(p)

	return n, errors.Wrap(err, "buffer")
}

func (r *stdRecorder) response() *Response {
	status := r.status
	if status == 0 {
		status = http.StatusOK
	}

	r.header.Del("Content-Length")
	r.header.Del("Transfer-Encoding")

	body := NoBody()
	if r.buf.Len() > 0 {
		if r.header.Get("Content-Type") == "" {
			r.header.Set("Content-Type", http.DetectContentType(r.buf.Bytes()))
		}

		body = FixedBody(r.buf.Bytes())
	}

	res := NewResponse(status, body)
	res.Header = r.header

	return res
}
