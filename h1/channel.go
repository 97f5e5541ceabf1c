// Package h1 serves HTTP/1.x connections by writing response frames directly onto the wire.
//
// A [Channel] translates the head, body and end frames emitted by the bserve encoder into
// HTTP/1.x message syntax and uses chunked transfer coding when the head asks for it. A
// [Server] runs the read-dispatch-encode loop on each connection and uses the completion signal
// of every response to decide whether the connection can be reused.
package h1

import (
	"bufio"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/advdv/bserve"
	"github.com/cockroachdb/errors"
)

// Channel writes one response onto a buffered connection writer.
type Channel struct {
	bw         *bufio.Writer
	closing    bool
	keepAlive  bool
	onComplete func()

	chunked   bool
	delimited bool
	once      sync.Once
	done      chan struct{}
}

// ChannelOption configures a [Channel].
type ChannelOption func(*Channel)

// WithClose makes the head announce that the connection closes after the response.
func WithClose() ChannelOption { return func(c *Channel) { c.closing = true } }

// WithKeepAlive makes the head announce a persistent connection, HTTP/1.0 clients need it.
func WithKeepAlive() ChannelOption { return func(c *Channel) { c.keepAlive = true } }

// OnComplete registers a function that runs as the completion signal.
func OnComplete(f func()) ChannelOption { return func(c *Channel) { c.onComplete = f } }

// NewChannel inits a channel that writes to bw.
func NewChannel(bw *bufio.Writer, opts ...ChannelOption) *Channel {
	c := &Channel{bw: bw, done: make(chan struct{})}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WriteHead writes the status line and header block.
func (c *Channel) WriteHead(h bserve.Head) error {
	text := http.StatusText(h.Status)
	if text == "" {
		text = "status code " + strconv.Itoa(h.Status)
	}

	if _, err := c.bw.WriteString("HTTP/" + strconv.Itoa(h.Version.Major) + "." + strconv.Itoa(h.Version.Minor) +
		" " + strconv.Itoa(h.Status) + " " + text + "\r\n"); err != nil {
		return errors.Wrap(err, "write status line")
	}

	header := h.Header
	switch {
	case c.closing:
		header = header.Clone()
		header.Set("Connection", "close")
	case c.keepAlive:
		header = header.Clone()
		header.Set("Connection", "keep-alive")
	}

	c.chunked = strings.EqualFold(header.Get("Transfer-Encoding"), "chunked")
	c.delimited = c.chunked || header.Get("Content-Length") != "" ||
		h.Status == http.StatusNoContent || h.Status == http.StatusNotModified || h.Status < http.StatusOK

	if err := header.Write(c.bw); err != nil {
		return errors.Wrap(err, "write header")
	}

	_, err := c.bw.WriteString("\r\n")

	return errors.Wrap(err, "write header end")
}

// WriteBody writes p, as a chunk when the response is chunked.
func (c *Channel) WriteBody(p []byte) error {
	if len(p) == 0 {
		return nil
	}

	if c.chunked {
		if _, err := c.bw.WriteString(strconv.FormatInt(int64(len(p)), 16) + "\r\n"); err != nil {
			return errors.Wrap(err, "write chunk size")
		}
	}

	if _, err := c.bw.Write(p); err != nil {
		return errors.Wrap(err, "write body")
	}

	if c.chunked {
		_, err := c.bw.WriteString("\r\n")
		return errors.Wrap(err, "write chunk end")
	}

	return nil
}

// WriteEnd writes the last chunk of a chunked response and nothing otherwise.
func (c *Channel) WriteEnd() error {
	if !c.chunked {
		return nil
	}

	_, err := c.bw.WriteString("0\r\n\r\n")

	return errors.Wrap(err, "write last chunk")
}

func (c *Channel) Flush() error {
	return errors.Wrap(c.bw.Flush(), "flush")
}

func (c *Channel) ResponseComplete() {
	c.once.Do(func() {
		if c.onComplete != nil {
			c.onComplete()
		}

		close(c.done)
	})
}

// Done is closed by the completion signal.
func (c *Channel) Done() <-chan struct{} { return c.done }

// Delimited reports whether the peer can tell where the body ended without the connection
// being closed. Only meaningful after the head was written.
func (c *Channel) Delimited() bool { return c.delimited }

var _ bserve.Channel = &Channel{}
