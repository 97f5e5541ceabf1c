package h1

import (
	"bufio"
	"context"
	"io"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/advdv/bserve"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"
)

// ErrServerClosed is returned by [Server.Serve] after [Server.Shutdown].
var ErrServerClosed = errors.New("h1: server closed")

// maxDrain bounds how much of an unread request body is discarded to keep a connection alive.
const maxDrain = 256 << 10

// aLongTimeAgo is a read deadline that unblocks pending reads immediately.
var aLongTimeAgo = time.Unix(1, 0)

// Responder writes the response for a request onto a channel. It is implemented by
// [bserve.ServeMux].
type Responder interface {
	Respond(ctx context.Context, r *bserve.Request, ch bserve.Channel) *bserve.Promise
}

// Server serves HTTP/1.x connections.
type Server struct {
	Handler Responder
	Logger  *zap.Logger

	// IdleTimeout bounds the wait for the next request head on a connection, zero means no limit.
	IdleTimeout time.Duration
	// MaxConns limits the number of simultaneously served connections, zero means no limit.
	MaxConns int

	mu        sync.Mutex
	listeners map[net.Listener]struct{}
	conns     map[*conn]struct{}
	closing   atomic.Bool
	wg        sync.WaitGroup
}

type conn struct {
	net.Conn
	idle atomic.Bool

	// ctx is done when the server gives up on the connection or the peer went away.
	ctx    context.Context
	cancel context.CancelCauseFunc

	pending []byte // read ahead while watching the peer
}

func newConn(ctx context.Context, nc net.Conn) *conn {
	c := &conn{Conn: nc}
	c.ctx, c.cancel = context.WithCancelCause(ctx)

	return c
}

func (c *conn) Read(p []byte) (int, error) {
	if len(c.pending) > 0 {
		n := copy(p, c.pending)
		c.pending = c.pending[n:]

		return n, nil
	}

	return c.Conn.Read(p)
}

// watchPeer cancels the connection context when the peer closes the connection while a response
// is being written. It must only run while nothing else reads from the connection. The returned
// function stops the watch and keeps any byte it read for the next request.
func (c *conn) watchPeer() (stop func()) {
	var (
		buf  [1]byte
		n    int
		done = make(chan struct{})
	)

	go func() {
		defer close(done)

		var err error
		if n, err = c.Conn.Read(buf[:]); n == 0 && err != nil && !isTimeout(err) {
			c.cancel(errors.Wrap(err, "peer closed"))
		}
	}()

	return func() {
		_ = c.Conn.SetReadDeadline(aLongTimeAgo)
		<-done
		_ = c.Conn.SetReadDeadline(time.Time{})

		c.pending = append(c.pending, buf[:n]...)
	}
}

// Serve accepts connections on ln and serves each of them in its own goroutine until ln fails
// or the server is shut down.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.MaxConns > 0 {
		ln = netutil.LimitListener(ln, s.MaxConns)
	}

	if !s.track(ln) {
		return ErrServerClosed
	}

	defer s.untrack(ln)

	for {
		nc, err := ln.Accept()
		if err != nil {
			if s.closing.Load() {
				return ErrServerClosed
			}

			return errors.Wrap(err, "accept")
		}

		c := newConn(ctx, nc)
		if !s.trackConn(c) {
			nc.Close()
			return ErrServerClosed
		}

		go func() {
			defer s.untrackConn(c)

			if err := s.serveConn(c); err != nil {
				s.logger().Debug("connection ended with error",
					zap.String("remote_addr", nc.RemoteAddr().String()), zap.Error(err))
			}
		}()
	}
}

// ServeConn serves requests on nc until the peer or the server ends the connection. The
// connection is closed when ServeConn returns.
func (s *Server) ServeConn(ctx context.Context, nc net.Conn) error {
	c := newConn(ctx, nc)
	if !s.trackConn(c) {
		nc.Close()
		return ErrServerClosed
	}

	defer s.untrackConn(c)

	return s.serveConn(c)
}

func (s *Server) serveConn(c *conn) error {
	defer c.Close()
	defer c.cancel(nil)

	br, bw := bufio.NewReader(c), bufio.NewWriter(c)
	for {
		c.idle.Store(true)
		if s.closing.Load() || c.ctx.Err() != nil {
			return nil
		}

		if s.IdleTimeout > 0 {
			_ = c.SetReadDeadline(time.Now().Add(s.IdleTimeout))
		}

		hr, err := http.ReadRequest(br)
		c.idle.Store(false)

		switch {
		case errors.Is(err, io.EOF) || (err != nil && s.closing.Load()):
			return nil
		case isTimeout(err):
			return nil
		case err != nil:
			_, _ = bw.WriteString("HTTP/1.1 400 Bad Request\r\nConnection: close\r\nContent-Length: 0\r\n\r\n")
			_ = bw.Flush()

			return errors.Wrap(err, "read request")
		}

		_ = c.SetReadDeadline(time.Time{})

		hr.RemoteAddr = c.RemoteAddr().String()
		req := bserve.NewRequest(hr.WithContext(c.ctx))

		var stop func()
		if hr.Body == http.NoBody && br.Buffered() == 0 {
			stop = c.watchPeer()
		}

		keep, err := s.respond(c.ctx, req, hr.Body, bw)
		if stop != nil {
			stop()
		}

		if err != nil {
			return err
		}

		if !keep {
			return nil
		}
	}
}

// respond serves one request and reports whether the connection may be reused.
func (s *Server) respond(ctx context.Context, req *bserve.Request, body io.ReadCloser, bw *bufio.Writer) (bool, error) {
	wantsClose := req.WantsClose() || s.closing.Load()

	var drained bool
	opts := []ChannelOption{OnComplete(func() {
		n, _ := io.CopyN(io.Discard, body, maxDrain+1)
		drained = n <= maxDrain
		body.Close()
	})}

	switch {
	case wantsClose:
		opts = append(opts, WithClose())
	case req.ProtoMajor == 1 && req.ProtoMinor == 0:
		opts = append(opts, WithKeepAlive())
	}

	ch := NewChannel(bw, opts...)
	if err := s.Handler.Respond(ctx, req, ch).Await(); err != nil {
		return false, errors.Wrapf(err, "respond to %s %s", req.Method, req.Path())
	}

	delimited := ch.Delimited() || req.Method == http.MethodHead

	return !wantsClose && drained && delimited, nil
}

// Shutdown stops accepting connections, closes idle ones and waits for active ones to finish
// their current response. When ctx is done first, remaining connections are closed forcefully.
func (s *Server) Shutdown(ctx context.Context) error {
	s.closing.Store(true)

	s.mu.Lock()
	for ln := range s.listeners {
		ln.Close()
	}

	for c := range s.conns {
		if c.idle.Load() {
			_ = c.SetReadDeadline(time.Now())
		}
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.mu.Lock()
		for c := range s.conns {
			c.cancel(ErrServerClosed)
			c.Close()
		}
		s.mu.Unlock()

		return errors.Wrap(ctx.Err(), "shutdown")
	}
}

func (s *Server) track(ln net.Listener) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closing.Load() {
		return false
	}

	if s.listeners == nil {
		s.listeners = map[net.Listener]struct{}{}
	}

	s.listeners[ln] = struct{}{}

	return true
}

func (s *Server) untrack(ln net.Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.listeners, ln)
}

func (s *Server) trackConn(c *conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closing.Load() {
		return false
	}

	if s.conns == nil {
		s.conns = map[*conn]struct{}{}
	}

	s.conns[c] = struct{}{}
	s.wg.Add(1)

	return true
}

func (s *Server) untrackConn(c *conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.conns, c)
	s.wg.Done()
}

func (s *Server) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}

	return s.Logger
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
