package bserve

import (
	"context"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
)

// ServeMux collects routes and middleware, builds them into a [Dispatcher] the first time it
// serves and encodes what handlers return.
type ServeMux struct {
	logs        Logger
	encoder     *Encoder
	reverser    *Reverser
	opts        []BuildOption
	routes      []Route
	middlewares struct {
		captured bool
		buffered []Middleware
	}

	once       sync.Once
	built      atomic.Bool
	dispatcher *Dispatcher
}

// NewServeMux creates a new ServeMux with default settings.
func NewServeMux(opts ...BuildOption) *ServeMux {
	logs := NewStdLogger(log.Default())
	return NewServeMuxWith(logs, NewEncoder(nil, "", logs), NewReverser(), opts...)
}

// NewServeMuxWith creates a ServeMux with custom settings.
func NewServeMuxWith(logger Logger, encoder *Encoder, reverser *Reverser, opts ...BuildOption) *ServeMux {
	return &ServeMux{
		logs:     logger,
		encoder:  encoder,
		reverser: reverser,
		opts:     opts,
	}
}

// Reverse returns the url based on the name and parameter values.
func (m *ServeMux) Reverse(name string, vals ...string) (string, error) {
	return m.reverser.Reverse(name, vals...)
}

// Use allows providing of middleware.
func (m *ServeMux) Use(mw ...Middleware) {
	m.ensureNoUseAfterHandle()
	m.middlewares.buffered = append(m.middlewares.buffered, mw...)
}

// HandleFunc handles the request given the pattern using a function.
func (m *ServeMux) HandleFunc(pattern string, handler HandlerFunc, name ...string) {
	m.Handle(pattern, handler, name...)
}

// HandleStd registers a standard library [http.Handler] for the given pattern. Its output is
// buffered into a fixed response, see [FromStd].
func (m *ServeMux) HandleStd(pattern string, handler http.Handler, name ...string) {
	m.Handle(pattern, FromStd(handler), name...)
}

// Handle handles the request given a handler.
func (m *ServeMux) Handle(pattern string, handler Handler, name ...string) {
	method, path := MustParsePattern(pattern)

	rt := Route{Method: method, Path: path, Pattern: pattern, Handler: handler}
	if len(name) > 0 {
		m.reverser.Named(name[0], pattern)
		rt.Name = name[0]
	}

	m.HandleRoute(rt)
}

// HandleRoute registers a fully described route.
func (m *ServeMux) HandleRoute(rt Route) {
	m.ensureNotBuilt()
	m.middlewares.captured = true
	m.routes = append(m.routes, rt)
}

// Dispatcher returns the dispatcher built from all registered routes and middleware. It is
// built on the first call, after which no more routes can be registered.
func (m *ServeMux) Dispatcher() *Dispatcher {
	m.once.Do(func() {
		m.dispatcher = Build(m.routes, m.middlewares.buffered, m.opts...)
		m.built.Store(true)
	})

	return m.dispatcher
}

// Routes returns all routes the mux dispatches to.
func (m *ServeMux) Routes() []*CachedRoute {
	return m.Dispatcher().Routes()
}

// ServeRequest dispatches without encoding, which allows mounting a mux into another one.
func (m *ServeMux) ServeRequest(ctx context.Context, r *Request) (*Response, error) {
	return m.Dispatcher().Dispatch(ctx, r)
}

// Respond dispatches the request and encodes the outcome onto ch. Handler errors are turned
// into error responses.
func (m *ServeMux) Respond(ctx context.Context, r *Request, ch Channel) *Promise {
	res, err := m.ServeRequest(ctx, r)
	if err != nil {
		res = m.errorResponse(err)
	}

	if res == nil {
		res = NewResponse(http.StatusOK, NoBody())
	}

	if r.ProtoMajor == 1 && r.ProtoMinor == 0 {
		res.Version = Version{1, 0}
	}

	if r.Method == http.MethodHead {
		res.ForHead()
	}

	return m.encoder.Encode(ctx, res, ch)
}

// ServeHTTP makes the server mux implement the http.Handler interface. It returns once the
// response has been fully written.
func (m *ServeMux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ch := NewStdChannel(w, nil)
	if err := m.Respond(r.Context(), NewRequest(r), ch).Await(); err != nil {
		m.logs.LogImplicitFlushError(err)
	}
}

func (m *ServeMux) errorResponse(err error) *Response {
	switch SeverityOf(err) {
	case SeverityDebug:
		m.logs.LogRouteNotFound(err)
	case SeverityError:
		m.logs.LogUnhandledServeError(err)
	case SeverityInfo:
	}

	code := CodeOf(err)
	if code < 400 || code > 599 {
		// if all fails we don't want the client to end up with a white screen so
		// we render a 500 error with the standard text.
		code = CodeInternalServerError
	}

	res := Text(int(code), http.StatusText(int(code)))
	res.Header.Set("X-Content-Type-Options", "nosniff")

	return res
}

func (m *ServeMux) ensureNoUseAfterHandle() {
	if m.middlewares.captured {
		panic("bserve: cannot call Use() after calling Handle")
	}
}

func (m *ServeMux) ensureNotBuilt() {
	if m.built.Load() {
		panic("bserve: cannot call Handle() after the mux started serving")
	}
}
