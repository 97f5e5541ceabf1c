package bserve

import (
	"context"
	"net/http"

	"github.com/advdv/bserve/internal/pathmatch"
)

// CachedRoute is a route together with its handler composed with all middleware. It is built
// once and reused for every request dispatched to it.
type CachedRoute struct {
	Route
	Synthesized bool

	handler Handler
}

// Handler returns the composed handler.
func (cr *CachedRoute) Handler() Handler { return cr.handler }

// BuildOption configures [Build].
type BuildOption func(*buildOptions)

type buildOptions struct {
	matcher []pathmatch.Option
}

// CaseInsensitive makes literal path segments match regardless of ASCII case.
func CaseInsensitive() BuildOption {
	return func(o *buildOptions) {
		o.matcher = append(o.matcher, pathmatch.CaseInsensitive())
	}
}

// Dispatcher resolves requests to cached routes. It is immutable after [Build] and safe for
// concurrent use.
type Dispatcher struct {
	tree     *pathmatch.Tree[*CachedRoute]
	routes   []*CachedRoute
	notFound Handler
}

// Build composes every route with the middleware, in declared order, and registers it under
// its method and path. For every GET route with a purely literal path, a HEAD route is
// synthesized that answers with an empty 200 without calling the GET handler. Routes without
// a method are registered for each of [AnyMethods].
func Build(routes []Route, middleware []Middleware, opts ...BuildOption) *Dispatcher {
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}

	d := &Dispatcher{
		tree:     pathmatch.New[*CachedRoute](o.matcher...),
		notFound: Wrap(HandlerFunc(notFoundHandler), middleware...),
	}

	declared := make([]Route, 0, len(routes))
	for _, rt := range routes {
		rt = rt.normalized()
		if rt.Method != "" {
			declared = append(declared, rt)
			continue
		}

		for _, method := range AnyMethods {
			rt.Method = method
			declared = append(declared, rt)
		}
	}

	explicitHead := map[string]bool{}
	for _, rt := range declared {
		if rt.Method == http.MethodHead {
			explicitHead[rt.PathString()] = true
		}
	}

	for _, rt := range declared {
		d.register(&CachedRoute{Route: rt, handler: Wrap(rt.Handler, middleware...)})

		if rt.Method != http.MethodGet || !rt.IsLiteral() || explicitHead[rt.PathString()] {
			continue
		}

		head := rt
		head.Method, head.Handler = http.MethodHead, HandlerFunc(emptyOK)
		d.register(&CachedRoute{Route: head, Synthesized: true, handler: Wrap(head.Handler, middleware...)})
	}

	return d
}

// Routes returns the cached routes, synthesized ones included, in registration order.
func (d *Dispatcher) Routes() []*CachedRoute {
	return append([]*CachedRoute(nil), d.routes...)
}

func (d *Dispatcher) register(cr *CachedRoute) {
	path := make([]Segment, 0, len(cr.Path)+1)
	path = append(path, Segment{Kind: SegmentLiteral, Value: cr.Method})
	path = append(path, cr.Path...)

	d.tree.Register(cr, path)
	d.routes = append(d.routes, cr)
}

func notFoundHandler(_ context.Context, r *Request) (*Response, error) {
	return nil, routeNotFound(r.Method, r.Path())
}
