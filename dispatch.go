package bserve

import (
	"context"
	"net/http"
)

// Dispatch resolves the request to a cached route and invokes its composed handler. HEAD
// requests prefer an explicit or synthesized HEAD route and otherwise fall back to the GET
// route for the same path. Requests that match nothing are passed to the not-found handler,
// which runs through the same middleware and fails with an error wrapping [ErrRouteNotFound].
//
// Errors from handlers and middleware are returned unmodified.
func (d *Dispatcher) Dispatch(ctx context.Context, r *Request) (*Response, error) {
	comps := r.components()

	var (
		cr *CachedRoute
		ok bool
	)

	if r.Method == http.MethodHead {
		cr, ok = d.lookup(http.MethodHead, comps, r)
	}

	if !ok {
		method := r.Method
		if method == http.MethodHead {
			method = http.MethodGet
		}

		cr, ok = d.lookup(method, comps, r)
	}

	if !ok {
		return d.notFound.ServeRequest(ctx, r)
	}

	r.route = &cr.Route

	return cr.handler.ServeRequest(ctx, r)
}

func (d *Dispatcher) lookup(method string, comps []string, r *Request) (*CachedRoute, bool) {
	path := make([]string, 0, len(comps)+1)
	path = append(path, method)
	path = append(path, comps...)

	r.params.Reset()

	return d.tree.Lookup(path, &r.params)
}
