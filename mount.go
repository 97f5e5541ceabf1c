package bserve

import (
	"context"
	"net/http"
	"slices"
	"strings"
)

// Mount mounts a Handler on a sub-path pattern. The mounted handler receives
// requests with the mount prefix stripped from the path.
func (m *ServeMux) Mount(pattern string, handler Handler) {
	method, path := MustParsePattern(pattern)

	stripped := stripPrefix(len(path), handler)
	subtree := append(slices.Clone(path), Segment{Kind: SegmentCatchAll, Value: "*"})

	m.HandleRoute(Route{Method: method, Path: path, Pattern: pattern, Handler: stripped})
	m.HandleRoute(Route{Method: method, Path: subtree, Pattern: pattern, Handler: stripped})
}

// MountFunc mounts a HandlerFunc on a sub-path pattern. The mounted handler receives
// requests with the mount prefix stripped from the path.
func (m *ServeMux) MountFunc(pattern string, handler HandlerFunc) {
	m.Mount(pattern, handler)
}

// MountStd mounts a standard library [http.Handler] on a sub-path pattern. The mounted
// handler receives requests with the mount prefix stripped from the path. Middleware
// registered via [ServeMux.Use] is applied and sees the original path.
func (m *ServeMux) MountStd(pattern string, handler http.Handler) {
	m.Mount(pattern, FromStd(handler))
}

// stripPrefix drops the first n path components before calling handler. It runs inside the
// middleware, so middleware sees the original path.
func stripPrefix(n int, handler Handler) Handler {
	return HandlerFunc(func(ctx context.Context, r *Request) (*Response, error) {
		comps := r.components()
		rest := comps[min(n, len(comps)):]

		return handler.ServeRequest(ctx, r.WithPath("/"+strings.Join(rest, "/")))
	})
}
