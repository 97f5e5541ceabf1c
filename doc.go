// Package bserve implements request dispatch and response encoding for HTTP servers.
//
// # Overview
//
// Handlers return a [Response] or an error instead of writing to a response writer. Routes
// and middleware are composed once, when the routing table is built, and every request is
// then resolved by a single lookup and served by a pre-composed handler chain. Responses are
// encoded onto a [Channel] which abstracts the outbound side of a connection.
//
// A minimal example:
//
//	mux := bserve.NewServeMux()
//	mux.HandleFunc("GET /items/{id}", func(ctx context.Context, r *bserve.Request) (*bserve.Response, error) {
//	    item, err := db.GetItem(r.Param("id"))
//	    if err != nil {
//	        return nil, bserve.NewError(bserve.CodeNotFound, err)
//	    }
//	    return bserve.Text(http.StatusOK, item.Name), nil
//	}, "get-item")
//
// # Routing
//
// Patterns follow the standard library syntax: an optional method, literal segments,
// "{name}" parameters and a trailing "{name...}" catch-all. Lookups prefer literal segments
// over parameters and parameters over catch-alls. Routes without a method are registered for
// each of [AnyMethods].
//
// [Build] turns routes and middleware into a [Dispatcher]. For every GET route with a purely
// literal path it synthesizes a HEAD route that answers with an empty 200 without running the
// GET handler. HEAD requests for other GET routes fall back to the GET handler and the body is
// suppressed when encoding. Requests that match nothing run through the same middleware and
// fail with an error wrapping [ErrRouteNotFound].
//
// # Middleware
//
// Middleware wraps handlers to add cross-cutting concerns. The middleware provided first is
// the outermost:
//
//	func timing(next bserve.Handler) bserve.Handler {
//	    return bserve.HandlerFunc(func(ctx context.Context, r *bserve.Request) (*bserve.Response, error) {
//	        start := time.Now()
//	        res, err := next.ServeRequest(ctx, r)
//	        log.Printf("%s %s took %v", r.Method, r.Path(), time.Since(start))
//	        return res, err
//	    })
//	}
//
// Middleware is applied to each route once, at build time. It must not capture per-request
// state in its closure.
//
// # Bodies
//
// A [Body] is either absent, fixed ([FixedBody]) or streamed by a [Producer]. A stream
// either declares its length up front ([StreamBody]) or is sent chunked ([ChunkedBody]). The
// producer receives a [StreamWriter] and must call exactly one of [StreamWriter.End] and
// [StreamWriter.Error]. Writing more bytes than declared, or ending short of the declared
// length, fails the response.
//
// # Encoding
//
// The [Encoder] sets the Date and Server headers, decides the framing headers and writes the
// head frame, then the body. Every response fires the channel's completion signal exactly once,
// before the end frame is flushed, so connection handling can prepare for the next request.
// The returned [Promise] resolves once the response is fully written or has failed.
//
// # Error Handling
//
// When a handler returns an error, [ServeMux] renders an error response:
//
//   - [*Error] (created with [NewError]): uses the error's code and its status text
//   - Other errors: logged and converted to 500 Internal Server Error
//
// All standard HTTP 4xx and 5xx status codes are available as [Code] constants.
//
// # Named Routes and URL Reversing
//
// Routes can be named for URL generation, avoiding hardcoded paths:
//
//	mux.HandleFunc("GET /users/{id}", getUser, "get-user")
//	url, err := mux.Reverse("get-user", "123") // returns "/users/123"
//
// # Standard Library
//
// [ServeMux] implements [http.Handler] and standard library handlers can be registered with
// [ServeMux.HandleStd]. Their output is buffered into a fixed body. The h1 sub-package
// provides a connection loop that writes frames directly onto the wire.
package bserve
