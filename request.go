package bserve

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/advdv/bserve/internal/pathmatch"
)

// Request is the inbound request as seen by handlers. It is owned by a single transaction: the
// dispatcher fills in the path parameters and the resolved route before invoking the handler.
type Request struct {
	Method     string
	URL        *url.URL
	Proto      string
	ProtoMajor int
	ProtoMinor int
	Header     http.Header
	Body       io.ReadCloser
	Host       string
	RemoteAddr string

	params pathmatch.Params
	route  *Route
	std    *http.Request
}

// NewRequest turns a standard library request into a [Request].
func NewRequest(r *http.Request) *Request {
	return &Request{
		Method:     r.Method,
		URL:        r.URL,
		Proto:      r.Proto,
		ProtoMajor: r.ProtoMajor,
		ProtoMinor: r.ProtoMinor,
		Header:     r.Header,
		Body:       r.Body,
		Host:       r.Host,
		RemoteAddr: r.RemoteAddr,
		std:        r,
	}
}

// Path returns the path of the request URL, "/" when it is empty.
func (r *Request) Path() string {
	if r.URL == nil || r.URL.Path == "" {
		return "/"
	}

	return r.URL.Path
}

// Query returns the parsed query string.
func (r *Request) Query() url.Values {
	if r.URL == nil {
		return url.Values{}
	}

	return r.URL.Query()
}

// Param returns the value of the named path parameter, or the empty string.
func (r *Request) Param(name string) string {
	v, _ := r.params.Get(name)
	return v
}

// Params returns a copy of all path parameters.
func (r *Request) Params() map[string]string {
	m := make(map[string]string, len(r.params.Keys))
	for i, k := range r.params.Keys {
		m[k] = r.params.Values[i]
	}

	return m
}

// Route returns the route the request was dispatched to, or nil before dispatch and when no
// route matched.
func (r *Request) Route() *Route { return r.route }

// Std returns a standard library request carrying ctx, the same method, path, headers and
// body, with the path parameters available through PathValue.
func (r *Request) Std(ctx context.Context) *http.Request {
	var sr *http.Request
	if r.std != nil {
		sr = r.std.WithContext(ctx)
	} else {
		sr = (&http.Request{
			Method:     r.Method,
			Proto:      r.Proto,
			ProtoMajor: r.ProtoMajor,
			ProtoMinor: r.ProtoMinor,
			Header:     r.Header,
			Body:       r.Body,
			Host:       r.Host,
			RemoteAddr: r.RemoteAddr,
		}).WithContext(ctx)
	}

	sr.Method = r.Method
	sr.URL = r.URL
	if sr.Header == nil {
		sr.Header = http.Header{}
	}

	for i, k := range r.params.Keys {
		sr.SetPathValue(k, r.params.Values[i])
	}

	return sr
}

// WithPath returns a shallow copy of the request with a different URL path. Path parameters
// and the resolved route are carried over.
func (r *Request) WithPath(path string) *Request {
	r2 := new(Request)
	*r2 = *r

	u := new(url.URL)
	if r.URL != nil {
		*u = *r.URL
	}

	u.Path, u.RawPath = path, ""
	r2.URL = u
	r2.params = pathmatch.Params{
		Keys:   append([]string(nil), r.params.Keys...),
		Values: append([]string(nil), r.params.Values...),
	}

	return r2
}

// components splits the request path into its non-empty components.
func (r *Request) components() []string {
	return strings.FieldsFunc(r.Path(), func(c rune) bool { return c == '/' })
}

// WantsClose reports whether the client asked for the connection to be closed after this
// request, either explicitly or by speaking HTTP/1.0 without keep-alive.
func (r *Request) WantsClose() bool {
	conn := strings.ToLower(r.Header.Get("Connection"))
	if r.ProtoMajor == 1 && r.ProtoMinor == 0 {
		return !strings.Contains(conn, "keep-alive")
	}

	return strings.Contains(conn, "close")
}
