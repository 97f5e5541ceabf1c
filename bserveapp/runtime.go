package bserveapp

import (
	"net/http"

	"github.com/carlmjohnson/requests"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Runtime provides access to app-scoped dependencies.
// Inject this into handler constructors via fx instead of pulling from context.
//
// Example:
//
//	type Handlers struct {
//	    rt *bserveapp.Runtime[Env]
//	}
//
//	func (h *Handlers) GetItem(ctx context.Context, r *bserve.Request) (*bserve.Response, error) {
//	    url, _ := h.rt.Reverse("get-item", r.Param("id"))
//	    // ...
//	}
type Runtime[E Environment] struct {
	env       E
	mux       *Mux
	transport http.RoundTripper
}

// NewRuntime creates a new Runtime with the given dependencies.
func NewRuntime[E Environment](env E, mux *Mux, transport http.RoundTripper) *Runtime[E] {
	return &Runtime[E]{env: env, mux: mux, transport: transport}
}

// Env returns the environment configuration.
func (r *Runtime[E]) Env() E {
	return r.env
}

// Reverse returns the URL for a named route with the given parameters.
func (r *Runtime[E]) Reverse(name string, params ...string) (string, error) {
	return r.mux.Reverse(name, params...)
}

// NewRequest returns a request builder whose outbound calls are traced and carry the trace
// context of the ctx they are sent with.
func (r *Runtime[E]) NewRequest() *requests.Builder {
	return requests.New().Transport(r.transport)
}

// NewHTTPTransport creates an HTTP RoundTripper instrumented with OpenTelemetry tracing.
// Use this when you need a custom *http.Client but still want outbound request tracing.
func NewHTTPTransport(tp trace.TracerProvider, prop propagation.TextMapPropagator) http.RoundTripper {
	return otelhttp.NewTransport(http.DefaultTransport,
		otelhttp.WithTracerProvider(tp),
		otelhttp.WithPropagators(prop),
	)
}

// NewHTTPClient creates an *http.Client that uses the given transport.
func NewHTTPClient(t http.RoundTripper) *http.Client {
	return &http.Client{Transport: t}
}
