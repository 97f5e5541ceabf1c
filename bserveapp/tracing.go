package bserveapp

import (
	"context"
	"net/http"
	"time"

	"github.com/advdv/bserve"
	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
)

const tracingInitTimeout = 5 * time.Second

const instrumentationName = "github.com/advdv/bserve/bserveapp"

// NewTracerProvider creates and configures the OpenTelemetry TracerProvider.
// Supported exporters via BS_OTEL_EXPORTER: "stdout" (default) and "none".
// Shutdown is handled automatically via fx.Lifecycle.
func NewTracerProvider(lc fx.Lifecycle, env Environment) (trace.TracerProvider, error) {
	ctx, cancel := context.WithTimeout(context.Background(), tracingInitTimeout)
	defer cancel()

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(env.serviceName())))
	if err != nil {
		return nil, errors.Wrap(err, "create resource")
	}

	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	switch env.otelExporter() {
	case "stdout", "":
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, errors.Wrap(err, "create stdout exporter")
		}

		opts = append(opts, sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)))
	case "none":
	default:
		return nil, errors.Newf("unsupported BS_OTEL_EXPORTER: %q (supported: stdout, none)", env.otelExporter())
	}

	tp := sdktrace.NewTracerProvider(opts...)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tp.Shutdown(ctx)
		},
	})

	return tp, nil
}

// NewPropagator creates the W3C TraceContext + Baggage composite propagator.
func NewPropagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)
}

// withStdTracing wraps the handler with otelhttp for automatic span creation.
// Requests to excludePaths are not traced.
// The TracerProvider and Propagator are explicitly injected to avoid global state.
func withStdTracing(tp trace.TracerProvider, prop propagation.TextMapPropagator, serviceName string, excludePaths ...string) func(http.Handler) http.Handler {
	excludeSet := pathSet(excludePaths)

	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, serviceName,
			otelhttp.WithTracerProvider(tp),
			otelhttp.WithPropagators(prop),
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
			otelhttp.WithFilter(func(r *http.Request) bool {
				_, excluded := excludeSet[r.URL.Path]
				return !excluded
			}),
		)
	}
}

// withRouteSpanName renames the span started by the transport after the matched route, so
// spans aggregate per route instead of per path.
func withRouteSpanName() bserve.Middleware {
	return func(next bserve.Handler) bserve.Handler {
		return bserve.HandlerFunc(func(ctx context.Context, r *bserve.Request) (*bserve.Response, error) {
			span := trace.SpanFromContext(ctx)
			if rt := r.Route(); rt != nil && span.IsRecording() {
				span.SetName(r.Method + " " + rt.PathString())
				span.SetAttributes(semconv.HTTPRoute(rt.PathString()))
			}

			return next.ServeRequest(ctx, r)
		})
	}
}

// withServerSpan starts a server span for every request. It is used by transports that do not
// bring their own instrumentation. Requests to excludePaths are not traced.
func withServerSpan(tp trace.TracerProvider, prop propagation.TextMapPropagator, excludePaths ...string) bserve.Middleware {
	tracer := tp.Tracer(instrumentationName)
	excludeSet := pathSet(excludePaths)

	return func(next bserve.Handler) bserve.Handler {
		return bserve.HandlerFunc(func(ctx context.Context, r *bserve.Request) (*bserve.Response, error) {
			if _, excluded := excludeSet[r.Path()]; excluded {
				return next.ServeRequest(ctx, r)
			}

			name := r.Method + " " + r.Path()
			attrs := []trace.SpanStartOption{
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(semconv.HTTPRequestMethodKey.String(r.Method), semconv.URLPath(r.Path())),
			}

			if rt := r.Route(); rt != nil {
				name = r.Method + " " + rt.PathString()
				attrs = append(attrs, trace.WithAttributes(semconv.HTTPRoute(rt.PathString())))
			}

			ctx = prop.Extract(ctx, propagation.HeaderCarrier(r.Header))
			ctx, span := tracer.Start(ctx, name, attrs...)
			defer span.End()

			res, err := next.ServeRequest(ctx, r)

			status := statusOf(res, err)
			span.SetAttributes(semconv.HTTPResponseStatusCode(status))
			if err != nil {
				span.RecordError(err)
			}

			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(status))
			}

			return res, err
		})
	}
}

func pathSet(paths []string) map[string]struct{} {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}

	return set
}
