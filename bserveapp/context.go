package bserveapp

import (
	"context"

	"github.com/advdv/bserve"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ctxKey is the key type for context values.
type ctxKey int

const (
	ctxKeyRequestDep ctxKey = iota
)

// requestDep holds request-scoped dependencies available via context.
// App-scoped dependencies (env, mux) are accessed via Runtime instead.
type requestDep struct {
	logger *zap.Logger
}

// withRequestDep injects dependencies into the request context.
func withRequestDep(d *requestDep) bserve.Middleware {
	return func(next bserve.Handler) bserve.Handler {
		return bserve.HandlerFunc(func(ctx context.Context, r *bserve.Request) (*bserve.Response, error) {
			return next.ServeRequest(context.WithValue(ctx, ctxKeyRequestDep, d), r)
		})
	}
}

func requestDepFromContext(ctx context.Context) *requestDep {
	d, ok := ctx.Value(ctxKeyRequestDep).(*requestDep)
	if !ok {
		panic("bserveapp: requestDep not found in context; is the middleware configured?")
	}
	return d
}

// Log returns a trace-correlated zap logger from the context.
func Log(ctx context.Context) *zap.Logger {
	d := requestDepFromContext(ctx)
	return d.logger.With(traceFields(ctx)...)
}

// Span returns the current trace span from the context.
func Span(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// traceFields extracts trace_id and span_id from the context for log correlation.
func traceFields(ctx context.Context) []zap.Field {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return nil
	}
	sc := span.SpanContext()
	return []zap.Field{
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	}
}
