package bserveapp

import (
	"context"
	"time"

	"github.com/advdv/bserve"
)

// maxReadHeaderTimeout caps how long a client may take to send the request head.
const maxReadHeaderTimeout = 5 * time.Second

// ServerTimeouts returns the http.Server timeouts derived from the request timeout. A
// non-positive timeout only bounds the request head.
func ServerTimeouts(timeout time.Duration) (readHeaderTimeout, readTimeout, writeTimeout, idleTimeout time.Duration) {
	if timeout <= 0 {
		return maxReadHeaderTimeout, 0, 0, 0
	}

	readHeaderTimeout = min(timeout, maxReadHeaderTimeout)
	readTimeout = timeout

	// streaming bodies are produced after the handler returned, leave them the same budget again
	writeTimeout = 2 * timeout
	idleTimeout = 2 * timeout

	return
}

// WithRequestTimeout returns middleware that bounds the handler chain by d. The deadline
// covers the handler only; a streaming producer that keeps the handler's context will see
// it cancelled once the handler returned.
func WithRequestTimeout(d time.Duration) bserve.Middleware {
	return func(next bserve.Handler) bserve.Handler {
		if d <= 0 {
			return next
		}

		return bserve.HandlerFunc(func(ctx context.Context, r *bserve.Request) (*bserve.Response, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()

			return next.ServeRequest(ctx, r)
		})
	}
}

// RequestDeadline returns the context deadline for the current request.
// Returns the zero time and false if no deadline is set.
func RequestDeadline(ctx context.Context) (time.Time, bool) {
	return ctx.Deadline()
}

// RequestRemainingTime returns the duration until the request context deadline.
// Returns 0 if no deadline is set or if the deadline has passed.
func RequestRemainingTime(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0
	}

	return max(time.Until(deadline), 0)
}
