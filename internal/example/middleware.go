// Package example implements example middleware in an outside package.
package example

import (
	"context"

	"github.com/advdv/bserve"
	"go.uber.org/zap"
)

// ctxKey type scopes middleware values.
type ctxKey string

// Middleware provides an example for middleware that adds a logger to the context.
func Middleware(logs *zap.Logger) bserve.Middleware {
	return func(n bserve.Handler) bserve.Handler {
		return bserve.HandlerFunc(func(c context.Context, r *bserve.Request) (*bserve.Response, error) {
			logs := logs.With(zap.String("method", r.Method), zap.String("path", r.Path()))
			c = context.WithValue(c, ctxKey("zap"), logs)

			return n.ServeRequest(c, r)
		})
	}
}

func Log(ctx context.Context) *zap.Logger {
	v, _ := ctx.Value(ctxKey("zap")).(*zap.Logger)

	return v
}
