package bserve_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/advdv/bserve"
	"github.com/advdv/bserve/internal/example"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestWrapWithoutMiddleware(t *testing.T) {
	hdlr1 := bserve.HandlerFunc(func(context.Context, *bserve.Request) (*bserve.Response, error) {
		return nil, nil
	})

	hdlr2 := bserve.Wrap(hdlr1)
	assert.Equal(t, fmt.Sprint(hdlr1), fmt.Sprint(hdlr2)) // compare addrs
}

func TestWrapOrder(t *testing.T) {
	var res string
	inner := bserve.HandlerFunc(func(ctx context.Context, _ *bserve.Request) (*bserve.Response, error) {
		res += fmt.Sprintf("inner %v", ctx.Value(ctxKey("foo")))
		require.NotNil(t, example.Log(ctx))

		return nil, errors.New("inner error")
	})

	trace := func(name string) bserve.Middleware {
		return func(next bserve.Handler) bserve.Handler {
			return bserve.HandlerFunc(func(ctx context.Context, r *bserve.Request) (*bserve.Response, error) {
				res += name + "("
				resp, err := next.ServeRequest(ctx, r)
				res += ")" + name

				return resp, fmt.Errorf("%s(%w)", name, err)
			})
		}
	}

	withValue := func(next bserve.Handler) bserve.Handler {
		return bserve.HandlerFunc(func(ctx context.Context, r *bserve.Request) (*bserve.Response, error) {
			return next.ServeRequest(context.WithValue(ctx, ctxKey("foo"), "bar"), r)
		})
	}

	h := bserve.Wrap(inner, example.Middleware(zaptest.NewLogger(t)), trace("3"), withValue, trace("2"), trace("1"))

	req := bserve.NewRequest(httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := h.ServeRequest(t.Context(), req)

	assert.Equal(t, "3(2(1(inner bar)1)2)3", res)
	require.EqualError(t, err, "3(2(1(inner error)))")
}

func TestRecovererTurnsPanicIntoResponse(t *testing.T) {
	mux := bserve.NewServeMuxWith(bserve.NewTestLogger(t), bserve.NewEncoder(nil, "", nil), bserve.NewReverser())
	mux.Use(Errorer(), Recoverer())
	mux.HandleFunc("GET /", func(context.Context, *bserve.Request) (*bserve.Response, error) {
		panic("some panic")
	})

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "recovered: some panic", rec.Body.String())
}

// Errorer middleware turns any error into a server error response.
func Errorer() bserve.Middleware {
	return func(next bserve.Handler) bserve.Handler {
		return bserve.HandlerFunc(func(ctx context.Context, r *bserve.Request) (*bserve.Response, error) {
			res, err := next.ServeRequest(ctx, r)
			if err != nil {
				return bserve.Text(http.StatusInternalServerError, err.Error()), nil
			}

			return res, nil
		})
	}
}

// Recoverer middleware. It will recover any panics and turn it into an error.
func Recoverer() bserve.Middleware {
	return func(next bserve.Handler) bserve.Handler {
		return bserve.HandlerFunc(func(ctx context.Context, r *bserve.Request) (res *bserve.Response, err error) {
			defer func() {
				if e := recover(); e != nil {
					err = fmt.Errorf("recovered: %v", e)
				}
			}()

			return next.ServeRequest(ctx, r)
		})
	}
}
