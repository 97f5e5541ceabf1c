package bserve_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/advdv/bserve"
	"github.com/cockroachdb/errors"
)

func Example() {
	mux := bserve.NewServeMux()

	mux.HandleFunc("GET /items/{id}", func(ctx context.Context, r *bserve.Request) (*bserve.Response, error) {
		body, err := json.Marshal(map[string]string{
			"id":   r.Param("id"),
			"name": "Example Item",
		})
		if err != nil {
			return nil, err
		}

		res := bserve.NewResponse(http.StatusOK, bserve.FixedBody(body))
		res.Header.Set("Content-Type", "application/json")

		return res, nil
	}, "get-item")

	// Generate URL by route name
	url, _ := mux.Reverse("get-item", "123")
	fmt.Println("URL:", url)

	// Test the handler
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/items/42", nil)
	mux.ServeHTTP(rec, req)

	fmt.Println("Status:", rec.Code)
	fmt.Println("Body:", rec.Body.String())
	// Output:
	// URL: /items/123
	// Status: 200
	// Body: {"id":"42","name":"Example Item"}
}

func ExampleNewError() {
	mux := bserve.NewServeMux()

	mux.HandleFunc("GET /protected", func(ctx context.Context, r *bserve.Request) (*bserve.Response, error) {
		token := r.Header.Get("Authorization")
		if token == "" {
			return nil, bserve.NewError(bserve.CodeUnauthorized, errors.New("missing token"))
		}
		if token != "Bearer secret" {
			return nil, bserve.NewError(bserve.CodeForbidden, errors.New("invalid token"))
		}

		return bserve.Text(http.StatusOK, "welcome"), nil
	})

	for _, token := range []string{"", "Bearer wrong", "Bearer secret"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if token != "" {
			req.Header.Set("Authorization", token)
		}

		mux.ServeHTTP(rec, req)
		fmt.Printf("%q: %d\n", token, rec.Code)
	}
	// Output:
	// "": 401
	// "Bearer wrong": 403
	// "Bearer secret": 200
}

func ExampleServeMux_Use() {
	mux := bserve.NewServeMux()

	// Add request ID middleware
	mux.Use(func(next bserve.Handler) bserve.Handler {
		return bserve.HandlerFunc(func(ctx context.Context, r *bserve.Request) (*bserve.Response, error) {
			res, err := next.ServeRequest(ctx, r)
			if err != nil {
				return nil, err
			}

			res.Header.Set("X-Request-ID", "req-123")

			return res, nil
		})
	})

	mux.HandleFunc("GET /ping", func(ctx context.Context, r *bserve.Request) (*bserve.Response, error) {
		return bserve.Text(http.StatusOK, "pong"), nil
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	mux.ServeHTTP(rec, req)

	fmt.Println("Body:", rec.Body.String())
	fmt.Println("Request ID:", rec.Header().Get("X-Request-ID"))
	// Output:
	// Body: pong
	// Request ID: req-123
}

func ExampleStreamBody() {
	mux := bserve.NewServeMux()

	mux.HandleFunc("GET /countdown", func(ctx context.Context, r *bserve.Request) (*bserve.Response, error) {
		const body = "3 2 1 liftoff"

		return bserve.NewResponse(http.StatusOK, bserve.StreamBody(func(w *bserve.StreamWriter) {
			for _, word := range strings.SplitAfter(body, " ") {
				if _, err := w.Write([]byte(word)); err != nil {
					_ = w.Error(err)
					return
				}
			}

			_ = w.End()
		}, int64(len(body)))), nil
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/countdown", nil)
	mux.ServeHTTP(rec, req)

	fmt.Println("Length:", rec.Header().Get("Content-Length"))
	fmt.Println("Body:", rec.Body.String())
	// Output:
	// Length: 13
	// Body: 3 2 1 liftoff
}

func ExampleServeMux_Reverse() {
	mux := bserve.NewServeMux()

	noop := func(ctx context.Context, r *bserve.Request) (*bserve.Response, error) {
		return bserve.NoContent(), nil
	}

	mux.HandleFunc("GET /users/{id}", noop, "get-user")
	mux.HandleFunc("GET /users/{userId}/posts/{postId}", noop, "get-user-post")

	url1, _ := mux.Reverse("get-user", "42")
	url2, _ := mux.Reverse("get-user-post", "42", "7")

	fmt.Println(url1)
	fmt.Println(url2)
	// Output:
	// /users/42
	// /users/42/posts/7
}
