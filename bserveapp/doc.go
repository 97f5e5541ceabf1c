// Package bserveapp provides a batteries-included framework for running bserve handlers as a
// service.
//
// # Overview
//
// bserveapp handles the boilerplate of setting up a server: environment parsing, structured
// logging, OpenTelemetry tracing, Prometheus metrics and graceful shutdown. A complete
// application can be created in a single call:
//
//	bserveapp.NewApp[Env](func(m *bserveapp.Mux, h *Handlers) {
//	    m.HandleFunc("GET /items", h.ListItems)
//	    m.HandleFunc("GET /items/{id}", h.GetItem, "get-item")
//	},
//	    bserveapp.WithFx(fx.Provide(NewHandlers)),
//	).Run()
//
// # Environment Configuration
//
// Define your environment by embedding [BaseEnvironment]:
//
//	type Env struct {
//	    bserveapp.BaseEnvironment
//	    MainTableName string `env:"MAIN_TABLE_NAME,required"`
//	}
//
// BaseEnvironment provides the following environment variables:
//
//	| Variable                 | Required | Default  | Description                                      |
//	|--------------------------|----------|----------|--------------------------------------------------|
//	| BS_PORT                  | Yes      | -        | Port the server listens on                       |
//	| BS_SERVICE_NAME          | Yes      | -        | Service name for logging, tracing and metrics    |
//	| BS_SERVER_NAME           | No       | -        | Value of the Server response header              |
//	| BS_READINESS_CHECK_PATH  | No       | /healthz | Health check endpoint path                       |
//	| BS_LOG_LEVEL             | No       | info     | Log level (debug, info, warn, error)             |
//	| BS_OTEL_EXPORTER         | No       | stdout   | Trace exporter: "stdout" or "none"               |
//	| BS_TRANSPORT             | No       | std      | Connection handling: "std" or "h1"               |
//	| BS_CASE_INSENSITIVE      | No       | false    | Match literal path segments case-insensitively   |
//	| BS_ERROR_STATUS_CODES    | No       | 500-599  | Statuses logged and counted as failures          |
//	| BS_METRICS_PATH          | No       | /metrics | Prometheus endpoint, empty disables it           |
//	| BS_ROUTES_PATH           | No       | -        | JSON route listing, empty disables it            |
//	| BS_MAX_CONNS             | No       | 0        | Simultaneous connections for the h1 transport    |
//	| BS_REQUEST_TIMEOUT       | No       | 30s      | Deadline of the handler chain                    |
//
// # Runtime
//
// [Runtime] provides access to app-scoped dependencies and should be injected into handler
// constructors via fx. It provides [Runtime.Env], [Runtime.Reverse] and [Runtime.NewRequest]
// for traced outbound calls.
//
// # Request Context
//
// Handlers retrieve request-scoped values from the context:
//   - [Log] returns a zap logger carrying the trace and span id
//   - [Span] returns the current trace span
//
// # Middleware
//
// The server registers its middleware on the mux before the routing function runs, so the
// routing function can only register routes. Handlers are composed with all middleware once,
// when the first request is served.
package bserveapp
