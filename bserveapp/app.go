package bserveapp

import (
	"context"
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// App wraps an fx.App for lifecycle management.
type App struct {
	app *fx.App
}

// AppConfig holds configuration for the app.
type AppConfig struct {
	ServerConfig
	FxOptions []fx.Option
}

// Option configures the App.
type Option func(*AppConfig)

// WithFx adds fx options for dependency injection.
func WithFx(fxOpts ...fx.Option) Option {
	return func(c *AppConfig) {
		c.FxOptions = append(c.FxOptions, fxOpts...)
	}
}

// WithHealthHandler sets a custom health check handler.
// If not set, a default handler returning 200 OK is used.
func WithHealthHandler(h func(http.ResponseWriter, *http.Request)) Option {
	return func(c *AppConfig) {
		c.HealthHandler = h
	}
}

// FxOptions returns the options that make up the application's DI graph. The routing function
// is invoked after the server registered its middleware, it can request any provided type.
func FxOptions[E Environment](routing any, opts ...Option) []fx.Option {
	var cfg AppConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	return append([]fx.Option{
		fx.NopLogger,
		fx.Provide(ParseEnv[E]()),
		fx.Provide(func(e E) Environment { return e }),
		fx.Provide(func(e Environment) (*zap.Logger, error) { return NewLogger(e) }),
		fx.Provide(NewMetrics),
		fx.Provide(NewMux),
		fx.Provide(NewTracerProvider),
		fx.Provide(NewPropagator),
		fx.Provide(NewHTTPTransport),
		fx.Supply(cfg.ServerConfig),
		fx.Provide(NewServer),
		fx.Provide(NewRuntime[E]),
		fx.Invoke(startServerHook),
		fx.Invoke(routing),
	}, cfg.FxOptions...)
}

// NewApp creates a batteries-included app with dependency injection.
//
// Example:
//
//	bserveapp.NewApp[Env](func(m *bserveapp.Mux, h *Handlers) {
//	    m.HandleFunc("GET /items", h.ListItems)
//	    m.HandleFunc("GET /items/{id}", h.GetItem, "get-item")
//	},
//	    bserveapp.WithFx(fx.Provide(NewHandlers)),
//	).Run()
func NewApp[E Environment](routing any, opts ...Option) *App {
	return &App{app: fx.New(FxOptions[E](routing, opts...)...)}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() {
	a.app.Run()
}

// Start starts the application and blocks until ctx is done, after which it is stopped.
func (a *App) Start(ctx context.Context) error {
	if err := a.app.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.app.StopTimeout())
	defer cancel()

	return a.app.Stop(stopCtx)
}
