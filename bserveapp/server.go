package bserveapp

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/advdv/bserve"
	"github.com/advdv/bserve/h1"
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ServerConfig holds optional configuration for the HTTP server.
type ServerConfig struct {
	HealthHandler func(http.ResponseWriter, *http.Request)
}

// ServerParams holds the dependencies for creating an HTTP server.
type ServerParams struct {
	fx.In

	Env        Environment
	Mux        *Mux
	Logger     *zap.Logger
	Metrics    *Metrics
	TracerProv trace.TracerProvider
	Propagator propagation.TextMapPropagator
}

// Server accepts connections with the configured transport and hands requests to the mux.
type Server struct {
	addr   string
	logger *zap.Logger

	std *http.Server
	h1  *h1.Server

	mu     sync.Mutex
	ln     net.Listener
	served chan error
}

// NewServer creates a server with all middleware and the built-in endpoints registered.
func NewServer(params ServerParams, cfg ServerConfig) *Server {
	env, mux := params.Env, params.Mux
	healthPath := env.readinessCheckPath()

	mux.Use(withRequestDep(&requestDep{logger: params.Logger}))
	if env.transport() == TransportH1 {
		mux.Use(withServerSpan(params.TracerProv, params.Propagator, healthPath))
	} else {
		mux.Use(withRouteSpanName())
	}

	mux.Use(withObservation(params.Metrics, env.errorStatusCodes()))
	mux.Use(WithRequestTimeout(env.requestTimeout()))

	healthHandler := cfg.HealthHandler
	if healthHandler == nil {
		healthHandler = defaultHealthHandler
	}

	mux.HandleStd("GET "+healthPath, http.HandlerFunc(healthHandler))
	if env.metricsPath() != "" {
		mux.HandleStd("GET "+env.metricsPath(), params.Metrics.Handler())
	}

	if env.routesPath() != "" {
		mux.HandleFunc("GET "+env.routesPath(), routesHandler(mux))
	}

	srv := &Server{
		addr:   fmt.Sprintf(":%d", env.port()),
		logger: params.Logger,
	}

	switch env.transport() {
	case TransportH1:
		_, _, _, idleTimeout := ServerTimeouts(env.requestTimeout())
		srv.h1 = &h1.Server{
			Handler:     mux,
			Logger:      params.Logger.Named("h1"),
			IdleTimeout: idleTimeout,
			MaxConns:    env.maxConns(),
		}
	default:
		readHeaderTimeout, readTimeout, writeTimeout, idleTimeout := ServerTimeouts(env.requestTimeout())
		srv.std = &http.Server{
			Handler:           withStdTracing(params.TracerProv, params.Propagator, env.serviceName(), healthPath)(mux),
			ReadHeaderTimeout: readHeaderTimeout,
			ReadTimeout:       readTimeout,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       idleTimeout,
		}
	}

	return srv
}

// Addr returns the address the server listens on, or the configured address before it started.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ln != nil {
		return s.ln.Addr().String()
	}

	return s.addr
}

// Start listens on the configured port and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	ln, err := new(net.ListenConfig).Listen(ctx, "tcp", s.addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", s.addr)
	}

	s.mu.Lock()
	s.ln, s.served = ln, make(chan error, 1)
	s.mu.Unlock()

	s.logger.Info("starting server", zap.String("addr", ln.Addr().String()), zap.Bool("h1", s.h1 != nil))

	go func() {
		var err error
		if s.h1 != nil {
			// the connection loop must outlive the start context
			err = s.h1.Serve(context.WithoutCancel(ctx), ln)
		} else {
			err = s.std.Serve(ln)
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, h1.ErrServerClosed) {
			s.logger.Error("server error", zap.Error(err))
		}

		s.served <- err
	}()

	return nil
}

// Stop gracefully shuts the server down, in-flight requests are given until ctx is done.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping server")

	var err error
	if s.h1 != nil {
		err = s.h1.Shutdown(ctx)
	} else {
		err = s.std.Shutdown(ctx)
	}

	s.mu.Lock()
	served := s.served
	s.mu.Unlock()

	if served != nil {
		select {
		case <-served:
		case <-ctx.Done():
			err = errors.CombineErrors(err, ctx.Err())
		}
	}

	return err
}

// startServerHook registers lifecycle hooks for the server.
func startServerHook(lc fx.Lifecycle, server *Server) {
	lc.Append(fx.Hook{
		OnStart: server.Start,
		OnStop:  server.Stop,
	})
}

func defaultHealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

type routeInfo struct {
	Method      string `json:"method"`
	Pattern     string `json:"pattern"`
	Name        string `json:"name,omitempty"`
	Synthesized bool   `json:"synthesized,omitempty"`
}

// routesHandler lists the routes the mux dispatches to.
func routesHandler(mux *Mux) bserve.HandlerFunc {
	return func(context.Context, *bserve.Request) (*bserve.Response, error) {
		infos := lo.Map(mux.Routes(), func(cr *bserve.CachedRoute, _ int) routeInfo {
			return routeInfo{
				Method:      cr.Method,
				Pattern:     cr.PathString(),
				Name:        cr.Name,
				Synthesized: cr.Synthesized,
			}
		})

		b, err := json.Marshal(infos)
		if err != nil {
			return nil, errors.Wrap(err, "marshal routes")
		}

		res := bserve.NewResponse(http.StatusOK, bserve.FixedBody(b))
		res.Header.Set("Content-Type", "application/json")

		return res, nil
	}
}
