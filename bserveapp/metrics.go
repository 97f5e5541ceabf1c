package bserveapp

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/advdv/bserve"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Metrics are the Prometheus collectors of an application. They are registered on their own
// registry so that tests and multiple apps in one process do not collide.
type Metrics struct {
	registry *prometheus.Registry

	requests         *prometheus.CounterVec
	duration         *prometheus.HistogramVec
	failedResponses  *prometheus.CounterVec
	abandonedStreams prometheus.Counter
}

// NewMetrics creates the collectors on a fresh registry.
func NewMetrics(env Environment) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)
	constLabels := prometheus.Labels{"service": env.serviceName()}

	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   "bserve",
				Subsystem:   "dispatch",
				Name:        "requests_total",
				Help:        "Total number of dispatched requests by method, route and status",
				ConstLabels: constLabels,
			},
			[]string{"method", "route", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   "bserve",
				Subsystem:   "dispatch",
				Name:        "handler_duration_seconds",
				Help:        "Time spent in the handler chain until a response or error was returned",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: constLabels,
			},
			[]string{"method", "route"},
		),
		failedResponses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   "bserve",
				Subsystem:   "dispatch",
				Name:        "failed_responses_total",
				Help:        "Total number of responses with a status configured as failure",
				ConstLabels: constLabels,
			},
			[]string{"status"},
		),
		abandonedStreams: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace:   "bserve",
				Subsystem:   "encoder",
				Name:        "abandoned_streams_total",
				Help:        "Total number of streaming bodies whose producer never completed",
				ConstLabels: constLabels,
			},
		),
	}
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// withObservation records metrics for every dispatched request and logs responses whose
// status is configured as failure. The route label is the matched pattern so cardinality
// stays bounded.
func withObservation(m *Metrics, failures StatusCodes) bserve.Middleware {
	return func(next bserve.Handler) bserve.Handler {
		return bserve.HandlerFunc(func(ctx context.Context, r *bserve.Request) (*bserve.Response, error) {
			start := time.Now()
			res, err := next.ServeRequest(ctx, r)

			route := "unmatched"
			if rt := r.Route(); rt != nil {
				route = rt.PathString()
			}

			status := statusOf(res, err)
			m.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
			m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()

			if failures.Contains(status) {
				m.failedResponses.WithLabelValues(strconv.Itoa(status)).Inc()
				Log(ctx).Error("request failed",
					zap.String("method", r.Method),
					zap.String("route", route),
					zap.Int("status", status),
					zap.Error(err))
			}

			return res, err
		})
	}
}

// statusOf returns the status the client will receive for the handler outcome.
func statusOf(res *bserve.Response, err error) int {
	if err != nil {
		if code := bserve.CodeOf(err); code >= 400 && code <= 599 {
			return int(code)
		}

		return http.StatusInternalServerError
	}

	if res == nil {
		return http.StatusOK
	}

	return res.Status
}
