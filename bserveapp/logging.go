package bserveapp

import (
	"github.com/advdv/bserve"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a zap logger configured from the environment.
// BS_LOG_LEVEL controls the level (debug, info, warn, error).
func NewLogger(env Environment) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(env.logLevel())
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build(zap.Fields(zap.String("service", env.serviceName())))
}

type zapLogger struct {
	*zap.Logger
	metrics *Metrics
}

func (l zapLogger) LogUnhandledServeError(err error) {
	l.Logger.Error("unhandled server error", zap.Error(err))
}

func (l zapLogger) LogImplicitFlushError(err error) {
	l.Logger.Error("error while flushing implicitly", zap.Error(err))
}

func (l zapLogger) LogRouteNotFound(err error) {
	l.Logger.Debug("route not found", zap.Error(err))
}

// LogAbandonedStream panics in development loggers.
func (l zapLogger) LogAbandonedStream(err error) {
	if l.metrics != nil {
		l.metrics.abandonedStreams.Inc()
	}

	l.Logger.DPanic("stream writer abandoned before completion", zap.Error(err))
}

func newZapBServeLogger(l *zap.Logger, m *Metrics) bserve.Logger {
	return zapLogger{l.Named("bserve"), m}
}
