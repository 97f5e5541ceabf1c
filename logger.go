package bserve

import (
	"log"
	"sync/atomic"
	"testing"
)

// Logger can be implemented to get informed about important states.
type Logger interface {
	LogUnhandledServeError(err error)
	LogImplicitFlushError(err error)
	LogRouteNotFound(err error)

	// LogAbandonedStream reports a stream writer that was released before its producer ended
	// it. This is a programming error in the producer; implementations may treat it as fatal
	// in development builds.
	LogAbandonedStream(err error)
}

type stdLogger struct{ *log.Logger }

func (l stdLogger) LogUnhandledServeError(err error) {
	l.logger().Printf("bserve: unhandled server error: %s", err)
}

func (l stdLogger) LogImplicitFlushError(err error) {
	l.logger().Printf("bserve: error while flushing implicitly: %s", err)
}

func (l stdLogger) LogRouteNotFound(error) {}

func (l stdLogger) LogAbandonedStream(err error) {
	l.logger().Printf("bserve: stream writer abandoned: %s", err)
}

func (l stdLogger) logger() *log.Logger {
	if l.Logger == nil {
		return log.Default()
	}

	return l.Logger
}

func NewStdLogger(l *log.Logger) Logger {
	return stdLogger{l}
}

type TestLogger struct {
	tb testing.TB

	NumLogUnhandledServeError int64
	NumLogImplicitFlushError  int64
	NumLogRouteNotFound       int64
	NumLogAbandonedStream     int64
}

func NewTestLogger(tb testing.TB) *TestLogger {
	return &TestLogger{tb: tb}
}

func (l *TestLogger) LogUnhandledServeError(err error) {
	atomic.AddInt64(&l.NumLogUnhandledServeError, 1)
	l.tb.Logf("bserve: unhandled server error: %s", err)
}

func (l *TestLogger) LogImplicitFlushError(err error) {
	atomic.AddInt64(&l.NumLogImplicitFlushError, 1)
	l.tb.Logf("bserve: error while flushing implicitly: %s", err)
}

func (l *TestLogger) LogRouteNotFound(err error) {
	atomic.AddInt64(&l.NumLogRouteNotFound, 1)
	l.tb.Logf("bserve: route not found: %s", err)
}

func (l *TestLogger) LogAbandonedStream(err error) {
	atomic.AddInt64(&l.NumLogAbandonedStream, 1)
	l.tb.Logf("bserve: stream writer abandoned: %s", err)
}

var _ Logger = &TestLogger{}
