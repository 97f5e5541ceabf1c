package bserveapp

import (
	"time"

	"go.uber.org/zap/zapcore"
)

type testEnv struct {
	level   zapcore.Level
	otelExp string
	tport   Transport
}

func (e testEnv) port() int                     { return 0 }
func (e testEnv) serviceName() string           { return "test" }
func (e testEnv) serverName() string            { return "bserve-test" }
func (e testEnv) readinessCheckPath() string    { return "/health" }
func (e testEnv) logLevel() zapcore.Level       { return e.level }
func (e testEnv) otelExporter() string          { return e.otelExp }
func (e testEnv) transport() Transport          { return e.tport }
func (e testEnv) caseInsensitive() bool         { return false }
func (e testEnv) errorStatusCodes() StatusCodes { return StatusCodes{} }
func (e testEnv) metricsPath() string           { return "/metrics" }
func (e testEnv) routesPath() string            { return "" }
func (e testEnv) maxConns() int                 { return 0 }
func (e testEnv) requestTimeout() time.Duration { return time.Second }
