package bserveapptest

import (
	"strconv"
	"testing"
)

// Env provides a chainable builder for setting [bserveapp.BaseEnvironment] env vars via
// t.Setenv. Create one with [SetBaseEnv].
type Env struct {
	t testing.TB
}

// SetBaseEnv sets all [bserveapp.BaseEnvironment] env vars to test defaults. Port is
// required because each test must use a unique port to avoid collisions.
//
// Defaults:
//   - BS_SERVICE_NAME: "test"
//   - BS_SERVER_NAME: "bserve-test"
//   - BS_READINESS_CHECK_PATH: "/health"
//   - BS_OTEL_EXPORTER: "none"
//   - BS_TRANSPORT: "std"
//   - BS_ERROR_STATUS_CODES: "500-599"
//   - BS_ROUTES_PATH: "/_routes"
//   - BS_REQUEST_TIMEOUT: "5s"
func SetBaseEnv(t testing.TB, port int) *Env {
	t.Helper()
	t.Setenv("BS_PORT", strconv.Itoa(port))
	t.Setenv("BS_SERVICE_NAME", "test")
	t.Setenv("BS_SERVER_NAME", "bserve-test")
	t.Setenv("BS_READINESS_CHECK_PATH", "/health")
	t.Setenv("BS_OTEL_EXPORTER", "none")
	t.Setenv("BS_TRANSPORT", "std")
	t.Setenv("BS_ERROR_STATUS_CODES", "500-599")
	t.Setenv("BS_ROUTES_PATH", "/_routes")
	t.Setenv("BS_REQUEST_TIMEOUT", "5s")
	return &Env{t: t}
}

// ServiceName overrides BS_SERVICE_NAME.
func (e *Env) ServiceName(name string) *Env {
	e.t.Helper()
	e.t.Setenv("BS_SERVICE_NAME", name)
	return e
}

// ReadinessCheckPath overrides BS_READINESS_CHECK_PATH.
func (e *Env) ReadinessCheckPath(path string) *Env {
	e.t.Helper()
	e.t.Setenv("BS_READINESS_CHECK_PATH", path)
	return e
}

// Transport overrides BS_TRANSPORT.
func (e *Env) Transport(name string) *Env {
	e.t.Helper()
	e.t.Setenv("BS_TRANSPORT", name)
	return e
}

// ErrorStatusCodes overrides BS_ERROR_STATUS_CODES.
func (e *Env) ErrorStatusCodes(expr string) *Env {
	e.t.Helper()
	e.t.Setenv("BS_ERROR_STATUS_CODES", expr)
	return e
}

// CaseInsensitive sets BS_CASE_INSENSITIVE.
func (e *Env) CaseInsensitive() *Env {
	e.t.Helper()
	e.t.Setenv("BS_CASE_INSENSITIVE", "true")
	return e
}
