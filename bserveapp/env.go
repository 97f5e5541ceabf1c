package bserveapp

import (
	"time"

	intervals "github.com/MawKKe/integer-interval-expressions-go"
	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap/zapcore"
)

// Transport selects the server that accepts connections.
type Transport string

const (
	// TransportStd serves with the standard library http.Server.
	TransportStd Transport = "std"
	// TransportH1 serves with the h1 connection loop.
	TransportH1 Transport = "h1"
)

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Transport) UnmarshalText(b []byte) error {
	switch v := Transport(b); v {
	case TransportStd, TransportH1:
		*t = v
		return nil
	default:
		return errors.Newf("unsupported transport %q (supported: std, h1)", string(b))
	}
}

// StatusCodes is a set of status codes written as an interval expression such as
// "500-599" or "404,500-599".
type StatusCodes struct {
	src   string
	match func(int) bool
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *StatusCodes) UnmarshalText(b []byte) error {
	expr, err := intervals.ParseExpression(string(b))
	if err != nil {
		return errors.Wrapf(err, "parse status codes %q", string(b))
	}

	s.src, s.match = string(b), expr.Matches

	return nil
}

// Contains reports whether status is in the set. An unset value contains nothing.
func (s StatusCodes) Contains(status int) bool {
	if s.match == nil {
		return false
	}

	return s.match(status)
}

func (s StatusCodes) String() string { return s.src }

// Environment defines the interface that all environment configurations must implement.
// Embed BaseEnvironment in your struct to satisfy this interface.
type Environment interface {
	port() int
	serviceName() string
	serverName() string
	readinessCheckPath() string
	logLevel() zapcore.Level
	otelExporter() string
	transport() Transport
	caseInsensitive() bool
	errorStatusCodes() StatusCodes
	metricsPath() string
	routesPath() string
	maxConns() int
	requestTimeout() time.Duration
}

// BaseEnvironment contains the environment variables every application reads.
// Embed this in your custom environment struct.
type BaseEnvironment struct {
	Port               int           `env:"BS_PORT,required"`
	ServiceName        string        `env:"BS_SERVICE_NAME,required"`
	ServerName         string        `env:"BS_SERVER_NAME"`
	ReadinessCheckPath string        `env:"BS_READINESS_CHECK_PATH" envDefault:"/healthz"`
	LogLevel           zapcore.Level `env:"BS_LOG_LEVEL" envDefault:"info"`
	OtelExporter       string        `env:"BS_OTEL_EXPORTER" envDefault:"stdout"`
	Transport          Transport     `env:"BS_TRANSPORT" envDefault:"std"`
	CaseInsensitive    bool          `env:"BS_CASE_INSENSITIVE"`
	// ErrorStatusCodes selects the response statuses that are logged at error level and
	// counted as failed responses.
	ErrorStatusCodes StatusCodes   `env:"BS_ERROR_STATUS_CODES" envDefault:"500-599"`
	MetricsPath      string        `env:"BS_METRICS_PATH" envDefault:"/metrics"`
	RoutesPath       string        `env:"BS_ROUTES_PATH"`
	MaxConns         int           `env:"BS_MAX_CONNS"`
	RequestTimeout   time.Duration `env:"BS_REQUEST_TIMEOUT" envDefault:"30s"`
}

func (e BaseEnvironment) port() int                     { return e.Port }
func (e BaseEnvironment) serviceName() string           { return e.ServiceName }
func (e BaseEnvironment) serverName() string            { return e.ServerName }
func (e BaseEnvironment) readinessCheckPath() string    { return e.ReadinessCheckPath }
func (e BaseEnvironment) logLevel() zapcore.Level       { return e.LogLevel }
func (e BaseEnvironment) otelExporter() string          { return e.OtelExporter }
func (e BaseEnvironment) transport() Transport          { return e.Transport }
func (e BaseEnvironment) caseInsensitive() bool         { return e.CaseInsensitive }
func (e BaseEnvironment) errorStatusCodes() StatusCodes { return e.ErrorStatusCodes }
func (e BaseEnvironment) metricsPath() string           { return e.MetricsPath }
func (e BaseEnvironment) routesPath() string            { return e.RoutesPath }
func (e BaseEnvironment) maxConns() int                 { return e.MaxConns }
func (e BaseEnvironment) requestTimeout() time.Duration { return e.RequestTimeout }

var _ Environment = BaseEnvironment{}

// ParseEnv parses environment variables into the given Environment type.
func ParseEnv[E Environment]() func() (E, error) {
	return func() (e E, err error) {
		if err := env.Parse(&e); err != nil {
			return e, errors.Wrap(err, "failed to parse environment")
		}
		return e, nil
	}
}
