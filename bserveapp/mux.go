package bserveapp

import (
	"github.com/advdv/bserve"
	"go.uber.org/zap"
)

// Mux is an alias for bserve.ServeMux.
type Mux = bserve.ServeMux

// NewMux creates the application's mux. Serve errors and abandoned streams are reported
// through the application logger.
func NewMux(env Environment, logger *zap.Logger, metrics *Metrics) *Mux {
	logs := newZapBServeLogger(logger, metrics)

	var opts []bserve.BuildOption
	if env.caseInsensitive() {
		opts = append(opts, bserve.CaseInsensitive())
	}

	return bserve.NewServeMuxWith(
		logs,
		bserve.NewEncoder(nil, env.serverName(), logs),
		bserve.NewReverser(),
		opts...,
	)
}
