// Package bserveapptest provides test helpers for bserveapp applications.
//
// It constructs the identical DI graph as [bserveapp.NewApp] but uses [fxtest.App] which
// fails the test immediately on DI errors.
//
// Example:
//
//	bserveapptest.SetBaseEnv(t, 18081)
//	app := bserveapptest.New[TestEnv](t, routing)
//	app.RequireStart()
//	t.Cleanup(app.RequireStop)
package bserveapptest

import (
	"testing"

	"github.com/advdv/bserve/bserveapp"
	"go.uber.org/fx/fxtest"
)

// App embeds *fxtest.App for testing bserveapp applications.
type App struct {
	*fxtest.App
}

// New creates a test app with the same DI graph as [bserveapp.NewApp].
func New[E bserveapp.Environment](t testing.TB, routing any, opts ...bserveapp.Option) *App {
	return &App{App: fxtest.New(t, bserveapp.FxOptions[E](routing, opts...)...)}
}
