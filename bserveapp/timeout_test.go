package bserveapp_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/advdv/bserve"
	"github.com/advdv/bserve/bserveapp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerTimeouts(t *testing.T) {
	rh, r, w, idle := bserveapp.ServerTimeouts(30 * time.Second)
	assert.Equal(t, 5*time.Second, rh)
	assert.Equal(t, 30*time.Second, r)
	assert.Equal(t, 60*time.Second, w)
	assert.Equal(t, 60*time.Second, idle)

	rh, _, _, _ = bserveapp.ServerTimeouts(2 * time.Second)
	assert.Equal(t, 2*time.Second, rh)

	rh, r, w, idle = bserveapp.ServerTimeouts(0)
	assert.Equal(t, 5*time.Second, rh)
	assert.Zero(t, r)
	assert.Zero(t, w)
	assert.Zero(t, idle)
}

func TestWithRequestTimeout(t *testing.T) {
	var remaining time.Duration
	var hasDeadline bool
	h := bserve.HandlerFunc(func(ctx context.Context, _ *bserve.Request) (*bserve.Response, error) {
		_, hasDeadline = bserveapp.RequestDeadline(ctx)
		remaining = bserveapp.RequestRemainingTime(ctx)
		return bserve.NoContent(), nil
	})

	req := bserve.NewRequest(httptest.NewRequest(http.MethodGet, "/", nil))

	_, err := bserveapp.WithRequestTimeout(time.Minute)(h).ServeRequest(t.Context(), req)
	require.NoError(t, err)
	assert.True(t, hasDeadline)
	assert.InDelta(t, time.Minute, remaining, float64(5*time.Second))

	_, err = bserveapp.WithRequestTimeout(0)(h).ServeRequest(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, hasDeadline)
	assert.Zero(t, remaining)
}

func TestRequestRemainingTimePassed(t *testing.T) {
	ctx, cancel := context.WithDeadline(t.Context(), time.Now().Add(-time.Second))
	defer cancel()

	assert.Zero(t, bserveapp.RequestRemainingTime(ctx))
}
