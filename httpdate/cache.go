// Package httpdate keeps the current time formatted for the HTTP Date header.
//
// Formatting a timestamp for every response is wasteful since the value only changes once a
// second. A Cache holds the formatted string and is refreshed out-of-band by Run, so that
// readers only perform an atomic load.
package httpdate

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Cache holds the current time as an RFC1123 (GMT) string.
type Cache struct {
	now func() time.Time
	val atomic.Pointer[string]
}

// New inits a cache that is immediately populated. The now function is used as the time
// source; when nil, time.Now is used.
func New(now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}

	c := &Cache{now: now}
	c.Refresh()

	return c
}

// Current returns the cached timestamp.
func (c *Cache) Current() string {
	return *c.val.Load()
}

// Refresh formats the current time and stores it.
func (c *Cache) Refresh() {
	s := c.now().UTC().Format(http.TimeFormat)
	c.val.Store(&s)
}

// Run refreshes the cache every interval until the context is done.
func (c *Cache) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Refresh()
		}
	}
}

var (
	defaultCache     *Cache
	defaultCacheOnce sync.Once
)

// Default returns the process-wide cache. The first call starts a goroutine that refreshes it
// every second for the remainder of the process.
func Default() *Cache {
	defaultCacheOnce.Do(func() {
		defaultCache = New(nil)
		go defaultCache.Run(context.Background(), time.Second)
	})

	return defaultCache
}
