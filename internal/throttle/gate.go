// Package throttle bounds request volume per identifier over a rolling daily
// window.
//
// This is the conversational quota (N answers per visitor per day), distinct
// from the per-IP burst limiter in the HTTP layer: a denial here is terminal
// for the request and is never retried.
package throttle

import (
	"sync"
	"time"
)

// DefaultWindow is the quota window length.
const DefaultWindow = 24 * time.Hour

// entry tracks one identifier's usage inside the current window.
type entry struct {
	count     int
	resetTime time.Time
}

// Config holds Gate construction parameters. Zero values select defaults.
type Config struct {
	// Limit is the number of allowed requests per window. Default: 10.
	Limit int

	// Window is the quota window length. Default: 24 hours.
	Window time.Duration

	// Clock returns the current time. Injected for tests. Default: time.Now.
	Clock func() time.Time
}

// Gate is a fixed-window counter keyed by identifier. State is process-local
// and resets on restart. Safe for concurrent use.
type Gate struct {
	mu      sync.Mutex
	entries map[string]*entry

	limit  int
	window time.Duration
	clock  func() time.Time
}

// New creates a throttle gate.
func New(cfg Config) *Gate {
	limit := cfg.Limit
	if limit <= 0 {
		limit = 10
	}
	window := cfg.Window
	if window <= 0 {
		window = DefaultWindow
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Gate{
		entries: make(map[string]*entry),
		limit:   limit,
		window:  window,
		clock:   clock,
	}
}

// Allow reports whether a request from identifier is within quota, counting
// it if so. The first request in a window records count=1 and schedules the
// reset one window later; a denied request is not counted.
func (g *Gate) Allow(identifier string) bool {
	now := g.clock()

	g.mu.Lock()
	defer g.mu.Unlock()

	e, ok := g.entries[identifier]
	if !ok || !now.Before(e.resetTime) {
		g.entries[identifier] = &entry{count: 1, resetTime: now.Add(g.window)}
		return true
	}

	if e.count < g.limit {
		e.count++
		return true
	}
	return false
}

// Remaining returns the number of requests identifier may still make in the
// current window, clamped at 0. An expired window reports the full limit
// without mutating stored state.
func (g *Gate) Remaining(identifier string) int {
	now := g.clock()

	g.mu.Lock()
	defer g.mu.Unlock()

	e, ok := g.entries[identifier]
	if !ok || !now.Before(e.resetTime) {
		return g.limit
	}
	if left := g.limit - e.count; left > 0 {
		return left
	}
	return 0
}
