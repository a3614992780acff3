package core

import (
	"sync"
	"sync/atomic"
)

// Lifetime tracks one mounted consumer and the identity of its newest request.
type Lifetime struct {
	mu         sync.Mutex
	unmounted  bool
	generation uint64
}

// NewLifetime returns a mounted lifetime.
func NewLifetime() *Lifetime {
	return &Lifetime{}
}

// Guard issues a guard for a new request, superseding every guard issued before it.
func (l *Lifetime) Guard() *Guard {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.generation++
	g := &Guard{lifetime: l, generation: l.generation}
	if l.unmounted {
		g.revoked.Store(true)
	}
	return g
}

// Unmount ends the lifetime. Every guard it issued becomes inactive.
func (l *Lifetime) Unmount() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.unmounted = true
}

// Mounted reports whether Unmount has not been called yet.
func (l *Lifetime) Mounted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return !l.unmounted
}

func (l *Lifetime) current(generation uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return !l.unmounted && l.generation == generation
}

// Guard is the cancellation token of a single load session.
// Once inactive it stays inactive.
type Guard struct {
	lifetime   *Lifetime
	generation uint64
	revoked    atomic.Bool
}

// IsActive reports whether the owning consumer is still mounted and this
// guard belongs to its newest request.
func (g *Guard) IsActive() bool {
	if g.revoked.Load() {
		return false
	}
	if !g.lifetime.current(g.generation) {
		g.revoked.Store(true)
		return false
	}
	return true
}

// Revoke deactivates the guard.
func (g *Guard) Revoke() {
	g.revoked.Store(true)
}
