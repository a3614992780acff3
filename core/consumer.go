package core

import (
	"maps"
	"sync"

	"github.com/huangsam/assetload/internal/contract"
	"github.com/huangsam/assetload/schema"
)

// Consumer is the adapter between one displayed resource and a render target.
// It owns at most one active session and supersedes it when the source changes.
type Consumer struct {
	engine *Engine
	target contract.RenderTarget

	mu       sync.Mutex
	opts     schema.LoadOptions
	lifetime *Lifetime
	session  *Session
	bundled  *schema.Snapshot
}

// NewConsumer creates an unmounted consumer bound to target.
func (e *Engine) NewConsumer(target contract.RenderTarget, opts schema.LoadOptions) *Consumer {
	return &Consumer{engine: e, target: target, opts: opts}
}

// Mount starts loading the current source. Mounting twice is a no-op.
func (c *Consumer) Mount() {
	c.mu.Lock()
	if c.lifetime != nil && c.lifetime.Mounted() {
		c.mu.Unlock()
		return
	}
	c.lifetime = NewLifetime()
	start := c.beginLocked()
	c.mu.Unlock()
	start()
}

// SetSource supplies a new source. A different source supersedes the active
// session; the superseded one resolves as a no-op.
func (c *Consumer) SetSource(src schema.Source) {
	c.mu.Lock()
	if sameSource(c.opts.Source, src) {
		c.mu.Unlock()
		return
	}
	c.opts.Source = src
	old := c.session
	c.session = nil
	c.bundled = nil

	start := func() {}
	if c.lifetime != nil && c.lifetime.Mounted() {
		start = c.beginLocked()
	}
	c.mu.Unlock()

	if old != nil {
		old.Cancel()
	}
	start()
}

// Unmount tears the consumer down. Pending work of its session becomes inert.
func (c *Consumer) Unmount() {
	c.mu.Lock()
	if c.lifetime != nil {
		c.lifetime.Unmount()
	}
	session := c.session
	c.mu.Unlock()

	if session != nil {
		session.Cancel()
	}
}

// Session returns the active session, or nil for bundled sources and before Mount.
func (c *Consumer) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Snapshot returns the state of what the consumer currently displays.
func (c *Consumer) Snapshot() schema.Snapshot {
	c.mu.Lock()
	session, bundled, opts := c.session, c.bundled, c.opts
	c.mu.Unlock()

	switch {
	case bundled != nil:
		return *bundled
	case session != nil:
		return session.Snapshot()
	default:
		return schema.Snapshot{Request: opts.Request(), State: schema.IdleState}
	}
}

// View returns the layers the consumer currently shows.
func (c *Consumer) View() schema.View {
	c.mu.Lock()
	opts := c.opts
	c.mu.Unlock()
	return Render(c.Snapshot(), opts)
}

// beginLocked prepares the work for the current source and returns the
// function that starts it once the lock is released.
func (c *Consumer) beginLocked() func() {
	guard := c.lifetime.Guard()

	if c.opts.Source.IsBundled() {
		snap := schema.Snapshot{
			Request:     c.opts.Request(),
			State:       schema.LoadedState,
			ResolvedURI: c.opts.Source.Bundled,
			LoadedAt:    c.engine.clock.Now(),
		}
		c.bundled = &snap
		onLoad := c.opts.OnLoad
		return func() {
			if onLoad != nil && guard.IsActive() {
				onLoad(schema.LoadEvent{Key: snap.ResolvedURI, ResolvedURI: snap.ResolvedURI})
			}
		}
	}

	session := newSession(c.engine, c.target, c.opts, guard)
	c.session = session
	return session.Start
}

func sameSource(a, b schema.Source) bool {
	return a.URI == b.URI && a.Bundled == b.Bundled && maps.Equal(a.Headers, b.Headers)
}
