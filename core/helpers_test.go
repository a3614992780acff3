package core

import (
	"errors"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/assetload/internal/contract"
	"github.com/huangsam/assetload/schema"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

var errDecode = errors.New("decode failed")

// manualClock only moves when Advance is called.
type manualClock struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	when    time.Time
	seq     int
	f       func()
	stopped bool
	fired   bool
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t := &manualTimer{clock: c, when: c.now.Add(d), seq: c.seq, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves time forward by d and fires due timers in deadline order.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	for {
		next := c.nextDueLocked(target)
		if next == nil {
			break
		}
		next.fired = true
		c.now = next.when
		c.mu.Unlock()
		next.f()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

// Pending returns the delays of armed timers relative to now, soonest first.
func (c *manualClock) Pending() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []time.Duration
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			out = append(out, t.when.Sub(c.now))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (c *manualClock) nextDueLocked(target time.Time) *manualTimer {
	var next *manualTimer
	for _, t := range c.timers {
		if t.stopped || t.fired || t.when.After(target) {
			continue
		}
		if next == nil || t.when.Before(next.when) || (t.when.Equal(next.when) && t.seq < next.seq) {
			next = t
		}
	}
	return next
}

// scriptedTarget reports the scripted outcome of each Load call in order.
// Calls past the end of the script are held until Report is called.
type scriptedTarget struct {
	mu       sync.Mutex
	script   []error
	requests []schema.RenderRequest
	held     []func(schema.RenderReport)
}

var _ contract.RenderTarget = &scriptedTarget{} // Compile-time check

func newScriptedTarget(script ...error) *scriptedTarget {
	return &scriptedTarget{script: script}
}

func (t *scriptedTarget) Load(req schema.RenderRequest, done func(schema.RenderReport)) {
	t.mu.Lock()
	n := len(t.requests)
	t.requests = append(t.requests, req)
	if n >= len(t.script) {
		t.held = append(t.held, done)
		t.mu.Unlock()
		return
	}
	err := t.script[n]
	t.mu.Unlock()

	if err != nil {
		done(schema.RenderReport{Err: err})
		return
	}
	done(schema.RenderReport{Width: 64, Height: 48})
}

// Report delivers a report for the oldest held Load call.
func (t *scriptedTarget) Report(r schema.RenderReport) {
	t.mu.Lock()
	done := t.held[0]
	t.held = t.held[1:]
	t.mu.Unlock()
	done(r)
}

func (t *scriptedTarget) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.requests)
}

// callbackRecorder counts terminal callbacks.
type callbackRecorder struct {
	mu     sync.Mutex
	loads  []schema.LoadEvent
	errors []schema.LoadEvent
}

func (r *callbackRecorder) attach(opts *schema.LoadOptions) {
	opts.OnLoad = func(ev schema.LoadEvent) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.loads = append(r.loads, ev)
	}
	opts.OnError = func(ev schema.LoadEvent) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.errors = append(r.errors, ev)
	}
}

func (r *callbackRecorder) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.loads), len(r.errors)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// newTestEngine returns an engine on a manual clock with a permissive prefetcher.
func newTestEngine(t *testing.T, opts Options) (*Engine, *manualClock, *contract.MockPrefetchAdapter) {
	t.Helper()
	clock := newManualClock()
	prefetcher := &contract.MockPrefetchAdapter{}
	prefetcher.On("Prefetch", mock.Anything, mock.Anything).Return(nil).Maybe()
	opts.Clock = clock
	opts.Logger = quietLogger()
	if opts.LazyDelay == 0 {
		opts.LazyDelay = schema.DefaultLazyDelay
	}
	e := NewEngine(prefetcher, opts)
	t.Cleanup(e.Close)
	return e, clock, prefetcher
}

func testOptions(uri string) schema.LoadOptions {
	opts := schema.DefaultLoadOptions()
	opts.Source = schema.Source{URI: uri}
	return opts
}

// recordStates subscribes to s and returns a function listing the states seen.
func recordStates(s *Session) func() []schema.LoadState {
	var mu sync.Mutex
	var states []schema.LoadState
	s.Subscribe(func(snap schema.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		states = append(states, snap.State)
	})
	return func() []schema.LoadState {
		mu.Lock()
		defer mu.Unlock()
		return append([]schema.LoadState{}, states...)
	}
}
