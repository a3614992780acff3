package core

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/assetload/internal/contract"
	"github.com/huangsam/assetload/schema"
	"github.com/sirupsen/logrus"
)

type eventKind int

const (
	startEvent eventKind = iota
	admitEvent
	reportEvent
	retryEvent
	timeoutEvent
	cancelEvent
)

func (k eventKind) String() string {
	switch k {
	case startEvent:
		return "start"
	case admitEvent:
		return "admit"
	case reportEvent:
		return "report"
	case retryEvent:
		return "retry"
	case timeoutEvent:
		return "timeout"
	default:
		return "cancel"
	}
}

// event is the single input type of the session state machine.
// attempt tags asynchronous events so stale ones can be dropped.
type event struct {
	kind    eventKind
	attempt int
	report  schema.RenderReport
}

// Session is the state machine of one "display this resource" request.
//
// Every input goes through dispatch. Events are applied one at a time under mu,
// and the side effects of a transition run afterwards without the lock held, so
// a render target or callback may report back synchronously.
type Session struct {
	id     string
	engine *Engine
	target contract.RenderTarget
	guard  *Guard
	opts   schema.LoadOptions
	req    schema.LoadRequest
	log    *logrus.Entry

	mu        sync.Mutex
	state     schema.LoadState
	attempt   int
	resolved  string
	fromCache bool
	started   bool
	cancelled bool
	startedAt time.Time
	loadedAt  time.Time
	timer     Timer // admission or backoff
	watchdog  Timer
	queue     []event
	draining  bool
	observers []func(schema.Snapshot)

	done     chan struct{}
	doneOnce sync.Once
}

func newSession(e *Engine, target contract.RenderTarget, opts schema.LoadOptions, guard *Guard) *Session {
	id := uuid.NewString()
	req := opts.Request()
	return &Session{
		id:     id,
		engine: e,
		target: target,
		guard:  guard,
		opts:   opts,
		req:    req,
		state:  schema.IdleState,
		done:   make(chan struct{}),
		log: e.log.WithFields(logrus.Fields{
			"session": id,
			"key":     req.Key,
		}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Request returns the request this session serves.
func (s *Session) Request() schema.LoadRequest {
	return s.req
}

// Start leaves Idle. It is a no-op after the first call.
func (s *Session) Start() {
	s.dispatch(event{kind: startEvent})
}

// Cancel stops the session. Pending timers are stopped and late reports are ignored.
// A session that already reached a terminal state keeps it but becomes inert.
// Side effects that have not run yet when Cancel returns are suppressed, even
// if another goroutine is still applying a transition.
func (s *Session) Cancel() {
	s.guard.Revoke()
	s.dispatch(event{kind: cancelEvent})
}

// Done is closed once the session reaches a terminal state or is cancelled.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Subscribe registers fn to receive a snapshot after every state change, in order.
func (s *Session) Subscribe(fn func(schema.Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Snapshot returns the current state of the session.
func (s *Session) Snapshot() schema.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() schema.Snapshot {
	return schema.Snapshot{
		SessionID:   s.id,
		Request:     s.req,
		State:       s.state,
		Attempt:     s.attempt,
		ResolvedURI: s.resolved,
		FromCache:   s.fromCache,
		Cancelled:   s.cancelled,
		LoadedAt:    s.loadedAt,
	}
}

// dispatch enqueues ev. The first caller drains the queue; re-entrant and
// concurrent callers only enqueue.
func (s *Session) dispatch(ev event) {
	s.mu.Lock()
	s.queue = append(s.queue, ev)
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	for len(s.queue) > 0 {
		next := s.queue[0]
		s.queue = s.queue[1:]
		effects := s.apply(next)
		s.mu.Unlock()
		for _, fx := range effects {
			fx()
		}
		s.mu.Lock()
	}
	s.draining = false
	s.mu.Unlock()
}

// apply performs one transition with mu held and returns its side effects.
func (s *Session) apply(ev event) []func() {
	if s.cancelled {
		return nil
	}
	if ev.kind == cancelEvent {
		return s.cancelLocked()
	}
	if s.state.IsTerminal() {
		return nil
	}
	if ev.kind != startEvent && !s.guard.IsActive() {
		return s.cancelLocked()
	}

	switch ev.kind {
	case startEvent:
		return s.startLocked()
	case admitEvent:
		if s.state != schema.IdleState || !s.started {
			return nil
		}
		s.timer = nil
		return s.admitLocked()
	case reportEvent:
		if s.state != schema.FetchingState || ev.attempt != s.attempt {
			s.log.WithField("attempt", ev.attempt).Debug("Ignoring stale render report")
			return nil
		}
		s.stopWatchdogLocked()
		if ev.report.Err == nil {
			return s.loadedLocked(ev.report)
		}
		return s.failureLocked(ev.report.Err)
	case retryEvent:
		if s.state != schema.RetryScheduledState || ev.attempt != s.attempt {
			return nil
		}
		s.timer = nil
		s.attempt++
		return s.fetchLocked()
	case timeoutEvent:
		if s.state != schema.FetchingState || ev.attempt != s.attempt {
			return nil
		}
		s.watchdog = nil
		return s.failureLocked(fmt.Errorf("%w (%s)", ErrFetchTimeout, s.engine.fetchTimeout))
	}
	return nil
}

func (s *Session) startLocked() []func() {
	if s.started {
		return nil
	}
	s.started = true
	s.startedAt = s.engine.clock.Now()

	if !s.guard.IsActive() {
		return s.cancelLocked()
	}
	if s.req.Key == "" {
		return s.terminalFailureLocked(schema.ConfigurationError, ErrEmptySource)
	}
	if s.req.Lazy && s.engine.lazyDelay > 0 {
		s.timer = s.engine.clock.AfterFunc(s.engine.lazyDelay, func() {
			s.dispatch(event{kind: admitEvent})
		})
		s.log.WithField("delay", s.engine.lazyDelay).Debug("Deferred admission")
		return nil
	}
	return s.admitLocked()
}

func (s *Session) admitLocked() []func() {
	effects := s.transitionLocked(schema.AdmittedState)

	if s.req.UseCache {
		if entry, ok := s.engine.cache.Get(s.req.Key); ok {
			s.resolved = entry.ResolvedURI
			s.fromCache = true
			s.loadedAt = s.engine.clock.Now()
			effects = append(effects, s.transitionLocked(schema.LoadedState)...)
			return append(effects, s.loadedEffectsLocked(schema.RenderReport{})...)
		}
	}
	return append(effects, s.fetchLocked()...)
}

// fetchLocked enters Fetching for the current attempt and issues the render.
func (s *Session) fetchLocked() []func() {
	s.resolved = s.req.Key
	effects := s.transitionLocked(schema.FetchingState)

	attempt := s.attempt
	if s.engine.fetchTimeout > 0 {
		s.watchdog = s.engine.clock.AfterFunc(s.engine.fetchTimeout, func() {
			s.dispatch(event{kind: timeoutEvent, attempt: attempt})
		})
	}

	if s.req.UseCache {
		key := s.req.Key
		effects = append(effects, func() { s.engine.prefetchAsync(key) })
	}

	req := schema.RenderRequest{URI: s.resolved, Headers: s.req.Headers, Attempt: attempt}
	var once sync.Once
	report := func(r schema.RenderReport) {
		once.Do(func() {
			s.dispatch(event{kind: reportEvent, attempt: attempt, report: r})
		})
	}
	return append(effects, func() { s.target.Load(req, report) })
}

func (s *Session) loadedLocked(report schema.RenderReport) []func() {
	s.loadedAt = s.engine.clock.Now()
	effects := s.transitionLocked(schema.LoadedState)

	if s.req.UseCache {
		key, uri := s.req.Key, s.resolved
		effects = append(effects, func() {
			if s.guard.IsActive() {
				s.engine.cache.Put(key, uri)
			}
		})
	}
	return append(effects, s.loadedEffectsLocked(report)...)
}

func (s *Session) failureLocked(err error) []func() {
	if s.engine.retry.ShouldRetry(s.attempt, s.req.RetryLimit) {
		delay := s.engine.retry.BackoffDelay(s.attempt)
		attempt := s.attempt
		effects := s.transitionLocked(schema.RetryScheduledState)
		s.timer = s.engine.clock.AfterFunc(delay, func() {
			s.dispatch(event{kind: retryEvent, attempt: attempt})
		})
		s.log.WithError(err).WithFields(logrus.Fields{
			"attempt": attempt,
			"delay":   delay,
		}).Debug("Scheduled retry")
		return effects
	}
	return s.terminalFailureLocked(schema.PermanentFailure,
		fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, s.attempt+1, err))
}

func (s *Session) terminalFailureLocked(kind schema.ErrorKind, err error) []func() {
	effects := s.transitionLocked(schema.FailedPermanentlyState)
	ev := s.eventLocked(schema.RenderReport{}, err)
	ev.Kind = kind
	return append(effects, s.finishEffects(schema.FailedPermanentlyState, ev)...)
}

func (s *Session) loadedEffectsLocked(report schema.RenderReport) []func() {
	return s.finishEffects(schema.LoadedState, s.eventLocked(report, nil))
}

func (s *Session) finishEffects(state schema.LoadState, ev schema.LoadEvent) []func() {
	s.stopTimersLocked()
	callback := s.opts.OnLoad
	if state == schema.FailedPermanentlyState {
		callback = s.opts.OnError
	}
	return []func(){
		func() {
			s.engine.record(schema.SessionOrigin, state, ev)
			if callback != nil && s.guard.IsActive() {
				callback(ev)
			}
			s.doneOnce.Do(func() { close(s.done) })
		},
	}
}

func (s *Session) eventLocked(report schema.RenderReport, err error) schema.LoadEvent {
	attempts := s.attempt + 1
	if s.fromCache || s.req.Key == "" {
		attempts = 0
	}
	return schema.LoadEvent{
		SessionID:   s.id,
		Key:         s.req.Key,
		ResolvedURI: s.resolved,
		Attempts:    attempts,
		FromCache:   s.fromCache,
		Duration:    s.engine.clock.Now().Sub(s.startedAt),
		Width:       report.Width,
		Height:      report.Height,
		Err:         err,
	}
}

func (s *Session) cancelLocked() []func() {
	s.cancelled = true
	s.stopTimersLocked()
	var effects []func()
	if !s.state.IsTerminal() {
		effects = s.transitionLocked(schema.IdleState)
	}
	s.log.Debug("Session cancelled")
	return append(effects, func() { s.doneOnce.Do(func() { close(s.done) }) })
}

// transitionLocked moves to state and returns the observer notifications.
func (s *Session) transitionLocked(state schema.LoadState) []func() {
	s.state = state
	s.log.WithFields(logrus.Fields{
		"state":   state,
		"attempt": s.attempt,
	}).Debug("Session transition")

	if len(s.observers) == 0 {
		return nil
	}
	snap := s.snapshotLocked()
	observers := slices.Clone(s.observers)
	return []func(){
		func() {
			for _, fn := range observers {
				fn(snap)
			}
		},
	}
}

func (s *Session) stopWatchdogLocked() {
	if s.watchdog != nil {
		s.watchdog.Stop()
		s.watchdog = nil
	}
}

func (s *Session) stopTimersLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.stopWatchdogLocked()
}
