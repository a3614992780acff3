package core

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/huangsam/assetload/internal/contract"
	"github.com/huangsam/assetload/schema"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Options configures an Engine. Zero values select the defaults.
type Options struct {
	MaxEntries     int
	LazyDelay      time.Duration
	RetryBaseDelay time.Duration
	FetchTimeout   time.Duration // 0 disables the fetch watchdog
	Workers        int
	Clock          Clock
	Logger         *logrus.Logger
	Journal        contract.JournalStore
}

// Engine owns the process-wide cache and prefetcher shared by every consumer.
type Engine struct {
	cache        *CacheStore
	retry        RetryPolicy
	prefetcher   contract.PrefetchAdapter
	clock        Clock
	log          *logrus.Logger
	journal      contract.JournalStore
	lazyDelay    time.Duration
	fetchTimeout time.Duration
	workers      int

	prefetches singleflight.Group
	inflight   sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc

	closeMu sync.Mutex // orders inflight.Add against Close
	closed  bool
}

// NewEngine creates an engine. prefetcher may be nil, in which case sessions
// skip cache warming and preloads fail.
func NewEngine(prefetcher contract.PrefetchAdapter, opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = RealClock()
	}
	if opts.Logger == nil {
		opts.Logger = contract.Logger()
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.LazyDelay < 0 {
		opts.LazyDelay = 0
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		cache:        NewCacheStore(opts.MaxEntries),
		retry:        NewRetryPolicy(opts.RetryBaseDelay),
		prefetcher:   prefetcher,
		clock:        opts.Clock,
		log:          opts.Logger,
		journal:      opts.Journal,
		lazyDelay:    opts.LazyDelay,
		fetchTimeout: opts.FetchTimeout,
		workers:      opts.Workers,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Cache returns the engine's cache store.
func (e *Engine) Cache() *CacheStore {
	return e.cache
}

// NewSession creates a standalone session that is not bound to a consumer.
// The caller starts and cancels it.
func (e *Engine) NewSession(target contract.RenderTarget, opts schema.LoadOptions) *Session {
	return newSession(e, target, opts, NewLifetime().Guard())
}

// PreloadImages prefetches every key in parallel. Each slot holds the key on
// success and a nil URI on failure; the call itself never fails.
//
// Every successfully preloaded key is also put into the cache, so a later
// session for it loads from the cache without asking its render target.
func (e *Engine) PreloadImages(ctx context.Context, keys []string) []schema.PreloadResult {
	results := make([]schema.PreloadResult, len(keys))

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, key := range keys {
		g.Go(func() error {
			start := e.clock.Now()
			err := e.prefetch(ctx, key)
			ev := schema.LoadEvent{Key: key, Attempts: 1, Duration: e.clock.Now().Sub(start), Err: err}
			if err != nil {
				results[i] = schema.FailedPreload(key, err)
				ev.Kind = schema.PermanentFailure
				e.record(schema.PreloadOrigin, schema.FailedPermanentlyState, ev)
				return nil
			}
			e.cache.Put(key, key)
			results[i] = schema.LoadedPreload(key)
			e.record(schema.PreloadOrigin, schema.LoadedState, ev)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// ClearCache empties the cache store.
func (e *Engine) ClearCache() {
	e.cache.Clear()
	e.log.Debug("Cache cleared")
}

// GetCacheStats returns the size and capacity of the cache store.
func (e *Engine) GetCacheStats() schema.CacheStats {
	return e.cache.Stats()
}

// Close cancels background prefetches and waits for them to return.
// Prefetches requested after Close are dropped.
func (e *Engine) Close() {
	e.closeMu.Lock()
	e.closed = true
	e.cancel()
	e.closeMu.Unlock()
	e.inflight.Wait()
}

// prefetch collapses concurrent prefetches of the same URI into one call.
func (e *Engine) prefetch(ctx context.Context, uri string) error {
	if uri == "" {
		return ErrEmptySource
	}
	if e.prefetcher == nil {
		return ErrNoPrefetcher
	}
	_, err, shared := e.prefetches.Do(uri, func() (any, error) {
		return nil, e.prefetcher.Prefetch(ctx, uri)
	})
	if shared {
		e.log.WithField("key", uri).Debug("Joined in-flight prefetch")
	}
	return err
}

// prefetchAsync warms the cache in the background. Sessions never wait on it.
func (e *Engine) prefetchAsync(uri string) {
	if e.prefetcher == nil {
		return
	}
	e.closeMu.Lock()
	defer e.closeMu.Unlock()
	if e.closed {
		return
	}
	e.inflight.Add(1)
	go func() {
		defer e.inflight.Done()
		if err := e.prefetch(e.ctx, uri); err != nil {
			e.log.WithError(err).WithField("key", uri).Debug("Background prefetch failed")
		}
	}()
}

// record writes a terminal outcome to the journal. Failures are logged only.
func (e *Engine) record(origin schema.JournalOrigin, outcome schema.LoadState, ev schema.LoadEvent) {
	if e.journal == nil {
		return
	}
	rec := schema.JournalRecord{
		SessionID:  ev.SessionID,
		Key:        ev.Key,
		Origin:     origin,
		Outcome:    outcome,
		Attempts:   int32(ev.Attempts),
		DurationMs: ev.Duration.Milliseconds(),
		CacheHit:   ev.FromCache,
		RecordedAt: e.clock.Now(),
	}
	if ev.Kind != "" {
		kind := string(ev.Kind)
		rec.ErrorKind = &kind
	}
	if err := e.journal.Record(rec); err != nil {
		e.log.WithError(err).WithField("key", ev.Key).Warn("Failed to record load outcome")
	}
}
