package core

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/huangsam/assetload/internal/contract"
	"github.com/huangsam/assetload/schema"
	"golang.org/x/sync/errgroup"
)

// Fetch runs one standalone session to completion and summarizes it.
// Cancelling ctx cancels the session; the result then carries the state it was left in.
func (e *Engine) Fetch(ctx context.Context, target contract.RenderTarget, opts schema.LoadOptions) schema.FetchResult {
	var mu sync.Mutex
	var final *schema.FetchResult
	capture := func(state schema.LoadState, next func(schema.LoadEvent)) func(schema.LoadEvent) {
		return func(ev schema.LoadEvent) {
			res := schema.NewFetchResult(state, ev)
			mu.Lock()
			final = &res
			mu.Unlock()
			if next != nil {
				next(ev)
			}
		}
	}
	opts.OnLoad = capture(schema.LoadedState, opts.OnLoad)
	opts.OnError = capture(schema.FailedPermanentlyState, opts.OnError)

	s := e.NewSession(target, opts)
	var fetched atomic.Bool
	s.Subscribe(func(snap schema.Snapshot) {
		if snap.State == schema.FetchingState {
			fetched.Store(true)
		}
	})
	s.Start()
	select {
	case <-s.Done():
	case <-ctx.Done():
		s.Cancel()
	}

	mu.Lock()
	defer mu.Unlock()
	if final != nil {
		return *final
	}
	snap := s.Snapshot()
	res := schema.FetchResult{Key: snap.Request.Key, State: snap.State}
	if fetched.Load() {
		res.Attempts = snap.Attempt + 1
	}
	if err := ctx.Err(); err != nil {
		res.Error = err.Error()
	}
	return res
}

// FetchAll runs Fetch for every URI with at most Workers in flight.
// Results keep the order of uris.
func (e *Engine) FetchAll(ctx context.Context, target contract.RenderTarget, uris []string, optsFor func(uri string) schema.LoadOptions) []schema.FetchResult {
	results := make([]schema.FetchResult, len(uris))

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, uri := range uris {
		g.Go(func() error {
			results[i] = e.Fetch(ctx, target, optsFor(uri))
			return nil
		})
	}
	_ = g.Wait()
	return results
}
