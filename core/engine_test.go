package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/assetload/internal/contract"
	"github.com/huangsam/assetload/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPreloadImages(t *testing.T) {
	prefetcher := &contract.MockPrefetchAdapter{}
	prefetcher.On("Prefetch", mock.Anything, "u1").Return(nil)
	prefetcher.On("Prefetch", mock.Anything, "u2").Return(errors.New("404 not found"))

	e := NewEngine(prefetcher, Options{Clock: newManualClock(), Logger: quietLogger()})
	defer e.Close()

	results := e.PreloadImages(context.Background(), []string{"u1", "u2"})

	require.Len(t, results, 2)
	require.NotNil(t, results[0].URI)
	assert.Equal(t, "u1", *results[0].URI)
	assert.Nil(t, results[1].URI)
	assert.Equal(t, "u2", results[1].Key)
	assert.Contains(t, results[1].Error, "404")

	_, ok := e.Cache().Get("u1")
	assert.True(t, ok)
	_, ok = e.Cache().Get("u2")
	assert.False(t, ok)
	prefetcher.AssertExpectations(t)
}

func TestPreloadImagesEdgeCases(t *testing.T) {
	t.Run("empty key fails its slot only", func(t *testing.T) {
		prefetcher := &contract.MockPrefetchAdapter{}
		prefetcher.On("Prefetch", mock.Anything, "u1").Return(nil)
		e := NewEngine(prefetcher, Options{Logger: quietLogger()})
		defer e.Close()

		results := e.PreloadImages(context.Background(), []string{"", "u1"})
		assert.Nil(t, results[0].URI)
		assert.NotNil(t, results[1].URI)
		prefetcher.AssertNumberOfCalls(t, "Prefetch", 1)
	})

	t.Run("no prefetcher", func(t *testing.T) {
		e := NewEngine(nil, Options{Logger: quietLogger()})
		defer e.Close()

		results := e.PreloadImages(context.Background(), []string{"u1", "u2"})
		for _, r := range results {
			assert.Nil(t, r.URI)
		}
		assert.Equal(t, 0, e.GetCacheStats().Size)
	})

	t.Run("no keys", func(t *testing.T) {
		e := NewEngine(nil, Options{Logger: quietLogger()})
		defer e.Close()
		assert.Empty(t, e.PreloadImages(context.Background(), nil))
	})

	t.Run("more keys than workers", func(t *testing.T) {
		prefetcher := &contract.MockPrefetchAdapter{}
		prefetcher.On("Prefetch", mock.Anything, mock.Anything).Return(nil)
		e := NewEngine(prefetcher, Options{Workers: 2, Logger: quietLogger()})
		defer e.Close()

		keys := []string{"a", "b", "c", "d", "e"}
		results := e.PreloadImages(context.Background(), keys)
		for i, r := range results {
			require.NotNil(t, r.URI)
			assert.Equal(t, keys[i], *r.URI)
		}
		assert.Equal(t, 5, e.GetCacheStats().Size)
	})
}

func TestPreloadImagesJournal(t *testing.T) {
	prefetcher := &contract.MockPrefetchAdapter{}
	prefetcher.On("Prefetch", mock.Anything, "u1").Return(nil)
	prefetcher.On("Prefetch", mock.Anything, "u2").Return(errors.New("boom"))

	journal := &contract.MockJournalStore{}
	journal.On("Record", mock.MatchedBy(func(r schema.JournalRecord) bool {
		return r.Key == "u1" && r.Origin == schema.PreloadOrigin && r.Outcome == schema.LoadedState
	})).Return(nil).Once()
	journal.On("Record", mock.MatchedBy(func(r schema.JournalRecord) bool {
		return r.Key == "u2" && r.Outcome == schema.FailedPermanentlyState &&
			r.ErrorKind != nil && *r.ErrorKind == string(schema.PermanentFailure)
	})).Return(nil).Once()

	e := NewEngine(prefetcher, Options{Journal: journal, Logger: quietLogger()})
	defer e.Close()
	e.PreloadImages(context.Background(), []string{"u1", "u2"})

	journal.AssertExpectations(t)
}

func TestClearCacheAndStats(t *testing.T) {
	e := NewEngine(nil, Options{MaxEntries: 3, Logger: quietLogger()})
	defer e.Close()

	e.Cache().Put("a", "a")
	e.Cache().Put("b", "b")
	assert.Equal(t, schema.CacheStats{Size: 2, MaxSize: 3}, e.GetCacheStats())

	e.ClearCache()
	assert.Equal(t, schema.CacheStats{Size: 0, MaxSize: 3}, e.GetCacheStats())
}

func TestNewEngineDefaults(t *testing.T) {
	e := NewEngine(nil, Options{})
	defer e.Close()

	assert.Equal(t, schema.DefaultMaxEntries, e.GetCacheStats().MaxSize)
	assert.Equal(t, schema.DefaultRetryBaseDelay, e.retry.BaseDelay)
	assert.Positive(t, e.workers)
	assert.NotNil(t, e.clock)
	assert.NotNil(t, e.log)
}

func TestPrefetchCollapsesConcurrentSameKey(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	prefetcher := &contract.MockPrefetchAdapter{}
	prefetcher.On("Prefetch", mock.Anything, "u1").Run(func(mock.Arguments) {
		once.Do(func() { close(started) })
		<-release
	}).Return(nil)

	e := NewEngine(prefetcher, Options{Clock: newManualClock(), Logger: quietLogger()})
	defer e.Close()

	results := make([][]schema.PreloadResult, 2)
	var wg sync.WaitGroup
	wg.Go(func() { results[0] = e.PreloadImages(context.Background(), []string{"u1"}) })
	<-started
	wg.Go(func() { results[1] = e.PreloadImages(context.Background(), []string{"u1"}) })
	time.Sleep(50 * time.Millisecond) // second caller joins the call in flight
	close(release)
	wg.Wait()

	prefetcher.AssertNumberOfCalls(t, "Prefetch", 1)
	for _, res := range results {
		require.Len(t, res, 1)
		require.NotNil(t, res[0].URI)
		assert.Equal(t, "u1", *res[0].URI)
	}
	assert.Equal(t, []schema.ResourceKey{"u1"}, e.Cache().Keys())
}

func TestCloseCancelsBackgroundPrefetch(t *testing.T) {
	started := make(chan struct{})
	prefetcher := &contract.MockPrefetchAdapter{}
	prefetcher.On("Prefetch", mock.Anything, "u1").Run(func(args mock.Arguments) {
		close(started)
		<-args.Get(0).(context.Context).Done()
	}).Return(context.Canceled)

	e := NewEngine(prefetcher, Options{Clock: newManualClock(), Logger: quietLogger()})
	e.prefetchAsync("u1")
	<-started

	// Returns only once the prefetch observed the cancellation
	e.Close()
	prefetcher.AssertNumberOfCalls(t, "Prefetch", 1)

	e.prefetchAsync("u2")
	e.Close()
	prefetcher.AssertNotCalled(t, "Prefetch", mock.Anything, "u2")
}
