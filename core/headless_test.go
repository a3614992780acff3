package core

import (
	"context"
	"strings"
	"testing"

	"github.com/huangsam/assetload/schema"
	"github.com/stretchr/testify/assert"
)

// keyedTarget fails every URI containing "bad" and loads the rest.
type keyedTarget struct{}

func (keyedTarget) Load(req schema.RenderRequest, done func(schema.RenderReport)) {
	if strings.Contains(req.URI, "bad") {
		done(schema.RenderReport{Err: errDecode})
		return
	}
	done(schema.RenderReport{Width: 8, Height: 8})
}

func eagerOptions(uri string) schema.LoadOptions {
	opts := testOptions(uri)
	opts.EnableLazy = false
	return opts
}

func TestFetchLoaded(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{})
	target := newScriptedTarget(nil)
	rec := &callbackRecorder{}
	opts := eagerOptions("https://x/a.png")
	rec.attach(&opts)

	res := e.Fetch(context.Background(), target, opts)

	assert.Equal(t, schema.LoadedState, res.State)
	assert.Equal(t, "https://x/a.png", res.Key)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, 64, res.Width)
	assert.Equal(t, 48, res.Height)
	assert.Empty(t, res.Error)

	loads, errs := rec.counts()
	assert.Equal(t, 1, loads, "caller callbacks still run")
	assert.Equal(t, 0, errs)
}

func TestFetchPermanentFailure(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{})
	opts := eagerOptions("https://x/broken.png")
	opts.RetryLimit = 0

	res := e.Fetch(context.Background(), newScriptedTarget(errDecode), opts)

	assert.Equal(t, schema.FailedPermanentlyState, res.State)
	assert.Equal(t, schema.PermanentFailure, res.Kind)
	assert.Equal(t, 1, res.Attempts)
	assert.Contains(t, res.Error, ErrRetriesExhausted.Error())
	assert.Contains(t, res.Error, errDecode.Error())
}

func TestFetchCacheHit(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{})
	e.Cache().Put("https://x/a.png", "https://x/a.png")
	target := newScriptedTarget()

	res := e.Fetch(context.Background(), target, eagerOptions("https://x/a.png"))

	assert.Equal(t, schema.LoadedState, res.State)
	assert.True(t, res.FromCache)
	assert.Equal(t, 0, res.Attempts)
	assert.Equal(t, 0, target.Calls())
}

func TestFetchEmptySource(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{})

	res := e.Fetch(context.Background(), newScriptedTarget(), eagerOptions(""))

	assert.Equal(t, schema.FailedPermanentlyState, res.State)
	assert.Equal(t, schema.ConfigurationError, res.Kind)
}

func TestFetchCancelledContext(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{})
	target := newScriptedTarget() // holds every call
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := e.Fetch(ctx, target, eagerOptions("https://x/slow.png"))

	assert.Equal(t, schema.IdleState, res.State)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, context.Canceled.Error(), res.Error)

	// A late report must not resurrect the cancelled session
	target.Report(schema.RenderReport{Width: 1, Height: 1})
	assert.Equal(t, 0, e.GetCacheStats().Size)
}

func TestFetchCancelledBeforeAdmission(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{})
	target := newScriptedTarget()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Lazy admission waits on the manual clock, so nothing is requested
	res := e.Fetch(ctx, target, testOptions("https://x/lazy.png"))

	assert.Equal(t, schema.IdleState, res.State)
	assert.Equal(t, 0, res.Attempts)
	assert.Equal(t, 0, target.Calls())
}

func TestFetchAllKeepsOrder(t *testing.T) {
	e, _, _ := newTestEngine(t, Options{Workers: 2})
	uris := []string{"https://x/1.png", "https://x/bad.png", "https://x/3.png"}

	results := e.FetchAll(context.Background(), keyedTarget{}, uris, func(uri string) schema.LoadOptions {
		opts := eagerOptions(uri)
		opts.RetryLimit = 0
		return opts
	})

	assert.Len(t, results, 3)
	for i, uri := range uris {
		assert.Equal(t, uri, results[i].Key)
	}
	assert.Equal(t, schema.LoadedState, results[0].State)
	assert.Equal(t, schema.FailedPermanentlyState, results[1].State)
	assert.Equal(t, schema.LoadedState, results[2].State)
	assert.Equal(t, 2, e.GetCacheStats().Size)
}
