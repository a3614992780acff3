package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadStateClassification(t *testing.T) {
	tests := []struct {
		state    LoadState
		terminal bool
	}{
		{IdleState, false},
		{AdmittedState, false},
		{FetchingState, false},
		{RetryScheduledState, false},
		{LoadedState, true},
		{FailedPermanentlyState, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			assert.Equal(t, tt.terminal, tt.state.IsTerminal())
		})
	}
}

func TestDefaultLoadOptions(t *testing.T) {
	opts := DefaultLoadOptions()

	assert.Equal(t, DefaultFadeDuration, opts.FadeDuration)
	assert.Equal(t, 2, opts.RetryLimit)
	assert.True(t, opts.EnableCache)
	assert.True(t, opts.EnableLazy)
	assert.True(t, opts.Progressive)
	assert.Equal(t, SpinnerPlaceholder, opts.Placeholder.Kind)
}

func TestLoadOptionsRequest(t *testing.T) {
	opts := DefaultLoadOptions()
	opts.Source = Source{URI: "https://x/a.jpg", Headers: map[string]string{"Authorization": "Bearer t"}}
	opts.ThumbnailKey = "https://x/a_thumb.jpg"
	opts.EnableLazy = false

	req := opts.Request()

	assert.Equal(t, "https://x/a.jpg", req.Key)
	assert.Equal(t, "Bearer t", req.Headers["Authorization"])
	assert.Equal(t, "https://x/a_thumb.jpg", req.ThumbnailKey)
	assert.False(t, req.Lazy)
	assert.True(t, req.UseCache)
	assert.True(t, req.Progressive)
}

func TestSourceIsBundled(t *testing.T) {
	assert.False(t, Source{URI: "https://x/a.jpg"}.IsBundled())
	assert.True(t, Source{Bundled: "avatar_default"}.IsBundled())
}

func TestPreloadSlots(t *testing.T) {
	ok := LoadedPreload("u1")
	require.NotNil(t, ok.URI)
	assert.Equal(t, "u1", *ok.URI)
	assert.Empty(t, ok.Error)

	failed := FailedPreload("u2", errors.New("boom"))
	assert.Nil(t, failed.URI)
	assert.Equal(t, "u2", failed.Key)
	assert.Equal(t, "boom", failed.Error)
}

func TestNewFetchResult(t *testing.T) {
	ev := LoadEvent{Key: "k", Attempts: 3, Kind: PermanentFailure, Err: errors.New("gone")}
	res := NewFetchResult(FailedPermanentlyState, ev)

	assert.Equal(t, FailedPermanentlyState, res.State)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, PermanentFailure, res.Kind)
	assert.Equal(t, "gone", res.Error)
}
