package core

import (
	"testing"
	"time"

	"github.com/huangsam/assetload/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotFor(state schema.LoadState, opts schema.LoadOptions) schema.Snapshot {
	return schema.Snapshot{Request: opts.Request(), State: state, ResolvedURI: opts.Source.URI}
}

func layerKinds(view schema.View) []schema.LayerKind {
	var kinds []schema.LayerKind
	for _, l := range view.Layers {
		kinds = append(kinds, l.Kind)
	}
	return kinds
}

func TestRenderPendingStates(t *testing.T) {
	opts := testOptions("https://x/a.jpg")

	for _, state := range []schema.LoadState{
		schema.IdleState, schema.AdmittedState, schema.FetchingState, schema.RetryScheduledState,
	} {
		t.Run(string(state), func(t *testing.T) {
			view := Render(snapshotFor(state, opts), opts)
			assert.Equal(t, []schema.LayerKind{schema.SpinnerLayer}, layerKinds(view))
		})
	}
}

func TestRenderPlaceholderKinds(t *testing.T) {
	opts := testOptions("https://x/a.jpg")

	opts.Placeholder = schema.Placeholder{Kind: schema.CustomPlaceholder, Node: "gray-box"}
	view := Render(snapshotFor(schema.FetchingState, opts), opts)
	require.Len(t, view.Layers, 1)
	assert.Equal(t, schema.PlaceholderLayer, view.Layers[0].Kind)
	assert.Equal(t, "gray-box", view.Layers[0].Node)

	opts.Placeholder = schema.Placeholder{Kind: schema.NoPlaceholder}
	assert.Empty(t, Render(snapshotFor(schema.FetchingState, opts), opts).Layers)
}

func TestRenderThumbnail(t *testing.T) {
	opts := testOptions("https://x/a.jpg")
	opts.ThumbnailKey = "https://x/a_thumb.jpg"

	t.Run("beneath placeholder while pending", func(t *testing.T) {
		view := Render(snapshotFor(schema.RetryScheduledState, opts), opts)
		assert.Equal(t, []schema.LayerKind{schema.ThumbnailLayer, schema.SpinnerLayer}, layerKinds(view))
		assert.True(t, view.Layers[0].Blurred)
		assert.Equal(t, "https://x/a_thumb.jpg", view.Layers[0].URI)
	})

	t.Run("dropped once loaded", func(t *testing.T) {
		view := Render(snapshotFor(schema.LoadedState, opts), opts)
		assert.Equal(t, []schema.LayerKind{schema.FullLayer}, layerKinds(view))
	})

	t.Run("ignored without progressive", func(t *testing.T) {
		plain := opts
		plain.Progressive = false
		view := Render(snapshotFor(schema.FetchingState, plain), plain)
		assert.Equal(t, []schema.LayerKind{schema.SpinnerLayer}, layerKinds(view))
	})
}

func TestRenderLoaded(t *testing.T) {
	opts := testOptions("https://x/a.jpg")
	snap := snapshotFor(schema.LoadedState, opts)
	snap.ResolvedURI = "file:///cache/a.jpg"
	snap.LoadedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	view := Render(snap, opts)
	require.Len(t, view.Layers, 1)
	assert.Equal(t, "file:///cache/a.jpg", view.Layers[0].URI)
	assert.Equal(t, schema.DefaultFadeDuration, view.FadeDuration)
	assert.Equal(t, snap.LoadedAt, view.FadeStart)
}

func TestRenderFallback(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*schema.LoadOptions)
		expected []schema.LayerKind
		node     any
	}{
		{
			name:     "dedicated fallback",
			mutate:   func(o *schema.LoadOptions) { o.Fallback = "error-art" },
			expected: []schema.LayerKind{schema.FallbackLayer},
			node:     "error-art",
		},
		{
			name: "custom placeholder reused",
			mutate: func(o *schema.LoadOptions) {
				o.Placeholder = schema.Placeholder{Kind: schema.CustomPlaceholder, Node: "gray-box"}
			},
			expected: []schema.LayerKind{schema.FallbackLayer},
			node:     "gray-box",
		},
		{
			name:     "default broken glyph",
			mutate:   func(*schema.LoadOptions) {},
			expected: []schema.LayerKind{schema.BrokenGlyphLayer},
		},
		{
			name:     "nothing configured",
			mutate:   func(o *schema.LoadOptions) { o.Placeholder = schema.Placeholder{Kind: schema.NoPlaceholder} },
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions("https://x/a.jpg")
			opts.ThumbnailKey = "https://x/a_thumb.jpg"
			tt.mutate(&opts)
			view := Render(snapshotFor(schema.FailedPermanentlyState, opts), opts)
			assert.Equal(t, tt.expected, layerKinds(view))
			if tt.node != nil {
				assert.Equal(t, tt.node, view.Layers[0].Node)
			}
		})
	}
}

func TestOpacity(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	view := schema.View{FadeDuration: 300 * time.Millisecond, FadeStart: start}

	assert.Equal(t, 0.0, Opacity(view, start))
	assert.InDelta(t, 0.5, Opacity(view, start.Add(150*time.Millisecond)), 1e-9)
	assert.Equal(t, 1.0, Opacity(view, start.Add(300*time.Millisecond)))
	assert.Equal(t, 1.0, Opacity(view, start.Add(time.Hour)))
	assert.Equal(t, 1.0, Opacity(schema.View{}, start))
}
