package core

import (
	"time"

	"github.com/huangsam/assetload/schema"
)

// Render maps a session snapshot to the visible layers, bottom to top.
//
// Every state before a terminal one shows the placeholder, so a retry keeps
// the previous visual instead of flashing the fallback.
func Render(snap schema.Snapshot, opts schema.LoadOptions) schema.View {
	switch snap.State {
	case schema.LoadedState:
		return schema.View{
			Layers:       []schema.Layer{{Kind: schema.FullLayer, URI: snap.ResolvedURI}},
			FadeDuration: opts.FadeDuration,
			FadeStart:    snap.LoadedAt,
		}
	case schema.FailedPermanentlyState:
		return schema.View{Layers: fallbackLayers(opts)}
	}

	var layers []schema.Layer
	if snap.Request.Progressive && snap.Request.ThumbnailKey != "" {
		layers = append(layers, schema.Layer{
			Kind:    schema.ThumbnailLayer,
			URI:     snap.Request.ThumbnailKey,
			Blurred: true,
		})
	}
	switch opts.Placeholder.Kind {
	case schema.CustomPlaceholder:
		layers = append(layers, schema.Layer{Kind: schema.PlaceholderLayer, Node: opts.Placeholder.Node})
	case schema.SpinnerPlaceholder:
		layers = append(layers, schema.Layer{Kind: schema.SpinnerLayer})
	}
	return schema.View{Layers: layers}
}

// fallbackLayers resolves the error visual: a dedicated fallback, else the
// custom placeholder, else a broken-image glyph when a spinner was configured.
func fallbackLayers(opts schema.LoadOptions) []schema.Layer {
	switch {
	case opts.Fallback != nil:
		return []schema.Layer{{Kind: schema.FallbackLayer, Node: opts.Fallback}}
	case opts.Placeholder.Kind == schema.CustomPlaceholder:
		return []schema.Layer{{Kind: schema.FallbackLayer, Node: opts.Placeholder.Node}}
	case opts.Placeholder.Kind == schema.SpinnerPlaceholder:
		return []schema.Layer{{Kind: schema.BrokenGlyphLayer}}
	default:
		return nil
	}
}

// Opacity returns the opacity of the top layer at now, in [0, 1].
// Views without a fade are fully opaque.
func Opacity(view schema.View, now time.Time) float64 {
	if view.FadeDuration <= 0 || view.FadeStart.IsZero() {
		return 1
	}
	elapsed := now.Sub(view.FadeStart)
	switch {
	case elapsed <= 0:
		return 0
	case elapsed >= view.FadeDuration:
		return 1
	default:
		return float64(elapsed) / float64(view.FadeDuration)
	}
}
