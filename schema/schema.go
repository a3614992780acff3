// Package schema has configs, models and enums shared by every part of assetload.
package schema

import "time"

// Defaults for the engine and for each consumer.
const (
	DefaultMaxEntries     = 50
	DefaultLazyDelay      = 100 * time.Millisecond
	DefaultRetryBaseDelay = 1000 * time.Millisecond
	DefaultRetryLimit     = 2
	DefaultFadeDuration   = 300 * time.Millisecond
)

// ResourceKey is the canonical string (URI) identifying a cacheable remote asset.
type ResourceKey = string

// CacheEntry is a resolved resource held by the cache store.
type CacheEntry struct {
	Key         ResourceKey `json:"key"`
	ResolvedURI string      `json:"resolved_uri"`
	InsertedAt  uint64      `json:"inserted_at"` // Insertion sequence, not wall time
}

// CacheStats is read-only introspection of the cache store.
type CacheStats struct {
	Size    int `json:"size"`
	MaxSize int `json:"max_size"`
}

// Source identifies what a consumer wants to display.
// A non-empty Bundled identifier renders directly and bypasses the engine.
type Source struct {
	URI     string            `json:"uri"`
	Headers map[string]string `json:"headers,omitempty"`
	Bundled string            `json:"bundled,omitempty"`
}

// IsBundled reports whether the source points at a local resource.
func (s Source) IsBundled() bool {
	return s.Bundled != ""
}

// Placeholder describes what is shown while the resource is not yet loaded.
// Node is an opaque, consumer-owned value (a static resource or a render function).
type Placeholder struct {
	Kind PlaceholderKind
	Node any
}

// LoadOptions holds the recognized options of one consumer instance.
type LoadOptions struct {
	Source       Source
	ThumbnailKey ResourceKey
	Placeholder  Placeholder
	Fallback     any // Optional dedicated error visual, nil when absent
	FadeDuration time.Duration
	RetryLimit   int
	EnableCache  bool
	EnableLazy   bool
	Progressive  bool
	OnLoad       func(LoadEvent)
	OnError      func(LoadEvent)
}

// DefaultLoadOptions returns options with every default applied.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Placeholder:  Placeholder{Kind: SpinnerPlaceholder},
		FadeDuration: DefaultFadeDuration,
		RetryLimit:   DefaultRetryLimit,
		EnableCache:  true,
		EnableLazy:   true,
		Progressive:  true,
	}
}

// LoadRequest is the ephemeral input of a load session.
// It is superseded, never mutated, when the consumer supplies a new key.
type LoadRequest struct {
	Key          ResourceKey       `json:"key"`
	Headers      map[string]string `json:"headers,omitempty"`
	ThumbnailKey ResourceKey       `json:"thumbnail_key,omitempty"`
	Lazy         bool              `json:"lazy"`
	RetryLimit   int               `json:"retry_limit"`
	Progressive  bool              `json:"progressive"`
	UseCache     bool              `json:"use_cache"`
}

// Request derives the load request for these options.
func (o LoadOptions) Request() LoadRequest {
	return LoadRequest{
		Key:          o.Source.URI,
		Headers:      o.Source.Headers,
		ThumbnailKey: o.ThumbnailKey,
		Lazy:         o.EnableLazy,
		RetryLimit:   o.RetryLimit,
		Progressive:  o.Progressive,
		UseCache:     o.EnableCache,
	}
}

// LoadEvent is delivered to OnLoad and OnError on a terminal transition.
type LoadEvent struct {
	SessionID   string        `json:"session_id"`
	Key         ResourceKey   `json:"key"`
	ResolvedURI string        `json:"resolved_uri,omitempty"`
	Attempts    int           `json:"attempts"`
	FromCache   bool          `json:"from_cache"`
	Duration    time.Duration `json:"duration"`
	Width       int           `json:"width,omitempty"`
	Height      int           `json:"height,omitempty"`
	Kind        ErrorKind     `json:"kind,omitempty"`
	Err         error         `json:"-"`
}

// RenderRequest asks a render target to fetch and decode one resource.
type RenderRequest struct {
	URI     string
	Headers map[string]string
	Attempt int
}

// RenderReport is what a render target reports once per request.
// A nil Err means the resource decoded successfully.
type RenderReport struct {
	Width  int
	Height int
	Err    error
}

// Snapshot is an immutable view of a session at one point of its lifecycle.
type Snapshot struct {
	SessionID   string      `json:"session_id"`
	Request     LoadRequest `json:"request"`
	State       LoadState   `json:"state"`
	Attempt     int         `json:"attempt"`
	ResolvedURI string      `json:"resolved_uri,omitempty"`
	FromCache   bool        `json:"from_cache"`
	Cancelled   bool        `json:"cancelled"`
	LoadedAt    time.Time   `json:"loaded_at"`
}

// Layer is one visual layer chosen by the progressive renderer.
type Layer struct {
	Kind    LayerKind `json:"kind"`
	URI     string    `json:"uri,omitempty"`
	Node    any       `json:"-"`
	Blurred bool      `json:"blurred,omitempty"`
}

// View is the ordered (bottom to top) set of visible layers.
type View struct {
	Layers       []Layer       `json:"layers"`
	FadeDuration time.Duration `json:"fade_duration"`
	FadeStart    time.Time     `json:"fade_start"`
}

// PreloadResult is one slot of a preload batch.
// URI holds the key on success and is nil on failure.
type PreloadResult struct {
	Key   ResourceKey `json:"key"`
	URI   *string     `json:"uri"`
	Error string      `json:"error,omitempty"`
}

// FetchResult summarizes one headless load for output.
type FetchResult struct {
	Key       ResourceKey   `json:"key"`
	State     LoadState     `json:"state"`
	Attempts  int           `json:"attempts"`
	FromCache bool          `json:"from_cache"`
	Width     int           `json:"width"`
	Height    int           `json:"height"`
	Duration  time.Duration `json:"duration"`
	Kind      ErrorKind     `json:"kind,omitempty"`
	Error     string        `json:"error,omitempty"`
}
