package schema

// IsTerminal reports whether no automatic transition leaves the state.
func (s LoadState) IsTerminal() bool {
	return s == LoadedState || s == FailedPermanentlyState
}

// NewFetchResult builds an output row from a terminal load event.
func NewFetchResult(state LoadState, ev LoadEvent) FetchResult {
	res := FetchResult{
		Key:       ev.Key,
		State:     state,
		Attempts:  ev.Attempts,
		FromCache: ev.FromCache,
		Width:     ev.Width,
		Height:    ev.Height,
		Duration:  ev.Duration,
		Kind:      ev.Kind,
	}
	if ev.Err != nil {
		res.Error = ev.Err.Error()
	}
	return res
}

// LoadedPreload returns a successful preload slot.
func LoadedPreload(key ResourceKey) PreloadResult {
	uri := key
	return PreloadResult{Key: key, URI: &uri}
}

// FailedPreload returns a failed preload slot.
func FailedPreload(key ResourceKey, err error) PreloadResult {
	res := PreloadResult{Key: key}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}
