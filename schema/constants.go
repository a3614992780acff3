package schema

// Custom string types for type safety.
type (
	// LoadState represents the lifecycle state of a load session.
	LoadState string

	// ErrorKind classifies a load failure.
	ErrorKind string

	// PlaceholderKind represents what is shown while a resource is not yet loaded.
	PlaceholderKind string

	// LayerKind represents one visual layer chosen by the progressive renderer.
	LayerKind string

	// JournalOrigin represents what produced a journal record.
	JournalOrigin string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for the load journal.
	DatabaseBackend string
)

// All load states supported.
const (
	IdleState              LoadState = "idle" // initial
	AdmittedState          LoadState = "admitted"
	FetchingState          LoadState = "fetching"
	LoadedState            LoadState = "loaded"
	RetryScheduledState    LoadState = "retry_scheduled"
	FailedPermanentlyState LoadState = "failed_permanently"
)

// All error kinds supported.
const (
	TransientFetchFailure ErrorKind = "transient_fetch_failure" // retryable
	PermanentFailure      ErrorKind = "permanent_failure"       // retries exhausted
	ConfigurationError    ErrorKind = "configuration_error"     // no resolvable key
)

// All placeholder kinds supported.
const (
	NoPlaceholder      PlaceholderKind = "none"
	SpinnerPlaceholder PlaceholderKind = "spinner" // default
	CustomPlaceholder  PlaceholderKind = "custom"
)

// All layer kinds supported.
const (
	PlaceholderLayer LayerKind = "placeholder"
	SpinnerLayer     LayerKind = "spinner"
	ThumbnailLayer   LayerKind = "thumbnail"
	FullLayer        LayerKind = "full"
	FallbackLayer    LayerKind = "fallback"
	BrokenGlyphLayer LayerKind = "broken_glyph"
)

// All journal origins supported.
const (
	SessionOrigin JournalOrigin = "session"
	PreloadOrigin JournalOrigin = "preload"
)

// All output modes supported.
const (
	CSVOut  OutputMode = "csv"
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
)

// All journal backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // default
)

// AllLoadStates returns a list of all load states in lifecycle order.
var AllLoadStates = []LoadState{
	IdleState,
	AdmittedState,
	FetchingState,
	RetryScheduledState,
	LoadedState,
	FailedPermanentlyState,
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:  {},
	TextOut: {},
	JSONOut: {},
}

// ValidDatabaseBackends lists all valid journal backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
