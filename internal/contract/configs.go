package contract

import (
	"fmt"
	"maps"
	"runtime"
	"strings"
	"time"

	"github.com/huangsam/assetload/schema"
	"github.com/sirupsen/logrus"
)

// Default values for configuration.
const (
	DefaultHTTPTimeout = 15 * time.Second
	DefaultUserAgent   = "assetload"
	DefaultLogLevel    = "warn"
	MaxCacheEntries    = 10000
	MaxRetryLimit      = 10
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// Config holds the runtime configuration for the engine and the CLI.
// This struct remains the "final, validated" config.
type Config struct {
	MaxEntries     int
	LazyDelay      time.Duration
	RetryBaseDelay time.Duration
	FetchTimeout   time.Duration // 0 disables the fetch watchdog
	Workers        int

	RetryLimit   int
	FadeDuration time.Duration
	EnableCache  bool
	EnableLazy   bool
	Progressive  bool
	ThumbnailKey string
	Headers      map[string]string

	HTTPTimeout time.Duration
	UserAgent   string

	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool
	LogLevel   string

	JournalBackend   schema.DatabaseBackend
	JournalDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Engine fields ---
	MaxEntries     int    `mapstructure:"max-entries"`
	LazyDelay      string `mapstructure:"lazy-delay"`
	RetryBaseDelay string `mapstructure:"retry-base-delay"`
	FetchTimeout   string `mapstructure:"fetch-timeout"`
	Workers        int    `mapstructure:"workers"`

	// --- Consumer fields ---
	RetryLimit    int      `mapstructure:"retry-limit"`
	FadeDuration  string   `mapstructure:"fade-duration"`
	NoCache       bool     `mapstructure:"no-cache"`
	NoLazy        bool     `mapstructure:"no-lazy"`
	NoProgressive bool     `mapstructure:"no-progressive"`
	Thumbnail     string   `mapstructure:"thumbnail"`
	Header        []string `mapstructure:"header"`

	// --- HTTP fields ---
	HTTPTimeout string `mapstructure:"http-timeout"`
	UserAgent   string `mapstructure:"user-agent"`

	// --- Output fields ---
	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Width      int    `mapstructure:"width"`
	Color      string `mapstructure:"color"`
	LogLevel   string `mapstructure:"log-level"`

	// --- Journal fields ---
	JournalBackend   string `mapstructure:"journal-backend"`
	JournalDBConnect string `mapstructure:"journal-db-connect"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Headers != nil {
		clone.Headers = maps.Clone(c.Headers)
	}
	return &clone
}

// LoadOptions returns the per-consumer options derived from this config for one source.
func (c *Config) LoadOptions(uri string) schema.LoadOptions {
	opts := schema.DefaultLoadOptions()
	opts.Source = schema.Source{URI: uri, Headers: c.Headers}
	opts.ThumbnailKey = c.ThumbnailKey
	opts.FadeDuration = c.FadeDuration
	opts.RetryLimit = c.RetryLimit
	opts.EnableCache = c.EnableCache
	opts.EnableLazy = c.EnableLazy
	opts.Progressive = c.Progressive
	return opts
}

// ProcessAndValidate reads from 'input' and populates 'cfg'.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateEngineInputs(cfg, input); err != nil {
		return err
	}
	if err := validateConsumerInputs(cfg, input); err != nil {
		return err
	}
	if err := validateOutputInputs(cfg, input); err != nil {
		return err
	}
	if err := validateJournalInputs(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("journal-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(host:port)'")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("journal-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateEngineInputs validates the process-wide engine settings.
func validateEngineInputs(cfg *Config, input *ConfigRawInput) error {
	if input.MaxEntries <= 0 || input.MaxEntries > MaxCacheEntries {
		return fmt.Errorf("max-entries must be greater than 0 and cannot exceed %d (received %d)", MaxCacheEntries, input.MaxEntries)
	}
	cfg.MaxEntries = input.MaxEntries

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	var err error
	if cfg.LazyDelay, err = parseNonNegativeDuration("lazy-delay", input.LazyDelay, schema.DefaultLazyDelay); err != nil {
		return err
	}
	if cfg.RetryBaseDelay, err = parseNonNegativeDuration("retry-base-delay", input.RetryBaseDelay, schema.DefaultRetryBaseDelay); err != nil {
		return err
	}
	if cfg.RetryBaseDelay == 0 {
		return fmt.Errorf("retry-base-delay must be greater than 0")
	}
	if cfg.FetchTimeout, err = parseNonNegativeDuration("fetch-timeout", input.FetchTimeout, 0); err != nil {
		return err
	}
	if cfg.HTTPTimeout, err = parseNonNegativeDuration("http-timeout", input.HTTPTimeout, DefaultHTTPTimeout); err != nil {
		return err
	}
	if cfg.HTTPTimeout == 0 {
		return fmt.Errorf("http-timeout must be greater than 0")
	}

	cfg.UserAgent = strings.TrimSpace(input.UserAgent)
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	return nil
}

// validateConsumerInputs validates the options applied to every consumer created by the CLI.
func validateConsumerInputs(cfg *Config, input *ConfigRawInput) error {
	if input.RetryLimit < 0 || input.RetryLimit > MaxRetryLimit {
		return fmt.Errorf("retry-limit must be between 0 and %d (received %d)", MaxRetryLimit, input.RetryLimit)
	}
	cfg.RetryLimit = input.RetryLimit

	var err error
	if cfg.FadeDuration, err = parseNonNegativeDuration("fade-duration", input.FadeDuration, schema.DefaultFadeDuration); err != nil {
		return err
	}

	cfg.EnableCache = !input.NoCache
	cfg.EnableLazy = !input.NoLazy
	cfg.Progressive = !input.NoProgressive
	cfg.ThumbnailKey = strings.TrimSpace(input.Thumbnail)

	headers, err := ParseHeaders(input.Header)
	if err != nil {
		return err
	}
	cfg.Headers = headers
	return nil
}

// validateOutputInputs validates output and logging settings.
func validateOutputInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", input.Output)
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(input.LogLevel))
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid --log-level value: %w", err)
	}
	return nil
}

// validateJournalInputs validates the journal backend configuration.
func validateJournalInputs(cfg *Config, input *ConfigRawInput) error {
	backend, err := ParseDatabaseBackend(input.JournalBackend)
	if err != nil {
		return err
	}
	cfg.JournalBackend = backend
	cfg.JournalDBConnect = input.JournalDBConnect
	return ValidateDatabaseConnectionString(cfg.JournalBackend, cfg.JournalDBConnect)
}

// ParseDatabaseBackend parses a backend name; an empty name means NoneBackend.
func ParseDatabaseBackend(s string) (schema.DatabaseBackend, error) {
	if strings.TrimSpace(s) == "" {
		return schema.NoneBackend, nil
	}
	backend := schema.DatabaseBackend(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", fmt.Errorf("invalid journal backend '%s'. must be sqlite, mysql, postgresql, none", s)
	}
	return backend, nil
}

// parseNonNegativeDuration parses a Go duration string, falling back to def when empty.
func parseNonNegativeDuration(name, value string, def time.Duration) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s '%s': %w", name, value, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s cannot be negative (received %s)", name, value)
	}
	return d, nil
}
