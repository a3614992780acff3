package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/assetload/schema"
)

// Outcome label constants.
const (
	LoadedValue   = "Loaded"   // Loaded value
	CachedValue   = "Cached"   // Loaded from cache
	FailedValue   = "Failed"   // Failed permanently
	ConfigValue   = "Invalid"  // Configuration error
	PendingValue  = "Pending"  // Never reached a terminal state
	RetryingValue = "Retrying" // Waiting on backoff
)

// Color variables for console output.
var (
	LoadedColor  = color.New(color.FgGreen, color.Bold) // LoadedColor represents success.
	CachedColor  = color.New(color.FgCyan)              // CachedColor represents a cache short-circuit.
	FailedColor  = color.New(color.FgRed, color.Bold)   // FailedColor represents a terminal failure.
	PendingColor = color.New(color.FgYellow)            // PendingColor represents unfinished work.
)

// GetPlainLabel returns a plain text label for a fetch outcome. This is the core logic used
// for CSV, JSON, and table printing.
func GetPlainLabel(res schema.FetchResult) string {
	switch {
	case res.State == schema.LoadedState && res.FromCache:
		return CachedValue
	case res.State == schema.LoadedState:
		return LoadedValue
	case res.State == schema.FailedPermanentlyState && res.Kind == schema.ConfigurationError:
		return ConfigValue
	case res.State == schema.FailedPermanentlyState:
		return FailedValue
	case res.State == schema.RetryScheduledState:
		return RetryingValue
	default:
		return PendingValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
func GetColorLabel(res schema.FetchResult) string {
	text := GetPlainLabel(res)

	switch text {
	case LoadedValue:
		return LoadedColor.Sprint(text)
	case CachedValue:
		return CachedColor.Sprint(text)
	case FailedValue, ConfigValue:
		return FailedColor.Sprint(text)
	default:
		return PendingColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout on an empty path.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// GetJournalDBFilePath returns the path to the SQLite DB file for journal storage.
func GetJournalDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".assetload_journal.db"
	}
	return filepath.Join(homeDir, ".assetload_journal.db")
}

// TruncateKey truncates a resource key to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to ensure there's space for both the "..." prefix and at least one character of content.
func TruncateKey(key string, maxWidth int) string {
	runes := []rune(key)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return key
}

// ParseHeaders parses repeated "Name=Value" (or "Name: Value") pairs into a header map.
func ParseHeaders(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			name, value, ok = strings.Cut(pair, ":")
		}
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q (expected Name=Value)", pair)
		}
		headers[name] = strings.TrimSpace(value)
	}
	return headers, nil
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
