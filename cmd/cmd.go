// Package cmd defines the command-line interface for assetload.
package cmd

import (
	"github.com/huangsam/assetload/internal/contract"
	"github.com/huangsam/assetload/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(preloadCmd)
	rootCmd.AddCommand(journalCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the journal subcommands to the parent journal command
	journalCmd.AddCommand(journalStatusCmd)
	journalCmd.AddCommand(journalClearCmd)
	journalCmd.AddCommand(journalExportCmd)
	journalCmd.AddCommand(journalMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	flags := rootCmd.PersistentFlags()
	flags.Int("max-entries", schema.DefaultMaxEntries, "Maximum number of entries in the in-memory cache")
	flags.String("lazy-delay", schema.DefaultLazyDelay.String(), "Delay before a lazy load is admitted")
	flags.String("retry-base-delay", schema.DefaultRetryBaseDelay.String(), "Base backoff; retry n waits base*(n+1)")
	flags.Int("retry-limit", schema.DefaultRetryLimit, "Retries after the first attempt")
	flags.String("fade-duration", schema.DefaultFadeDuration.String(), "Fade-in duration of the full image")
	flags.String("fetch-timeout", "", "Fail an attempt that has not reported within this duration (empty disables)")
	flags.String("http-timeout", contract.DefaultHTTPTimeout.String(), "Timeout of a single HTTP request")
	flags.String("user-agent", contract.DefaultUserAgent, "User-Agent header sent with every request")
	flags.Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	flags.Bool("no-cache", false, "Bypass the in-memory cache")
	flags.Bool("no-lazy", false, "Admit loads immediately instead of after the lazy delay")
	flags.Bool("no-progressive", false, "Skip the blurred thumbnail layer")
	flags.String("thumbnail", "", "Low-resolution key shown blurred while loading")
	flags.StringArray("header", nil, "Request header as Name=Value (repeatable)")
	flags.String("output", string(schema.TextOut), "Output format: text or csv or json")
	flags.String("output-file", "", "Optional path to write output to")
	flags.Int("width", 0, "Terminal width override (0 = auto-detect)")
	flags.String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	flags.String("log-level", contract.DefaultLogLevel, "Log level: debug or info or warn or error")
	flags.String("journal-backend", "", "Load journal backend: sqlite or mysql or postgresql or none")
	flags.String("journal-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	flags.String("config", "", "Path to config file")
	if err := viper.BindPFlags(flags); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	fetchCmd.Flags().Bool("stats", false, "Print cache statistics after the results")
	if err := viper.BindPFlags(fetchCmd.Flags()); err != nil {
		contract.LogFatal("Error binding fetch flags", err)
	}

	journalMigrateCmd.Flags().Int("to", -1, "Target schema version (-1 = latest, 0 = roll back everything)")
	if err := viper.BindPFlags(journalMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding migrate flags", err)
	}
}
