package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/assetload/core"
	"github.com/huangsam/assetload/internal/contract"
	"github.com/huangsam/assetload/internal/fetch"
	"github.com/huangsam/assetload/internal/iocache"
	"github.com/huangsam/assetload/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "assetload",
	Short:              "Load, retry and cache remote images.",
	Long:               `Assetload fetches remote images with lazy admission, bounded retries and a shared in-memory cache.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig sets up config discovery, ENV variables and defaults.
func initConfig() {
	configureConfigFile()

	// Set environment variable prefix
	viper.SetEnvPrefix("ASSETLOAD")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("max-entries", schema.DefaultMaxEntries)
	viper.SetDefault("workers", contract.DefaultWorkers)
	viper.SetDefault("retry-limit", schema.DefaultRetryLimit)
	viper.SetDefault("lazy-delay", schema.DefaultLazyDelay.String())
	viper.SetDefault("retry-base-delay", schema.DefaultRetryBaseDelay.String())
	viper.SetDefault("fade-duration", schema.DefaultFadeDuration.String())
	viper.SetDefault("http-timeout", contract.DefaultHTTPTimeout.String())
	viper.SetDefault("user-agent", contract.DefaultUserAgent)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("color", "yes")
	viper.SetDefault("log-level", contract.DefaultLogLevel)
	viper.SetDefault("journal-backend", "")
	viper.SetDefault("journal-db-connect", "")
}

// configureConfigFile points viper at --config or the default .assetload.yaml locations.
func configureConfigFile() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		return
	}
	viper.SetConfigName(".assetload") // Name of config file (without extension)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME")
}

// loadConfigFile reads the config file if present.
func loadConfigFile() error {
	configureConfigFile()
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// sharedSetup unmarshals config, runs validation and opens the load journal.
func sharedSetup(_ context.Context, _ *cobra.Command, _ []string) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := loadConfigFile(); err != nil {
		return err
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Run all validation and complex parsing.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}

	// 4. Apply process-wide presentation settings.
	if err := contract.SetLogLevel(cfg.LogLevel); err != nil {
		return err
	}
	color.NoColor = color.NoColor || !cfg.UseColors

	// 5. Initialize the journal with validated config
	if err := iocache.InitStores(cfg.JournalBackend, cfg.JournalDBConnect); err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	return nil
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// newEngine builds the engine and HTTP collaborators from the validated config.
func newEngine() (*core.Engine, *fetch.Client) {
	client := fetch.NewClient(fetch.Options{
		Timeout:   cfg.HTTPTimeout,
		UserAgent: cfg.UserAgent,
		Logger:    contract.Logger(),
	})
	engine := core.NewEngine(client, core.Options{
		MaxEntries:     cfg.MaxEntries,
		LazyDelay:      cfg.LazyDelay,
		RetryBaseDelay: cfg.RetryBaseDelay,
		FetchTimeout:   cfg.FetchTimeout,
		Workers:        cfg.Workers,
		Logger:         contract.Logger(),
		Journal:        iocache.Manager.GetJournalStore(),
	})
	return engine, client
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(rootCtx)
}
