package cmd

import (
	"fmt"

	"github.com/huangsam/assetload/internal/contract"
	"github.com/huangsam/assetload/internal/iocache"
	"github.com/huangsam/assetload/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// journalSettings reads the journal backend and connection string without
// the full shared setup.
func journalSettings() (schema.DatabaseBackend, string, error) {
	if err := loadConfigFile(); err != nil {
		return "", "", err
	}

	backend, err := contract.ParseDatabaseBackend(viper.GetString("journal-backend"))
	if err != nil {
		return "", "", err
	}
	connStr := viper.GetString("journal-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// journalSetup loads minimal configuration needed for journal operations.
func journalSetup() error {
	backend, connStr, err := journalSettings()
	if err != nil {
		return err
	}
	if err := iocache.InitStores(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize load journal: %w", err)
	}

	cfg.JournalBackend = backend
	cfg.JournalDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// journalSetupWrapper wraps journalSetup to provide PreRunE for journal commands.
func journalSetupWrapper(_ *cobra.Command, _ []string) error {
	return journalSetup()
}

// journalMigrateSetup does NOT initialize stores or create tables,
// allowing migrations to run on a fresh database.
func journalMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := journalSettings()
	if err != nil {
		return err
	}
	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetJournalDBFilePath()
	}
	cfg.JournalBackend = backend
	cfg.JournalDBConnect = connStr
	return nil
}

// journalCmd focused on load journal management.
//
// Note: journal subcommands use minimal initialization instead of the full
// sharedSetup, since they never build an engine.
var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Manage the load journal and its exports",
	Long: `Manage the journal of terminal load outcomes.

When enabled, every session and preload that reaches a terminal state records
its key, outcome, attempts, duration, error kind and cache hit.

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, default)

Examples:
  assetload journal status --journal-backend sqlite
  assetload journal export --journal-backend sqlite --output-file loads.parquet`,
}

// journalStatusCmd shows journal status.
var journalStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display journal statistics and connection details",
	PreRunE: journalSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetJournalStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get journal status", err)
		}
		iocache.PrintJournalStatus(cmd.OutOrStdout(), status)
	},
}

// journalClearCmd clears the journal.
var journalClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every journal record",
	Long: `Delete all stored load outcomes.

WARNING: This action cannot be undone. Consider exporting data first.`,
	PreRunE: journalSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		// The SQLite file cannot be removed while it is open
		iocache.CloseStores()
		if err := iocache.ClearJournal(cfg.JournalBackend, sqlitePath(), cfg.JournalDBConnect); err != nil {
			contract.LogFatal("Failed to clear load journal", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Load journal cleared successfully.")
	},
}

// journalExportCmd exports the journal to a Parquet file.
var journalExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the journal to Parquet for BI tools and analytics",
	Long: `Export all journal records to a Parquet file.

Requires: --output-file parameter

Examples:
  assetload journal export --journal-backend sqlite --output-file loads.parquet
  duckdb -c "SELECT outcome, count(*) FROM read_parquet('loads.parquet') GROUP BY 1"`,
	PreRunE: journalSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		if err := iocache.ExecuteJournalExport(iocache.Manager.GetJournalStore(), cfg.OutputFile, cmd.OutOrStdout()); err != nil {
			contract.LogFatal("Failed to export load journal", err)
		}
	},
}

// journalMigrateCmd runs schema migrations.
var journalMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations for the journal",
	Long: `Apply or roll back the embedded journal schema migrations.

Examples:
  # Migrate to the latest version
  assetload journal migrate --journal-backend sqlite

  # Roll back everything
  assetload journal migrate --journal-backend sqlite --to 0`,
	PreRunE: journalMigrateSetup,
	Run: func(cmd *cobra.Command, _ []string) {
		if err := iocache.MigrateJournal(cfg.JournalBackend, cfg.JournalDBConnect, viper.GetInt("to"), cmd.OutOrStdout()); err != nil {
			contract.LogFatal("Failed to migrate load journal", err)
		}
	},
}

// sqlitePath returns the SQLite file of the journal.
func sqlitePath() string {
	if cfg.JournalBackend == schema.SQLiteBackend && cfg.JournalDBConnect != "" {
		return cfg.JournalDBConnect
	}
	return contract.GetJournalDBFilePath()
}
