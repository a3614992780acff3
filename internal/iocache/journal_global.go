package iocache

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/assetload/internal/contract"
	"github.com/huangsam/assetload/schema"
)

// Global Manager instance for main logic.
var (
	Manager   = &JournalStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// GetJournalDBFilePath returns the path to the SQLite DB file for journal storage.
func GetJournalDBFilePath() string {
	return contract.GetJournalDBFilePath()
}

// InitStores initializes the global manager with the journal store.
// An empty backend disables the journal.
func InitStores(backend schema.DatabaseBackend, connStr string) error {
	var initErr error

	initOnce.Do(func() {
		if backend == "" {
			backend = schema.NoneBackend
		}
		store, err := NewJournalStore(backend, connStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize load journal: %w", err)
			return
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.journal = store
	})

	return initErr
}

// CloseStores should be called on application shutdown.
func CloseStores() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.journal != nil {
			_ = Manager.journal.Close()
		}
	})
}

// ClearJournal removes every journal record for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the table.
// For NoneBackend, it does nothing.
func ClearJournal(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		if dbFilePath == "" {
			return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
		}
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend:
		return clearSQLTables("mysql", connStr, backend)

	case schema.PostgreSQLBackend:
		return clearSQLTables("pgx", connStr, backend)

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported journal backend for clearing: %s", backend)
	}
}

// clearSQLTables drops the journal table and the migration bookkeeping table.
func clearSQLTables(driverName, connStr string, backend schema.DatabaseBackend) error {
	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", driverName, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", driverName, err)
	}

	for _, table := range []string{journalTable, migrationsTable} {
		if err := validateTableName(table); err != nil {
			return err
		}
		query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(table, backend))
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}
