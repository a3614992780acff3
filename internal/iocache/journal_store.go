package iocache

import (
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/assetload/internal/contract"
	"github.com/huangsam/assetload/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// Table names for the load journal.
const (
	journalTable    = "assetload_load_journal"
	migrationsTable = "assetload_schema_migrations"
)

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// JournalStoreImpl implements the JournalStore interface.
type JournalStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	dbName  string // MySQL schema name, used for size estimates
}

var _ contract.JournalStore = &JournalStoreImpl{} // Compile-time check

// NewJournalStore creates a new JournalStore with the specified backend.
func NewJournalStore(backend schema.DatabaseBackend, connStr string) (*JournalStoreImpl, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled journaling
		return &JournalStoreImpl{backend: backend}, nil
	}

	db, dbName, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database file is accessible."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}

	if _, err := db.Exec(getCreateJournalQuery(backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", journalTable, err)
	}

	return &JournalStoreImpl{db: db, backend: backend, dbName: dbName}, nil
}

// openDB opens (without pinging) the database for a backend.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, string, error) {
	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = GetJournalDBFilePath()
		}
		db, err := sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
		return db, "", nil

	case schema.MySQLBackend:
		cfg, err := mysql.ParseDSN(connStr)
		if err != nil {
			return nil, "", fmt.Errorf("invalid MySQL connection string: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}
		cfg.ParseTime = true
		db, err := sql.Open("mysql", cfg.FormatDSN())
		if err != nil {
			return nil, "", fmt.Errorf("failed to open MySQL database: %w", err)
		}
		return db, cfg.DBName, nil

	case schema.PostgreSQLBackend:
		db, err := sql.Open("pgx", connStr)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}
		return db, "", nil

	default:
		return nil, "", fmt.Errorf("unsupported journal backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}
}

// getCreateJournalQuery returns the CREATE TABLE query for the load journal.
func getCreateJournalQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(journalTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				record_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				session_id VARCHAR(64) NOT NULL,
				resource_key VARCHAR(2048) NOT NULL,
				origin VARCHAR(16) NOT NULL,
				outcome VARCHAR(32) NOT NULL,
				attempts INT NOT NULL,
				duration_ms BIGINT NOT NULL,
				error_kind VARCHAR(32),
				cache_hit BOOLEAN NOT NULL,
				recorded_at DATETIME(6) NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				record_id BIGSERIAL PRIMARY KEY,
				session_id TEXT NOT NULL,
				resource_key TEXT NOT NULL,
				origin TEXT NOT NULL,
				outcome TEXT NOT NULL,
				attempts INT NOT NULL,
				duration_ms BIGINT NOT NULL,
				error_kind TEXT,
				cache_hit BOOLEAN NOT NULL,
				recorded_at TIMESTAMPTZ NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				record_id INTEGER PRIMARY KEY AUTOINCREMENT,
				session_id TEXT NOT NULL,
				resource_key TEXT NOT NULL,
				origin TEXT NOT NULL,
				outcome TEXT NOT NULL,
				attempts INTEGER NOT NULL,
				duration_ms INTEGER NOT NULL,
				error_kind TEXT,
				cache_hit INTEGER NOT NULL,
				recorded_at TEXT NOT NULL
			);
		`, quotedTableName)
	}
}

// Record stores one terminal load outcome.
func (js *JournalStoreImpl) Record(rec schema.JournalRecord) error {
	// Skip for NoneBackend
	if js.backend == schema.NoneBackend || js.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(journalTable, js.backend)
	columns := "session_id, resource_key, origin, outcome, attempts, duration_ms, error_kind, cache_hit, recorded_at"

	var query string
	switch js.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`, quotedTableName, columns)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, quotedTableName, columns)
	}

	recordedAt := rec.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}
	_, err := js.db.Exec(query,
		rec.SessionID, rec.Key, string(rec.Origin), string(rec.Outcome), rec.Attempts,
		rec.DurationMs, rec.ErrorKind, rec.CacheHit, formatTime(recordedAt, js.backend),
	)
	if err != nil {
		return fmt.Errorf("failed to insert journal record: %w", err)
	}
	return nil
}

// GetAllRecords retrieves every journal record ordered by record ID.
func (js *JournalStoreImpl) GetAllRecords() ([]schema.JournalRecord, error) {
	// Skip for NoneBackend
	if js.backend == schema.NoneBackend || js.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT record_id, session_id, resource_key, origin, outcome, attempts,
    duration_ms, error_kind, cache_hit, recorded_at
    FROM %s ORDER BY record_id`, quoteTableName(journalTable, js.backend))

	rows, err := js.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.JournalRecord
	for rows.Next() {
		var record schema.JournalRecord
		var origin, outcome string
		var recordedAt any

		if err := rows.Scan(&record.RecordID, &record.SessionID, &record.Key, &origin, &outcome,
			&record.Attempts, &record.DurationMs, &record.ErrorKind, &record.CacheHit, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan journal record: %w", err)
		}
		record.Origin = schema.JournalOrigin(origin)
		record.Outcome = schema.LoadState(outcome)
		if record.RecordedAt, err = parseTime(recordedAt); err != nil {
			return nil, fmt.Errorf("failed to parse recorded_at: %w", err)
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal records: %w", err)
	}
	return results, nil
}

// Close closes the underlying connection.
func (js *JournalStoreImpl) Close() error {
	if js.db != nil {
		return js.db.Close()
	}
	return nil
}

// GetStatus returns status information about the journal store.
func (js *JournalStoreImpl) GetStatus() (schema.JournalStatus, error) {
	status := schema.JournalStatus{
		Backend:   string(js.backend),
		Connected: js.db != nil,
		Outcomes:  make(map[schema.LoadState]int64),
		Origins:   make(map[schema.JournalOrigin]int64),
	}

	if js.backend == schema.NoneBackend || js.db == nil {
		return status, nil
	}

	quotedTableName := quoteTableName(journalTable, js.backend)

	row := js.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTableName))
	if err := row.Scan(&status.TotalRecords); err != nil {
		return status, fmt.Errorf("failed to get total records: %w", err)
	}
	if status.TotalRecords == 0 {
		return status, nil
	}

	var err error
	if status.LastRecordTime, err = js.queryTime(fmt.Sprintf("SELECT recorded_at FROM %s ORDER BY record_id DESC LIMIT 1", quotedTableName)); err != nil {
		return status, fmt.Errorf("failed to get last record time: %w", err)
	}
	if status.OldestRecordTime, err = js.queryTime(fmt.Sprintf("SELECT recorded_at FROM %s ORDER BY record_id ASC LIMIT 1", quotedTableName)); err != nil {
		return status, fmt.Errorf("failed to get oldest record time: %w", err)
	}

	outcomes, err := js.countBy("outcome")
	if err != nil {
		return status, err
	}
	for k, v := range outcomes {
		status.Outcomes[schema.LoadState(k)] = v
	}
	origins, err := js.countBy("origin")
	if err != nil {
		return status, err
	}
	for k, v := range origins {
		status.Origins[schema.JournalOrigin(k)] = v
	}

	status.TableSizeBytes = js.tableSize(status.TotalRecords)
	return status, nil
}

func (js *JournalStoreImpl) queryTime(query string) (time.Time, error) {
	var raw any
	if err := js.db.QueryRow(query).Scan(&raw); err != nil {
		return time.Time{}, err
	}
	return parseTime(raw)
}

// countBy groups the journal by a fixed, trusted column name.
func (js *JournalStoreImpl) countBy(column string) (map[string]int64, error) {
	query := fmt.Sprintf("SELECT %s, COUNT(*) FROM %s GROUP BY %s", column, quoteTableName(journalTable, js.backend), column)
	rows, err := js.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to count by %s: %w", column, err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int64)
	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("failed to scan %s count: %w", column, err)
		}
		counts[key] = count
	}
	return counts, rows.Err()
}

// tableSize estimates the on-disk size of the journal.
func (js *JournalStoreImpl) tableSize(totalRecords int) int64 {
	fallback := int64(totalRecords) * 200 // Rough estimate

	var size int64
	var row *sql.Row
	switch js.backend {
	case schema.SQLiteBackend:
		row = js.db.QueryRow("SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()")
	case schema.MySQLBackend:
		if js.dbName == "" {
			return fallback
		}
		row = js.db.QueryRow("SELECT data_length + index_length FROM information_schema.tables WHERE table_schema = ? AND table_name = ?", js.dbName, journalTable)
	case schema.PostgreSQLBackend:
		row = js.db.QueryRow("SELECT pg_total_relation_size($1)", journalTable)
	default:
		return fallback
	}
	if err := row.Scan(&size); err != nil {
		return fallback
	}
	return size
}

// validateTableName validates that the table name is a safe SQL identifier.
func validateTableName(name string) error {
	if name == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name: %s (must match pattern %s)", name, tableNamePattern)
	}
	return nil
}

// quoteTableName returns the properly quoted table name for the given backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("`%s`", name)
	default: // SQLite and PostgreSQL
		return fmt.Sprintf("\"%s\"", name)
	}
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return t
	}
}

// parseTime reads a timestamp scanned from any backend.
func parseTime(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		return time.Parse(time.RFC3339Nano, v)
	case []byte:
		return time.Parse(time.RFC3339Nano, string(v))
	case nil:
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("unexpected timestamp type %T", raw)
	}
}
