package index

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/DikshantJo/code-review-sub002/pkg/audit"
)

// SQLiteConfig contains configuration for the SQLite index.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         filepath.Join("logs", "audit-index.db"),
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteIndex implements audit.Index using SQLite.
type SQLiteIndex struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteIndex opens (creating if needed) an SQLite index.
func NewSQLiteIndex(config *SQLiteConfig) (*SQLiteIndex, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "audit.index.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, audit.NewIndexError("sqlite", "open", err)
	}

	if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(config.MaxIdleConns)
	}

	idx := &SQLiteIndex{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := idx.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite index initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)

	return idx, nil
}

// initialize sets up the schema and connection pragmas.
func (s *SQLiteIndex) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return audit.NewIndexError("sqlite", "enable_wal", err)
		}
	}

	if ms := s.config.BusyTimeout.Milliseconds(); ms > 0 {
		if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", ms)); err != nil {
			return audit.NewIndexError("sqlite", "set_busy_timeout", err)
		}
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return audit.NewIndexError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return audit.NewIndexError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return audit.NewIndexError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return audit.NewIndexError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Store inserts the summary of one persisted record.
func (s *SQLiteIndex) Store(ctx context.Context, entry *audit.IndexEntry) error {
	_, err := s.db.ExecContext(ctx, insertRecord,
		entry.AuditID,
		entry.Timestamp.UnixMilli(),
		entry.EventType,
		string(entry.Level),
		string(entry.Category),
		entry.ChainIndex,
		entry.Hash,
		entry.ComplianceValid,
		entry.File,
	)
	if err != nil {
		return audit.NewIndexError("sqlite", "store", err)
	}
	return nil
}

// Query returns matching entries, newest first.
func (s *SQLiteIndex) Query(ctx context.Context, query *audit.IndexQuery) ([]*audit.IndexEntry, error) {
	if err := Validate(query); err != nil {
		return nil, err
	}

	where, args := buildWhereClause(query)

	sqlQuery := "SELECT " + selectColumns + " FROM records"
	if where != "" {
		sqlQuery += " WHERE " + where
	}
	sqlQuery += " ORDER BY timestamp_ms DESC, rowid DESC"
	sqlQuery += fmt.Sprintf(" LIMIT %d", limitOf(query))
	if query != nil && query.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, audit.NewIndexError("sqlite", "query", err)
	}
	defer rows.Close()

	entries := []*audit.IndexEntry{}
	for rows.Next() {
		entry, err := scanRow(rows)
		if err != nil {
			return nil, audit.NewIndexError("sqlite", "scan", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, audit.NewIndexError("sqlite", "query", err)
	}

	return entries, nil
}

// Count returns the number of matching entries. Limit and offset are ignored.
func (s *SQLiteIndex) Count(ctx context.Context, query *audit.IndexQuery) (int64, error) {
	if err := Validate(query); err != nil {
		return 0, err
	}

	where, args := buildWhereClause(query)

	sqlQuery := "SELECT COUNT(*) FROM records"
	if where != "" {
		sqlQuery += " WHERE " + where
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, audit.NewIndexError("sqlite", "count", err)
	}
	return count, nil
}

// Close releases the database connection.
func (s *SQLiteIndex) Close() error {
	if err := s.db.Close(); err != nil {
		return audit.NewIndexError("sqlite", "close", err)
	}
	s.logger.Info("SQLite index closed")
	return nil
}

// buildWhereClause returns the WHERE clause (without "WHERE") and its arguments.
func buildWhereClause(query *audit.IndexQuery) (string, []any) {
	if query == nil {
		return "", nil
	}

	var conditions []string
	var args []any

	if query.StartTime != nil {
		conditions = append(conditions, "timestamp_ms >= ?")
		args = append(args, query.StartTime.UnixMilli())
	}
	if query.EndTime != nil {
		conditions = append(conditions, "timestamp_ms < ?")
		args = append(args, query.EndTime.UnixMilli())
	}
	if query.EventType != "" {
		conditions = append(conditions, "event_type = ?")
		args = append(args, query.EventType)
	}
	if query.Level != "" {
		conditions = append(conditions, "level = ?")
		args = append(args, string(query.Level))
	}
	if query.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, string(query.Category))
	}
	if query.ComplianceValid != nil {
		conditions = append(conditions, "compliance_valid = ?")
		args = append(args, *query.ComplianceValid)
	}

	return strings.Join(conditions, " AND "), args
}

func scanRow(rows *sql.Rows) (*audit.IndexEntry, error) {
	var entry audit.IndexEntry
	var ms int64
	var level, category string

	err := rows.Scan(
		&entry.AuditID,
		&ms,
		&entry.EventType,
		&level,
		&category,
		&entry.ChainIndex,
		&entry.Hash,
		&entry.ComplianceValid,
		&entry.File,
	)
	if err != nil {
		return nil, err
	}

	entry.Timestamp = time.UnixMilli(ms).UTC()
	entry.Level = audit.Level(level)
	entry.Category = audit.Category(category)
	return &entry, nil
}
