package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/lib/pq"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Config selects and locates a database
type Config struct {
	Dialect Dialect
	// DSN is a file path for sqlite and a connection string for postgres
	DSN          string
	MaxOpenConns int
}

// DB is a database handle that remembers its dialect
type DB struct {
	*sql.DB
	Dialect Dialect
}

// Rebind rewrites placeholders for this handle's dialect
func (db *DB) Rebind(query string) string {
	return db.Dialect.Rebind(query)
}

// Open opens and pings the database
func Open(ctx context.Context, cfg Config) (*DB, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, fmt.Errorf("%s dsn is required", cfg.Dialect)
	}

	maxOpen := cfg.MaxOpenConns
	switch cfg.Dialect {
	case DialectSQLite:
		dsn = sqliteDSN(dsn)
		// One writer at a time; a second connection would only surface
		// SQLITE_BUSY under contention.
		maxOpen = 1
	case DialectPostgres:
	default:
		return nil, fmt.Errorf("unsupported sql dialect %q", cfg.Dialect)
	}

	sqlDB, err := sql.Open(cfg.Dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", cfg.Dialect, err)
	}
	if maxOpen > 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
	}
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s db: %w", cfg.Dialect, err)
	}

	return &DB{DB: sqlDB, Dialect: cfg.Dialect}, nil
}

func sqliteDSN(path string) string {
	if path != ":memory:" && !strings.HasPrefix(path, "file:") {
		path = filepath.Clean(path)
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// IsUniqueViolation reports whether err is a primary key or unique
// constraint failure in either dialect
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
