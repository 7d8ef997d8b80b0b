package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/awantoch/visitorcount/utils"
	_ "modernc.org/sqlite"
)

// SqliteTable implements Table using SQLite as the backend.
type SqliteTable struct {
	sqlTable
}

var _ Table = (*SqliteTable)(nil)

func NewSqliteTable(ctx context.Context, dsn, table string) (*SqliteTable, error) {
	if err := validTableName(table); err != nil {
		return nil, err
	}
	path := sqliteFilePath(dsn)
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, utils.Errorf("failed to create db directory %q: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if path == "" {
		// every new connection would open a fresh empty database
		db.SetMaxOpenConns(1)
	}
	name := quoteIdent(table)
	s := &SqliteTable{sqlTable{
		db:      db,
		errWrap: utils.NewErrorWrapper("sqlite"),
		q: sqlQueries{
			create: fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	partition_key TEXT NOT NULL,
	row_key TEXT NOT NULL,
	properties TEXT NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (partition_key, row_key)
);`, name),
			get: fmt.Sprintf(`SELECT properties, updated_at FROM %s WHERE partition_key=? AND row_key=?`, name),
			insert: fmt.Sprintf(`
INSERT INTO %s (partition_key, row_key, properties, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(partition_key, row_key) DO NOTHING`, name),
			upsert: fmt.Sprintf(`
INSERT INTO %s (partition_key, row_key, properties, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(partition_key, row_key) DO UPDATE SET properties=excluded.properties, updated_at=excluded.updated_at`, name),
		},
	}}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// sqliteFilePath returns the database file behind a plain path or a file: URI
// DSN, or "" for in-memory databases.
func sqliteFilePath(dsn string) string {
	path := dsn
	if strings.HasPrefix(strings.ToLower(path), "file:") {
		path = path[len("file:"):]
		query := ""
		if i := strings.IndexByte(path, '?'); i >= 0 {
			path, query = path[:i], path[i+1:]
		}
		if strings.HasPrefix(path, "//") {
			path = path[2:]
		}
		if strings.Contains(query, "mode=memory") {
			return ""
		}
	}
	if path == "" || path == ":memory:" {
		return ""
	}
	return path
}
