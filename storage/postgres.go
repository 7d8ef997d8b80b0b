package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/awantoch/visitorcount/utils"
	_ "github.com/lib/pq"
)

// PostgresTable implements Table on a Postgres table with a JSONB
// properties column.
type PostgresTable struct {
	sqlTable
}

var _ Table = (*PostgresTable)(nil)

func NewPostgresTable(ctx context.Context, dsn, table string) (*PostgresTable, error) {
	if err := validTableName(table); err != nil {
		return nil, err
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	name := quoteIdent(table)
	p := &PostgresTable{sqlTable{
		db:      db,
		errWrap: utils.NewErrorWrapper("postgres"),
		q: sqlQueries{
			create: fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	partition_key TEXT NOT NULL,
	row_key TEXT NOT NULL,
	properties JSONB NOT NULL,
	updated_at BIGINT NOT NULL,
	PRIMARY KEY (partition_key, row_key)
)`, name),
			get: fmt.Sprintf(`SELECT properties, updated_at FROM %s WHERE partition_key=$1 AND row_key=$2`, name),
			insert: fmt.Sprintf(`
INSERT INTO %s (partition_key, row_key, properties, updated_at)
VALUES ($1, $2, $3::jsonb, $4)
ON CONFLICT (partition_key, row_key) DO NOTHING`, name),
			upsert: fmt.Sprintf(`
INSERT INTO %s (partition_key, row_key, properties, updated_at)
VALUES ($1, $2, $3::jsonb, $4)
ON CONFLICT (partition_key, row_key) DO UPDATE SET properties=EXCLUDED.properties, updated_at=EXCLUDED.updated_at`, name),
		},
	}}
	if err := p.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}
