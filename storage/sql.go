package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/awantoch/visitorcount/model"
	"github.com/awantoch/visitorcount/utils"
)

// sqlQueries holds the dialect-specific statements for one table.
type sqlQueries struct {
	create string
	get    string
	insert string // must affect zero rows on key conflict
	upsert string
}

// sqlTable is the database/sql implementation shared by SQLite and Postgres.
type sqlTable struct {
	db      *sql.DB
	q       sqlQueries
	errWrap *utils.ErrorWrapper
}

func (s *sqlTable) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, s.q.create)
	return s.errWrap.Wrapf(err, "create table")
}

func (s *sqlTable) GetEntity(ctx context.Context, partitionKey, rowKey string) (*model.Entity, error) {
	var props []byte
	var updatedAt int64
	err := s.db.QueryRowContext(ctx, s.q.get, partitionKey, rowKey).Scan(&props, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(partitionKey, rowKey)
	}
	if err != nil {
		return nil, s.errWrap.Wrapf(err, "get %s/%s", partitionKey, rowKey)
	}
	decoded, err := decodeProperties(props)
	if err != nil {
		return nil, s.errWrap.Wrapf(err, "decode %s/%s", partitionKey, rowKey)
	}
	return &model.Entity{
		PartitionKey: partitionKey,
		RowKey:       rowKey,
		Properties:   decoded,
		Timestamp:    time.UnixMilli(updatedAt).UTC(),
	}, nil
}

func (s *sqlTable) CreateEntity(ctx context.Context, entity *model.Entity) error {
	if err := validEntity(entity); err != nil {
		return err
	}
	props, err := encodeProperties(entity.Properties)
	if err != nil {
		return s.errWrap.Wrapf(err, "encode %s", entity.Key())
	}
	res, err := s.db.ExecContext(ctx, s.q.insert, entity.PartitionKey, entity.RowKey, string(props), time.Now().UnixMilli())
	if err != nil {
		return s.errWrap.Wrapf(err, "create %s", entity.Key())
	}
	n, err := res.RowsAffected()
	if err != nil {
		return s.errWrap.Wrapf(err, "create %s", entity.Key())
	}
	if n == 0 {
		return alreadyExists(entity)
	}
	return nil
}

func (s *sqlTable) UpsertEntity(ctx context.Context, entity *model.Entity) error {
	if err := validEntity(entity); err != nil {
		return err
	}
	props, err := encodeProperties(entity.Properties)
	if err != nil {
		return s.errWrap.Wrapf(err, "encode %s", entity.Key())
	}
	_, err = s.db.ExecContext(ctx, s.q.upsert, entity.PartitionKey, entity.RowKey, string(props), time.Now().UnixMilli())
	return s.errWrap.Wrapf(err, "upsert %s", entity.Key())
}

// Close closes the underlying SQL database connection.
func (s *sqlTable) Close() error {
	return s.db.Close()
}

func quoteIdent(name string) string {
	return fmt.Sprintf("%q", name)
}
