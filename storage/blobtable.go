package storage

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"time"

	"github.com/awantoch/visitorcount/blob"
	"github.com/awantoch/visitorcount/constants"
	"github.com/awantoch/visitorcount/model"
	"github.com/awantoch/visitorcount/utils"
)

// BlobTable stores each entity as a JSON object at <table>/<partition>/<row>.json
// in a blob store. Create uses the store's conditional write; upsert is a
// plain overwrite.
type BlobTable struct {
	store   blob.BlobStore
	table   string
	errWrap *utils.ErrorWrapper
}

var _ Table = (*BlobTable)(nil)

type blobEntity struct {
	PartitionKey string         `json:"PartitionKey"`
	RowKey       string         `json:"RowKey"`
	Properties   map[string]any `json:"properties"`
	Timestamp    time.Time      `json:"Timestamp"`
}

func NewBlobTable(store blob.BlobStore, table string) (*BlobTable, error) {
	if err := validTableName(table); err != nil {
		return nil, err
	}
	return &BlobTable{store: store, table: table, errWrap: utils.NewErrorWrapper("blob table")}, nil
}

func (b *BlobTable) key(partitionKey, rowKey string) string {
	return b.table + "/" + url.PathEscape(partitionKey) + "/" + url.PathEscape(rowKey) + ".json"
}

func (b *BlobTable) GetEntity(ctx context.Context, partitionKey, rowKey string) (*model.Entity, error) {
	data, err := b.store.Get(ctx, b.store.URL(b.key(partitionKey, rowKey)))
	if errors.Is(err, blob.ErrNotFound) {
		return nil, notFound(partitionKey, rowKey)
	}
	if err != nil {
		return nil, b.errWrap.Wrapf(err, "get %s/%s", partitionKey, rowKey)
	}
	var raw struct {
		Properties json.RawMessage `json:"properties"`
		Timestamp  time.Time       `json:"Timestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, b.errWrap.Wrapf(err, "decode %s/%s", partitionKey, rowKey)
	}
	props, err := decodeProperties(raw.Properties)
	if err != nil {
		return nil, b.errWrap.Wrapf(err, "decode %s/%s", partitionKey, rowKey)
	}
	return &model.Entity{
		PartitionKey: partitionKey,
		RowKey:       rowKey,
		Properties:   props,
		Timestamp:    raw.Timestamp,
	}, nil
}

func (b *BlobTable) CreateEntity(ctx context.Context, entity *model.Entity) error {
	data, err := b.encode(entity)
	if err != nil {
		return err
	}
	_, err = b.store.PutIfAbsent(ctx, data, constants.ContentTypeJSON, b.key(entity.PartitionKey, entity.RowKey))
	if errors.Is(err, blob.ErrExists) {
		return alreadyExists(entity)
	}
	return b.errWrap.Wrapf(err, "create %s", entity.Key())
}

func (b *BlobTable) UpsertEntity(ctx context.Context, entity *model.Entity) error {
	data, err := b.encode(entity)
	if err != nil {
		return err
	}
	_, err = b.store.Put(ctx, data, constants.ContentTypeJSON, b.key(entity.PartitionKey, entity.RowKey))
	return b.errWrap.Wrapf(err, "upsert %s", entity.Key())
}

func (b *BlobTable) encode(entity *model.Entity) ([]byte, error) {
	if err := validEntity(entity); err != nil {
		return nil, err
	}
	props := entity.Properties
	if props == nil {
		props = map[string]any{}
	}
	res := utils.MarshalJSON(blobEntity{
		PartitionKey: entity.PartitionKey,
		RowKey:       entity.RowKey,
		Properties:   props,
		Timestamp:    time.Now().UTC(),
	})
	if res.Err != nil {
		return nil, b.errWrap.Wrapf(res.Err, "encode %s", entity.Key())
	}
	return res.Data, nil
}
