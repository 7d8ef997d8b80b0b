package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/awantoch/visitorcount/model"
)

var (
	// ErrNotFound is returned by GetEntity when no entity has the key.
	ErrNotFound = errors.New("entity not found")
	// ErrAlreadyExists is returned by CreateEntity when the key is taken.
	ErrAlreadyExists = errors.New("entity already exists")
)

// Table is a key-value table of entities addressed by (partition, row).
type Table interface {
	GetEntity(ctx context.Context, partitionKey, rowKey string) (*model.Entity, error)
	CreateEntity(ctx context.Context, entity *model.Entity) error
	// UpsertEntity replaces the whole entity, creating it if needed.
	UpsertEntity(ctx context.Context, entity *model.Entity) error
}

var tableNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,62}$`)

// validTableName guards table names that end up interpolated into SQL or
// object keys.
func validTableName(name string) error {
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name %q", name)
	}
	return nil
}

func validEntity(e *model.Entity) error {
	if e == nil {
		return fmt.Errorf("nil entity")
	}
	if e.PartitionKey == "" || e.RowKey == "" {
		return fmt.Errorf("entity requires partition and row keys")
	}
	return nil
}

func notFound(partitionKey, rowKey string) error {
	return fmt.Errorf("%s/%s: %w", partitionKey, rowKey, ErrNotFound)
}

func alreadyExists(e *model.Entity) error {
	return fmt.Errorf("%s: %w", e.Key(), ErrAlreadyExists)
}

func encodeProperties(props map[string]any) ([]byte, error) {
	if props == nil {
		props = map[string]any{}
	}
	return json.Marshal(props)
}

// decodeProperties keeps numbers as json.Number so integer counts survive
// the round trip exactly.
func decodeProperties(data []byte) (map[string]any, error) {
	props := map[string]any{}
	if len(data) == 0 {
		return props, nil
	}
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	if err := dec.Decode(&props); err != nil {
		return nil, err
	}
	return props, nil
}
