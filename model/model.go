package model

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/awantoch/visitorcount/constants"
)

// Entity is a row in a table store, addressed by a (partition, row) key pair.
type Entity struct {
	PartitionKey string         `json:"PartitionKey"`
	RowKey       string         `json:"RowKey"`
	Properties   map[string]any `json:"properties,omitempty"`
	Timestamp    time.Time      `json:"Timestamp,omitempty"`
}

// Key returns the entity's composite key.
func (e *Entity) Key() EntityKey {
	return EntityKey{PartitionKey: e.PartitionKey, RowKey: e.RowKey}
}

// Clone returns a copy whose Properties map can be mutated independently.
func (e *Entity) Clone() *Entity {
	if e == nil {
		return nil
	}
	out := *e
	if e.Properties != nil {
		out.Properties = make(map[string]any, len(e.Properties))
		for k, v := range e.Properties {
			out.Properties[k] = v
		}
	}
	return &out
}

// EntityKey identifies an entity within a table.
type EntityKey struct {
	PartitionKey string
	RowKey       string
}

func (k EntityKey) String() string {
	return k.PartitionKey + "/" + k.RowKey
}

// CounterKey is the fixed identity of the visitor Counter Record.
var CounterKey = EntityKey{
	PartitionKey: constants.CounterPartitionKey,
	RowKey:       constants.CounterRowKey,
}

// CounterRecord is the singleton entity holding the visitor count.
type CounterRecord struct {
	Count int64 `json:"count"`
}

// Entity renders the record as a full table entity under CounterKey.
func (c CounterRecord) Entity() *Entity {
	return &Entity{
		PartitionKey: CounterKey.PartitionKey,
		RowKey:       CounterKey.RowKey,
		Properties: map[string]any{
			constants.CounterCountField: c.Count,
		},
	}
}

// CounterFromEntity reads the count attribute from e. A missing attribute
// reads as zero; anything that is not a non-negative integer is rejected.
func CounterFromEntity(e *Entity) (CounterRecord, error) {
	if e == nil {
		return CounterRecord{}, fmt.Errorf("nil counter entity")
	}
	raw, ok := e.Properties[constants.CounterCountField]
	if !ok || raw == nil {
		return CounterRecord{}, nil
	}
	n, err := toCount(raw)
	if err != nil {
		return CounterRecord{}, fmt.Errorf("counter %s: %w", e.Key(), err)
	}
	return CounterRecord{Count: n}, nil
}

func toCount(v any) (int64, error) {
	var n int64
	switch val := v.(type) {
	case int:
		n = int64(val)
	case int32:
		n = int64(val)
	case int64:
		n = val
	case uint32:
		n = int64(val)
	case uint64:
		if val > math.MaxInt64 {
			return 0, fmt.Errorf("count %d overflows int64", val)
		}
		n = int64(val)
	case float64:
		if val != math.Trunc(val) || math.IsInf(val, 0) || val > math.MaxInt64 {
			return 0, fmt.Errorf("count %v is not an integer", val)
		}
		n = int64(val)
	case json.Number:
		i, err := val.Int64()
		if err != nil {
			return 0, fmt.Errorf("count %q is not an integer", val.String())
		}
		n = i
	default:
		return 0, fmt.Errorf("count has unsupported type %T", v)
	}
	if n < 0 {
		return 0, fmt.Errorf("count %d is negative", n)
	}
	return n, nil
}
