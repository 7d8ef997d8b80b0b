package storage

import (
	"context"
	"sync"
	"time"

	"github.com/awantoch/visitorcount/model"
)

// MemoryTable implements Table in-memory (for fallback/dev mode)
type MemoryTable struct {
	mu       sync.Mutex
	entities map[model.EntityKey]*model.Entity
}

var _ Table = (*MemoryTable)(nil)

func NewMemoryTable() *MemoryTable {
	return &MemoryTable{entities: make(map[model.EntityKey]*model.Entity)}
}

func (m *MemoryTable) GetEntity(ctx context.Context, partitionKey, rowKey string) (*model.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entities[model.EntityKey{PartitionKey: partitionKey, RowKey: rowKey}]
	if !ok {
		return nil, notFound(partitionKey, rowKey)
	}
	return e.Clone(), nil
}

func (m *MemoryTable) CreateEntity(ctx context.Context, entity *model.Entity) error {
	if err := validEntity(entity); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entities[entity.Key()]; ok {
		return alreadyExists(entity)
	}
	m.store(entity)
	return nil
}

func (m *MemoryTable) UpsertEntity(ctx context.Context, entity *model.Entity) error {
	if err := validEntity(entity); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store(entity)
	return nil
}

func (m *MemoryTable) store(entity *model.Entity) {
	cp := entity.Clone()
	cp.Timestamp = time.Now().UTC()
	m.entities[cp.Key()] = cp
}
