package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/rpattn/catalogql/internal/domain"
)

// MemoryStore is an in-process EntityStore used for tests and storeless
// runs. Reads return copies; the engine never sees shared mutable state.
type MemoryStore struct {
	mu       sync.RWMutex
	byRefKey map[string]domain.Entity
	refByUID map[uuid.UUID]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byRefKey: make(map[string]domain.Entity),
		refByUID: make(map[uuid.UUID]string),
	}
}

// Put inserts or replaces an entity, keyed by its reference.
func (s *MemoryStore) Put(entity domain.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := entity.Ref.Key()
	if existing, ok := s.byRefKey[key]; ok {
		delete(s.refByUID, existing.UID)
	}
	s.byRefKey[key] = entity
	s.refByUID[entity.UID] = key
}

// List returns every entity in stable reference order.
func (s *MemoryStore) List(ctx context.Context) ([]domain.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.byRefKey))
	for key := range s.byRefKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	entities := make([]domain.Entity, 0, len(keys))
	for _, key := range keys {
		entities = append(entities, s.byRefKey[key])
	}
	return entities, nil
}

// GetByRef resolves one reference case-insensitively.
func (s *MemoryStore) GetByRef(ctx context.Context, ref domain.EntityRef) (*domain.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entity, ok := s.byRefKey[ref.Key()]
	if !ok {
		return nil, nil
	}
	return &entity, nil
}

// GetByRefs resolves many references, order and length aligned with refs.
func (s *MemoryStore) GetByRefs(ctx context.Context, refs []domain.EntityRef) ([]*domain.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Entity, len(refs))
	for i, ref := range refs {
		if entity, ok := s.byRefKey[ref.Key()]; ok {
			e := entity
			result[i] = &e
		}
	}
	return result, nil
}

// DeleteByUID removes an entity by UID.
func (s *MemoryStore) DeleteByUID(ctx context.Context, uid uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.refByUID[uid]
	if !ok {
		return fmt.Errorf("%w: no entity with uid %s", domain.ErrNotFound, uid)
	}
	delete(s.refByUID, uid)
	delete(s.byRefKey, key)
	return nil
}
