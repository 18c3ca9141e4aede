package entityloader

import (
	"context"
	"fmt"
	"time"

	"github.com/graph-gophers/dataloader"

	"github.com/rpattn/catalogql/internal/domain"
	"github.com/rpattn/catalogql/internal/repository"
)

// EntityLoader batches and caches entity lookups by reference within one
// request. Batch resolution keeps the ancestry traverser and the by-refs
// operation at one storage round trip per level.
type EntityLoader struct {
	loader *dataloader.Loader
}

func NewEntityLoader(store repository.EntityStore) *EntityLoader {
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		results := make([]*dataloader.Result, len(keys))

		refs := make([]domain.EntityRef, 0, len(keys))
		positions := make([]int, 0, len(keys))
		for i, key := range keys {
			ref, err := domain.ParseEntityRef(key.String())
			if err != nil {
				results[i] = &dataloader.Result{Error: fmt.Errorf("invalid entity ref: %w", err)}
				continue
			}
			refs = append(refs, ref)
			positions = append(positions, i)
		}

		entities, err := store.GetByRefs(ctx, refs)
		if err != nil {
			for _, pos := range positions {
				results[pos] = &dataloader.Result{Error: err}
			}
			return results
		}

		// Align with the key order; misses stay nil-valued results.
		for i, pos := range positions {
			results[pos] = &dataloader.Result{Data: entities[i]}
		}
		return results
	}

	loader := dataloader.NewBatchedLoader(batchFn, dataloader.WithWait(5*time.Millisecond))

	return &EntityLoader{loader: loader}
}

// Load resolves a single reference. A nil entity with nil error means the
// reference does not resolve.
func (l *EntityLoader) Load(ctx context.Context, ref domain.EntityRef) (*domain.Entity, error) {
	thunk := l.loader.Load(ctx, dataloader.StringKey(ref.Key()))
	result, err := thunk()
	if err != nil {
		return nil, err
	}
	return asEntity(result)
}

// LoadMany resolves references in bulk. The result is aligned with refs;
// unresolved entries are nil.
func (l *EntityLoader) LoadMany(ctx context.Context, refs []domain.EntityRef) ([]*domain.Entity, error) {
	if len(refs) == 0 {
		return []*domain.Entity{}, nil
	}

	keys := make(dataloader.Keys, len(refs))
	for i, ref := range refs {
		keys[i] = dataloader.StringKey(ref.Key())
	}

	thunk := l.loader.LoadMany(ctx, keys)
	results, errs := thunk()
	if len(errs) > 0 {
		return nil, errs[0]
	}

	entities := make([]*domain.Entity, len(results))
	for i, result := range results {
		entity, err := asEntity(result)
		if err != nil {
			return nil, err
		}
		entities[i] = entity
	}
	return entities, nil
}

func asEntity(value interface{}) (*domain.Entity, error) {
	if value == nil {
		return nil, nil
	}
	entity, ok := value.(*domain.Entity)
	if !ok {
		return nil, fmt.Errorf("unexpected type for entity")
	}
	return entity, nil
}
