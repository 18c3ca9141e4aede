package entityloader

import (
	"context"
	"testing"

	"github.com/rpattn/catalogql/internal/domain"
	"github.com/rpattn/catalogql/internal/repository"
)

func loaderEntity(name string) domain.Entity {
	return domain.NewEntity(
		domain.EntityRef{Kind: "component", Namespace: "default", Name: name},
		map[string]any{"metadata": map[string]any{"name": name}},
	)
}

func TestEntityLoaderLoad(t *testing.T) {
	store := repository.NewMemoryStore()
	store.Put(loaderEntity("alpha"))
	loader := NewEntityLoader(store)

	got, err := loader.Load(context.Background(), domain.EntityRef{Kind: "component", Namespace: "default", Name: "alpha"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got == nil || got.Ref.Name != "alpha" {
		t.Errorf("Load() = %v, want alpha", got)
	}

	missing, err := loader.Load(context.Background(), domain.EntityRef{Kind: "component", Namespace: "default", Name: "missing"})
	if err != nil {
		t.Fatalf("Load(missing) error = %v", err)
	}
	if missing != nil {
		t.Errorf("Load(missing) = %v, want nil", missing)
	}
}

func TestEntityLoaderLoadManyAlignment(t *testing.T) {
	store := repository.NewMemoryStore()
	store.Put(loaderEntity("alpha"))
	store.Put(loaderEntity("bravo"))
	loader := NewEntityLoader(store)

	refs := []domain.EntityRef{
		{Kind: "component", Namespace: "default", Name: "bravo"},
		{Kind: "component", Namespace: "default", Name: "missing"},
		{Kind: "component", Namespace: "default", Name: "alpha"},
	}
	entities, err := loader.LoadMany(context.Background(), refs)
	if err != nil {
		t.Fatalf("LoadMany() error = %v", err)
	}
	if len(entities) != 3 {
		t.Fatalf("len(entities) = %d, want 3", len(entities))
	}
	if entities[0] == nil || entities[0].Ref.Name != "bravo" {
		t.Errorf("entities[0] = %v, want bravo", entities[0])
	}
	if entities[1] != nil {
		t.Errorf("entities[1] = %v, want nil", entities[1])
	}
	if entities[2] == nil || entities[2].Ref.Name != "alpha" {
		t.Errorf("entities[2] = %v, want alpha", entities[2])
	}
}

func TestEntityLoaderLoadManyEmpty(t *testing.T) {
	loader := NewEntityLoader(repository.NewMemoryStore())

	entities, err := loader.LoadMany(context.Background(), nil)
	if err != nil {
		t.Fatalf("LoadMany(nil) error = %v", err)
	}
	if len(entities) != 0 {
		t.Errorf("len(entities) = %d, want 0", len(entities))
	}
}
