package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rpattn/catalogql/internal/domain"
)

// postgresStore implements EntityStore on Postgres. Entities live in one
// table with the data document and parent edges as JSONB and the canonical
// lower-cased ref as the lookup key.
type postgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed entity store.
func NewPostgresStore(pool *pgxpool.Pool) EntityStore {
	return &postgresStore{pool: pool}
}

const entityColumns = "uid, kind, namespace, name, data, parent_refs"

// List scans every entity in canonical ref order.
func (s *postgresStore) List(ctx context.Context) ([]domain.Entity, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+entityColumns+" FROM entities ORDER BY ref")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list entities: %v", domain.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	var entities []domain.Entity
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read entity rows: %v", domain.ErrStorageUnavailable, err)
	}
	return entities, nil
}

// GetByRef resolves one reference via the canonical ref key.
func (s *postgresStore) GetByRef(ctx context.Context, ref domain.EntityRef) (*domain.Entity, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+entityColumns+" FROM entities WHERE ref = $1", ref.Key())
	entity, err := scanEntity(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &entity, nil
}

// GetByRefs resolves many references in one round trip, preserving input
// order and marking misses with nil entries.
func (s *postgresStore) GetByRefs(ctx context.Context, refs []domain.EntityRef) ([]*domain.Entity, error) {
	if len(refs) == 0 {
		return []*domain.Entity{}, nil
	}

	keys := make([]string, len(refs))
	for i, ref := range refs {
		keys[i] = ref.Key()
	}

	rows, err := s.pool.Query(ctx, "SELECT "+entityColumns+" FROM entities WHERE ref = ANY($1)", keys)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get entities by refs: %v", domain.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	byKey := make(map[string]domain.Entity, len(refs))
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		byKey[entity.Ref.Key()] = entity
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read entity rows: %v", domain.ErrStorageUnavailable, err)
	}

	result := make([]*domain.Entity, len(refs))
	for i, key := range keys {
		if entity, ok := byKey[key]; ok {
			e := entity
			result[i] = &e
		}
	}
	return result, nil
}

// DeleteByUID removes an entity by UID.
func (s *postgresStore) DeleteByUID(ctx context.Context, uid uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM entities WHERE uid = $1", uid)
	if err != nil {
		return fmt.Errorf("%w: failed to delete entity: %v", domain.ErrStorageUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: no entity with uid %s", domain.ErrNotFound, uid)
	}
	return nil
}

func scanEntity(row pgx.Row) (domain.Entity, error) {
	var (
		uid         uuid.UUID
		kind        string
		namespace   string
		name        string
		dataJSON    json.RawMessage
		parentsJSON json.RawMessage
	)
	if err := row.Scan(&uid, &kind, &namespace, &name, &dataJSON, &parentsJSON); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Entity{}, err
		}
		return domain.Entity{}, fmt.Errorf("%w: failed to scan entity row: %v", domain.ErrStorageUnavailable, err)
	}

	data, err := domain.FromJSONData(dataJSON)
	if err != nil {
		return domain.Entity{}, fmt.Errorf("failed to decode data for entity %s: %w", uid, err)
	}

	var parentStrings []string
	if len(parentsJSON) > 0 {
		if err := json.Unmarshal(parentsJSON, &parentStrings); err != nil {
			return domain.Entity{}, fmt.Errorf("failed to decode parent refs for entity %s: %w", uid, err)
		}
	}
	parents := make([]domain.EntityRef, 0, len(parentStrings))
	for _, raw := range parentStrings {
		ref, err := domain.ParseEntityRef(raw)
		if err != nil {
			return domain.Entity{}, fmt.Errorf("failed to parse parent ref %q for entity %s: %w", raw, uid, err)
		}
		parents = append(parents, ref)
	}

	return domain.Entity{
		UID:     uid,
		Ref:     domain.EntityRef{Kind: kind, Namespace: namespace, Name: name},
		Parents: parents,
		Data:    data,
	}, nil
}
