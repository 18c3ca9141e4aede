package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/rpattn/catalogql/internal/domain"
)

// EntityStore is the storage collaborator the query engine runs against. It
// exposes scan and lookup primitives over entities keyed by reference; the
// store owns concurrency control and hands the engine a consistent-enough
// snapshot per call.
type EntityStore interface {
	// List scans every entity. The engine filters, orders and aggregates
	// in memory on top of this candidate stream.
	List(ctx context.Context) ([]domain.Entity, error)

	// GetByRef resolves one reference, case-insensitively. A nil entity
	// with a nil error means the reference does not resolve.
	GetByRef(ctx context.Context, ref domain.EntityRef) (*domain.Entity, error)

	// GetByRefs resolves many references in one call. The result has the
	// same length and order as refs, with nil entries for misses.
	GetByRefs(ctx context.Context, refs []domain.EntityRef) ([]*domain.Entity, error)

	// DeleteByUID removes an entity by UID. Unknown UIDs yield
	// domain.ErrNotFound.
	DeleteByUID(ctx context.Context, uid uuid.UUID) error
}
