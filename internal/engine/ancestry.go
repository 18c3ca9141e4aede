package engine

import (
	"context"

	"github.com/rpattn/catalogql/internal/domain"
)

// AncestryItem is one node of an ancestry result: the entity together with
// its outgoing parent edges. Edges to references that no longer resolve stay
// listed here even though no node exists for them.
type AncestryItem struct {
	Entity     domain.Entity      `json:"entity"`
	ParentRefs []domain.EntityRef `json:"parentEntityRefs"`
}

// Ancestry is the closure of an entity's parent references.
type Ancestry struct {
	RootRef domain.EntityRef `json:"rootEntityRef"`
	Items   []AncestryItem   `json:"items"`
}

// resolveRefsFunc batch-resolves references, returning a slice aligned with
// the input where misses are nil.
type resolveRefsFunc func(ctx context.Context, refs []domain.EntityRef) ([]*domain.Entity, error)

// traverseAncestry walks the parent graph upward from root, breadth first.
// A visited set keyed by canonical ref guarantees each node is recorded once
// and makes traversal of cyclic graphs terminate; cycles are not an error.
// Parent refs that do not resolve become dangling edges rather than failing
// the walk.
func traverseAncestry(ctx context.Context, root domain.Entity, resolve resolveRefsFunc) (Ancestry, error) {
	result := Ancestry{RootRef: root.Ref}
	visited := map[string]bool{root.Ref.Key(): true}
	level := []domain.Entity{root}

	for len(level) > 0 {
		var frontier []domain.EntityRef
		for _, entity := range level {
			result.Items = append(result.Items, AncestryItem{
				Entity:     entity,
				ParentRefs: append([]domain.EntityRef(nil), entity.Parents...),
			})
			for _, parent := range entity.Parents {
				if visited[parent.Key()] {
					continue
				}
				visited[parent.Key()] = true
				frontier = append(frontier, parent)
			}
		}

		if len(frontier) == 0 {
			break
		}
		resolved, err := resolve(ctx, frontier)
		if err != nil {
			return Ancestry{}, err
		}

		level = level[:0]
		for _, entity := range resolved {
			// nil entries are dangling parent refs; the edge stays on the
			// child, no node is added.
			if entity != nil {
				level = append(level, *entity)
			}
		}
	}

	return result, nil
}
