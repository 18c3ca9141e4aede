package engine

import (
	"sort"
	"strings"

	"github.com/rpattn/catalogql/internal/domain"
)

// candidate pairs an entity with its projection and precomputed sort tuple,
// so comparisons during sorting never re-flatten the data document.
type candidate struct {
	entity domain.Entity
	pairs  map[string][]string
	refKey string
	tuple  []*string
}

func newCandidate(entity domain.Entity) candidate {
	return candidate{
		entity: entity,
		pairs:  entity.SearchPairs(),
		refKey: entity.Ref.Key(),
	}
}

// sortTuple extracts the candidate's value for each order field, plus the
// trailing ref key that keeps the order strict. Absent fields yield nil.
func (c *candidate) sortTuple(orders []domain.EntityOrder) []*string {
	tuple := make([]*string, 0, len(orders)+1)
	for _, order := range orders {
		values := c.pairs[strings.ToLower(order.Field)]
		if len(values) == 0 {
			tuple = append(tuple, nil)
		} else {
			v := values[0]
			tuple = append(tuple, &v)
		}
	}
	ref := c.refKey
	tuple = append(tuple, &ref)
	return tuple
}

// compareValues orders two optional field values. Absent values sort as
// greater than any present value, so an ascending field lists them last and
// a descending field lists them first; reversing every direction therefore
// mirrors the total order exactly, which backward pagination relies on.
// Present values compare as case-sensitive lexicographic strings.
func compareValues(a, b *string) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return strings.Compare(*a, *b)
	}
}

// compareTuples is the total-order comparator over sort tuples for the given
// order spec. With reverse set, every field direction and the ref tiebreak
// flip, producing the exact mirror order.
func compareTuples(a, b []*string, orders []domain.EntityOrder, reverse bool) int {
	for i, order := range orders {
		cmp := compareValues(a[i], b[i])
		if cmp == 0 {
			continue
		}
		if order.Descending() != reverse {
			cmp = -cmp
		}
		return cmp
	}

	cmp := compareValues(a[len(orders)], b[len(orders)])
	if reverse {
		cmp = -cmp
	}
	return cmp
}

// sortCandidates orders candidates in place, materializing sort tuples
// first. reverse selects the mirrored order used for backward fetches.
func sortCandidates(candidates []candidate, orders []domain.EntityOrder, reverse bool) {
	for i := range candidates {
		candidates[i].tuple = candidates[i].sortTuple(orders)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return compareTuples(candidates[i].tuple, candidates[j].tuple, orders, reverse) < 0
	})
}
