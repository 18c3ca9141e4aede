package engine

import (
	"context"
	"sort"
	"strings"

	"github.com/rpattn/catalogql/internal/domain"
)

// FacetValue is one distinct value of a facet field with its occurrence
// count among the filtered entity set.
type FacetValue struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// aggregateFacets computes per-field value histograms over the candidates
// that match the filter. Scalar fields contribute one count, array fields
// one count per element; absent fields contribute nothing. Values are case
// folded before counting. Output per field is ordered by descending count,
// then ascending value, so results are deterministic.
func aggregateFacets(ctx context.Context, candidates []candidate, filter *domain.EntityFilter, paths []string) (map[string][]FacetValue, error) {
	counts := make(map[string]map[string]int, len(paths))
	for _, path := range paths {
		counts[path] = make(map[string]int)
	}

	for i := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !Matches(candidates[i].pairs, filter) {
			continue
		}
		for _, path := range paths {
			for _, value := range candidates[i].pairs[strings.ToLower(path)] {
				counts[path][strings.ToLower(value)]++
			}
		}
	}

	result := make(map[string][]FacetValue, len(paths))
	for path, valueCounts := range counts {
		values := make([]FacetValue, 0, len(valueCounts))
		for value, count := range valueCounts {
			values = append(values, FacetValue{Value: value, Count: count})
		}
		sort.Slice(values, func(i, j int) bool {
			if values[i].Count != values[j].Count {
				return values[i].Count > values[j].Count
			}
			return values[i].Value < values[j].Value
		})
		result[path] = values
	}
	return result, nil
}
