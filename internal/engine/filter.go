package engine

import (
	"strings"

	"github.com/rpattn/catalogql/internal/domain"
)

// defaultFullTextFields apply when a full-text filter names no fields.
var defaultFullTextFields = []string{"metadata.name", "metadata.title"}

// Matches evaluates a filter tree against one entity's key/value projection.
// Evaluation is structural recursion, short-circuiting and side-effect free,
// so entities can be filtered independently and in parallel. A nil filter
// matches everything.
func Matches(pairs map[string][]string, filter *domain.EntityFilter) bool {
	if filter == nil {
		return true
	}

	switch {
	case filter.AllOf != nil:
		for _, sub := range filter.AllOf {
			if !Matches(pairs, sub) {
				return false
			}
		}
		return true
	case filter.AnyOf != nil:
		for _, sub := range filter.AnyOf {
			if Matches(pairs, sub) {
				return true
			}
		}
		return false
	case filter.Not != nil:
		return !Matches(pairs, filter.Not)
	default:
		return matchesLeaf(pairs, filter)
	}
}

func matchesLeaf(pairs map[string][]string, leaf *domain.EntityFilter) bool {
	values := pairs[strings.ToLower(leaf.Key)]

	// nil Values is a presence check
	if leaf.Values == nil {
		return len(values) > 0
	}

	for _, have := range values {
		for _, want := range leaf.Values {
			if strings.EqualFold(have, want) {
				return true
			}
		}
	}
	return false
}

// MatchesFullText reports whether any of the filter's fields contains the
// term as a case-folded substring. A nil filter or empty term matches
// everything.
func MatchesFullText(pairs map[string][]string, filter *domain.FullTextFilter) bool {
	if filter == nil || filter.Term == "" {
		return true
	}

	fields := filter.Fields
	if len(fields) == 0 {
		fields = defaultFullTextFields
	}

	term := strings.ToLower(filter.Term)
	for _, field := range fields {
		for _, value := range pairs[strings.ToLower(field)] {
			if strings.Contains(strings.ToLower(value), term) {
				return true
			}
		}
	}
	return false
}
