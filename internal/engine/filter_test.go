package engine

import (
	"testing"

	"github.com/rpattn/catalogql/internal/domain"
)

func componentPairs() map[string][]string {
	return map[string][]string{
		"kind":           {"Component"},
		"metadata.name":  {"website"},
		"metadata.title": {"Website Frontend"},
		"metadata.tags":  {"go", "web"},
		"spec.lifecycle": {"production"},
	}
}

func TestMatchesLeafValueComparison(t *testing.T) {
	pairs := componentPairs()

	tests := []struct {
		name   string
		filter *domain.EntityFilter
		want   bool
	}{
		{
			name:   "exact value",
			filter: &domain.EntityFilter{Key: "kind", Values: []string{"Component"}},
			want:   true,
		},
		{
			name:   "value case folded",
			filter: &domain.EntityFilter{Key: "Kind", Values: []string{"component"}},
			want:   true,
		},
		{
			name:   "any of several values",
			filter: &domain.EntityFilter{Key: "kind", Values: []string{"api", "component"}},
			want:   true,
		},
		{
			name:   "array element match",
			filter: &domain.EntityFilter{Key: "metadata.tags", Values: []string{"WEB"}},
			want:   true,
		},
		{
			name:   "no matching value",
			filter: &domain.EntityFilter{Key: "kind", Values: []string{"api"}},
			want:   false,
		},
		{
			name:   "presence check on existing field",
			filter: &domain.EntityFilter{Key: "metadata.tags"},
			want:   true,
		},
		{
			name:   "presence check on absent field",
			filter: &domain.EntityFilter{Key: "spec.owner"},
			want:   false,
		},
		{
			name:   "values on absent field",
			filter: &domain.EntityFilter{Key: "spec.owner", Values: []string{"x"}},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(pairs, tt.filter); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatchesFilterAlgebra(t *testing.T) {
	pairs := componentPairs()

	if !Matches(pairs, nil) {
		t.Errorf("nil filter must match everything")
	}
	if !Matches(pairs, &domain.EntityFilter{AllOf: []*domain.EntityFilter{}}) {
		t.Errorf("empty allOf must match everything")
	}
	if Matches(pairs, &domain.EntityFilter{AnyOf: []*domain.EntityFilter{}}) {
		t.Errorf("empty anyOf must match nothing")
	}

	leaf := &domain.EntityFilter{Key: "kind", Values: []string{"component"}}
	doubleNegated := &domain.EntityFilter{Not: &domain.EntityFilter{Not: leaf}}
	if Matches(pairs, leaf) != Matches(pairs, doubleNegated) {
		t.Errorf("not(not(F)) must match the same entities as F")
	}

	conjunction := &domain.EntityFilter{AllOf: []*domain.EntityFilter{
		leaf,
		{Key: "spec.lifecycle", Values: []string{"production"}},
	}}
	if !Matches(pairs, conjunction) {
		t.Errorf("conjunction of matching leaves must match")
	}

	disjunction := &domain.EntityFilter{AnyOf: []*domain.EntityFilter{
		{Key: "kind", Values: []string{"api"}},
		leaf,
	}}
	if !Matches(pairs, disjunction) {
		t.Errorf("disjunction with one matching branch must match")
	}
}

func TestMatchesFullText(t *testing.T) {
	pairs := componentPairs()

	tests := []struct {
		name   string
		filter *domain.FullTextFilter
		want   bool
	}{
		{name: "nil filter", filter: nil, want: true},
		{name: "empty term", filter: &domain.FullTextFilter{}, want: true},
		{name: "default fields hit name", filter: &domain.FullTextFilter{Term: "webs"}, want: true},
		{name: "default fields hit title", filter: &domain.FullTextFilter{Term: "frontend"}, want: true},
		{name: "default fields miss", filter: &domain.FullTextFilter{Term: "payment"}, want: false},
		{
			name:   "explicit field",
			filter: &domain.FullTextFilter{Term: "PROD", Fields: []string{"spec.lifecycle"}},
			want:   true,
		},
		{
			name:   "explicit field excludes defaults",
			filter: &domain.FullTextFilter{Term: "website", Fields: []string{"spec.lifecycle"}},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesFullText(pairs, tt.filter); got != tt.want {
				t.Errorf("MatchesFullText() = %v, want %v", got, tt.want)
			}
		})
	}
}
