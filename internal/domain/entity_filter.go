package domain

import (
	"encoding/json"
	"fmt"
)

// EntityFilter is a boolean tree over key/value match leaves. Exactly one of
// the node kinds is set per node:
//
//   - AllOf: conjunction, vacuously true when empty
//   - AnyOf: disjunction, vacuously false when empty
//   - Not: negation of one sub-filter
//   - Key (+ optional Values): leaf match
//
// A leaf with nil Values matches entities where the field exists; non-nil
// Values match entities whose field equals any listed value, case folded.
// Node kind is carried by slice nil-ness, so an explicit empty allOf/anyOf
// survives a JSON round trip.
type EntityFilter struct {
	AllOf  []*EntityFilter `json:"allOf"`
	AnyOf  []*EntityFilter `json:"anyOf"`
	Not    *EntityFilter   `json:"not"`
	Key    string          `json:"key"`
	Values []string        `json:"values"`
}

// MarshalJSON emits only the fields that define the node, keeping empty
// (non-nil) branch lists distinct from absent ones.
func (f EntityFilter) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 2)
	if f.AllOf != nil {
		out["allOf"] = f.AllOf
	}
	if f.AnyOf != nil {
		out["anyOf"] = f.AnyOf
	}
	if f.Not != nil {
		out["not"] = f.Not
	}
	if f.Key != "" {
		out["key"] = f.Key
	}
	if f.Values != nil {
		out["values"] = f.Values
	}
	return json.Marshal(out)
}

// Validate checks the structural invariants of the tree. Decoded client
// filters must pass through here before evaluation.
func (f *EntityFilter) Validate() error {
	if f == nil {
		return nil
	}

	kinds := 0
	if f.AllOf != nil {
		kinds++
	}
	if f.AnyOf != nil {
		kinds++
	}
	if f.Not != nil {
		kinds++
	}
	if f.Key != "" {
		kinds++
	}
	if kinds == 0 {
		if f.Values != nil {
			return fmt.Errorf("%w: leaf has values but an empty key", ErrInvalidFilter)
		}
		return fmt.Errorf("%w: empty filter node", ErrInvalidFilter)
	}
	if kinds > 1 {
		return fmt.Errorf("%w: filter node sets more than one operator", ErrInvalidFilter)
	}
	if f.Key == "" && f.Values != nil {
		return fmt.Errorf("%w: values require a leaf key", ErrInvalidFilter)
	}

	for _, sub := range f.AllOf {
		if sub == nil {
			return fmt.Errorf("%w: nil sub-filter in allOf", ErrInvalidFilter)
		}
		if err := sub.Validate(); err != nil {
			return err
		}
	}
	for _, sub := range f.AnyOf {
		if sub == nil {
			return fmt.Errorf("%w: nil sub-filter in anyOf", ErrInvalidFilter)
		}
		if err := sub.Validate(); err != nil {
			return err
		}
	}
	if f.Not != nil {
		return f.Not.Validate()
	}
	return nil
}

// FullTextFilter selects entities whose named fields contain the term as a
// case-folded substring. With no fields listed, the default name and title
// fields apply.
type FullTextFilter struct {
	Term   string   `json:"term"`
	Fields []string `json:"fields,omitempty"`
}
