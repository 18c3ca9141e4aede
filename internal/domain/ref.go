package domain

import (
	"fmt"
	"strings"
)

// DefaultNamespace is assumed when a reference string omits the namespace.
const DefaultNamespace = "default"

// EntityRef is the compound identifier of an entity. Two refs that differ
// only in case identify the same entity.
type EntityRef struct {
	Kind      string `json:"kind"`
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
}

// ParseEntityRef parses a reference of the form "kind:namespace/name". The
// namespace segment may be omitted ("kind:name"), in which case the default
// namespace applies.
func ParseEntityRef(ref string) (EntityRef, error) {
	kind, rest, ok := strings.Cut(ref, ":")
	if !ok {
		return EntityRef{}, fmt.Errorf("%w: entity ref %q is missing a kind", ErrInvalidRequest, ref)
	}

	namespace, name, ok := strings.Cut(rest, "/")
	if !ok {
		namespace, name = DefaultNamespace, rest
	}

	kind = strings.TrimSpace(kind)
	namespace = strings.TrimSpace(namespace)
	name = strings.TrimSpace(name)
	if kind == "" || namespace == "" || name == "" {
		return EntityRef{}, fmt.Errorf("%w: entity ref %q has an empty segment", ErrInvalidRequest, ref)
	}

	return EntityRef{Kind: kind, Namespace: namespace, Name: name}, nil
}

// String renders the reference as "kind:namespace/name".
func (r EntityRef) String() string {
	return fmt.Sprintf("%s:%s/%s", r.Kind, r.Namespace, r.Name)
}

// Key returns the canonical lower-cased form used for map keys, ordering
// tie-breaks and equality.
func (r EntityRef) Key() string {
	return strings.ToLower(r.String())
}

// Equal reports case-insensitive equality of two references.
func (r EntityRef) Equal(other EntityRef) bool {
	return r.Key() == other.Key()
}

// IsZero reports whether the reference has no segments set.
func (r EntityRef) IsZero() bool {
	return r.Kind == "" && r.Namespace == "" && r.Name == ""
}
