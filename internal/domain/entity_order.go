package domain

import "fmt"

// SortDirection represents ordering direction for sortable fields.
type SortDirection string

const (
	SortDirectionAsc  SortDirection = "asc"
	SortDirectionDesc SortDirection = "desc"
)

// EntityOrder names one field of a composite sort key. A sequence of orders
// is evaluated left to right; entities that tie on every field fall back to
// ascending reference order so the total order stays strict.
type EntityOrder struct {
	Field string        `json:"field"`
	Order SortDirection `json:"order"`
}

// Validate rejects orders with an empty field or an unknown direction. An
// empty direction defaults to ascending.
func (o EntityOrder) Validate() error {
	if o.Field == "" {
		return fmt.Errorf("%w: order field must not be empty", ErrInvalidRequest)
	}
	switch o.Order {
	case "", SortDirectionAsc, SortDirectionDesc:
		return nil
	default:
		return fmt.Errorf("%w: unknown sort direction %q", ErrInvalidRequest, o.Order)
	}
}

// Descending reports whether the field sorts descending.
func (o EntityOrder) Descending() bool {
	return o.Order == SortDirectionDesc
}

// Reversed returns the order with its direction flipped. Backward pagination
// fetches forward in the reversed order.
func (o EntityOrder) Reversed() EntityOrder {
	if o.Descending() {
		return EntityOrder{Field: o.Field, Order: SortDirectionAsc}
	}
	return EntityOrder{Field: o.Field, Order: SortDirectionDesc}
}
