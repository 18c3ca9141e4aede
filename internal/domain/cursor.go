package domain

// Cursor carries everything needed to resume a paginated query without any
// external request state: decoding a cursor alone reproduces the exact query
// being paginated. Cursors cross the trust boundary, so tokens are integrity
// protected on encode and treated as untrusted input on decode.
type Cursor struct {
	// OrderFields is the forward-direction sort spec of the query.
	OrderFields []EntityOrder `json:"orderFields"`

	// OrderFieldValues pins the boundary row: one value per order field plus
	// a trailing entity-ref key. Nil means "start from the beginning".
	OrderFieldValues []*string `json:"orderFieldValues,omitempty"`

	// Filter and FullTextFilter reproduce the query's selection.
	Filter         *EntityFilter   `json:"filter,omitempty"`
	FullTextFilter *FullTextFilter `json:"fullTextFilter,omitempty"`

	// IsPrevious marks a backward fetch: the page strictly before the
	// boundary row, returned in forward order.
	IsPrevious bool `json:"isPrevious"`

	// FirstSortFieldValues pins the first row of the query's very first
	// page, so "is this the first page" is detectable without re-querying.
	FirstSortFieldValues []*string `json:"firstSortFieldValues,omitempty"`

	// TotalItems is the match count snapshot taken on the initial request.
	// It is best effort and may go stale under concurrent writes; paginated
	// calls do not offer repeatable-read isolation.
	TotalItems *int `json:"totalItems,omitempty"`
}
