package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rpattn/catalogql/internal/domain"
	"github.com/rpattn/catalogql/internal/entityloader"
	"github.com/rpattn/catalogql/internal/repository"
)

// defaultQueryOrder applies when a paged query names no sort fields.
var defaultQueryOrder = []domain.EntityOrder{{Field: "metadata.name", Order: domain.SortDirectionAsc}}

// Planner composes the filter, ordering, cursor, facet and ancestry
// components into the catalog query operations. It holds no mutable state
// between calls; the storage collaborator owns concurrency control and
// provides a best-effort snapshot per call. Authorization tokens travel on
// the context untouched and are never interpreted here.
type Planner struct {
	store        repository.EntityStore
	codec        *CursorCodec
	defaultLimit int
	maxLimit     int
}

type Option func(*Planner)

// WithDefaultLimit sets the page size used when a request names none.
func WithDefaultLimit(limit int) Option {
	return func(p *Planner) {
		if limit > 0 {
			p.defaultLimit = limit
		}
	}
}

// WithMaxLimit caps requested page sizes.
func WithMaxLimit(limit int) Option {
	return func(p *Planner) {
		if limit > 0 {
			p.maxLimit = limit
		}
	}
}

// NewPlanner creates a query planner over the given store.
func NewPlanner(store repository.EntityStore, codec *CursorCodec, opts ...Option) *Planner {
	planner := &Planner{
		store:        store,
		codec:        codec,
		defaultLimit: 20,
		maxLimit:     1000,
	}
	for _, opt := range opts {
		opt(planner)
	}
	return planner
}

// PageInfo is the tagged page marker of the offset path: EndCursor is
// present exactly when HasNextPage is true.
type PageInfo struct {
	HasNextPage bool    `json:"hasNextPage"`
	EndCursor   *string `json:"endCursor,omitempty"`
}

// EntitiesRequest selects, orders and offset-paginates entities.
type EntitiesRequest struct {
	Filter *domain.EntityFilter `json:"filter,omitempty"`
	Fields []string             `json:"fields,omitempty"`
	Order  []domain.EntityOrder `json:"order,omitempty"`
	Limit  *int                 `json:"limit,omitempty"`
	Offset *int                 `json:"offset,omitempty"`
	After  *string              `json:"after,omitempty"`
}

type EntitiesResponse struct {
	Entities []domain.Entity `json:"entities"`
	PageInfo PageInfo        `json:"pageInfo"`
}

// Entities is the simple offset-paginated path: filter, order (reference
// order when unspecified, so pages stay deterministic), then offset/limit.
// Backward paging is not offered here; the cursor path covers it.
func (p *Planner) Entities(ctx context.Context, req EntitiesRequest) (EntitiesResponse, error) {
	limit, err := p.resolveLimit(req.Limit)
	if err != nil {
		return EntitiesResponse{}, err
	}
	for _, order := range req.Order {
		if err := order.Validate(); err != nil {
			return EntitiesResponse{}, err
		}
	}

	offset := 0
	switch {
	case req.Offset != nil && req.After != nil:
		return EntitiesResponse{}, fmt.Errorf("%w: offset and after are mutually exclusive", domain.ErrInvalidRequest)
	case req.Offset != nil:
		if *req.Offset < 0 {
			return EntitiesResponse{}, fmt.Errorf("%w: offset must not be negative", domain.ErrInvalidRequest)
		}
		offset = *req.Offset
	case req.After != nil:
		offset, err = p.codec.DecodeOffset(*req.After)
		if err != nil {
			return EntitiesResponse{}, err
		}
	}

	candidates, err := p.loadCandidates(ctx, req.Filter, nil)
	if err != nil {
		return EntitiesResponse{}, err
	}
	sortCandidates(candidates, req.Order, false)

	total := len(candidates)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	entities := make([]domain.Entity, 0, end-offset)
	for _, c := range candidates[offset:end] {
		entities = append(entities, c.entity.Project(req.Fields))
	}

	pageInfo := PageInfo{HasNextPage: end < total}
	if pageInfo.HasNextPage {
		token := p.codec.EncodeOffset(end)
		pageInfo.EndCursor = &token
	}
	return EntitiesResponse{Entities: entities, PageInfo: pageInfo}, nil
}

// QueryEntitiesRequest is either an initial query (filter, order, full text)
// or a continuation (cursor); mixing both is invalid.
type QueryEntitiesRequest struct {
	Filter         *domain.EntityFilter   `json:"filter,omitempty"`
	OrderFields    []domain.EntityOrder   `json:"orderFields,omitempty"`
	FullTextFilter *domain.FullTextFilter `json:"fullTextFilter,omitempty"`
	Limit          *int                   `json:"limit,omitempty"`
	Cursor         *string                `json:"cursor,omitempty"`
}

// QueryPageInfo carries the cursors of the paged path. NextCursor is present
// iff a page exists beyond the returned batch, PrevCursor iff a page exists
// before its first row.
type QueryPageInfo struct {
	NextCursor *string `json:"nextCursor,omitempty"`
	PrevCursor *string `json:"prevCursor,omitempty"`
}

type QueryEntitiesResponse struct {
	Items      []domain.Entity `json:"items"`
	PageInfo   QueryPageInfo   `json:"pageInfo"`
	TotalItems int             `json:"totalItems"`
}

// QueryEntities is the cursor-paginated path. A backward fetch reverses
// every sort direction, pages forward in that mirrored order, then flips the
// batch back, so both directions share one code path. TotalItems is counted
// once on the initial request and threaded through cursors unvalidated; a
// cursor whose query no longer matches any data degrades to an empty page.
func (p *Planner) QueryEntities(ctx context.Context, req QueryEntitiesRequest) (QueryEntitiesResponse, error) {
	limit, err := p.resolveLimit(req.Limit)
	if err != nil {
		return QueryEntitiesResponse{}, err
	}

	var cursor domain.Cursor
	if req.Cursor != nil {
		if req.Filter != nil || len(req.OrderFields) > 0 || req.FullTextFilter != nil {
			return QueryEntitiesResponse{}, fmt.Errorf("%w: cursor conflicts with filter, order and full-text fields", domain.ErrInvalidRequest)
		}
		cursor, err = p.codec.Decode(*req.Cursor)
		if err != nil {
			return QueryEntitiesResponse{}, err
		}
	} else {
		for _, order := range req.OrderFields {
			if err := order.Validate(); err != nil {
				return QueryEntitiesResponse{}, err
			}
		}
		cursor = domain.Cursor{
			OrderFields:    req.OrderFields,
			Filter:         req.Filter,
			FullTextFilter: req.FullTextFilter,
		}
	}
	if len(cursor.OrderFields) == 0 {
		cursor.OrderFields = defaultQueryOrder
	}

	candidates, err := p.loadCandidates(ctx, cursor.Filter, cursor.FullTextFilter)
	if err != nil {
		return QueryEntitiesResponse{}, err
	}

	total := len(candidates)
	if cursor.TotalItems != nil {
		total = *cursor.TotalItems
	}

	orders := cursor.OrderFields
	reverse := cursor.IsPrevious
	sortCandidates(candidates, orders, reverse)

	start := 0
	if cursor.OrderFieldValues != nil {
		start = searchAfter(candidates, cursor.OrderFieldValues, orders, reverse)
	}

	end := start + limit
	hasMore := end < len(candidates)
	if !hasMore {
		end = len(candidates)
	}
	page := candidates[start:end]

	if reverse {
		for i, j := 0, len(page)-1; i < j; i, j = i+1, j-1 {
			page[i], page[j] = page[j], page[i]
		}
	}

	firstValues := cursor.FirstSortFieldValues
	if firstValues == nil && !reverse && cursor.OrderFieldValues == nil && len(page) > 0 {
		firstValues = page[0].tuple
	}

	var nextExists, prevExists bool
	if reverse {
		nextExists = len(page) > 0
		prevExists = hasMore
	} else {
		nextExists = hasMore
		prevExists = cursor.OrderFieldValues != nil && len(page) > 0 &&
			!tuplesEqual(page[0].tuple, firstValues)
	}

	response := QueryEntitiesResponse{TotalItems: total}
	response.Items = make([]domain.Entity, len(page))
	for i, c := range page {
		response.Items[i] = c.entity
	}

	derive := func(boundary []*string, isPrevious bool) (*string, error) {
		token, err := p.codec.Encode(domain.Cursor{
			OrderFields:          orders,
			OrderFieldValues:     boundary,
			Filter:               cursor.Filter,
			FullTextFilter:       cursor.FullTextFilter,
			IsPrevious:           isPrevious,
			FirstSortFieldValues: firstValues,
			TotalItems:           &total,
		})
		if err != nil {
			return nil, err
		}
		return &token, nil
	}

	if nextExists && len(page) > 0 {
		if response.PageInfo.NextCursor, err = derive(page[len(page)-1].tuple, false); err != nil {
			return QueryEntitiesResponse{}, err
		}
	}
	if prevExists && len(page) > 0 {
		if response.PageInfo.PrevCursor, err = derive(page[0].tuple, true); err != nil {
			return QueryEntitiesResponse{}, err
		}
	}
	return response, nil
}

// EntitiesBatchRequest resolves references in bulk, preserving position. A
// filter, when given, intersects the lookup: entities failing it resolve to
// null rather than being omitted.
type EntitiesBatchRequest struct {
	EntityRefs []string             `json:"entityRefs"`
	Filter     *domain.EntityFilter `json:"filter,omitempty"`
	Fields     []string             `json:"fields,omitempty"`
}

type EntitiesBatchResponse struct {
	Items []*domain.Entity `json:"items"`
}

func (p *Planner) EntitiesBatch(ctx context.Context, req EntitiesBatchRequest) (EntitiesBatchResponse, error) {
	if err := validateFilter(req.Filter); err != nil {
		return EntitiesBatchResponse{}, err
	}

	refs := make([]domain.EntityRef, len(req.EntityRefs))
	for i, raw := range req.EntityRefs {
		ref, err := domain.ParseEntityRef(raw)
		if err != nil {
			return EntitiesBatchResponse{}, err
		}
		refs[i] = ref
	}

	loader := entityloader.NewEntityLoader(p.store)
	entities, err := loader.LoadMany(ctx, refs)
	if err != nil {
		return EntitiesBatchResponse{}, err
	}

	items := make([]*domain.Entity, len(entities))
	for i, entity := range entities {
		if entity == nil {
			continue
		}
		if !Matches(entity.SearchPairs(), req.Filter) {
			continue
		}
		projected := entity.Project(req.Fields)
		items[i] = &projected
	}
	return EntitiesBatchResponse{Items: items}, nil
}

// FacetsRequest asks for distinct-value counts of the named field paths over
// the filtered entity set.
type FacetsRequest struct {
	Filter *domain.EntityFilter `json:"filter,omitempty"`
	Facets []string             `json:"facets"`
}

type FacetsResponse struct {
	Facets map[string][]FacetValue `json:"facets"`
}

func (p *Planner) Facets(ctx context.Context, req FacetsRequest) (FacetsResponse, error) {
	if len(req.Facets) == 0 {
		return FacetsResponse{}, fmt.Errorf("%w: at least one facet field is required", domain.ErrInvalidRequest)
	}
	for _, path := range req.Facets {
		if path == "" {
			return FacetsResponse{}, fmt.Errorf("%w: facet field must not be empty", domain.ErrInvalidRequest)
		}
	}
	if err := validateFilter(req.Filter); err != nil {
		return FacetsResponse{}, err
	}

	// Aggregation applies the filter itself; load the full candidate set.
	candidates, err := p.loadCandidates(ctx, nil, nil)
	if err != nil {
		return FacetsResponse{}, err
	}

	facets, err := aggregateFacets(ctx, candidates, req.Filter, req.Facets)
	if err != nil {
		return FacetsResponse{}, err
	}
	return FacetsResponse{Facets: facets}, nil
}

// EntityAncestry walks the parent graph upward from the given root.
func (p *Planner) EntityAncestry(ctx context.Context, ref domain.EntityRef) (Ancestry, error) {
	loader := entityloader.NewEntityLoader(p.store)

	root, err := loader.Load(ctx, ref)
	if err != nil {
		return Ancestry{}, err
	}
	if root == nil {
		return Ancestry{}, fmt.Errorf("%w: no entity with ref %s", domain.ErrNotFound, ref)
	}

	return traverseAncestry(ctx, *root, loader.LoadMany)
}

// RemoveEntityByUID deletes one entity; unknown UIDs fail with NotFound.
func (p *Planner) RemoveEntityByUID(ctx context.Context, uid uuid.UUID) error {
	return p.store.DeleteByUID(ctx, uid)
}

// loadCandidates scans the store and keeps entities matching the filter and
// full-text term. The scan checks for cancellation at per-entity granularity
// so large candidate sets stay interruptible.
func (p *Planner) loadCandidates(ctx context.Context, filter *domain.EntityFilter, fullText *domain.FullTextFilter) ([]candidate, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	entities, err := p.store.List(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]candidate, 0, len(entities))
	for _, entity := range entities {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c := newCandidate(entity)
		if !Matches(c.pairs, filter) || !MatchesFullText(c.pairs, fullText) {
			continue
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

func (p *Planner) resolveLimit(limit *int) (int, error) {
	if limit == nil {
		return p.defaultLimit, nil
	}
	if *limit <= 0 {
		return 0, fmt.Errorf("%w: limit must be positive", domain.ErrInvalidRequest)
	}
	if *limit > p.maxLimit {
		return p.maxLimit, nil
	}
	return *limit, nil
}

func validateFilter(filter *domain.EntityFilter) error {
	if filter == nil {
		return nil
	}
	return filter.Validate()
}

// searchAfter finds the first candidate strictly after the boundary tuple in
// the effective order. Candidates must already be sorted in that order.
func searchAfter(candidates []candidate, boundary []*string, orders []domain.EntityOrder, reverse bool) int {
	lo, hi := 0, len(candidates)
	for lo < hi {
		mid := (lo + hi) / 2
		if compareTuples(candidates[mid].tuple, boundary, orders, reverse) <= 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

func tuplesEqual(a, b []*string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if compareValues(a[i], b[i]) != 0 {
			return false
		}
	}
	return true
}
