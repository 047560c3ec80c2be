package search

import (
	"github.com/spendview/catalog-backend/internal/domain"
)

// SearchResult is the combined outcome of one catalog search: the dataset
// page, the total match count, and one facet group per configured dimension
// in configuration order.
type SearchResult struct {
	Datasets []domain.Dataset
	Total    int
	Page     int
	PerPage  int
	Facets   []domain.FacetGroup

	// Query is the canonical state the results were computed for, after
	// dropping unknown dimensions and malformed codes from the input.
	Query domain.QueryState
}

// HasNextPage reports whether another page of results exists.
func (r *SearchResult) HasNextPage() bool {
	return r.Page*r.PerPage < r.Total
}
