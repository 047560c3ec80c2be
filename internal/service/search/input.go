package search

import (
	"github.com/spendview/catalog-backend/internal/domain"
)

// SearchInput carries the raw, untrusted query parameters of a search
// request. RawFilters maps dimension names to selected value-codes exactly
// as they arrived on the wire.
type SearchInput struct {
	Term       string
	RawFilters map[string][]string
	Page       int
	PerPage    int
}

// parseInput turns raw request input into a canonical QueryState and
// pagination values. Unknown dimensions and malformed codes are dropped
// silently so that stale or hand-edited URLs degrade to a broader query
// instead of failing.
func (s *Service) parseInput(input SearchInput) (domain.QueryState, int, int) {
	sel := make(domain.FilterSelection, len(input.RawFilters))
	for dim, codes := range input.RawFilters {
		if !s.cfg.HasDimension(dim) {
			continue
		}
		for _, raw := range codes {
			code, ok := domain.NormalizeFacetCode(raw)
			if !ok {
				continue
			}
			sel[dim] = append(sel[dim], code)
		}
	}

	page := input.Page
	if page < 1 {
		page = 1
	}
	perPage := clampPerPage(input.PerPage, s.cfg.DefaultPerPage, s.cfg.MaxPerPage)

	return domain.NewQueryState(input.Term, sel), page, perPage
}

// clampPerPage ensures a page size is within [1, max], defaulting from <=0.
func clampPerPage(perPage, defaultVal, max int) int {
	if perPage <= 0 {
		return defaultVal
	}
	if perPage > max {
		return max
	}
	return perPage
}
