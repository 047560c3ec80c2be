package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spendview/catalog-backend/internal/domain"
)

// facetGroup computes the option list for one dimension under qs.
//
// Counts are forward-looking: the dimension's own constraint is relaxed
// before counting, every other constraint (other dimensions, the text term)
// stays applied. An option's count therefore answers "how many results if I
// also/instead pick this value", which keeps already-selected values visible
// with real numbers instead of collapsing the dimension to its current
// choice.
//
// Any failure degrades only this group: the result carries Degraded=true and
// no options, and the search as a whole still succeeds.
func (s *Service) facetGroup(ctx context.Context, dim domain.FacetDimension, qs domain.QueryState) domain.FacetGroup {
	group := domain.FacetGroup{
		Dimension: dim.Name,
		Label:     dim.Label,
		Options:   []domain.FacetOption{},
	}

	relaxed := qs.WithoutDimension(dim.Name)

	counts, err := s.datasets.FacetCounts(ctx, dim.Name, relaxed)
	if err != nil {
		err = fmt.Errorf("%w: %w", domain.ErrFacetUnavailable, err)
		s.log.WarnContext(ctx, "degrading dimension",
			"dimension", dim.Name, "error", err)
		group.Degraded = true
		return group
	}

	// Selected codes that match nothing anymore (e.g. combined with a text
	// term that excludes them) do not come back from the count query, yet
	// they must stay visible so the user can deselect them.
	byCode := make(map[string]int, len(counts))
	for _, c := range counts {
		byCode[c.Code] = c.Count
	}
	for _, code := range qs.Codes(dim.Name) {
		if _, ok := byCode[code]; !ok {
			counts = append(counts, domain.FacetCount{Code: code, Count: 0})
		}
	}

	codes := make([]string, len(counts))
	for i, c := range counts {
		codes[i] = c.Code
	}
	labels, err := s.datasets.ValueLabels(ctx, dim.Name, codes)
	if err != nil {
		// Codes are readable enough to stand in for labels.
		s.log.WarnContext(ctx, "facet label lookup failed, falling back to codes",
			"dimension", dim.Name, "error", err)
		labels = map[string]string{}
	}

	group.Options = make([]domain.FacetOption, len(counts))
	for i, c := range counts {
		label, ok := labels[c.Code]
		if !ok {
			label = c.Code
		}
		group.Options[i] = domain.FacetOption{
			Dimension: dim.Name,
			Code:      c.Code,
			Label:     label,
			Count:     c.Count,
			Active:    qs.IsActive(dim.Name, c.Code),
		}
	}

	sortOptions(group.Options)

	return group
}

// sortOptions orders facet options by count descending, then label
// ascending (case-insensitive), then code as the final tie-break.
func sortOptions(options []domain.FacetOption) {
	sort.SliceStable(options, func(i, j int) bool {
		a, b := options[i], options[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		la, lb := strings.ToLower(a.Label), strings.ToLower(b.Label)
		if la != lb {
			return la < lb
		}
		return a.Code < b.Code
	})
}
