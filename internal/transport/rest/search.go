package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/spendview/catalog-backend/internal/service/search"
)

// reserved query parameter names; every other parameter is treated as a
// facet dimension filter (e.g. ?territories=fr&territories=de).
var reservedParams = map[string]bool{
	"q":        true,
	"page":     true,
	"per_page": true,
}

type searchService interface {
	Search(ctx context.Context, input search.SearchInput) (*search.SearchResult, error)
}

// SearchHandler serves the public catalog search endpoint.
type SearchHandler struct {
	log    *slog.Logger
	search searchService
}

// NewSearchHandler creates a SearchHandler.
func NewSearchHandler(logger *slog.Logger, svc searchService) *SearchHandler {
	return &SearchHandler{
		log:    logger.With("handler", "search"),
		search: svc,
	}
}

// SearchResponse is the JSON body of a search result.
type SearchResponse struct {
	Total       int                 `json:"total"`
	Page        int                 `json:"page"`
	PerPage     int                 `json:"per_page"`
	HasNextPage bool                `json:"has_next_page"`
	Datasets    []DatasetPayload    `json:"datasets"`
	Facets      []FacetGroupPayload `json:"facets"`
}

// FacetGroupPayload is one dimension's option list.
type FacetGroupPayload struct {
	Dimension string               `json:"dimension"`
	Label     string               `json:"label"`
	Degraded  bool                 `json:"degraded,omitempty"`
	Options   []FacetOptionPayload `json:"options"`
}

// FacetOptionPayload is one selectable facet value with its forward-looking
// match count.
type FacetOptionPayload struct {
	Code   string `json:"code"`
	Label  string `json:"label"`
	Count  int    `json:"count"`
	Active bool   `json:"active,omitempty"`
}

// Search handles GET /api/v1/search.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	input := search.SearchInput{
		Term:       params.Get("q"),
		RawFilters: map[string][]string{},
	}
	if v := params.Get("page"); v != "" {
		input.Page, _ = strconv.Atoi(v)
	}
	if v := params.Get("per_page"); v != "" {
		input.PerPage, _ = strconv.Atoi(v)
	}
	for name, values := range params {
		if reservedParams[name] {
			continue
		}
		input.RawFilters[name] = values
	}

	result, err := h.search.Search(r.Context(), input)
	if err != nil {
		respondError(r.Context(), h.log, w, err)
		return
	}

	resp := SearchResponse{
		Total:       result.Total,
		Page:        result.Page,
		PerPage:     result.PerPage,
		HasNextPage: result.HasNextPage(),
		Datasets:    make([]DatasetPayload, len(result.Datasets)),
		Facets:      make([]FacetGroupPayload, len(result.Facets)),
	}
	for i := range result.Datasets {
		resp.Datasets[i] = toDatasetPayload(&result.Datasets[i])
	}
	for i, g := range result.Facets {
		fg := FacetGroupPayload{
			Dimension: g.Dimension,
			Label:     g.Label,
			Degraded:  g.Degraded,
			Options:   make([]FacetOptionPayload, len(g.Options)),
		}
		for j, o := range g.Options {
			fg.Options[j] = FacetOptionPayload{
				Code:   o.Code,
				Label:  o.Label,
				Count:  o.Count,
				Active: o.Active,
			}
		}
		resp.Facets[i] = fg
	}

	writeJSON(w, http.StatusOK, resp)
}

// DatasetPayload is the JSON shape of a dataset.
type DatasetPayload struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Label       string              `json:"label"`
	Description *string             `json:"description,omitempty"`
	Category    *string             `json:"category,omitempty"`
	Currency    *string             `json:"currency,omitempty"`
	Private     bool                `json:"private"`
	Facets      map[string][]string `json:"facets,omitempty"`
	Badges      []BadgePayload      `json:"badges,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// BadgePayload is the JSON shape of a badge.
type BadgePayload struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Label       string  `json:"label"`
	Description *string `json:"description,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
}
