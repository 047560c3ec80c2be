package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spendview/catalog-backend/internal/domain"
	"github.com/spendview/catalog-backend/internal/service/search"
)

type mockSearchService struct {
	SearchFunc func(ctx context.Context, input search.SearchInput) (*search.SearchResult, error)
}

func (m *mockSearchService) Search(ctx context.Context, input search.SearchInput) (*search.SearchResult, error) {
	return m.SearchFunc(ctx, input)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSearchHandler_ParsesQueryParams(t *testing.T) {
	t.Parallel()

	var gotInput search.SearchInput
	svc := &mockSearchService{
		SearchFunc: func(_ context.Context, input search.SearchInput) (*search.SearchResult, error) {
			gotInput = input
			return &search.SearchResult{Page: 2, PerPage: 10}, nil
		},
	}
	h := NewSearchHandler(discardLogger(), svc)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/search?q=budget&page=2&per_page=10&territories=fr&territories=de&languages=en", nil)
	rec := httptest.NewRecorder()

	h.Search(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotInput.Term != "budget" {
		t.Errorf("term = %q", gotInput.Term)
	}
	if gotInput.Page != 2 || gotInput.PerPage != 10 {
		t.Errorf("page/per_page = %d/%d", gotInput.Page, gotInput.PerPage)
	}
	if got := gotInput.RawFilters["territories"]; len(got) != 2 || got[0] != "fr" || got[1] != "de" {
		t.Errorf("territories = %v", got)
	}
	if got := gotInput.RawFilters["languages"]; len(got) != 1 || got[0] != "en" {
		t.Errorf("languages = %v", got)
	}
	if _, ok := gotInput.RawFilters["q"]; ok {
		t.Error("reserved parameter leaked into filters")
	}
}

func TestSearchHandler_RendersResult(t *testing.T) {
	t.Parallel()

	svc := &mockSearchService{
		SearchFunc: func(_ context.Context, _ search.SearchInput) (*search.SearchResult, error) {
			return &search.SearchResult{
				Total:   21,
				Page:    1,
				PerPage: 20,
				Datasets: []domain.Dataset{
					{Label: "Public Accounts", Name: "public-accounts"},
				},
				Facets: []domain.FacetGroup{
					{
						Dimension: "territories",
						Label:     "Territories",
						Options: []domain.FacetOption{
							{Dimension: "territories", Code: "fr", Label: "France", Count: 7, Active: true},
						},
					},
					{Dimension: "languages", Label: "Languages", Degraded: true, Options: []domain.FacetOption{}},
				},
			}, nil
		},
	}
	h := NewSearchHandler(discardLogger(), svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp SearchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.Total != 21 || !resp.HasNextPage {
		t.Errorf("total/has_next_page = %d/%v, want 21/true", resp.Total, resp.HasNextPage)
	}
	if len(resp.Datasets) != 1 || resp.Datasets[0].Name != "public-accounts" {
		t.Errorf("datasets = %v", resp.Datasets)
	}
	if len(resp.Facets) != 2 {
		t.Fatalf("facets = %d groups, want 2", len(resp.Facets))
	}
	if resp.Facets[0].Options[0].Label != "France" || resp.Facets[0].Options[0].Count != 7 {
		t.Errorf("option = %+v", resp.Facets[0].Options[0])
	}
	if !resp.Facets[1].Degraded {
		t.Error("degraded flag lost in rendering")
	}
}

func TestSearchHandler_StoreUnavailableIs503(t *testing.T) {
	t.Parallel()

	svc := &mockSearchService{
		SearchFunc: func(_ context.Context, _ search.SearchInput) (*search.SearchResult, error) {
			return nil, domain.ErrStoreUnavailable
		},
	}
	h := NewSearchHandler(discardLogger(), svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search", nil)
	rec := httptest.NewRecorder()
	h.Search(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}

	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error != "catalog temporarily unavailable" {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestRespondError_Mapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"validation", domain.NewValidationError("label", "required"), http.StatusBadRequest},
		{"already exists", domain.ErrAlreadyExists, http.StatusConflict},
		{"conflict", domain.ErrConflict, http.StatusConflict},
		{"store unavailable", domain.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			respondError(context.Background(), discardLogger(), rec, tc.err)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestRespondError_ValidationIncludesFields(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	respondError(context.Background(), discardLogger(), rec,
		domain.NewValidationErrors([]domain.FieldError{
			{Field: "name", Message: "must be a lowercase URL-safe slug"},
			{Field: "label", Message: "required"},
		}))

	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Fields) != 2 || resp.Fields[0].Field != "name" {
		t.Errorf("fields = %v", resp.Fields)
	}
}
