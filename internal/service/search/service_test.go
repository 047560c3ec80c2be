package search

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendview/catalog-backend/internal/config"
	"github.com/spendview/catalog-backend/internal/domain"
)

// ===========================================================================
// Manual mocks (moq-style with func fields)
// ===========================================================================

type mockDatasetRepo struct {
	FindFunc        func(ctx context.Context, qs domain.QueryState, limit, offset int) ([]domain.Dataset, int, error)
	FacetCountsFunc func(ctx context.Context, dimension string, qs domain.QueryState) ([]domain.FacetCount, error)
	ValueLabelsFunc func(ctx context.Context, dimension string, codes []string) (map[string]string, error)
}

func (m *mockDatasetRepo) Find(ctx context.Context, qs domain.QueryState, limit, offset int) ([]domain.Dataset, int, error) {
	if m.FindFunc != nil {
		return m.FindFunc(ctx, qs, limit, offset)
	}
	return []domain.Dataset{}, 0, nil
}

func (m *mockDatasetRepo) FacetCounts(ctx context.Context, dimension string, qs domain.QueryState) ([]domain.FacetCount, error) {
	if m.FacetCountsFunc != nil {
		return m.FacetCountsFunc(ctx, dimension, qs)
	}
	return []domain.FacetCount{}, nil
}

func (m *mockDatasetRepo) ValueLabels(ctx context.Context, dimension string, codes []string) (map[string]string, error) {
	if m.ValueLabelsFunc != nil {
		return m.ValueLabelsFunc(ctx, dimension, codes)
	}
	return map[string]string{}, nil
}

type mockBadgeRepo struct {
	ByDatasetIDsFunc func(ctx context.Context, datasetIDs []uuid.UUID) ([]domain.DatasetBadge, error)
}

func (m *mockBadgeRepo) ByDatasetIDs(ctx context.Context, datasetIDs []uuid.UUID) ([]domain.DatasetBadge, error) {
	if m.ByDatasetIDsFunc != nil {
		return m.ByDatasetIDsFunc(ctx, datasetIDs)
	}
	return []domain.DatasetBadge{}, nil
}

// ===========================================================================
// Helpers
// ===========================================================================

func testConfig() config.CatalogConfig {
	return config.CatalogConfig{
		DefaultPerPage: 20,
		MaxPerPage:     100,
		Dimensions: []domain.FacetDimension{
			{Name: "territories", Label: "Territories"},
			{Name: "languages", Label: "Languages"},
		},
	}
}

func newTestService(datasets *mockDatasetRepo, badges *mockBadgeRepo) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(logger, datasets, badges, testConfig())
}

// syncBuffer collects log output from the concurrent facet goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func findGroup(t *testing.T, groups []domain.FacetGroup, dimension string) domain.FacetGroup {
	t.Helper()
	for _, g := range groups {
		if g.Dimension == dimension {
			return g
		}
	}
	t.Fatalf("no facet group for dimension %q in %v", dimension, groups)
	return domain.FacetGroup{}
}

// ===========================================================================
// Input parsing
// ===========================================================================

func TestSearch_DropsUnknownDimensionsAndMalformedCodes(t *testing.T) {
	t.Parallel()

	var gotQS domain.QueryState
	datasets := &mockDatasetRepo{
		FindFunc: func(_ context.Context, qs domain.QueryState, _, _ int) ([]domain.Dataset, int, error) {
			gotQS = qs
			return []domain.Dataset{}, 0, nil
		},
	}
	svc := newTestService(datasets, &mockBadgeRepo{})

	result, err := svc.Search(context.Background(), SearchInput{
		RawFilters: map[string][]string{
			"territories": {"FR", "not a code!", "de"},
			"bogus":       {"xx"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"de", "fr"}, gotQS.Codes("territories"))
	assert.Nil(t, gotQS.Codes("bogus"))
	assert.Equal(t, []string{"territories"}, gotQS.Dimensions())
	assert.Equal(t, gotQS, result.Query)
}

func TestSearch_PaginationDefaultsAndClamps(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name                       string
		page, perPage              int
		wantLimit, wantOffset      int
		wantPage, wantPerPage      int
	}{
		{"defaults", 0, 0, 20, 0, 1, 20},
		{"explicit", 3, 10, 10, 20, 3, 10},
		{"over max", 1, 1000, 100, 0, 1, 100},
		{"negative page", -5, 10, 10, 0, 1, 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var gotLimit, gotOffset int
			datasets := &mockDatasetRepo{
				FindFunc: func(_ context.Context, _ domain.QueryState, limit, offset int) ([]domain.Dataset, int, error) {
					gotLimit, gotOffset = limit, offset
					return []domain.Dataset{}, 0, nil
				},
			}
			svc := newTestService(datasets, &mockBadgeRepo{})

			result, err := svc.Search(context.Background(), SearchInput{Page: tc.page, PerPage: tc.perPage})
			require.NoError(t, err)

			assert.Equal(t, tc.wantLimit, gotLimit)
			assert.Equal(t, tc.wantOffset, gotOffset)
			assert.Equal(t, tc.wantPage, result.Page)
			assert.Equal(t, tc.wantPerPage, result.PerPage)
		})
	}
}

// ===========================================================================
// Facet computation
// ===========================================================================

func TestSearch_FacetCountsUseRelaxedState(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	relaxedBy := map[string]domain.QueryState{}

	datasets := &mockDatasetRepo{
		FacetCountsFunc: func(_ context.Context, dimension string, qs domain.QueryState) ([]domain.FacetCount, error) {
			mu.Lock()
			relaxedBy[dimension] = qs
			mu.Unlock()
			return []domain.FacetCount{}, nil
		},
	}
	svc := newTestService(datasets, &mockBadgeRepo{})

	_, err := svc.Search(context.Background(), SearchInput{
		Term: "budget",
		RawFilters: map[string][]string{
			"territories": {"fr"},
			"languages":   {"en"},
		},
	})
	require.NoError(t, err)

	// Each dimension's own constraint is removed; the other dimension and
	// the text term stay.
	terr := relaxedBy["territories"]
	assert.Nil(t, terr.Codes("territories"))
	assert.Equal(t, []string{"en"}, terr.Codes("languages"))
	assert.Equal(t, "budget", terr.Term())

	lang := relaxedBy["languages"]
	assert.Nil(t, lang.Codes("languages"))
	assert.Equal(t, []string{"fr"}, lang.Codes("territories"))
	assert.Equal(t, "budget", lang.Term())
}

func TestSearch_FacetOptions_LabelsActiveAndOrder(t *testing.T) {
	t.Parallel()

	datasets := &mockDatasetRepo{
		FacetCountsFunc: func(_ context.Context, dimension string, _ domain.QueryState) ([]domain.FacetCount, error) {
			if dimension != "territories" {
				return []domain.FacetCount{}, nil
			}
			return []domain.FacetCount{
				{Code: "gb", Count: 3},
				{Code: "fr", Count: 7},
				{Code: "de", Count: 3},
			}, nil
		},
		ValueLabelsFunc: func(_ context.Context, dimension string, _ []string) (map[string]string, error) {
			return map[string]string{"fr": "France", "de": "Germany"}, nil
		},
	}
	svc := newTestService(datasets, &mockBadgeRepo{})

	result, err := svc.Search(context.Background(), SearchInput{
		RawFilters: map[string][]string{"territories": {"fr"}},
	})
	require.NoError(t, err)

	group := findGroup(t, result.Facets, "territories")
	assert.Equal(t, "Territories", group.Label)
	assert.False(t, group.Degraded)

	require.Len(t, group.Options, 3)
	// Count desc first, then label asc (case-insensitive); "gb" has no
	// stored label, falls back to its code, and "gb" < "germany" puts it
	// ahead of Germany on the count tie.
	assert.Equal(t, "fr", group.Options[0].Code)
	assert.Equal(t, "France", group.Options[0].Label)
	assert.True(t, group.Options[0].Active)
	assert.Equal(t, "gb", group.Options[1].Code)
	assert.Equal(t, "gb", group.Options[1].Label)
	assert.False(t, group.Options[1].Active)
	assert.Equal(t, "de", group.Options[2].Code)
	assert.Equal(t, "Germany", group.Options[2].Label)
}

func TestSearch_ActiveCodeWithZeroMatchesStaysVisible(t *testing.T) {
	t.Parallel()

	datasets := &mockDatasetRepo{
		FacetCountsFunc: func(_ context.Context, dimension string, _ domain.QueryState) ([]domain.FacetCount, error) {
			if dimension != "territories" {
				return []domain.FacetCount{}, nil
			}
			// "fr" is selected but the text term excludes every fr dataset.
			return []domain.FacetCount{{Code: "de", Count: 2}}, nil
		},
	}
	svc := newTestService(datasets, &mockBadgeRepo{})

	result, err := svc.Search(context.Background(), SearchInput{
		Term:       "health",
		RawFilters: map[string][]string{"territories": {"fr"}},
	})
	require.NoError(t, err)

	group := findGroup(t, result.Facets, "territories")
	require.Len(t, group.Options, 2)

	last := group.Options[1]
	assert.Equal(t, "fr", last.Code)
	assert.Equal(t, 0, last.Count)
	assert.True(t, last.Active, "selected code must stay visible for deselection")
}

func TestSearch_FacetFailureDegradesOnlyThatDimension(t *testing.T) {
	t.Parallel()

	datasets := &mockDatasetRepo{
		FindFunc: func(_ context.Context, _ domain.QueryState, _, _ int) ([]domain.Dataset, int, error) {
			return []domain.Dataset{{ID: uuid.New(), Label: "Still here"}}, 1, nil
		},
		FacetCountsFunc: func(_ context.Context, dimension string, _ domain.QueryState) ([]domain.FacetCount, error) {
			if dimension == "territories" {
				return nil, errors.New("statement timeout")
			}
			return []domain.FacetCount{{Code: "en", Count: 1}}, nil
		},
	}
	logBuf := &syncBuffer{}
	logger := slog.New(slog.NewTextHandler(logBuf, nil))
	svc := NewService(logger, datasets, &mockBadgeRepo{}, testConfig())

	result, err := svc.Search(context.Background(), SearchInput{})
	require.NoError(t, err, "one failed dimension must not fail the search")

	assert.Len(t, result.Datasets, 1)

	broken := findGroup(t, result.Facets, "territories")
	assert.True(t, broken.Degraded)
	assert.Empty(t, broken.Options)

	healthy := findGroup(t, result.Facets, "languages")
	assert.False(t, healthy.Degraded)
	assert.Len(t, healthy.Options, 1)

	assert.Contains(t, logBuf.String(), domain.ErrFacetUnavailable.Error(),
		"degrade log should carry the facet sentinel")
}

func TestSearch_LabelLookupFailureFallsBackToCodes(t *testing.T) {
	t.Parallel()

	datasets := &mockDatasetRepo{
		FacetCountsFunc: func(_ context.Context, dimension string, _ domain.QueryState) ([]domain.FacetCount, error) {
			if dimension != "territories" {
				return []domain.FacetCount{}, nil
			}
			return []domain.FacetCount{{Code: "fr", Count: 1}}, nil
		},
		ValueLabelsFunc: func(_ context.Context, _ string, _ []string) (map[string]string, error) {
			return nil, errors.New("connection reset")
		},
	}
	svc := newTestService(datasets, &mockBadgeRepo{})

	result, err := svc.Search(context.Background(), SearchInput{})
	require.NoError(t, err)

	group := findGroup(t, result.Facets, "territories")
	assert.False(t, group.Degraded)
	require.Len(t, group.Options, 1)
	assert.Equal(t, "fr", group.Options[0].Label)
}

// ===========================================================================
// Primary fetch
// ===========================================================================

func TestSearch_StoreFailureIsFatal(t *testing.T) {
	t.Parallel()

	datasets := &mockDatasetRepo{
		FindFunc: func(_ context.Context, _ domain.QueryState, _, _ int) ([]domain.Dataset, int, error) {
			return nil, 0, errors.New("dial tcp: connection refused")
		},
	}
	svc := newTestService(datasets, &mockBadgeRepo{})

	_, err := svc.Search(context.Background(), SearchInput{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestSearch_AttachesBadgesToPage(t *testing.T) {
	t.Parallel()

	ds1, ds2 := uuid.New(), uuid.New()
	badgeLabel := "Open Data"

	datasets := &mockDatasetRepo{
		FindFunc: func(_ context.Context, _ domain.QueryState, _, _ int) ([]domain.Dataset, int, error) {
			return []domain.Dataset{{ID: ds1, Label: "A"}, {ID: ds2, Label: "B"}}, 2, nil
		},
	}
	badges := &mockBadgeRepo{
		ByDatasetIDsFunc: func(_ context.Context, ids []uuid.UUID) ([]domain.DatasetBadge, error) {
			assert.ElementsMatch(t, []uuid.UUID{ds1, ds2}, ids)
			return []domain.DatasetBadge{
				{DatasetID: ds1, Badge: domain.Badge{ID: uuid.New(), Label: badgeLabel}},
			}, nil
		},
	}
	svc := newTestService(datasets, badges)

	result, err := svc.Search(context.Background(), SearchInput{})
	require.NoError(t, err)

	require.Len(t, result.Datasets, 2)
	require.Len(t, result.Datasets[0].Badges, 1)
	assert.Equal(t, badgeLabel, result.Datasets[0].Badges[0].Label)
	assert.Empty(t, result.Datasets[1].Badges)
}

func TestSearch_BadgeFailureDoesNotFailSearch(t *testing.T) {
	t.Parallel()

	datasets := &mockDatasetRepo{
		FindFunc: func(_ context.Context, _ domain.QueryState, _, _ int) ([]domain.Dataset, int, error) {
			return []domain.Dataset{{ID: uuid.New(), Label: "A"}}, 1, nil
		},
	}
	badges := &mockBadgeRepo{
		ByDatasetIDsFunc: func(_ context.Context, _ []uuid.UUID) ([]domain.DatasetBadge, error) {
			return nil, errors.New("boom")
		},
	}
	svc := newTestService(datasets, badges)

	result, err := svc.Search(context.Background(), SearchInput{})
	require.NoError(t, err)
	assert.Len(t, result.Datasets, 1)
}

func TestSearchResult_HasNextPage(t *testing.T) {
	t.Parallel()

	assert.True(t, (&SearchResult{Page: 1, PerPage: 20, Total: 21}).HasNextPage())
	assert.False(t, (&SearchResult{Page: 2, PerPage: 20, Total: 21}).HasNextPage())
	assert.False(t, (&SearchResult{Page: 1, PerPage: 20, Total: 0}).HasNextPage())
}
