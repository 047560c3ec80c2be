// Package search implements the public catalog search: one entry point that
// fans out the dataset page fetch and the per-dimension facet computations
// concurrently and assembles the combined result.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/spendview/catalog-backend/internal/config"
	"github.com/spendview/catalog-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type datasetRepo interface {
	Find(ctx context.Context, qs domain.QueryState, limit, offset int) ([]domain.Dataset, int, error)
	FacetCounts(ctx context.Context, dimension string, qs domain.QueryState) ([]domain.FacetCount, error)
	ValueLabels(ctx context.Context, dimension string, codes []string) (map[string]string, error)
}

type badgeRepo interface {
	ByDatasetIDs(ctx context.Context, datasetIDs []uuid.UUID) ([]domain.DatasetBadge, error)
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the catalog search logic.
type Service struct {
	log      *slog.Logger
	datasets datasetRepo
	badges   badgeRepo
	cfg      config.CatalogConfig
}

// NewService creates a new Search service.
func NewService(logger *slog.Logger, datasets datasetRepo, badges badgeRepo, cfg config.CatalogConfig) *Service {
	return &Service{
		log:      logger.With("service", "search"),
		datasets: datasets,
		badges:   badges,
		cfg:      cfg,
	}
}

// ---------------------------------------------------------------------------
// Search
// ---------------------------------------------------------------------------

// Search runs a catalog query and returns the matching dataset page together
// with a facet group per configured dimension.
//
// The page fetch and every facet group are computed concurrently. A page
// fetch failure aborts the whole request with domain.ErrStoreUnavailable; a
// single facet group failure only marks that group Degraded so the rest of
// the result still renders.
func (s *Service) Search(ctx context.Context, input SearchInput) (*SearchResult, error) {
	qs, page, perPage := s.parseInput(input)

	result := &SearchResult{
		Page:    page,
		PerPage: perPage,
		Query:   qs,
		Facets:  make([]domain.FacetGroup, len(s.cfg.Dimensions)),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		datasets, total, err := s.datasets.Find(gctx, qs, perPage, (page-1)*perPage)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return fmt.Errorf("find datasets: %w: %w", domain.ErrStoreUnavailable, err)
		}
		if err := s.attachBadges(gctx, datasets); err != nil {
			// Badges are decoration on the result page; losing them is not
			// worth failing the search.
			s.log.WarnContext(gctx, "failed to load badges for result page", "error", err)
		}
		result.Datasets = datasets
		result.Total = total
		return nil
	})

	for i, dim := range s.cfg.Dimensions {
		g.Go(func() error {
			result.Facets[i] = s.facetGroup(gctx, dim, qs)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return result, nil
}

// attachBadges loads the badges for every dataset on the page in one batch
// query and distributes them onto the Dataset values.
func (s *Service) attachBadges(ctx context.Context, datasets []domain.Dataset) error {
	if len(datasets) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(datasets))
	for i, d := range datasets {
		ids[i] = d.ID
	}

	rows, err := s.badges.ByDatasetIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("badges by dataset_ids: %w", err)
	}

	byDataset := make(map[uuid.UUID][]domain.Badge, len(datasets))
	for _, row := range rows {
		byDataset[row.DatasetID] = append(byDataset[row.DatasetID], row.Badge)
	}
	for i := range datasets {
		datasets[i].Badges = byDataset[datasets[i].ID]
	}

	return nil
}
