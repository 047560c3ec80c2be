// Package catalog implements the administrative side of the dataset
// catalog: dataset and badge CRUD, badge awards, and facet label
// maintenance. The public query side lives in service/search.
package catalog

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/spendview/catalog-backend/internal/config"
	"github.com/spendview/catalog-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type datasetRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Dataset, error)
	GetByName(ctx context.Context, name string) (*domain.Dataset, error)
	Create(ctx context.Context, d *domain.Dataset) (*domain.Dataset, error)
	Update(ctx context.Context, id uuid.UUID, params domain.DatasetUpdateParams) (*domain.Dataset, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpsertValueLabel(ctx context.Context, dimension, code, label string) error
}

type badgeRepo interface {
	GetByID(ctx context.Context, badgeID uuid.UUID) (*domain.Badge, error)
	List(ctx context.Context) ([]domain.Badge, error)
	ByDatasetID(ctx context.Context, datasetID uuid.UUID) ([]domain.Badge, error)
	Create(ctx context.Context, b *domain.Badge) (*domain.Badge, error)
	Update(ctx context.Context, badgeID uuid.UUID, params domain.BadgeUpdateParams) (*domain.Badge, error)
	Delete(ctx context.Context, badgeID uuid.UUID) error
	Award(ctx context.Context, datasetID, badgeID uuid.UUID) error
	Revoke(ctx context.Context, datasetID, badgeID uuid.UUID) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the catalog administration logic.
type Service struct {
	log      *slog.Logger
	datasets datasetRepo
	badges   badgeRepo
	tx       txManager
	cfg      config.CatalogConfig
}

// NewService creates a new Catalog service.
func NewService(logger *slog.Logger, datasets datasetRepo, badges badgeRepo, tx txManager, cfg config.CatalogConfig) *Service {
	return &Service{
		log:      logger.With("service", "catalog"),
		datasets: datasets,
		badges:   badges,
		tx:       tx,
		cfg:      cfg,
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// normalizeFacets canonicalizes admin-supplied facet values. Unlike the
// search boundary, admin input is strict: unknown dimensions and malformed
// codes are validation errors, not silently dropped.
func (s *Service) normalizeFacets(facets map[string][]string) (map[string][]string, []domain.FieldError) {
	if facets == nil {
		return nil, nil
	}

	var fieldErrs []domain.FieldError
	out := make(map[string][]string, len(facets))

	for dim, codes := range facets {
		if !s.cfg.HasDimension(dim) {
			fieldErrs = append(fieldErrs, domain.FieldError{
				Field:   "facets." + dim,
				Message: "unknown facet dimension",
			})
			continue
		}
		normalized := make([]string, 0, len(codes))
		for _, raw := range codes {
			code, ok := domain.NormalizeFacetCode(raw)
			if !ok {
				fieldErrs = append(fieldErrs, domain.FieldError{
					Field:   "facets." + dim,
					Message: "invalid facet code: " + raw,
				})
				continue
			}
			normalized = append(normalized, code)
		}
		out[dim] = normalized
	}

	if len(fieldErrs) > 0 {
		return nil, fieldErrs
	}
	return out, nil
}
