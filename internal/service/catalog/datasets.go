package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/spendview/catalog-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Dataset operations
// ---------------------------------------------------------------------------

// CreateDataset validates the input and inserts the dataset together with
// its facet values in one transaction.
func (s *Service) CreateDataset(ctx context.Context, input CreateDatasetInput) (*domain.Dataset, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	facets, fieldErrs := s.normalizeFacets(input.Facets)
	if fieldErrs != nil {
		return nil, domain.NewValidationErrors(fieldErrs)
	}

	d := &domain.Dataset{
		Name:        input.Name,
		Label:       input.Label,
		Description: input.Description,
		Category:    input.Category,
		Currency:    input.Currency,
		Private:     input.Private,
		Facets:      facets,
	}

	var created *domain.Dataset
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.datasets.Create(ctx, d)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create dataset: %w", err)
	}

	s.log.InfoContext(ctx, "dataset created", "dataset_id", created.ID, "name", created.Name)

	return created, nil
}

// UpdateDataset applies a partial update. When Facets is non-nil the
// dataset's facet values are replaced wholesale, in the same transaction as
// the field update.
func (s *Service) UpdateDataset(ctx context.Context, datasetID uuid.UUID, input UpdateDatasetInput) (*domain.Dataset, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	facets, fieldErrs := s.normalizeFacets(input.Facets)
	if fieldErrs != nil {
		return nil, domain.NewValidationErrors(fieldErrs)
	}

	params := domain.DatasetUpdateParams{
		Label:       input.Label,
		Description: input.Description,
		Category:    input.Category,
		Currency:    input.Currency,
		Private:     input.Private,
		Facets:      facets,
	}

	var updated *domain.Dataset
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.datasets.Update(ctx, datasetID, params)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("update dataset: %w", err)
	}

	return updated, nil
}

// DeleteDataset removes a dataset; facet values and badge awards cascade.
func (s *Service) DeleteDataset(ctx context.Context, datasetID uuid.UUID) error {
	if err := s.datasets.Delete(ctx, datasetID); err != nil {
		return fmt.Errorf("delete dataset: %w", err)
	}

	s.log.InfoContext(ctx, "dataset deleted", "dataset_id", datasetID)

	return nil
}

// GetDataset returns a dataset by ID with its facet values and badges.
func (s *Service) GetDataset(ctx context.Context, datasetID uuid.UUID) (*domain.Dataset, error) {
	d, err := s.datasets.GetByID(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	badges, err := s.badges.ByDatasetID(ctx, datasetID)
	if err != nil {
		return nil, fmt.Errorf("load dataset badges: %w", err)
	}
	d.Badges = badges

	return d, nil
}

// GetDatasetByName returns a dataset by its slug with facet values and badges.
func (s *Service) GetDatasetByName(ctx context.Context, name string) (*domain.Dataset, error) {
	d, err := s.datasets.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	badges, err := s.badges.ByDatasetID(ctx, d.ID)
	if err != nil {
		return nil, fmt.Errorf("load dataset badges: %w", err)
	}
	d.Badges = badges

	return d, nil
}

// SetFacetLabel stores the display label for a facet value-code.
func (s *Service) SetFacetLabel(ctx context.Context, input SetFacetLabelInput) error {
	if !s.cfg.HasDimension(input.Dimension) {
		return domain.NewValidationError("dimension", "unknown facet dimension")
	}
	code, ok := domain.NormalizeFacetCode(input.Code)
	if !ok {
		return domain.NewValidationError("code", "invalid facet code")
	}
	if input.Label == "" {
		return domain.NewValidationError("label", "required")
	}

	if err := s.datasets.UpsertValueLabel(ctx, input.Dimension, code, input.Label); err != nil {
		return fmt.Errorf("set facet label: %w", err)
	}

	return nil
}
