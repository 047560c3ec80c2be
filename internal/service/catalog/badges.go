package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/spendview/catalog-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Badge operations
// ---------------------------------------------------------------------------

// CreateBadge validates the input and inserts a badge.
func (s *Service) CreateBadge(ctx context.Context, input CreateBadgeInput) (*domain.Badge, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	created, err := s.badges.Create(ctx, &domain.Badge{
		Name:        input.Name,
		Label:       input.Label,
		Description: input.Description,
		ImageURL:    input.ImageURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create badge: %w", err)
	}

	s.log.InfoContext(ctx, "badge created", "badge_id", created.ID, "name", created.Name)

	return created, nil
}

// UpdateBadge applies a partial update to a badge.
func (s *Service) UpdateBadge(ctx context.Context, badgeID uuid.UUID, input UpdateBadgeInput) (*domain.Badge, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.badges.Update(ctx, badgeID, domain.BadgeUpdateParams{
		Label:       input.Label,
		Description: input.Description,
		ImageURL:    input.ImageURL,
	})
	if err != nil {
		return nil, fmt.Errorf("update badge: %w", err)
	}

	return updated, nil
}

// DeleteBadge removes a badge; its awards cascade, datasets are untouched.
func (s *Service) DeleteBadge(ctx context.Context, badgeID uuid.UUID) error {
	if err := s.badges.Delete(ctx, badgeID); err != nil {
		return fmt.Errorf("delete badge: %w", err)
	}

	s.log.InfoContext(ctx, "badge deleted", "badge_id", badgeID)

	return nil
}

// GetBadge returns a badge by ID.
func (s *Service) GetBadge(ctx context.Context, badgeID uuid.UUID) (*domain.Badge, error) {
	return s.badges.GetByID(ctx, badgeID)
}

// ListBadges returns all badges ordered by label.
func (s *Service) ListBadges(ctx context.Context) ([]domain.Badge, error) {
	return s.badges.List(ctx)
}

// DatasetBadges returns the badges awarded to one dataset.
func (s *Service) DatasetBadges(ctx context.Context, datasetID uuid.UUID) ([]domain.Badge, error) {
	return s.badges.ByDatasetID(ctx, datasetID)
}

// AwardBadge attaches a badge to a dataset. Idempotent.
func (s *Service) AwardBadge(ctx context.Context, datasetID, badgeID uuid.UUID) error {
	if err := s.badges.Award(ctx, datasetID, badgeID); err != nil {
		return fmt.Errorf("award badge: %w", err)
	}

	s.log.InfoContext(ctx, "badge awarded", "dataset_id", datasetID, "badge_id", badgeID)

	return nil
}

// RevokeBadge detaches a badge from a dataset. Revoking an absent award is
// not an error.
func (s *Service) RevokeBadge(ctx context.Context, datasetID, badgeID uuid.UUID) error {
	if err := s.badges.Revoke(ctx, datasetID, badgeID); err != nil {
		return fmt.Errorf("revoke badge: %w", err)
	}

	return nil
}
