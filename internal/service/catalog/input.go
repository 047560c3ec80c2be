package catalog

import (
	"github.com/spendview/catalog-backend/internal/domain"
)

// CreateDatasetInput carries the fields for creating a dataset.
type CreateDatasetInput struct {
	Name        string
	Label       string
	Description *string
	Category    *string
	Currency    *string
	Private     bool
	Facets      map[string][]string
}

// Validate checks structural constraints. Facet dimensions and codes are
// validated separately by the service against its configuration.
func (in CreateDatasetInput) Validate() error {
	var errs []domain.FieldError

	if !domain.IsValidSlug(in.Name) {
		errs = append(errs, domain.FieldError{Field: "name", Message: "must be a lowercase URL-safe slug"})
	}
	if in.Label == "" {
		errs = append(errs, domain.FieldError{Field: "label", Message: "required"})
	}
	if in.Currency != nil && *in.Currency != "" && len(*in.Currency) != 3 {
		errs = append(errs, domain.FieldError{Field: "currency", Message: "must be a 3-letter ISO code"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// UpdateDatasetInput carries partial-update fields for a dataset.
// Nil means "leave unchanged"; a pointer to "" clears optional text fields.
type UpdateDatasetInput struct {
	Label       *string
	Description *string
	Category    *string
	Currency    *string
	Private     *bool
	Facets      map[string][]string
}

// Validate checks structural constraints of the provided fields.
func (in UpdateDatasetInput) Validate() error {
	var errs []domain.FieldError

	if in.Label != nil && *in.Label == "" {
		errs = append(errs, domain.FieldError{Field: "label", Message: "must not be empty"})
	}
	if in.Currency != nil && *in.Currency != "" && len(*in.Currency) != 3 {
		errs = append(errs, domain.FieldError{Field: "currency", Message: "must be a 3-letter ISO code"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// CreateBadgeInput carries the fields for creating a badge.
type CreateBadgeInput struct {
	Name        string
	Label       string
	Description *string
	ImageURL    *string
}

// Validate checks structural constraints.
func (in CreateBadgeInput) Validate() error {
	var errs []domain.FieldError

	if !domain.IsValidSlug(in.Name) {
		errs = append(errs, domain.FieldError{Field: "name", Message: "must be a lowercase URL-safe slug"})
	}
	if in.Label == "" {
		errs = append(errs, domain.FieldError{Field: "label", Message: "required"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// UpdateBadgeInput carries partial-update fields for a badge.
type UpdateBadgeInput struct {
	Label       *string
	Description *string
	ImageURL    *string
}

// Validate checks structural constraints of the provided fields.
func (in UpdateBadgeInput) Validate() error {
	if in.Label != nil && *in.Label == "" {
		return domain.NewValidationError("label", "must not be empty")
	}
	return nil
}

// SetFacetLabelInput names one facet value and its display label.
type SetFacetLabelInput struct {
	Dimension string
	Code      string
	Label     string
}
