package domain

import (
	"time"

	"github.com/google/uuid"
)

// Dataset is the core catalog entity. Facets holds the dataset's facet
// values keyed by dimension name (e.g. "territories" -> ["fr", "de"]);
// a dataset may carry multiple values per dimension.
type Dataset struct {
	ID          uuid.UUID
	Name        string // unique, stable, URL-safe slug
	Label       string
	Description *string
	Category    *string
	Currency    *string
	Private     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Facets map[string][]string
	Badges []Badge
}

// FacetCodes returns the dataset's codes for a dimension (nil if none).
func (d *Dataset) FacetCodes(dimension string) []string {
	if d.Facets == nil {
		return nil
	}
	return d.Facets[dimension]
}

// DatasetUpdateParams carries partial-update fields for a dataset.
// Nil pointer means "leave unchanged"; pointer to empty string clears
// the optional text fields.
type DatasetUpdateParams struct {
	Label       *string
	Description *string
	Category    *string
	Currency    *string
	Private     *bool

	// Facets, when non-nil, replaces the dataset's facet values wholesale.
	Facets map[string][]string
}
