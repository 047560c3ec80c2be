package domain

import (
	"time"

	"github.com/google/uuid"
)

// Badge is an award that can be attached to any number of datasets.
// The dataset/badge relation is many-to-many.
type Badge struct {
	ID          uuid.UUID
	Name        string // unique slug
	Label       string
	Description *string
	ImageURL    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DatasetBadge pairs a badge with the dataset it is awarded to. Used by
// batch lookups that load badges for a whole result page at once.
type DatasetBadge struct {
	DatasetID uuid.UUID
	Badge
}

// BadgeUpdateParams carries partial-update fields for a badge.
type BadgeUpdateParams struct {
	Label       *string
	Description *string
	ImageURL    *string
}
