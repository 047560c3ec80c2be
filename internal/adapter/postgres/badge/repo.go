// Package badge implements the badge repository using PostgreSQL.
// It provides badge CRUD and the M2M award relation to datasets via the
// dataset_badges join table.
package badge

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/spendview/catalog-backend/internal/adapter/postgres"
	"github.com/spendview/catalog-backend/internal/domain"
)

// Repo provides badge persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new badge repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

const getByIDSQL = `
SELECT b.id, b.name, b.label, b.description, b.image_url, b.created_at, b.updated_at
FROM badges b
WHERE b.id = $1`

// GetByID returns a badge by primary key.
// Returns domain.ErrNotFound if the badge does not exist.
func (r *Repo) GetByID(ctx context.Context, badgeID uuid.UUID) (*domain.Badge, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	b, err := scanBadge(querier.QueryRow(ctx, getByIDSQL, badgeID))
	if err != nil {
		return nil, postgres.MapError(err, "badge", badgeID)
	}

	return &b, nil
}

const listSQL = `
SELECT b.id, b.name, b.label, b.description, b.image_url, b.created_at, b.updated_at
FROM badges b
ORDER BY b.label, b.id`

// List returns all badges ordered by label.
// Returns an empty slice (not nil) when there are none.
func (r *Repo) List(ctx context.Context) ([]domain.Badge, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listSQL)
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	defer rows.Close()

	return scanBadges(rows)
}

const byDatasetIDSQL = `
SELECT b.id, b.name, b.label, b.description, b.image_url, b.created_at, b.updated_at
FROM dataset_badges db
JOIN badges b ON db.badge_id = b.id
WHERE db.dataset_id = $1
ORDER BY b.label, b.id`

// ByDatasetID returns all badges awarded to a dataset, ordered by label.
func (r *Repo) ByDatasetID(ctx context.Context, datasetID uuid.UUID) ([]domain.Badge, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, byDatasetIDSQL, datasetID)
	if err != nil {
		return nil, fmt.Errorf("badges by dataset_id: %w", err)
	}
	defer rows.Close()

	return scanBadges(rows)
}

const byDatasetIDsSQL = `
SELECT db.dataset_id,
       b.id, b.name, b.label, b.description, b.image_url, b.created_at, b.updated_at
FROM dataset_badges db
JOIN badges b ON db.badge_id = b.id
WHERE db.dataset_id = ANY($1::uuid[])
ORDER BY db.dataset_id, b.label, b.id`

// ByDatasetIDs returns badges for multiple datasets in one batch query.
// Results include DatasetID for grouping by the caller.
func (r *Repo) ByDatasetIDs(ctx context.Context, datasetIDs []uuid.UUID) ([]domain.DatasetBadge, error) {
	if len(datasetIDs) == 0 {
		return []domain.DatasetBadge{}, nil
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, byDatasetIDsSQL, datasetIDs)
	if err != nil {
		return nil, fmt.Errorf("badges by dataset_ids: %w", err)
	}
	defer rows.Close()

	result := []domain.DatasetBadge{}
	for rows.Next() {
		var (
			datasetID uuid.UUID
			b         domain.Badge
		)
		if err := scanBadgeInto(rows, &datasetID, &b); err != nil {
			return nil, fmt.Errorf("badges by dataset_ids: %w", err)
		}
		result = append(result, domain.DatasetBadge{DatasetID: datasetID, Badge: b})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("badges by dataset_ids: %w", err)
	}

	return result, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

const insertSQL = `
INSERT INTO badges (id, name, label, description, image_url, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, now(), now())
RETURNING created_at, updated_at`

// Create inserts a new badge.
// Returns domain.ErrAlreadyExists if a badge with the same name exists.
func (r *Repo) Create(ctx context.Context, b *domain.Badge) (*domain.Badge, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}

	out := *b
	err := querier.QueryRow(ctx, insertSQL,
		b.ID, b.Name, b.Label, ptrStringToPgText(b.Description), ptrStringToPgText(b.ImageURL),
	).Scan(&out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, postgres.MapError(err, "badge", b.ID)
	}

	return &out, nil
}

const updateSQL = `
UPDATE badges
SET label = $2, description = $3, image_url = $4, updated_at = now()
WHERE id = $1`

// Update modifies a badge's label, description, and/or image using partial
// update params. Returns domain.ErrNotFound if the badge does not exist.
func (r *Repo) Update(ctx context.Context, badgeID uuid.UUID, params domain.BadgeUpdateParams) (*domain.Badge, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	current, err := r.GetByID(ctx, badgeID)
	if err != nil {
		return nil, err
	}

	label := current.Label
	if params.Label != nil {
		label = *params.Label
	}

	description := ptrStringToPgText(current.Description)
	if params.Description != nil {
		description = emptyToNull(*params.Description)
	}

	imageURL := ptrStringToPgText(current.ImageURL)
	if params.ImageURL != nil {
		imageURL = emptyToNull(*params.ImageURL)
	}

	tag, err := querier.Exec(ctx, updateSQL, badgeID, label, description, imageURL)
	if err != nil {
		return nil, postgres.MapError(err, "badge", badgeID)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("badge %s: %w", badgeID, domain.ErrNotFound)
	}

	return r.GetByID(ctx, badgeID)
}

// Delete removes a badge. CASCADE removes its awards; datasets are NOT affected.
// Returns domain.ErrNotFound if the badge does not exist.
func (r *Repo) Delete(ctx context.Context, badgeID uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, `DELETE FROM badges WHERE id = $1`, badgeID)
	if err != nil {
		return postgres.MapError(err, "badge", badgeID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("badge %s: %w", badgeID, domain.ErrNotFound)
	}

	return nil
}

const awardSQL = `
INSERT INTO dataset_badges (dataset_id, badge_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING`

// Award creates an M2M award between a dataset and a badge.
// Idempotent: awarding the same pair twice is NOT an error.
// Returns domain.ErrNotFound when either side does not exist.
func (r *Repo) Award(ctx context.Context, datasetID, badgeID uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := querier.Exec(ctx, awardSQL, datasetID, badgeID); err != nil {
		return postgres.MapError(err, "dataset_badge", badgeID)
	}

	return nil
}

// Revoke removes the award between a dataset and a badge.
// Not an error if the award does not exist (0 rows affected is OK).
func (r *Repo) Revoke(ctx context.Context, datasetID, badgeID uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := querier.Exec(ctx,
		`DELETE FROM dataset_badges WHERE dataset_id = $1 AND badge_id = $2`,
		datasetID, badgeID,
	)
	if err != nil {
		return postgres.MapError(err, "dataset_badge", badgeID)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBadge(row rowScanner) (domain.Badge, error) {
	var (
		b           domain.Badge
		description pgtype.Text
		imageURL    pgtype.Text
		createdAt   time.Time
		updatedAt   time.Time
	)

	err := row.Scan(&b.ID, &b.Name, &b.Label, &description, &imageURL, &createdAt, &updatedAt)
	if err != nil {
		return domain.Badge{}, err
	}

	b.Description = pgTextToPtr(description)
	b.ImageURL = pgTextToPtr(imageURL)
	b.CreatedAt = createdAt
	b.UpdatedAt = updatedAt

	return b, nil
}

func scanBadgeInto(rows pgx.Rows, datasetID *uuid.UUID, b *domain.Badge) error {
	var description, imageURL pgtype.Text

	err := rows.Scan(datasetID, &b.ID, &b.Name, &b.Label, &description, &imageURL, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return err
	}

	b.Description = pgTextToPtr(description)
	b.ImageURL = pgTextToPtr(imageURL)

	return nil
}

func scanBadges(rows pgx.Rows) ([]domain.Badge, error) {
	result := []domain.Badge{}
	for rows.Next() {
		b, err := scanBadge(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

// ---------------------------------------------------------------------------
// pgtype helpers
// ---------------------------------------------------------------------------

func ptrStringToPgText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func pgTextToPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}

func emptyToNull(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}
