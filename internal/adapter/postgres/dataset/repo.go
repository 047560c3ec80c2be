// Package dataset implements the catalog store using PostgreSQL. It serves
// both the primary search fetch and the per-dimension facet counts, and
// carries the administrative dataset CRUD.
package dataset

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/spendview/catalog-backend/internal/adapter/postgres"
	"github.com/spendview/catalog-backend/internal/domain"
)

// Repo provides dataset persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new dataset repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const datasetColumns = "d.id, d.name, d.label, d.description, d.category, d.currency, d.private, d.created_at, d.updated_at"

// ---------------------------------------------------------------------------
// Search reads
// ---------------------------------------------------------------------------

// Find returns the datasets matching qs, paginated, plus the total match
// count. Facet codes are loaded for the returned page. Read-only.
func (r *Repo) Find(ctx context.Context, qs domain.QueryState, limit, offset int) ([]domain.Dataset, int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	countSQL, countArgs, err := applyQuery(psql.Select("COUNT(*)").From("datasets d"), qs).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count datasets: %w", err)
	}

	b := applyQuery(psql.Select(datasetColumns).From("datasets d"), qs)
	b = applyOrder(b, qs).Limit(uint64(limit)).Offset(uint64(offset))

	sqlStr, args, err := b.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build find query: %w", err)
	}

	rows, err := querier.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("find datasets: %w", err)
	}
	defer rows.Close()

	datasets, err := scanDatasets(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("find datasets: %w", err)
	}

	if err := r.loadFacets(ctx, datasets); err != nil {
		return nil, 0, fmt.Errorf("find datasets: %w", err)
	}

	return datasets, total, nil
}

// FacetCounts returns per-code match counts for one dimension under qs.
// The caller is expected to pass an already relaxed QueryState (the
// dimension's own selections cleared); this method applies qs verbatim.
func (r *Repo) FacetCounts(ctx context.Context, dimension string, qs domain.QueryState) ([]domain.FacetCount, error) {
	b := psql.Select("f.code", "COUNT(DISTINCT f.dataset_id) AS cnt").
		From("dataset_facets f").
		Join("datasets d ON d.id = f.dataset_id").
		Where(sq.Eq{"f.dimension": dimension})
	b = applyQuery(b, qs).GroupBy("f.code").OrderBy("cnt DESC", "f.code ASC")

	sqlStr, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build facet counts query: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := querier.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("facet counts %s: %w", dimension, err)
	}
	defer rows.Close()

	var counts []domain.FacetCount
	for rows.Next() {
		var c domain.FacetCount
		if err := rows.Scan(&c.Code, &c.Count); err != nil {
			return nil, fmt.Errorf("facet counts %s: %w", dimension, err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("facet counts %s: %w", dimension, err)
	}

	return counts, nil
}

const valueLabelsSQL = `
SELECT code, label FROM facet_values
WHERE dimension = $1 AND code = ANY($2)`

// ValueLabels returns the display labels for the given codes of a
// dimension. Codes without a label row are absent from the result map.
func (r *Repo) ValueLabels(ctx context.Context, dimension string, codes []string) (map[string]string, error) {
	if len(codes) == 0 {
		return map[string]string{}, nil
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := querier.Query(ctx, valueLabelsSQL, dimension, codes)
	if err != nil {
		return nil, fmt.Errorf("value labels %s: %w", dimension, err)
	}
	defer rows.Close()

	labels := make(map[string]string, len(codes))
	for rows.Next() {
		var code, label string
		if err := rows.Scan(&code, &label); err != nil {
			return nil, fmt.Errorf("value labels %s: %w", dimension, err)
		}
		labels[code] = label
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("value labels %s: %w", dimension, err)
	}

	return labels, nil
}

const upsertValueLabelSQL = `
INSERT INTO facet_values (dimension, code, label)
VALUES ($1, $2, $3)
ON CONFLICT (dimension, code) DO UPDATE SET label = EXCLUDED.label`

// UpsertValueLabel sets the display label for a facet code.
func (r *Repo) UpsertValueLabel(ctx context.Context, dimension, code, label string) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)
	if _, err := querier.Exec(ctx, upsertValueLabelSQL, dimension, code, label); err != nil {
		return fmt.Errorf("upsert value label %s/%s: %w", dimension, code, err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Entity reads
// ---------------------------------------------------------------------------

// GetByID returns a dataset by primary key with its facet codes loaded.
// Returns domain.ErrNotFound if absent.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Dataset, error) {
	return r.getOne(ctx, sq.Eq{"d.id": id}, id)
}

// GetByName returns a dataset by its unique slug.
func (r *Repo) GetByName(ctx context.Context, name string) (*domain.Dataset, error) {
	return r.getOne(ctx, sq.Eq{"d.name": name}, uuid.Nil)
}

func (r *Repo) getOne(ctx context.Context, pred sq.Eq, id uuid.UUID) (*domain.Dataset, error) {
	sqlStr, args, err := psql.Select(datasetColumns).From("datasets d").Where(pred).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get query: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	row := querier.QueryRow(ctx, sqlStr, args...)

	d, err := scanDataset(row)
	if err != nil {
		return nil, postgres.MapError(err, "dataset", id)
	}

	datasets := []domain.Dataset{d}
	if err := r.loadFacets(ctx, datasets); err != nil {
		return nil, postgres.MapError(err, "dataset", id)
	}

	return &datasets[0], nil
}

// ---------------------------------------------------------------------------
// Writes
// ---------------------------------------------------------------------------

const insertDatasetSQL = `
INSERT INTO datasets (id, name, label, description, category, currency, private, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
RETURNING created_at, updated_at`

// Create inserts a dataset and its facet values. Run inside a transaction
// when atomicity with other writes is required.
// Returns domain.ErrAlreadyExists on a name collision.
func (r *Repo) Create(ctx context.Context, d *domain.Dataset) (*domain.Dataset, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}

	out := *d
	err := querier.QueryRow(ctx, insertDatasetSQL,
		d.ID, d.Name, d.Label,
		ptrStringToPgText(d.Description), ptrStringToPgText(d.Category), ptrStringToPgText(d.Currency),
		d.Private,
	).Scan(&out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, postgres.MapError(err, "dataset", d.ID)
	}

	if err := r.ReplaceFacets(ctx, d.ID, d.Facets); err != nil {
		return nil, err
	}

	return &out, nil
}

// Update applies partial updates to a dataset. When params.Facets is
// non-nil the facet values are replaced wholesale.
// Returns domain.ErrNotFound if the dataset does not exist.
func (r *Repo) Update(ctx context.Context, id uuid.UUID, params domain.DatasetUpdateParams) (*domain.Dataset, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	b := psql.Update("datasets").Set("updated_at", sq.Expr("now()")).Where(sq.Eq{"id": id})
	if params.Label != nil {
		b = b.Set("label", *params.Label)
	}
	if params.Description != nil {
		b = b.Set("description", emptyToNull(*params.Description))
	}
	if params.Category != nil {
		b = b.Set("category", emptyToNull(*params.Category))
	}
	if params.Currency != nil {
		b = b.Set("currency", emptyToNull(*params.Currency))
	}
	if params.Private != nil {
		b = b.Set("private", *params.Private)
	}

	sqlStr, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update query: %w", err)
	}

	tag, err := querier.Exec(ctx, sqlStr, args...)
	if err != nil {
		return nil, postgres.MapError(err, "dataset", id)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("dataset %s: %w", id, domain.ErrNotFound)
	}

	if params.Facets != nil {
		if err := r.ReplaceFacets(ctx, id, params.Facets); err != nil {
			return nil, err
		}
	}

	return r.GetByID(ctx, id)
}

// Delete removes a dataset. CASCADE removes its facet rows and badge awards.
// Returns domain.ErrNotFound if the dataset does not exist.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, `DELETE FROM datasets WHERE id = $1`, id)
	if err != nil {
		return postgres.MapError(err, "dataset", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("dataset %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

const insertFacetsSQL = `
INSERT INTO dataset_facets (dataset_id, dimension, code)
SELECT $1, $2, unnest($3::text[])
ON CONFLICT DO NOTHING`

// ReplaceFacets replaces all facet rows of a dataset with the given values.
func (r *Repo) ReplaceFacets(ctx context.Context, datasetID uuid.UUID, facets map[string][]string) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	if _, err := querier.Exec(ctx, `DELETE FROM dataset_facets WHERE dataset_id = $1`, datasetID); err != nil {
		return postgres.MapError(err, "dataset_facets", datasetID)
	}

	for dim, codes := range facets {
		if len(codes) == 0 {
			continue
		}
		if _, err := querier.Exec(ctx, insertFacetsSQL, datasetID, dim, codes); err != nil {
			return postgres.MapError(err, "dataset_facets", datasetID)
		}
	}

	return nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

const loadFacetsSQL = `
SELECT dataset_id, dimension, code
FROM dataset_facets
WHERE dataset_id = ANY($1::uuid[])
ORDER BY dataset_id, dimension, code`

// loadFacets populates Facets for the given datasets in one batch query.
func (r *Repo) loadFacets(ctx context.Context, datasets []domain.Dataset) error {
	if len(datasets) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(datasets))
	index := make(map[uuid.UUID]*domain.Dataset, len(datasets))
	for i := range datasets {
		ids[i] = datasets[i].ID
		index[datasets[i].ID] = &datasets[i]
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)
	rows, err := querier.Query(ctx, loadFacetsSQL, ids)
	if err != nil {
		return fmt.Errorf("load facets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			datasetID uuid.UUID
			dimension string
			code      string
		)
		if err := rows.Scan(&datasetID, &dimension, &code); err != nil {
			return fmt.Errorf("load facets: %w", err)
		}
		d := index[datasetID]
		if d.Facets == nil {
			d.Facets = make(map[string][]string)
		}
		d.Facets[dimension] = append(d.Facets[dimension], code)
	}

	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanDataset scans one datasetColumns row.
func scanDataset(row rowScanner) (domain.Dataset, error) {
	var (
		d           domain.Dataset
		description pgtype.Text
		category    pgtype.Text
		currency    pgtype.Text
		createdAt   time.Time
		updatedAt   time.Time
	)

	err := row.Scan(&d.ID, &d.Name, &d.Label, &description, &category, &currency, &d.Private, &createdAt, &updatedAt)
	if err != nil {
		return domain.Dataset{}, err
	}

	d.Description = pgTextToPtr(description)
	d.Category = pgTextToPtr(category)
	d.Currency = pgTextToPtr(currency)
	d.CreatedAt = createdAt
	d.UpdatedAt = updatedAt

	return d, nil
}

// scanDatasets scans all rows. Returns an empty slice (not nil) for no rows.
func scanDatasets(rows pgx.Rows) ([]domain.Dataset, error) {
	result := []domain.Dataset{}
	for rows.Next() {
		d, err := scanDataset(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

// ---------------------------------------------------------------------------
// pgtype helpers
// ---------------------------------------------------------------------------

func ptrStringToPgText(s *string) pgtype.Text {
	if s == nil || *s == "" {
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
