package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spendview/catalog-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

// SeedDataset creates a dataset with the given label, description, and facet
// values. The name slug is derived from a unique suffix.
// Returns a filled domain.Dataset.
func SeedDataset(t *testing.T, pool *pgxpool.Pool, label, description string, facets map[string][]string) domain.Dataset {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	d := domain.Dataset{
		ID:        uuid.New(),
		Name:      "ds-" + suffix,
		Label:     label,
		Facets:    facets,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if description != "" {
		d.Description = &description
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO datasets (id, name, label, description, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		d.ID, d.Name, d.Label, d.Description, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedDataset insert dataset: %v", err)
	}

	for dim, codes := range facets {
		for _, code := range codes {
			_, err := pool.Exec(ctx,
				`INSERT INTO dataset_facets (dataset_id, dimension, code) VALUES ($1, $2, $3)`,
				d.ID, dim, code,
			)
			if err != nil {
				t.Fatalf("testhelper: SeedDataset insert facet %s/%s: %v", dim, code, err)
			}
		}
	}

	return d
}

// SeedBadge creates a badge with a unique name. Returns a filled domain.Badge.
func SeedBadge(t *testing.T, pool *pgxpool.Pool, label string) domain.Badge {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	b := domain.Badge{
		ID:        uuid.New(),
		Name:      "badge-" + suffix,
		Label:     label,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO badges (id, name, label, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		b.ID, b.Name, b.Label, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedBadge insert badge: %v", err)
	}

	return b
}

// SeedFacetLabel inserts a display label for a facet code.
func SeedFacetLabel(t *testing.T, pool *pgxpool.Pool, dimension, code, label string) {
	t.Helper()

	_, err := pool.Exec(context.Background(),
		`INSERT INTO facet_values (dimension, code, label) VALUES ($1, $2, $3)
		 ON CONFLICT (dimension, code) DO UPDATE SET label = EXCLUDED.label`,
		dimension, code, label,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedFacetLabel: %v", err)
	}
}
