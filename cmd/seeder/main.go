// Command seeder populates the catalog from a JSON fixture file: facet
// value labels, badges, datasets with their facet values, and badge awards.
// It is intended for bootstrapping environments, not as part of the server.
//
// Flags:
//
//	--fixture  path to the JSON fixture file (required)
//
// The run is idempotent: existing datasets and badges are left as they are,
// facet labels are upserted, awards use ON CONFLICT DO NOTHING.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/spendview/catalog-backend/internal/adapter/postgres"
	badgerepo "github.com/spendview/catalog-backend/internal/adapter/postgres/badge"
	datasetrepo "github.com/spendview/catalog-backend/internal/adapter/postgres/dataset"
	"github.com/spendview/catalog-backend/internal/app"
	"github.com/spendview/catalog-backend/internal/config"
	"github.com/spendview/catalog-backend/internal/domain"
)

// fixture is the on-disk shape of the seed data.
type fixture struct {
	FacetLabels map[string]map[string]string `json:"facet_labels"` // dimension -> code -> label
	Badges      []badgeFixture               `json:"badges"`
	Datasets    []datasetFixture             `json:"datasets"`
}

type badgeFixture struct {
	Name        string  `json:"name"`
	Label       string  `json:"label"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
}

type datasetFixture struct {
	Name        string              `json:"name"`
	Label       string              `json:"label"`
	Description *string             `json:"description"`
	Category    *string             `json:"category"`
	Currency    *string             `json:"currency"`
	Private     bool                `json:"private"`
	Facets      map[string][]string `json:"facets"`
	Badges      []string            `json:"badges"` // badge names
}

func main() {
	fixturePath := flag.String("fixture", "", "path to the JSON fixture file")
	flag.Parse()

	if *fixturePath == "" {
		log.Fatal("--fixture is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	data, err := os.ReadFile(*fixturePath)
	if err != nil {
		logger.Error("read fixture", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var fx fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		logger.Error("parse fixture", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := seed(ctx, logger, datasetrepo.New(pool), badgerepo.New(pool), fx); err != nil {
		logger.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("seed complete",
		slog.Int("datasets", len(fx.Datasets)),
		slog.Int("badges", len(fx.Badges)),
	)
}

func seed(ctx context.Context, logger *slog.Logger, datasets *datasetrepo.Repo, badges *badgerepo.Repo, fx fixture) error {
	for dimension, labels := range fx.FacetLabels {
		for code, label := range labels {
			if err := datasets.UpsertValueLabel(ctx, dimension, code, label); err != nil {
				return fmt.Errorf("facet label %s/%s: %w", dimension, code, err)
			}
		}
	}

	badgeIDs := map[string]*domain.Badge{}
	for _, bf := range fx.Badges {
		created, err := badges.Create(ctx, &domain.Badge{
			Name:        bf.Name,
			Label:       bf.Label,
			Description: bf.Description,
			ImageURL:    bf.ImageURL,
		})
		if errors.Is(err, domain.ErrAlreadyExists) {
			logger.Info("badge exists, skipping", slog.String("name", bf.Name))
			continue
		}
		if err != nil {
			return fmt.Errorf("badge %s: %w", bf.Name, err)
		}
		badgeIDs[bf.Name] = created
	}

	for _, df := range fx.Datasets {
		created, err := datasets.Create(ctx, &domain.Dataset{
			Name:        df.Name,
			Label:       df.Label,
			Description: df.Description,
			Category:    df.Category,
			Currency:    df.Currency,
			Private:     df.Private,
			Facets:      df.Facets,
		})
		if errors.Is(err, domain.ErrAlreadyExists) {
			logger.Info("dataset exists, skipping", slog.String("name", df.Name))
			continue
		}
		if err != nil {
			return fmt.Errorf("dataset %s: %w", df.Name, err)
		}

		for _, badgeName := range df.Badges {
			b := badgeIDs[badgeName]
			if b == nil {
				// Fixture may award a badge created on a previous run.
				b, err = badgeByName(ctx, badges, badgeName)
				if err != nil {
					return fmt.Errorf("award %s to %s: %w", badgeName, df.Name, err)
				}
				badgeIDs[badgeName] = b
			}
			if err := badges.Award(ctx, created.ID, b.ID); err != nil {
				return fmt.Errorf("award %s to %s: %w", badgeName, df.Name, err)
			}
		}
	}

	return nil
}

func badgeByName(ctx context.Context, badges *badgerepo.Repo, name string) (*domain.Badge, error) {
	all, err := badges.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].Name == name {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("badge %q: %w", name, domain.ErrNotFound)
}
