package config

import (
	"fmt"

	"github.com/spendview/catalog-backend/internal/domain"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.Database.validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Catalog.validate(); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	return nil
}

func (c *DatabaseConfig) validate() error {
	// cleanenv's env-required accepts a present-but-empty variable.
	if c.DSN == "" {
		return fmt.Errorf("dsn must not be empty")
	}
	return nil
}

func (c *CatalogConfig) validate() error {
	dims, err := ParseDimensions(c.DimensionsRaw)
	if err != nil {
		return fmt.Errorf("dimensions: %w", err)
	}
	if len(dims) == 0 {
		return fmt.Errorf("at least one facet dimension must be configured")
	}
	for _, d := range dims {
		if _, ok := domain.NormalizeFacetCode(d.Name); !ok {
			return fmt.Errorf("dimension name %q is not a valid code", d.Name)
		}
	}
	c.Dimensions = dims

	if c.DefaultPerPage <= 0 {
		return fmt.Errorf("default_per_page must be > 0 (got %d)", c.DefaultPerPage)
	}
	if c.MaxPerPage < c.DefaultPerPage {
		return fmt.Errorf("max_per_page must be >= default_per_page (got %d < %d)", c.MaxPerPage, c.DefaultPerPage)
	}

	return nil
}
