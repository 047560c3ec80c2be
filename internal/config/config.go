package config

import (
	"strings"
	"time"

	"github.com/spendview/catalog-backend/internal/domain"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Log      LogConfig      `yaml:"log"`
	CORS     CORSConfig     `yaml:"cors"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// CatalogConfig holds dataset catalog and search settings.
//
// DimensionsRaw configures the open set of facet dimensions as a
// comma-separated list of name[:label] pairs, e.g.
// "territories:Territories,languages:Languages". Label defaults to the
// capitalized name when omitted.
type CatalogConfig struct {
	DimensionsRaw  string `yaml:"dimensions"       env:"CATALOG_DIMENSIONS"       env-default:"territories:Territories,languages:Languages"`
	DefaultPerPage int    `yaml:"default_per_page" env:"CATALOG_DEFAULT_PER_PAGE" env-default:"20"`
	MaxPerPage     int    `yaml:"max_per_page"     env:"CATALOG_MAX_PER_PAGE"     env-default:"100"`

	// Dimensions is parsed from DimensionsRaw during validation.
	Dimensions []domain.FacetDimension `yaml:"-" env:"-"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PATCH,PUT,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// HasDimension reports whether name is a configured facet dimension.
func (c CatalogConfig) HasDimension(name string) bool {
	for _, d := range c.Dimensions {
		if d.Name == name {
			return true
		}
	}
	return false
}

// ParseDimensions parses a comma-separated "name[:label]" list into facet
// dimensions. An empty string returns a nil slice.
func ParseDimensions(raw string) ([]domain.FacetDimension, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	dims := make([]domain.FacetDimension, 0, len(parts))
	seen := make(map[string]bool, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		name, label, _ := strings.Cut(p, ":")
		name = strings.ToLower(strings.TrimSpace(name))
		label = strings.TrimSpace(label)
		if name == "" {
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		if label == "" {
			label = strings.ToUpper(name[:1]) + name[1:]
		}
		dims = append(dims, domain.FacetDimension{Name: name, Label: label})
	}

	return dims, nil
}
