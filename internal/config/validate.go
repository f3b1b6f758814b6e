package config

import (
	"fmt"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageSQLite:
		if strings.TrimSpace(c.Storage.SQLitePath) == "" {
			return fmt.Errorf("storage.sqlite_path is required for driver %q", StorageSQLite)
		}
	case StoragePostgres:
		if c.Storage.Database.DSN == "" {
			return fmt.Errorf("storage.database.dsn is required for driver %q", StoragePostgres)
		}
	default:
		return fmt.Errorf("storage.driver must be %q or %q (got %q)", StorageSQLite, StoragePostgres, c.Storage.Driver)
	}

	if c.Catalog.PageSize <= 0 {
		return fmt.Errorf("catalog.page_size must be > 0 (got %d)", c.Catalog.PageSize)
	}

	if err := c.Enrichment.validate(); err != nil {
		return fmt.Errorf("enrichment: %w", err)
	}

	langs, err := ParseLanguages(c.Catalog.LanguagesRaw)
	if err != nil {
		return fmt.Errorf("catalog.languages: %w", err)
	}
	c.Catalog.Languages = langs

	return nil
}

func (e *EnrichmentConfig) validate() error {
	if e.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0 (got %d)", e.BatchSize)
	}
	if e.BatchDelay < 0 {
		return fmt.Errorf("batch_delay must be >= 0 (got %v)", e.BatchDelay)
	}
	if e.ItemTimeout <= 0 {
		return fmt.Errorf("item_timeout must be > 0 (got %v)", e.ItemTimeout)
	}
	return nil
}

// ParseLanguages parses a comma-separated list of language codes
// (e.g. "en,fr,ja") into a slice. At least one code is required.
func ParseLanguages(raw string) ([]string, error) {
	parts := strings.Split(raw, ",")
	langs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		langs = append(langs, p)
	}
	if len(langs) == 0 {
		return nil, fmt.Errorf("at least one language code is required")
	}
	return langs, nil
}
