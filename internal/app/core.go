package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/pokedex-backend/internal/adapter/provider/backend"
	"github.com/heartmarshall/pokedex-backend/internal/adapter/provider/pokeapi"
	"github.com/heartmarshall/pokedex-backend/internal/config"
	"github.com/heartmarshall/pokedex-backend/internal/domain"
	"github.com/heartmarshall/pokedex-backend/internal/service/catalog"
	"github.com/heartmarshall/pokedex-backend/internal/service/enrichment"
	"github.com/heartmarshall/pokedex-backend/internal/service/navigation"
	"github.com/heartmarshall/pokedex-backend/internal/service/override"
	"github.com/heartmarshall/pokedex-backend/internal/viewmodel"
)

// Core holds the wired services shared by the HTTP server and the CLI.
type Core struct {
	Config     *config.Config
	Log        *slog.Logger
	Store      *override.Store
	Catalog    *catalog.Catalog
	Resolver   *navigation.Resolver
	Enrichment *enrichment.Runner

	storage kvStorage
}

// NewCore opens storage, loads persisted overrides and wires the services.
// Callers must Close the returned Core.
func NewCore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Core, error) {
	storage, err := openStorage(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, err
	}

	pages := backend.NewProvider(logger, cfg.Backend.BaseURL, cfg.Backend.RequestTimeout, cfg.Backend.MaxRetries)
	remote := pokeapi.NewProvider(logger, pokeapi.Options{
		BaseURL:        cfg.PokeAPI.BaseURL,
		ListingLimit:   cfg.PokeAPI.ListingLimit,
		RequestTimeout: cfg.PokeAPI.RequestTimeout,
		ItemTimeout:    cfg.Enrichment.ItemTimeout,
		MaxRetries:     cfg.PokeAPI.MaxRetries,
	})

	store := override.NewStore(logger, storage)
	cat := catalog.NewCatalog(logger, store, pages, catalog.Options{
		PageSize:  cfg.Catalog.PageSize,
		Languages: cfg.Catalog.Languages,
	})
	store.OnChange(cat.Touch)
	store.Load(ctx)

	resolver, err := navigation.NewResolver(logger, store, cat, remote, cfg.PokeAPI.CacheSize)
	if err != nil {
		storage.Close() //nolint:errcheck
		return nil, fmt.Errorf("create resolver: %w", err)
	}

	runner := enrichment.NewRunner(logger, remote, remote, cat, enrichment.Options{
		BatchSize:  cfg.Enrichment.BatchSize,
		BatchDelay: cfg.Enrichment.BatchDelay,
	})

	return &Core{
		Config:     cfg,
		Log:        logger,
		Store:      store,
		Catalog:    cat,
		Resolver:   resolver,
		Enrichment: runner,
		storage:    storage,
	}, nil
}

// Session starts a view-model session over the wired services.
func (c *Core) Session(q domain.ViewQuery) *viewmodel.Session {
	return viewmodel.NewSession(viewmodel.Deps{
		Store:    c.Store,
		Views:    c.Catalog,
		Resolver: c.Resolver,
		Progress: c.Enrichment,
	}, q)
}

// Ping checks the durable store.
func (c *Core) Ping(ctx context.Context) error {
	return c.storage.Ping(ctx)
}

// Close releases the durable store.
func (c *Core) Close() error {
	return c.storage.Close()
}
