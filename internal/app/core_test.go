package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/pokedex-backend/internal/config"
	"github.com/heartmarshall/pokedex-backend/internal/domain"
	"github.com/heartmarshall/pokedex-backend/internal/service/enrichment"
	"github.com/heartmarshall/pokedex-backend/internal/viewmodel"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Backend: config.BackendConfig{BaseURL: "http://127.0.0.1:1", RequestTimeout: time.Second},
		PokeAPI: config.PokeAPIConfig{BaseURL: "http://127.0.0.1:1", RequestTimeout: time.Second, CacheSize: 16},
		Enrichment: config.EnrichmentConfig{
			BatchSize:   10,
			ItemTimeout: time.Second,
		},
		Catalog: config.CatalogConfig{PageSize: 20, Languages: []string{"en", "fr"}},
		Storage: config.StorageConfig{
			Driver:     config.StorageSQLite,
			SQLitePath: filepath.Join(t.TempDir(), "pokedex.db"),
		},
	}
}

func TestNewCore_PersistsOverridesAcrossRestarts(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	first, err := NewCore(ctx, cfg, logger)
	require.NoError(t, err)

	s := first.Session(domain.ViewQuery{})
	created, _, err := s.CreateCustom(ctx, viewmodel.CustomForm{
		Name:   "Missingno",
		Height: "1.5",
		Weight: "10",
		Types:  "bird normal",
	})
	require.NoError(t, err)
	_, err = s.ToggleFavorite(ctx, 25)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewCore(ctx, cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { second.Close() }) //nolint:errcheck

	require.NoError(t, second.Ping(ctx))
	assert.True(t, second.Store.IsFavorite(25))

	view := second.Session(domain.ViewQuery{}).List()
	require.Len(t, view.Custom, 1)
	assert.Equal(t, created.ID, view.Custom[0].ID)
	assert.Equal(t, "Missingno", view.Custom[0].Name)
	assert.Equal(t, enrichment.StateIdle, second.Enrichment.Status().State)
}

func TestOpenStorage_UnknownDriver(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := openStorage(context.Background(), config.StorageConfig{Driver: "redis"}, logger)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown driver "redis"`)
}
