package app

import (
	"context"
	"fmt"
	"log/slog"

	postgres "github.com/heartmarshall/pokedex-backend/internal/adapter/postgres"
	"github.com/heartmarshall/pokedex-backend/internal/adapter/postgres/kv"
	"github.com/heartmarshall/pokedex-backend/internal/adapter/sqlite"
	"github.com/heartmarshall/pokedex-backend/internal/config"
	"github.com/heartmarshall/pokedex-backend/migrations"
)

// kvStorage is the durable key-value store behind the override store.
type kvStorage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	SetMany(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
	Close() error
}

// openStorage opens the configured driver. PostgreSQL migrations run on
// every start; goose skips the ones already applied.
func openStorage(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (kvStorage, error) {
	switch cfg.Driver {
	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
		if err := postgres.Migrate(ctx, pool, migrations.FS, logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("storage: %w", err)
		}
		logger.Info("storage opened", slog.String("driver", cfg.Driver))
		return kv.New(pool, postgres.NewTxManager(pool)), nil

	case config.StorageSQLite, "":
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("storage: %w", err)
		}
		logger.Info("storage opened",
			slog.String("driver", config.StorageSQLite),
			slog.String("path", cfg.SQLitePath),
		)
		return sqlite.NewKV(db), nil

	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
}
