// Package kv implements the override key-value store on PostgreSQL.
package kv

import (
	"context"
	"errors"
	"fmt"
	"sort"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/heartmarshall/pokedex-backend/internal/adapter/postgres"
)

const table = "kv_store"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Repo is a string key-value store on the kv_store table.
type Repo struct {
	pool *pgxpool.Pool
	tx   *postgres.TxManager
}

// New creates a Repo.
func New(pool *pgxpool.Pool, tx *postgres.TxManager) *Repo {
	return &Repo{pool: pool, tx: tx}
}

// Get returns the value for key; ok is false when the key is absent.
func (r *Repo) Get(ctx context.Context, key string) (string, bool, error) {
	query, args, err := psql.Select("value").From(table).Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return "", false, fmt.Errorf("kv.Get: build query: %w", err)
	}

	var value string
	err = postgres.QuerierFromCtx(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, postgres.MapError(err, "kv.Get", key)
	}
	return value, true, nil
}

// SetMany upserts all pairs in one transaction.
func (r *Repo) SetMany(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	insert := psql.Insert(table).Columns("key", "value", "updated_at")
	for _, k := range keys {
		insert = insert.Values(k, values[k], sq.Expr("now()"))
	}
	insert = insert.Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at")

	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("kv.SetMany: build query: %w", err)
	}

	return r.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, query, args...); err != nil {
			return postgres.MapError(err, "kv.SetMany", fmt.Sprint(keys))
		}
		return nil
	})
}

// Delete removes keys; missing keys are ignored.
func (r *Repo) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	query, args, err := psql.Delete(table).Where(sq.Eq{"key": keys}).ToSql()
	if err != nil {
		return fmt.Errorf("kv.Delete: build query: %w", err)
	}

	if _, err := postgres.QuerierFromCtx(ctx, r.pool).Exec(ctx, query, args...); err != nil {
		return postgres.MapError(err, "kv.Delete", fmt.Sprint(keys))
	}
	return nil
}

// Ping checks the database is reachable.
func (r *Repo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the pool.
func (r *Repo) Close() error {
	r.pool.Close()
	return nil
}
