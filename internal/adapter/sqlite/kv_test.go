package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *KV {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	kv := NewKV(db)
	t.Cleanup(func() { kv.Close() })
	return kv
}

func TestKV_GetMissing(t *testing.T) {
	t.Parallel()
	kv := openMemory(t)

	_, ok, err := kv.Get(context.Background(), "pokemonFavorites")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKV_SetManyAndGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kv := openMemory(t)

	require.NoError(t, kv.SetMany(ctx, map[string]string{
		"pokemonFavorites": "[25]",
		"deletedPokemons":  "[]",
	}))
	require.NoError(t, kv.SetMany(ctx, map[string]string{"pokemonFavorites": "[1,25]"}))

	got, ok, err := kv.Get(ctx, "pokemonFavorites")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[1,25]", got)

	got, ok, err = kv.Get(ctx, "deletedPokemons")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", got)
}

func TestKV_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kv := openMemory(t)

	require.NoError(t, kv.SetMany(ctx, map[string]string{"a": "1", "b": "2", "c": "3"}))
	require.NoError(t, kv.Delete(ctx, "a", "b", "missing"))

	_, ok, err := kv.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = kv.Get(ctx, "c")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestKV_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "pokedex.db")

	db, err := Open(path)
	require.NoError(t, err)
	kv := NewKV(db)
	require.NoError(t, kv.SetMany(ctx, map[string]string{"pokemonFavorites": "[25]"}))
	require.NoError(t, kv.Close())

	db, err = Open(path)
	require.NoError(t, err)
	kv = NewKV(db)
	defer kv.Close()

	got, ok, err := kv.Get(ctx, "pokemonFavorites")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[25]", got)
}
