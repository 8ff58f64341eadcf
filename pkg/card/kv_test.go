package card

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := kv.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, StorageKey, []byte(`[1]`)))
	require.NoError(t, kv.Set(ctx, StorageKey, []byte(`[2]`)))

	got, ok, err := kv.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[2]`, string(got))
}

func TestMemoryKV(t *testing.T) {
	testKV(t, NewMemoryKV())
}

func TestFileKV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	kv, err := NewFileKV(dir)
	require.NoError(t, err)
	testKV(t, kv)

	path := kv.Path("stamina:1_2")
	assert.Equal(t, filepath.Join(dir, "stamina%3A1_2.json"), path)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files are cleaned up")
}

func TestFileKVKeysDoNotCollide(t *testing.T) {
	ctx := context.Background()
	kv, err := NewFileKV(t.TempDir())
	require.NoError(t, err)

	keys := []string{StorageKey + ":1_2", StorageKey + "_1_2", StorageKey + "%3A1_2", "../escape"}
	for i, key := range keys {
		require.NoError(t, kv.Set(ctx, key, []byte{byte('a' + i)}))
	}
	for i, key := range keys {
		got, ok, err := kv.Get(ctx, key)
		require.NoError(t, err)
		require.True(t, ok, key)
		assert.Equal(t, []byte{byte('a' + i)}, got, key)
		assert.Equal(t, kv.Dir(), filepath.Dir(kv.Path(key)), key)
	}
}

func TestFileKVHonoursContext(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, kv.Set(ctx, "k", []byte("v")), context.Canceled)
}

func TestSQLKV(t *testing.T) {
	ctx := context.Background()
	kv, err := OpenSQLKV(ctx, DialectSQLite, filepath.Join(t.TempDir(), "cards.db"))
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	testKV(t, kv)

	s := NewStore(kv, StorageKey, nil)
	s.Add(ctx, "Head", "100")

	loaded := NewStore(kv, StorageKey, nil)
	require.NoError(t, loaded.Load(ctx))
	assert.Equal(t, s.Cards(), loaded.Cards())
}

func TestOpenSQLKVRejectsUnknownDialect(t *testing.T) {
	_, err := OpenSQLKV(context.Background(), Dialect("mysql"), "")
	assert.Error(t, err)
}
