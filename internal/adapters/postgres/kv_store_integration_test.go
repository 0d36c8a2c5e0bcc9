//go:build integration

package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/geocoin/internal/adapters/postgres"
)

// Requires the kv_store table (cmd/migrate up).
func TestKVStore_RoundTrip(t *testing.T) {
	dsn := os.Getenv("GEOCOIN_TEST_DSN")
	if dsn == "" {
		t.Skip("GEOCOIN_TEST_DSN not set")
	}
	ctx := context.Background()

	db, err := postgres.New(ctx, dsn, 4)
	require.NoError(t, err)
	s := postgres.NewKVStore(db)
	defer s.Close()

	key := "geocoin:integration:" + t.Name()
	t.Cleanup(func() { _ = s.Remove(context.Background(), key) })

	require.NoError(t, s.Set(ctx, key, "a"))
	require.NoError(t, s.Set(ctx, key, "b"))
	v, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "b", v)

	require.NoError(t, s.Remove(ctx, key))
	_, ok, err = s.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}
