//go:build integration

package valkey_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/geocoin/internal/adapters/valkey"
)

func TestStore_RoundTrip(t *testing.T) {
	addr := os.Getenv("GEOCOIN_VALKEY_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	ctx := context.Background()

	s, err := valkey.New(addr, time.Minute)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Ping(ctx))

	key := "geocoin:integration:" + t.Name()
	t.Cleanup(func() { _ = s.Remove(context.Background(), key) })

	_, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, key, "[]"))
	v, ok, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", v)

	require.NoError(t, s.Remove(ctx, key))
	_, ok, err = s.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}
