package kvstore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/geocoin/internal/adapters/kvstore"
	"github.com/samirrijal/geocoin/internal/pkg/config"
)

func TestOpen_Memory(t *testing.T) {
	s, err := kvstore.Open(context.Background(), &config.Config{Storage: config.StorageConfig{Driver: config.DriverMemory}})
	require.NoError(t, err)
	defer s.Close()
	assert.NoError(t, s.Ping(context.Background()))
}

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{Storage: config.StorageConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "trails.db"),
	}}

	s, err := kvstore.Open(ctx, cfg)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set(ctx, "k", "v"))
	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := kvstore.Open(context.Background(), &config.Config{Storage: config.StorageConfig{Driver: "floppy"}})
	assert.Error(t, err)
}
