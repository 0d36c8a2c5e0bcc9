package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/geocoin/internal/core/domain"
)

type mapStore map[string]string

func (m mapStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m mapStore) Set(ctx context.Context, key, value string) error {
	m[key] = value
	return nil
}

func (m mapStore) Remove(ctx context.Context, key string) error {
	delete(m, key)
	return nil
}

func TestSession_MalformedRecordMintsFresh(t *testing.T) {
	ctx := context.Background()
	s, err := NewSession(ctx, "s1", domain.DefaultRules(), mapStore{})
	require.NoError(t, err)
	cell := domain.GridCell{Row: 369889, Col: -1220632}

	_, err = s.Take(cell, 1, nil)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := s.Move(ctx, domain.East)
		require.NoError(t, err)
	}
	s.dir.Save(cell, "!!!")

	var diff domain.RegionDiff
	for i := 0; i < 5; i++ {
		d, err := s.Move(ctx, domain.West)
		require.NoError(t, err)
		if len(d.Malformed) > 0 {
			diff = d
		}
	}

	assert.Equal(t, []domain.GridCell{cell}, diff.Malformed)
	assert.NotContains(t, diff.Restored, cell)
	c, ok := s.Cache(cell)
	require.True(t, ok)
	assert.Equal(t, 3, c.Len())
}
