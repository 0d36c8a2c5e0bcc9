package main

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/geocoin/internal/core/domain"
)

type recorder struct {
	sessions []string
	points   []domain.Coordinate
	failAt   int
}

func (r *recorder) PublishPosition(_ context.Context, sessionID string, pos domain.Coordinate) error {
	if r.failAt > 0 && len(r.points)+1 == r.failAt {
		return errors.New("nats down")
	}
	r.sessions = append(r.sessions, sessionID)
	r.points = append(r.points, pos)
	return nil
}

func TestDecodeFixes(t *testing.T) {
	in := `{"session":"a","lat":36.9895,"lng":-122.0627}

{"session":"b","lat":1,"lng":2}
`
	fixes, err := decodeFixes(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []fix{
		{Session: "a", Lat: 36.9895, Lng: -122.0627},
		{Session: "b", Lat: 1, Lng: 2},
	}, fixes)
}

func TestDecodeFixes_Rejects(t *testing.T) {
	cases := map[string]string{
		"bad json":   "{",
		"no session": `{"lat":1,"lng":2}`,
		"off globe":  `{"session":"a","lat":91,"lng":0}`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := decodeFixes(strings.NewReader(in))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "line 1")
		})
	}
}

func TestReplay_PublishesInOrder(t *testing.T) {
	rec := &recorder{}
	fixes := []fix{{"a", 1, 1}, {"a", 1, 2}, {"b", 3, 4}}

	n, err := replay(context.Background(), rec, fixes, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"a", "a", "b"}, rec.sessions)
	assert.Equal(t, domain.Coordinate{Lat: 3, Lng: 4}, rec.points[2])
}

func TestReplay_StopsOnError(t *testing.T) {
	rec := &recorder{failAt: 2}
	n, err := replay(context.Background(), rec, []fix{{"a", 1, 1}, {"a", 1, 2}}, time.Millisecond)
	require.Error(t, err)
	assert.Equal(t, 1, n)
}

func TestReplay_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := replay(ctx, &recorder{}, []fix{{"a", 1, 1}, {"a", 1, 2}}, time.Hour)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, n)
}
