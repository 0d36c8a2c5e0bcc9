//go:build integration

package natsadapter_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	natsadapter "github.com/samirrijal/geocoin/internal/adapters/nats"
	"github.com/samirrijal/geocoin/internal/core/domain"
)

func TestPositionStream(t *testing.T) {
	url := os.Getenv("GEOCOIN_NATS_URL")
	if url == "" {
		url = "nats://localhost:4222"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pub, err := natsadapter.NewPublisher(url)
	require.NoError(t, err)
	defer pub.Close()
	sub, err := natsadapter.NewSubscriber(url)
	require.NoError(t, err)
	defer sub.Close()

	got := make(chan domain.Coordinate, 1)
	require.NoError(t, sub.SubscribePositions(ctx, func(ctx context.Context, id string, pos domain.Coordinate) error {
		if id == "itest" {
			got <- pos
		}
		return nil
	}))

	want := domain.Coordinate{Lat: 36.98, Lng: -122.06}
	require.NoError(t, pub.PublishPosition(ctx, "itest", want))

	select {
	case pos := <-got:
		require.Equal(t, want, pos)
	case <-ctx.Done():
		t.Fatal("position not delivered")
	}
}
