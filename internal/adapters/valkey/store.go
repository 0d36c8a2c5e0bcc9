package valkey

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
)

// Store implements ports.KeyValueStore using Valkey (Redis-compatible).
type Store struct {
	client valkey.Client
	ttl    time.Duration
}

// New creates a Valkey-backed store. A zero ttl keeps keys forever.
func New(addr string, ttl time.Duration) (*Store, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect: %w", err)
	}
	return &Store{client: client, ttl: ttl}, nil
}

// Get retrieves a value by key. A nil reply means the key is absent.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Do(ctx, s.client.B().Get().Key(key).Build()).ToString()
	if valkey.IsValkeyNil(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("valkey get %s: %w", key, err)
	}
	return v, true, nil
}

// Set stores a value, refreshing its TTL when one is configured.
func (s *Store) Set(ctx context.Context, key, value string) error {
	var cmd valkey.Completed
	if s.ttl > 0 {
		cmd = s.client.B().Set().Key(key).Value(value).Ex(s.ttl).Build()
	} else {
		cmd = s.client.B().Set().Key(key).Value(value).Build()
	}
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("valkey set %s: %w", key, err)
	}
	return nil
}

// Remove deletes a key.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.client.Do(ctx, s.client.B().Del().Key(key).Build()).Error(); err != nil {
		return fmt.Errorf("valkey del %s: %w", key, err)
	}
	return nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Do(ctx, s.client.B().Ping().Build()).Error()
}

// Close releases the client.
func (s *Store) Close() error {
	s.client.Close()
	return nil
}
