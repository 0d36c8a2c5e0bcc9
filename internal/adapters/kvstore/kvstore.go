// Package kvstore opens the trail store selected by configuration.
package kvstore

import (
	"context"
	"fmt"
	"time"

	"github.com/samirrijal/geocoin/internal/adapters/memory"
	"github.com/samirrijal/geocoin/internal/adapters/postgres"
	"github.com/samirrijal/geocoin/internal/adapters/sqlite"
	"github.com/samirrijal/geocoin/internal/adapters/valkey"
	"github.com/samirrijal/geocoin/internal/core/ports"
	"github.com/samirrijal/geocoin/internal/pkg/config"
)

// Store is a key-value store that can be health-checked and closed.
type Store interface {
	ports.KeyValueStore
	Ping(ctx context.Context) error
	Close() error
}

// Open connects the store for cfg.Storage.Driver. For postgres, pool
// metrics are collected until ctx ends.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory, "":
		return memory.New(), nil

	case config.DriverSQLite:
		s, err := sqlite.Open(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil

	case config.DriverValkey:
		s, err := valkey.New(cfg.Valkey.Addr, cfg.Valkey.TTL)
		if err != nil {
			return nil, err
		}
		return s, nil

	case config.DriverPostgres:
		db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		go db.CollectPoolMetrics(ctx, 15*time.Second)
		return postgres.NewKVStore(db), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
