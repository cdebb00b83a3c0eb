// Package storage defines the key/value persistence contract used by the
// analytics store and the preferences service, plus its backends.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"gorm.io/gorm"

	"thoughtburn/internal/config"
	"thoughtburn/internal/settings"
)

// ErrClosed is returned by providers used after Close.
var ErrClosed = errors.New("storage: provider closed")

// Provider is a string key/value store. Get reports found=false for a key
// that was never written; err is reserved for failures of the backend.
type Provider interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Backend describes an opened provider.
type Backend struct {
	Name     string
	Provider Provider
	closer   io.Closer
}

// Close releases resources owned by the backend, if any.
func (b *Backend) Close() error {
	if b == nil || b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

// State reports the circuit breaker state ("closed", "half-open" or "open")
// of providers guarded by one, and "" for the rest.
func (b *Backend) State() string {
	if b == nil {
		return ""
	}
	if sp, ok := b.Provider.(interface{ State() string }); ok {
		return sp.State()
	}
	return ""
}

// Open builds the provider selected by cfg.StorageBackend. The sqlite backend
// shares db; the others own their resources and are released by Close.
func Open(cfg *config.Config, db *gorm.DB, logger *slog.Logger) (*Backend, error) {
	switch cfg.StorageBackend {
	case config.StorageSQLite, "":
		if db == nil {
			return nil, fmt.Errorf("sqlite storage requires a database connection")
		}
		return &Backend{Name: config.StorageSQLite, Provider: settings.NewStore(db, logger)}, nil

	case config.StorageBadger:
		opts := badger.DefaultOptions(cfg.BadgerPath)
		opts.Logger = nil
		bp, err := OpenBadger(opts)
		if err != nil {
			return nil, err
		}
		return &Backend{Name: config.StorageBadger, Provider: bp, closer: bp}, nil

	case config.StorageRedis:
		rp, err := NewRedisProvider(context.Background(), RedisOptions{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.RedisKeyPrefix,
		}, logger)
		if err != nil {
			return nil, err
		}
		return &Backend{Name: config.StorageRedis, Provider: rp, closer: rp}, nil

	case config.StorageMemory:
		return &Backend{Name: config.StorageMemory, Provider: NewMemoryProvider()}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.StorageBackend)
	}
}
