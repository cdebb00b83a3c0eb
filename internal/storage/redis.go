package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
	gobreaker "github.com/sony/gobreaker/v2"
)

// RedisOptions configures RedisProvider.
type RedisOptions struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string

	// FailureThreshold is the number of consecutive failures before the breaker opens.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
}

// RedisProvider stores values in Redis behind a circuit breaker, so an
// unreachable server fails fast instead of stalling every request.
type RedisProvider struct {
	rdb     *goredis.Client
	prefix  string
	breaker *gobreaker.CircuitBreaker[string]
	logger  *slog.Logger
}

// NewRedisProvider connects to Redis and verifies the connection with PING.
func NewRedisProvider(ctx context.Context, opts RedisOptions, logger *slog.Logger) (*RedisProvider, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return newRedisProvider(rdb, opts, logger), nil
}

func newRedisProvider(rdb *goredis.Client, opts RedisOptions, logger *slog.Logger) *RedisProvider {
	if logger == nil {
		logger = slog.Default()
	}
	threshold := opts.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	timeout := opts.OpenTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	p := &RedisProvider{
		rdb:    rdb,
		prefix: opts.KeyPrefix,
		logger: logger.With(slog.String("component", "redis_storage")),
	}
	p.breaker = gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "redis-storage",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			p.logger.Warn("Circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})
	return p
}

func (p *RedisProvider) Get(ctx context.Context, key string) (string, bool, error) {
	found := false
	value, err := p.breaker.Execute(func() (string, error) {
		v, err := p.rdb.Get(ctx, p.prefix+key).Result()
		if errors.Is(err, goredis.Nil) {
			return "", nil
		}
		if err != nil {
			return "", err
		}
		found = true
		return v, nil
	})
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, found, nil
}

func (p *RedisProvider) Set(ctx context.Context, key, value string) error {
	_, err := p.breaker.Execute(func() (string, error) {
		return "", p.rdb.Set(ctx, p.prefix+key, value, 0).Err()
	})
	if err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// State exposes the breaker state; /_health reports it through Backend.State.
func (p *RedisProvider) State() string {
	return p.breaker.State().String()
}

func (p *RedisProvider) Close() error {
	return p.rdb.Close()
}
