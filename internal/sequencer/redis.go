package sequencer

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/angelmondragon/pdv-backend/pkg/redis"
)

type counterStore interface {
	Incr(ctx context.Context, key string) (int64, error)
	Get(ctx context.Context, key string) (string, error)
	SetNX(ctx context.Context, key string, value any) (bool, error)
}

// Redis issues numbers with INCR, which creates a missing key at 1.
type Redis struct {
	store counterStore
	key   string
}

func NewRedis(client *redis.Client) (*Redis, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &Redis{store: client, key: client.SaleNumberKey()}, nil
}

func newRedisWithStore(store counterStore, key string) *Redis {
	return &Redis{store: store, key: key}
}

func (r *Redis) Next(ctx context.Context) (int64, error) {
	n, err := r.store.Incr(ctx, r.key)
	if err != nil {
		return 0, fmt.Errorf("%w: incr %s: %w", ErrUnavailable, r.key, err)
	}
	return n, nil
}

// Current returns the last issued number, or 0 when nothing was issued yet.
func (r *Redis) Current(ctx context.Context) (int64, error) {
	raw, err := r.store.Get(ctx, r.key)
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: get %s: %w", ErrUnavailable, r.key, err)
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("counter %s holds non-integer %q", r.key, raw)
	}
	return n, nil
}

// Seed initialises a missing counter at floor so a flushed redis cannot
// reissue numbers that already reached the database. An existing counter is
// left untouched.
func (r *Redis) Seed(ctx context.Context, floor int64) (bool, error) {
	if floor <= 0 {
		return false, nil
	}
	ok, err := r.store.SetNX(ctx, r.key, floor)
	if err != nil {
		return false, fmt.Errorf("%w: seed %s: %w", ErrUnavailable, r.key, err)
	}
	return ok, nil
}
