package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisProvider keeps the workspace blob as a single JSON value under a
// namespaced key, for setups where several machines share one planner
// through a Redis instance instead of a synced folder.
type RedisProvider struct {
	rdb       *redis.Client
	namespace string
}

// NewRedisProvider connects a provider to Redis. The namespace scopes the
// state key so independent workspaces can share one server.
func NewRedisProvider(redisOpts *redis.Options, namespace string) (*RedisProvider, error) {
	if namespace == "" {
		return nil, fmt.Errorf("%w: namespace is required", ErrInvalid)
	}
	return &RedisProvider{
		rdb:       redis.NewClient(redisOpts),
		namespace: namespace,
	}, nil
}

// Ping verifies Redis connectivity. Useful for health checks.
func (p *RedisProvider) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection. Implements io.Closer.
func (p *RedisProvider) Close() error {
	return p.rdb.Close()
}

func (p *RedisProvider) stateKey() string {
	return fmt.Sprintf("plannersync:%s:state", p.namespace)
}

func (p *RedisProvider) Load(ctx context.Context) (map[string]any, error) {
	val, err := p.rdb.Get(ctx, p.stateKey()).Result()
	if errors.Is(err, redis.Nil) {
		// No state written yet: an empty workspace.
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state from redis: %w", err)
	}
	blob := map[string]any{}
	if err := json.Unmarshal([]byte(val), &blob); err != nil {
		return nil, fmt.Errorf("%w: parse state key %s: %v", ErrInvalid, p.stateKey(), err)
	}
	return blob, nil
}

func (p *RedisProvider) Save(ctx context.Context, blob map[string]any) error {
	b, err := json.Marshal(blob)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := p.rdb.Set(ctx, p.stateKey(), b, 0).Err(); err != nil {
		return fmt.Errorf("write state to redis: %w", err)
	}
	return nil
}
